package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fabtrack/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// buildPartDesignation composes "{projectNumber}-{buildingDesignation}-{partMark}"
// ("XX" when the part has no building) and resolves collisions with a numeric
// suffix: P-001-A-PM1, P-001-A-PM1-2, P-001-A-PM1-3, ...
func buildPartDesignation(gdb *gorm.DB, project *models.Project, building *models.Building, partMark string) (string, error) {
	buildingPart := "XX"
	if building != nil {
		buildingPart = building.Designation
	}
	base := fmt.Sprintf("%s-%s-%s", project.ProjectNumber, buildingPart, partMark)

	candidate := base
	for suffix := 2; ; suffix++ {
		var count int64
		if err := gdb.Model(&models.AssemblyPart{}).
			Where("part_designation = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func insertAssemblyPart(gdb *gorm.DB, req models.AssemblyPartRequest, createdBy string) (*models.AssemblyPart, error) {
	var project models.Project
	if err := gdb.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d not found", req.ProjectID)
		}
		return nil, err
	}

	var building *models.Building
	if req.BuildingID != nil {
		var b models.Building
		if err := gdb.First(&b, *req.BuildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("building %d not found", *req.BuildingID)
			}
			return nil, err
		}
		if b.ProjectID != project.ID {
			return nil, fmt.Errorf("building %d does not belong to project %s", b.ID, project.ProjectNumber)
		}
		building = &b
	}

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	designation, err := buildPartDesignation(gdb, &project, building, req.PartMark)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	part := models.AssemblyPart{
		ProjectID:        project.ID,
		BuildingID:       req.BuildingID,
		PartDesignation:  designation,
		AssemblyMark:     req.AssemblyMark,
		SubAssemblyMark:  req.SubAssemblyMark,
		PartMark:         req.PartMark,
		Name:             req.Name,
		Quantity:         req.Quantity,
		Profile:          req.Profile,
		Grade:            req.Grade,
		LengthMm:         req.LengthMm,
		NetAreaPerUnit:   req.NetAreaPerUnit,
		NetAreaTotal:     req.NetAreaPerUnit * float64(req.Quantity),
		SinglePartWeight: req.SinglePartWeight,
		NetWeightTotal:   req.SinglePartWeight * float64(req.Quantity),
		Status:           models.PartStatusPending,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := gdb.Create(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// CreateAssemblyPart godoc
// @Summary      Create an assembly part
// @Description  The part designation is generated server-side from the
// @Description  project number, building designation and part mark.
// @Tags         parts
// @Accept       json
// @Produce      json
// @Param        part  body  models.AssemblyPartRequest  true  "Assembly part"
// @Success      201  {object}  models.AssemblyPart
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/parts [post]
func CreateAssemblyPart(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AssemblyPartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		actor, err := actingUserFromSession(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}

		part, err := insertAssemblyPart(gdb.WithContext(c.Request.Context()), req, actor.Name)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     actor.Name,
			HostName:     actor.Host,
			EventContext: "Parts",
			IPAddress:    actor.IP,
			Description:  fmt.Sprintf("Created assembly part %s", part.PartDesignation),
			EventName:    "part_created",
			ProjectID:    int(part.ProjectID),
		})

		c.JSON(http.StatusCreated, part)
	}
}

// GetAssemblyParts godoc
// @Summary      List assembly parts
// @Tags         parts
// @Produce      json
// @Param        project_id   query  int     false  "Filter by project"
// @Param        building_id  query  int     false  "Filter by building"
// @Param        status       query  string  false  "Filter by status"
// @Param        search       query  string  false  "Search in designation, marks and name"
// @Success      200  {array}  models.AssemblyPart
// @Router       /api/parts [get]
func GetAssemblyParts(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := gdb.WithContext(c.Request.Context()).
			Model(&models.AssemblyPart{}).
			Preload("Project").
			Preload("Building")

		if projectStr := c.Query("project_id"); projectStr != "" {
			projectID, err := strconv.ParseUint(projectStr, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
				return
			}
			q = q.Where("project_id = ?", uint(projectID))
		}
		if buildingStr := c.Query("building_id"); buildingStr != "" {
			buildingID, err := strconv.ParseUint(buildingStr, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid building_id"})
				return
			}
			q = q.Where("building_id = ?", uint(buildingID))
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			q = q.Where(
				"part_designation ILIKE ? OR assembly_mark ILIKE ? OR part_mark ILIKE ? OR name ILIKE ?",
				like, like, like, like,
			)
		}

		var parts []models.AssemblyPart
		if err := q.Order("part_designation ASC").Find(&parts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching assembly parts"})
			return
		}

		c.JSON(http.StatusOK, parts)
	}
}

// GetAssemblyPart godoc
// @Summary      Get one assembly part
// @Tags         parts
// @Produce      json
// @Param        id  path  int  true  "Assembly part ID"
// @Success      200  {object}  models.AssemblyPart
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/parts/{id} [get]
func GetAssemblyPart(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid part ID"})
			return
		}

		var part models.AssemblyPart
		err = gdb.WithContext(c.Request.Context()).
			Preload("Project").
			Preload("Building").
			First(&part, uint(id)).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Assembly part not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch part"})
			return
		}

		c.JSON(http.StatusOK, part)
	}
}

// Part import column order, matching the downloadable template.
var partImportHeader = []string{
	"Assembly Mark", "Sub-assembly Mark", "Part Mark", "Name", "Quantity",
	"Profile", "Grade", "Length (mm)", "Net Area per Unit (m2)", "Single Part Weight (kg)",
}

// ImportAssemblyParts godoc
// @Summary      Import assembly parts from an Excel file
// @Description  Reads the first sheet of the uploaded .xlsx. Rows failing
// @Description  validation are skipped and reported; valid rows commit.
// @Tags         parts
// @Accept       multipart/form-data
// @Produce      json
// @Param        project_id   formData  int   true   "Project ID"
// @Param        building_id  formData  int   false  "Building ID"
// @Param        file         formData  file  true   "Excel file"
// @Success      201  {object}  models.ImportResult
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/parts/import [post]
func ImportAssemblyParts(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
			return
		}

		var buildingID *uint
		if buildingStr := c.PostForm("building_id"); buildingStr != "" {
			parsed, convErr := strconv.ParseUint(buildingStr, 10, 32)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid building_id"})
				return
			}
			id := uint(parsed)
			buildingID = &id
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing file upload"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		xls, err := excelize.OpenReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid Excel file", Details: err.Error()})
			return
		}
		defer xls.Close()

		sheets := xls.GetSheetList()
		if len(sheets) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Excel file has no sheets"})
			return
		}

		rows, err := xls.GetRows(sheets[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read sheet", Details: err.Error()})
			return
		}
		if len(rows) < 2 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Sheet has no data rows"})
			return
		}

		actor, err := actingUserFromSession(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}

		result := models.ImportResult{
			JobReference: uuid.New().String(),
			Errors:       []string{},
		}

		ctxDB := gdb.WithContext(c.Request.Context())
		for i, row := range rows[1:] {
			rowNum := i + 2
			cell := func(idx int) string {
				if idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
				return ""
			}

			if cell(0) == "" && cell(2) == "" {
				continue // blank row
			}

			qty, convErr := strconv.Atoi(cell(4))
			if convErr != nil || qty <= 0 {
				result.SkippedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid quantity %q", rowNum, cell(4)))
				continue
			}

			length, _ := strconv.ParseFloat(cell(7), 64)
			netArea, _ := strconv.ParseFloat(cell(8), 64)
			weight, _ := strconv.ParseFloat(cell(9), 64)

			req := models.AssemblyPartRequest{
				ProjectID:        uint(projectID),
				BuildingID:       buildingID,
				AssemblyMark:     cell(0),
				SubAssemblyMark:  cell(1),
				PartMark:         cell(2),
				Name:             cell(3),
				Quantity:         qty,
				Profile:          cell(5),
				Grade:            cell(6),
				LengthMm:         length,
				NetAreaPerUnit:   netArea,
				SinglePartWeight: weight,
			}
			if req.PartMark == "" || req.Name == "" {
				result.SkippedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: part mark and name are required", rowNum))
				continue
			}

			if _, insErr := insertAssemblyPart(ctxDB, req, actor.Name); insErr != nil {
				result.SkippedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, insErr))
				continue
			}
			result.CreatedCount++
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     actor.Name,
			HostName:     actor.Host,
			EventContext: "Parts",
			IPAddress:    actor.IP,
			Description:  fmt.Sprintf("Imported parts (job %s): %d created, %d skipped", result.JobReference, result.CreatedCount, result.SkippedCount),
			EventName:    "parts_imported",
			ProjectID:    int(projectID),
		})

		c.JSON(http.StatusCreated, result)
	}
}

// DownloadPartTemplate godoc
// @Summary      Download the part import Excel template
// @Tags         parts
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file  "Excel template"
// @Router       /api/parts/import/template [get]
func DownloadPartTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		xls := excelize.NewFile()
		defer xls.Close()

		sheet := xls.GetSheetName(0)
		for i, title := range partImportHeader {
			cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = xls.SetCellValue(sheet, cellRef, title)
		}
		// Example row so the expected types are obvious
		example := []interface{}{"A1", "", "PM1", "Main column", 12, "HEA300", "S355", 6000.0, 4.5, 480.0}
		for i, v := range example {
			cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
			_ = xls.SetCellValue(sheet, cellRef, v)
		}

		c.Header("Content-Disposition", "attachment; filename=\"part_import_template.xlsx\"")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := xls.Write(c.Writer); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}
