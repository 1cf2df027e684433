package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fabtrack/ledger"
	"fabtrack/models"
	"fabtrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportProductionLogs godoc
// @Summary      Export production logs of a project to Excel
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        project_id    query  int     true   "Project ID"
// @Param        process_type  query  string  false  "Filter by process type"
// @Success      200  {file}  file  "Excel file"
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/export/production_logs [get]
func ExportProductionLogs(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		q := gdb.WithContext(ctx).
			Model(&models.ProductionLog{}).
			Preload("AssemblyPart").
			Preload("AssemblyPart.Building").
			Joins("JOIN assembly_part ON assembly_part.id = production_log.assembly_part_id").
			Where("assembly_part.project_id = ?", uint(projectID))

		if processStr := c.Query("process_type"); processStr != "" {
			process, parseErr := ledger.ParseProcessType(processStr)
			if parseErr != nil {
				respondLedgerError(c, parseErr)
				return
			}
			q = q.Where("production_log.process_type = ?", string(process))
		}

		var logs []models.ProductionLog
		if err := q.Order("production_log.date_processed ASC, production_log.id ASC").Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching production logs"})
			return
		}

		xls := excelize.NewFile()
		defer xls.Close()
		sheet := xls.GetSheetName(0)

		header := []string{
			"Part Designation", "Part Name", "Building", "Process Type", "Date",
			"Processed Qty", "Report Number", "Team", "Location", "Remarks", "Logged By",
		}
		for i, title := range header {
			cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = xls.SetCellValue(sheet, cellRef, title)
		}

		for rowIdx, log := range logs {
			designation := ""
			partName := ""
			building := ""
			if log.AssemblyPart != nil {
				designation = log.AssemblyPart.PartDesignation
				partName = log.AssemblyPart.Name
				if log.AssemblyPart.Building != nil {
					building = log.AssemblyPart.Building.Designation
				}
			}
			values := []interface{}{
				designation, partName, building, log.ProcessType,
				log.DateProcessed.Format("2006-01-02"), log.ProcessedQty,
				log.ReportNumber, log.ProcessingTeam, log.ProcessingLocation,
				log.Remarks, log.CreatedBy,
			}
			for colIdx, v := range values {
				cellRef, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				_ = xls.SetCellValue(sheet, cellRef, v)
			}
		}

		filename := fmt.Sprintf("production_logs_%d_%s.xlsx", projectID, time.Now().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := xls.Write(c.Writer); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}
