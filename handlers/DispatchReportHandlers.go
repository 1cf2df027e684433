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
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

func dispatchReportRows(gdb *gorm.DB, projectID uint, process ledger.ProcessType, reportNumber string) ([]models.DispatchReportRow, error) {
	dispatchTypes := []string{}
	for _, t := range ledger.AllProcessTypes() {
		if t.IsDispatch() {
			dispatchTypes = append(dispatchTypes, string(t))
		}
	}

	q := gdb.Model(&models.ProductionLog{}).
		Select(`production_log.report_number, production_log.process_type,
			assembly_part.part_designation, assembly_part.name AS part_name,
			production_log.processed_qty, production_log.date_processed,
			project.project_number,
			COALESCE(building.designation, '') AS building,
			production_log.processing_team AS team`).
		Joins("JOIN assembly_part ON assembly_part.id = production_log.assembly_part_id").
		Joins("JOIN project ON project.id = assembly_part.project_id").
		Joins("LEFT JOIN building ON building.id = assembly_part.building_id").
		Where("production_log.report_number <> ''").
		Where("production_log.process_type IN ?", dispatchTypes)

	if projectID != 0 {
		q = q.Where("assembly_part.project_id = ?", projectID)
	}
	if process != "" {
		q = q.Where("production_log.process_type = ?", string(process))
	}
	if reportNumber != "" {
		q = q.Where("production_log.report_number = ?", reportNumber)
	}

	var rows []models.DispatchReportRow
	err := q.Order("production_log.report_number ASC, production_log.id ASC").Scan(&rows).Error
	return rows, err
}

// GetDispatchReports godoc
// @Summary      List dispatch report entries
// @Description  Production logs of dispatch process types that carry a
// @Description  report number, joined with part and project details.
// @Tags         dispatch
// @Produce      json
// @Param        project_id     query  int     false  "Filter by project"
// @Param        process_type   query  string  false  "Filter by dispatch process type"
// @Param        report_number  query  string  false  "Filter by exact report number"
// @Success      200  {array}  models.DispatchReportRow
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/dispatch/reports [get]
func GetDispatchReports(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projectID uint
		if projectStr := c.Query("project_id"); projectStr != "" {
			parsed, err := strconv.ParseUint(projectStr, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
				return
			}
			projectID = uint(parsed)
		}

		var process ledger.ProcessType
		if processStr := c.Query("process_type"); processStr != "" {
			parsed, err := ledger.ParseProcessType(processStr)
			if err != nil {
				respondLedgerError(c, err)
				return
			}
			if !parsed.IsDispatch() {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("%s is not a dispatch process type", parsed)})
				return
			}
			process = parsed
		}

		rows, err := dispatchReportRows(gdb.WithContext(c.Request.Context()), projectID, process, c.Query("report_number"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching dispatch reports"})
			return
		}

		c.JSON(http.StatusOK, rows)
	}
}

// GetDispatchReportPDF godoc
// @Summary      Download one dispatch report as PDF
// @Tags         dispatch
// @Produce      application/pdf
// @Param        report_number  query  string  true  "Report number"
// @Success      200  {file}    file  "PDF document"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/dispatch/reports/pdf [get]
func GetDispatchReportPDF(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reportNumber := c.Query("report_number")
		if reportNumber == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "report_number is required"})
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		rows, err := dispatchReportRows(gdb.WithContext(ctx), 0, "", reportNumber)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching dispatch report"})
			return
		}
		if len(rows) == 0 {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Dispatch report not found"})
			return
		}

		head := rows[0]

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.CellFormat(0, 10, "Dispatch Report", "", 1, "C", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 7, "Report Number:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, head.ReportNumber, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 7, "Dispatch Type:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, head.ProcessType, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 7, "Project:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, head.ProjectNumber, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 7, "Date:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, head.DateProcessed.Format("2006-01-02"), "", 1, "L", false, 0, "")
		pdf.Ln(6)

		pdf.SetFillColor(230, 230, 230)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 8, "Part Designation", "1", 0, "L", true, 0, "")
		pdf.CellFormat(65, 8, "Name", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Building", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 8, "Team", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		totalQty := 0
		for _, row := range rows {
			pdf.CellFormat(60, 8, row.PartDesignation, "1", 0, "L", false, 0, "")
			pdf.CellFormat(65, 8, row.PartName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, row.Building, "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, strconv.Itoa(row.ProcessedQty), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, row.Team, "1", 1, "C", false, 0, "")
			totalQty += row.ProcessedQty
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(totalQty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, "", "1", 1, "C", false, 0, "")

		pdf.Ln(10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.pdf\"", reportNumber))
		c.Header("Content-Type", "application/pdf")
		if err := pdf.Output(c.Writer); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}
