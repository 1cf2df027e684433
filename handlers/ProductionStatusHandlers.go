package handlers

import (
	"math"
	"net/http"
	"strconv"

	"fabtrack/ledger"
	"fabtrack/models"
	"fabtrack/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type partProcessTotal struct {
	AssemblyPartID uint   `gorm:"column:assembly_part_id"`
	ProcessType    string `gorm:"column:process_type"`
	Total          int    `gorm:"column:total"`
}

// processPercentage returns the completion percentage of a process,
// capped at 100 so over-logged data never reports more than complete.
func processPercentage(qty, quantity int) int {
	if quantity <= 0 {
		return 0
	}
	pct := int(math.Round(float64(qty) / float64(quantity) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// GetProductionStatus godoc
// @Summary      Production status matrix for a project
// @Description  One row per part with processed quantity and completion
// @Description  percentage for every process type.
// @Tags         production
// @Produce      json
// @Param        project_id   query  int  true   "Project ID"
// @Param        building_id  query  int  false  "Filter by building"
// @Success      200  {array}  models.PartStatusRow
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/production/status [get]
func GetProductionStatus(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q := gdb.WithContext(ctx).
			Preload("Project").
			Preload("Building").
			Where("project_id = ?", uint(projectID))
		if buildingStr := c.Query("building_id"); buildingStr != "" {
			buildingID, convErr := strconv.ParseUint(buildingStr, 10, 32)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid building_id"})
				return
			}
			q = q.Where("building_id = ?", uint(buildingID))
		}

		var parts []models.AssemblyPart
		if err := q.Order("part_designation ASC").Find(&parts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching parts"})
			return
		}

		var totals []partProcessTotal
		err = gdb.WithContext(ctx).
			Model(&models.ProductionLog{}).
			Select("production_log.assembly_part_id, production_log.process_type, COALESCE(SUM(production_log.processed_qty), 0) AS total").
			Joins("JOIN assembly_part ON assembly_part.id = production_log.assembly_part_id").
			Where("assembly_part.project_id = ?", uint(projectID)).
			Group("production_log.assembly_part_id, production_log.process_type").
			Scan(&totals).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error aggregating production logs"})
			return
		}

		processed := make(map[uint]map[string]int, len(parts))
		for _, t := range totals {
			if processed[t.AssemblyPartID] == nil {
				processed[t.AssemblyPartID] = map[string]int{}
			}
			processed[t.AssemblyPartID][t.ProcessType] = t.Total
		}

		rows := make([]models.PartStatusRow, 0, len(parts))
		for _, part := range parts {
			row := models.PartStatusRow{
				ID:              part.ID,
				PartDesignation: part.PartDesignation,
				AssemblyMark:    part.AssemblyMark,
				PartMark:        part.PartMark,
				Name:            part.Name,
				Quantity:        part.Quantity,
				Status:          part.Status,
				CurrentProcess:  part.CurrentProcess,
				Processes:       map[string]models.PartProcessStatus{},
			}
			if part.Project != nil {
				row.ProjectNumber = part.Project.ProjectNumber
			}
			if part.Building != nil {
				row.Building = part.Building.Designation
			}

			for _, process := range ledger.AllProcessTypes() {
				qty := processed[part.ID][string(process)]
				pct := processPercentage(qty, part.Quantity)
				row.Processes[string(process)] = models.PartProcessStatus{
					Processed:  qty,
					Percentage: pct,
				}
			}
			rows = append(rows, row)
		}

		c.JSON(http.StatusOK, rows)
	}
}

// GetProductionStats godoc
// @Summary      Aggregate production statistics for a project
// @Description  Declared vs processed quantity and tonnage per process type,
// @Description  plus part status counts.
// @Tags         production
// @Produce      json
// @Param        project_id  query  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/production/stats [get]
func GetProductionStats(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var declared struct {
			Parts    int64   `gorm:"column:parts"`
			Quantity int     `gorm:"column:quantity"`
			Tonnage  float64 `gorm:"column:tonnage"`
		}
		err = gdb.WithContext(ctx).
			Model(&models.AssemblyPart{}).
			Select("COUNT(*) AS parts, COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(net_weight_total), 0) / 1000.0 AS tonnage").
			Where("project_id = ?", uint(projectID)).
			Scan(&declared).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error aggregating parts"})
			return
		}

		type processStat struct {
			ProcessType string  `gorm:"column:process_type" json:"process_type"`
			Quantity    int     `gorm:"column:quantity" json:"quantity"`
			Tonnage     float64 `gorm:"column:tonnage" json:"tonnage"`
		}
		var perProcess []processStat
		err = gdb.WithContext(ctx).
			Model(&models.ProductionLog{}).
			Select("production_log.process_type, COALESCE(SUM(production_log.processed_qty), 0) AS quantity, COALESCE(SUM(production_log.processed_qty * assembly_part.single_part_weight), 0) / 1000.0 AS tonnage").
			Joins("JOIN assembly_part ON assembly_part.id = production_log.assembly_part_id").
			Where("assembly_part.project_id = ?", uint(projectID)).
			Group("production_log.process_type").
			Scan(&perProcess).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error aggregating production logs"})
			return
		}

		type statusCount struct {
			Status string `gorm:"column:status" json:"status"`
			Count  int64  `gorm:"column:count" json:"count"`
		}
		var statuses []statusCount
		err = gdb.WithContext(ctx).
			Model(&models.AssemblyPart{}).
			Select("status, COUNT(*) AS count").
			Where("project_id = ?", uint(projectID)).
			Group("status").
			Scan(&statuses).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error counting part statuses"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total_parts":      declared.Parts,
			"declared_qty":     declared.Quantity,
			"declared_tonnage": declared.Tonnage,
			"per_process":      perProcess,
			"status_counts":    statuses,
		})
	}
}
