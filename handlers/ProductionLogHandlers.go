package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fabtrack/ledger"
	"fabtrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// CreateProductionLog godoc
// @Summary      Log produced quantity for one part and process
// @Description  Appends one production log entry. The quantity is validated
// @Description  against the part's remaining balance for the process type.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        log  body  models.ProductionLogRequest  true  "Production log entry"
// @Success      201  {object}  models.ProductionLog
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/production/log [post]
func CreateProductionLog(db *sql.DB, svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProductionLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		process, err := ledger.ParseProcessType(req.ProcessType)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		date, err := time.Parse(dateLayout, req.DateProcessed)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid date_processed, expected YYYY-MM-DD"})
			return
		}

		actor, err := actingUserFromSession(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid session"})
			return
		}

		entry, err := svc.LogProduction(c.Request.Context(), ledger.LogRequest{
			AssemblyPartID:     req.AssemblyPartID,
			Process:            process,
			DateProcessed:      date,
			ProcessedQty:       req.ProcessedQty,
			ProcessingTeam:     req.ProcessingTeam,
			ProcessingLocation: req.ProcessingLocation,
			Remarks:            req.Remarks,
			ReportNumber:       req.ReportNumber,
		}, actor)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		_ = SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     actor.Name,
			HostName:     actor.Host,
			EventContext: "Production",
			IPAddress:    actor.IP,
			Description:  fmt.Sprintf("Logged %d x %s for part ID %d", entry.ProcessedQty, entry.ProcessType, entry.AssemblyPartID),
			EventName:    "production_log_created",
		})

		c.JSON(http.StatusCreated, entry)
	}
}

// GetProductionLogs godoc
// @Summary      List production logs
// @Tags         production
// @Produce      json
// @Param        part_id       query  int     false  "Filter by assembly part"
// @Param        process_type  query  string  false  "Filter by process type"
// @Param        project_id    query  int     false  "Filter by project"
// @Success      200  {array}  models.ProductionLog
// @Router       /api/production/logs [get]
func GetProductionLogs(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := gdb.WithContext(c.Request.Context()).
			Model(&models.ProductionLog{}).
			Preload("AssemblyPart").
			Preload("AssemblyPart.Project").
			Preload("AssemblyPart.Building")

		if partStr := c.Query("part_id"); partStr != "" {
			partID, err := strconv.ParseUint(partStr, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid part_id"})
				return
			}
			q = q.Where("assembly_part_id = ?", uint(partID))
		}
		if processStr := c.Query("process_type"); processStr != "" {
			process, err := ledger.ParseProcessType(processStr)
			if err != nil {
				respondLedgerError(c, err)
				return
			}
			q = q.Where("process_type = ?", string(process))
		}
		if projectStr := c.Query("project_id"); projectStr != "" {
			projectID, err := strconv.ParseUint(projectStr, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid project_id"})
				return
			}
			q = q.Joins("JOIN assembly_part ON assembly_part.id = production_log.assembly_part_id").
				Where("assembly_part.project_id = ?", uint(projectID))
		}

		var logs []models.ProductionLog
		if err := q.Order("production_log.created_at DESC, production_log.id DESC").Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching production logs"})
			return
		}

		c.JSON(http.StatusOK, logs)
	}
}

// GetProcessBalance godoc
// @Summary      Get processed/remaining balance for one part and process
// @Tags         production
// @Produce      json
// @Param        part_id       path   int     true  "Assembly part ID"
// @Param        process_type  query  string  true  "Process type"
// @Success      200  {object}  models.BalanceResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/production/balance/{part_id} [get]
func GetProcessBalance(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		partID, err := strconv.ParseUint(c.Param("part_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid part_id"})
			return
		}

		process, err := ledger.ParseProcessType(c.Query("process_type"))
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		balance, err := svc.Balance(c.Request.Context(), uint(partID), process)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.BalanceResponse{
			AssemblyPartID: balance.PartID,
			ProcessType:    string(balance.Process),
			TotalQty:       balance.TotalQty,
			Processed:      balance.ProcessedQty,
			Remaining:      balance.RemainingQty,
		})
	}
}
