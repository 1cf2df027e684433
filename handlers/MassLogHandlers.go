package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"fabtrack/ledger"
	"fabtrack/models"

	"github.com/gin-gonic/gin"
)

// MassLogProduction godoc
// @Summary      Log produced quantity for many parts in one submission
// @Description  Processes the batch sequentially with per-entry validation.
// @Description  Entries that fail are skipped and reported; the rest commit.
// @Description  Returns 201 even when some entries failed.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        batch  body  models.MassLogRequest  true  "Batch of log entries"
// @Success      201  {object}  models.MassLogResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/production/mass_log [post]
func MassLogProduction(db *sql.DB, svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MassLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}
		if len(req.Logs) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Batch must contain at least one entry"})
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

		batch := make([]ledger.LogRequest, 0, len(req.Logs))
		for _, entry := range req.Logs {
			batch = append(batch, ledger.LogRequest{
				AssemblyPartID:     entry.AssemblyPartID,
				Process:            process,
				DateProcessed:      date,
				ProcessedQty:       entry.ProcessedQty,
				ProcessingTeam:     req.ProcessingTeam,
				ProcessingLocation: req.ProcessingLocation,
				Remarks:            req.Remarks,
				ReportNumber:       entry.ReportNumber,
			})
		}

		result, err := svc.MassLog(c.Request.Context(), batch, actor)
		if err != nil {
			// Systemic store failure; per-entry rejections never land here.
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Mass log aborted", Details: err.Error()})
			return
		}

		if result.SuccessCount > 0 {
			_ = SaveActivityLog(db, models.ActivityLog{
				CreatedAt:    time.Now(),
				UserName:     actor.Name,
				HostName:     actor.Host,
				EventContext: "Production",
				IPAddress:    actor.IP,
				Description:  fmt.Sprintf("Mass log %s: %d committed, %d failed", process, result.SuccessCount, result.FailedCount),
				EventName:    "production_mass_log",
			})
		}

		c.JSON(http.StatusCreated, models.MassLogResponse{
			SuccessCount: result.SuccessCount,
			FailedCount:  result.FailedCount,
			Errors:       result.Errors,
		})
	}
}
