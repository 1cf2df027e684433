package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"fabtrack/ledger"
	"fabtrack/models"

	"github.com/gin-gonic/gin"
)

// GenerateReportNumber godoc
// @Summary      Generate the next dispatch report number for a part
// @Description  Computes the next sequential report number for the part and
// @Description  dispatch type without reserving it. The number only becomes
// @Description  taken once a production log commits with it.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request  body  models.ReportNumberRequest  true  "Part and dispatch type code"
// @Success      200  {object}  models.ReportNumberResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/production/report_number [post]
func GenerateReportNumber(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReportNumberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
			return
		}

		number, err := svc.GenerateReportNumber(c.Request.Context(), req.AssemblyPartID, req.DispatchType)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ReportNumberResponse{ReportNumber: number})
	}
}

// GetSelectableProcessTypes godoc
// @Summary      List process types selectable for a set of parts
// @Description  Galvanization stages are excluded when any selected part
// @Description  belongs to a project without galvanization in scope.
// @Tags         production
// @Produce      json
// @Param        part_ids  query  string  false  "Comma-separated assembly part IDs"
// @Success      200  {array}  string
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/production/process_types [get]
func GetSelectableProcessTypes(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var partIDs []uint
		if raw := strings.TrimSpace(c.Query("part_ids")); raw != "" {
			for _, piece := range strings.Split(raw, ",") {
				id, err := strconv.ParseUint(strings.TrimSpace(piece), 10, 32)
				if err != nil {
					c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid part_ids"})
					return
				}
				partIDs = append(partIDs, uint(id))
			}
		}

		types, err := svc.SelectableProcessTypes(c.Request.Context(), partIDs)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}

		c.JSON(http.StatusOK, names)
	}
}
