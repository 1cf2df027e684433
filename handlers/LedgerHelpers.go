package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"fabtrack/ledger"
	"fabtrack/models"

	"github.com/gin-gonic/gin"
)

// actingUserFromSession resolves the acting user from the session ID in the
// Authorization header. Routes behind ValidateSessionMiddleware always have
// a valid session here.
func actingUserFromSession(c *gin.Context, db *sql.DB) (ledger.ActingUser, error) {
	sessionID := c.GetHeader("Authorization")
	session, userName, err := GetSessionDetails(db, sessionID)
	if err != nil {
		return ledger.ActingUser{}, err
	}
	return ledger.ActingUser{
		ID:   session.UserID,
		Name: userName,
		Host: session.HostName,
		IP:   session.IPAddress,
	}, nil
}

// respondLedgerError maps ledger error types onto HTTP statuses:
// validation 400, unknown part 404, commit-time concurrency conflict 409,
// ledger/declared-quantity contradiction 500.
func respondLedgerError(c *gin.Context, err error) {
	var (
		validation  *ledger.ValidationError
		notFound    *ledger.NotFoundError
		concurrency *ledger.ConcurrencyError
		integrity   *ledger.IntegrityFault
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validation.Reason})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.As(err, &concurrency):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.As(err, &integrity):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Details: err.Error()})
	}
}
