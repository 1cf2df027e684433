package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabtrack/ledger"

	"github.com/gin-gonic/gin"
)

func TestRespondLedgerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation maps to 400",
			err:        &ledger.ValidationError{Reason: "quantity exceeds remaining"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found maps to 404",
			err:        &ledger.NotFoundError{Resource: "assembly part", ID: 7},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "concurrency conflict maps to 409",
			err:        &ledger.ConcurrencyError{PartID: 7, Process: ledger.ProcessWelding},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "integrity fault maps to 500",
			err:        &ledger.IntegrityFault{PartID: 7, Process: ledger.ProcessWelding, Processed: 12, Declared: 10},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "wrapped taxonomy errors unwrap",
			err:        errors.Join(errors.New("commit failed"), &ledger.ConcurrencyError{PartID: 7}),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown errors map to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondLedgerError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
