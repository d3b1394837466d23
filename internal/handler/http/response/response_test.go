package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "code", Message: "code is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped not found", fmt.Errorf("load: %w", payroll.ErrPeriodNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate code", compensation.ErrRuleCodeExists, http.StatusConflict, "CONFLICT"},
		{"not draft", payroll.ErrPeriodNotDraft, http.StatusConflict, "CONFLICT"},
		{"no employees", payroll.ErrNoActiveEmployees, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HandleError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleError(rr, validator.ValidationErrors{
		{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"},
		{Field: "name", Message: "name is required"},
	})

	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"start_date": "start_date must be in YYYY-MM-DD format",
		"name":       "name is required",
	}, body.Error.Details)
}

func TestUnprocessableWithData(t *testing.T) {
	rr := httptest.NewRecorder()
	UnprocessableWithData(rr, "PAYROLL_RUN_FAILED", "No payslips could be created", map[string]int{"payslips_created": 0})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"success":false,"data":{"payslips_created":0},"error":{"code":"PAYROLL_RUN_FAILED","message":"No payslips could be created"}}`, rr.Body.String())
}
