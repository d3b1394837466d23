package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	GetPeriodSummary(w http.ResponseWriter, r *http.Request)

	// Runs
	RunPayroll(w http.ResponseWriter, r *http.Request)
	RecalculatePayslip(w http.ResponseWriter, r *http.Request)

	// Payslips
	GetPayslip(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)

	// Salary structures
	CreateSalaryStructure(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreatePeriod(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Pay period created", result)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPeriod(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	status, err := payroll.ParsePeriodStatus(r.URL.Query().Get("status"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListPeriods(r.Context(), middleware.CompanyID(r.Context()), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPeriodSummary(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) RunPayroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.RunPayroll(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, payroll.ErrRunFailed) {
			response.UnprocessableWithData(w, "PAYROLL_RUN_FAILED", "No payslips could be created", result)
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run completed", result)
}

func (h *payrollHandlerImpl) RecalculatePayslip(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.RecalculatePayslip(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip recalculated", result)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPayslip(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListPayslips(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== SALARY STRUCTURES ==========

func (h *payrollHandlerImpl) CreateSalaryStructure(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateSalaryStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.payrollService.CreateSalaryStructure(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary structure created", result)
}
