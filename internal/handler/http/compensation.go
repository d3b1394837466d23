package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CompensationHandler interface {
	// Rules
	CreateRule(w http.ResponseWriter, r *http.Request)
	GetRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	UpdateRule(w http.ResponseWriter, r *http.Request)

	// Assignments
	AssignRule(w http.ResponseWriter, r *http.Request)
	ListEmployeeAssignments(w http.ResponseWriter, r *http.Request)
	UpdateAssignment(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.CompensationService
}

func NewCompensationHandler(compensationService compensation.CompensationService) CompensationHandler {
	return &compensationHandlerImpl{compensationService: compensationService}
}

// ========== RULES ==========

func (h *compensationHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req compensation.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.compensationService.CreateRule(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation rule created", result)
}

func (h *compensationHandlerImpl) GetRule(w http.ResponseWriter, r *http.Request) {
	result, err := h.compensationService.GetRule(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	filter, err := compensation.ParseRuleFilter(r.URL.Query().Get("type"), r.URL.Query().Get("active_only"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.compensationService.ListRules(r.Context(), middleware.CompanyID(r.Context()), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req compensation.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.compensationService.UpdateRule(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensation rule updated", result)
}

// ========== ASSIGNMENTS ==========

func (h *compensationHandlerImpl) AssignRule(w http.ResponseWriter, r *http.Request) {
	var req compensation.AssignRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.compensationService.AssignRule(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Rule assigned", result)
}

func (h *compensationHandlerImpl) ListEmployeeAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.compensationService.ListEmployeeAssignments(r.Context(), middleware.CompanyID(r.Context()), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *compensationHandlerImpl) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var req compensation.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.compensationService.UpdateAssignment(r.Context(), middleware.CompanyID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Rule assignment updated", result)
}
