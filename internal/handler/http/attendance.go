package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

// maxImportSize caps punch import uploads.
const maxImportSize = 10 << 20

type AttendanceHandler interface {
	Evaluate(w http.ResponseWriter, r *http.Request)
	EvaluateDay(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, clk clock.Clock) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService, clock: clk}
}

// Evaluate implements AttendanceHandler.
func (h *attendanceHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req attendance.EvaluateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	date, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.attendanceService.EvaluateAttendance(r.Context(), middleware.CompanyID(r.Context()), req.EmployeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance evaluated", attendance.NewRecordResponse(rec))
}

// EvaluateDay implements AttendanceHandler.
func (h *attendanceHandlerImpl) EvaluateDay(w http.ResponseWriter, r *http.Request) {
	var req attendance.EvaluateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	date, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.EvaluateDay(r.Context(), middleware.CompanyID(r.Context()), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Import implements AttendanceHandler.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportSize)
	defer body.Close()

	result, err := h.attendanceService.ImportPunches(r.Context(), middleware.CompanyID(r.Context()), body)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punches imported", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := attendance.ParseAttendanceFilter(q.Get("employee_id"), q.Get("from"), q.Get("to"), clock.Today(h.clock))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.ListAttendance(r.Context(), middleware.CompanyID(r.Context()), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, attendance.NewRecordResponse(rec))
	}
	response.Success(w, resp)
}
