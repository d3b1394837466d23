package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	AppEnv         string
	Version        string
}

func NewRouter(JWTService jwt.Service, attendanceHandler AttendanceHandler, compensationHandler CompensationHandler, payrollHandler PayrollHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.AppEnv != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.AppEnv),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payroll-engine\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication and a company scope
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.List)
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/evaluate", attendanceHandler.Evaluate)
				r.With(chiMiddleware.AllowContentType("application/json")).Post("/evaluate-day", attendanceHandler.EvaluateDay)
				r.With(chiMiddleware.AllowContentType("text/csv", "application/octet-stream")).Post("/import", attendanceHandler.Import)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/rules", func(r chi.Router) {
					r.Get("/", compensationHandler.ListRules)
					r.Post("/", compensationHandler.CreateRule)
					r.Get("/{id}", compensationHandler.GetRule)
					r.Put("/{id}", compensationHandler.UpdateRule)
				})

				r.Route("/employees/{employeeId}", func(r chi.Router) {
					r.Get("/assignments", compensationHandler.ListEmployeeAssignments)
					r.Post("/assignments", compensationHandler.AssignRule)
					r.Post("/salary-structures", payrollHandler.CreateSalaryStructure)
				})
				r.Put("/assignments/{id}", compensationHandler.UpdateAssignment)

				r.Route("/periods", func(r chi.Router) {
					r.Get("/", payrollHandler.ListPeriods)
					r.Post("/", payrollHandler.CreatePeriod)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetPeriod)
						r.Post("/run", payrollHandler.RunPayroll)
						r.Get("/summary", payrollHandler.GetPeriodSummary)
						r.Get("/payslips", payrollHandler.ListPayslips)
					})
				})

				r.Route("/payslips/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayslip)
					r.Post("/recalculate", payrollHandler.RecalculatePayslip)
				})
			})
		})
	})

	return r
}
