package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type companyKey struct{}

// RequireCompany copies the token's company_id claim into the request context. Every
// handler behind it is scoped to that company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || !validator.IsValidUUID(companyID) {
			response.Forbidden(w, "Company ID is required")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCompanyID(r.Context(), companyID)))
	})
}

func WithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyKey{}, companyID)
}

// CompanyID returns the company set by RequireCompany, or "" outside it.
func CompanyID(ctx context.Context) string {
	id, _ := ctx.Value(companyKey{}).(string)
	return id
}
