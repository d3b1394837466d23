package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeService = "service"
)

var ErrInvalidTTL = errors.New("token ttl must be positive")

type Service interface {
	// GenerateAccessToken issues a token for a caller acting on behalf of one company.
	GenerateAccessToken(subject string, companyID string, ttl time.Duration) (token string, expiresAt int64, err error)
	// IssueServiceToken issues a token for internal callers such as the operator CLI.
	IssueServiceToken(companyID string, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(subject string, companyID string, ttl time.Duration) (token string, expiresAt int64, err error) {
	return j.encode(subject, companyID, TokenTypeAccess, ttl)
}

func (j *JWTService) IssueServiceToken(companyID string, ttl time.Duration) (token string, expiresAt int64, err error) {
	return j.encode("payrollctl", companyID, TokenTypeService, ttl)
}

func (j *JWTService) encode(subject, companyID, tokenType string, ttl time.Duration) (string, int64, error) {
	if ttl <= 0 {
		return "", 0, ErrInvalidTTL
	}
	now := j.now()
	expiresAt := now.Add(ttl).Unix()

	claims := map[string]interface{}{
		"sub":        subject,
		"company_id": companyID,
		"type":       tokenType,
		"iat":        now.Unix(),
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
