package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "company-1", time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
	assert.Equal(t, "user-1", decoded.Subject())
}

func TestJWTService_ServiceToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, _, err := svc.IssueServiceToken("company-1", time.Minute)
	require.NoError(t, err)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	typ, ok := decoded.Get("type")
	require.True(t, ok)
	assert.Equal(t, TokenTypeService, typ)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewJWTService("secret-a").GenerateAccessToken("user-1", "company-1", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").JWTAuth().Decode(token)
	assert.Error(t, err)
}

func TestJWTService_InvalidTTL(t *testing.T) {
	_, _, err := NewJWTService("s").IssueServiceToken("company-1", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
