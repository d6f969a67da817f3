package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AssetDocs/legacylocker/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, services.AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestRouter() (*gin.Engine, *uuid.UUID) {
	var seen uuid.UUID
	router := gin.New()
	verifier := services.NewTokenVerifier(testJWTSecret)
	router.GET("/protected", AuthMiddleware(verifier), func(c *gin.Context) {
		id, _ := services.UserIDFromContext(c.Request.Context())
		seen = id
		c.Status(http.StatusNoContent)
	})
	return router, &seen
}

func TestAuthMiddleware(t *testing.T) {
	router, seen := authTestRouter()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, userID.String()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, *seen)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	router, _ := authTestRouter()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "some-other-secret", uuid.New().String())},
		{"subject not a uuid", "Bearer " + signToken(t, testJWTSecret, "admin")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router, _ := authTestRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, services.AccessClaims{
		UserID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func internalTestRouter(secret string) *gin.Engine {
	router := gin.New()
	router.POST("/internal/scan", InternalSecretMiddleware(secret), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return router
}

func TestInternalSecretMiddleware(t *testing.T) {
	router := internalTestRouter("scan-secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/scan", nil)
	req.Header.Set("x-internal-secret", "scan-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/scan", nil)
	req.Header.Set("x-internal-secret", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/scan", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInternalSecretMiddleware_EmptySecretAlwaysRejects(t *testing.T) {
	router := internalTestRouter("")

	req := httptest.NewRequest(http.MethodPost, "/internal/scan", nil)
	req.Header.Set("x-internal-secret", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
