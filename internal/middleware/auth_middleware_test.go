package middleware

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

func setupMiddlewareTest(revocations TokenRevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret, revocations)
}

func generateTestToken(t *testing.T, userID uint, expiry time.Duration) (string, *util.Claims) {
	token, claims, err := util.GenerateToken(userID, "cook@example.com", testJWTSecret, expiry)
	require.NoError(t, err)
	return token, claims
}

func whoAmI(c *gin.Context) {
	userID, ok := GetUserID(c)
	claims, _ := GetTokenClaims(c)
	body := gin.H{"authenticated": ok, "user_id": userID}
	if claims != nil {
		body["jti"] = claims.ID
	}
	c.JSON(http.StatusOK, body)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	validToken, validClaims := generateTestToken(t, 7, time.Hour)
	expiredToken, _ := generateTestToken(t, 7, -time.Minute)
	revokedToken, revokedClaims := generateTestToken(t, 7, time.Hour)

	revocations := &stubRevocations{revoked: map[string]bool{revokedClaims.ID: true}}
	router, auth := setupMiddlewareTest(revocations)
	router.GET("/test", auth.Authenticate(), whoAmI)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"Token scheme", "Token " + validToken, http.StatusOK, ""},
		{"Bearer scheme", "Bearer " + validToken, http.StatusOK, ""},
		{"Missing header", "", http.StatusUnauthorized, "AUTH_UNAUTHORIZED"},
		{"Unknown scheme", "Basic " + validToken, http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"No token part", "Token", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"Garbage token", "Token abc.def.ghi", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"Expired token", "Token " + expiredToken, http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED"},
		{"Revoked token", "Token " + revokedToken, http.StatusUnauthorized, "AUTH_TOKEN_REVOKED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				assert.NotEmpty(t, body["detail"])
				return
			}
			assert.Equal(t, true, body["authenticated"])
			assert.Equal(t, float64(7), body["user_id"])
			assert.Equal(t, validClaims.ID, body["jti"])
		})
	}
}

func TestAuthMiddleware_RevocationLookupFailure(t *testing.T) {
	token, _ := generateTestToken(t, 1, time.Hour)
	router, auth := setupMiddlewareTest(&stubRevocations{err: stdErrors.New("redis down")})
	router.GET("/test", auth.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	validToken, _ := generateTestToken(t, 3, time.Hour)
	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.OptionalAuthenticate(), whoAmI)

	tests := []struct {
		name     string
		header   string
		wantAuth bool
	}{
		{"Valid token", "Token " + validToken, true},
		{"No header", "", false},
		{"Invalid token continues as guest", "Token nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantAuth, body["authenticated"])
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router, _ := setupMiddlewareTest(nil)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "upstream-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "upstream-id", w.Body.String())
	})
}
