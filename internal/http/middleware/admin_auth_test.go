package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminJWT(t *testing.T) {
	const secret = "test-secret"
	var sawClaims bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = AdminClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AdminJWT(secret)(next)

	t.Run("valid token passes", func(t *testing.T) {
		sawClaims = false
		req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, secret, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, sawClaims)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, secret, time.Now().Add(-time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty secret disables admin api", func(t *testing.T) {
		disabled := AdminJWT("")(next)
		req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
		rec := httptest.NewRecorder()
		disabled.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	// A different IP has its own bucket.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS([]string{"https://admin.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/admin/appointments", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unknown origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
