package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, claims AdminClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func adminClaims(expiry time.Duration) AdminClaims {
	return AdminClaims{
		Subject: "ops",
		Admin:   true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
}

func TestJWTAdminValidator(t *testing.T) {
	v := NewJWTAdminValidator(testSigningKey)

	t.Run("valid admin token", func(t *testing.T) {
		claims, err := v.ValidateAdminToken(signToken(t, adminClaims(time.Hour), testSigningKey))
		require.NoError(t, err)
		assert.Equal(t, "ops", claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := v.ValidateAdminToken(signToken(t, adminClaims(-time.Hour), testSigningKey))
		assert.EqualError(t, err, "token has expired")
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := v.ValidateAdminToken(signToken(t, adminClaims(time.Hour), "other-key"))
		assert.Error(t, err)
	})

	t.Run("missing admin claim", func(t *testing.T) {
		claims := adminClaims(time.Hour)
		claims.Admin = false
		_, err := v.ValidateAdminToken(signToken(t, claims, testSigningKey))
		assert.EqualError(t, err, "token lacks admin claim")
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := NewJWTAdminValidator(testSigningKey)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := RequireAdmin(v, logger)(next)

	t.Run("authorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/reminders/sweep", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, adminClaims(time.Hour), testSigningKey))
		w := httptest.NewRecorder()
		guarded.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/reminders/sweep", nil)
		w := httptest.NewRecorder()
		guarded.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/reminders/sweep", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		guarded.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
