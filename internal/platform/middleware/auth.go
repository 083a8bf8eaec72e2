package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the claims expected on operational bearer tokens. Only
// platform operators hold these; signer-facing endpoints are unauthenticated.
type AdminClaims struct {
	Subject string `json:"sub"`
	Admin   bool   `json:"admin"`
	jwt.RegisteredClaims
}

// AdminValidator validates operational bearer tokens.
type AdminValidator interface {
	ValidateAdminToken(tokenString string) (*AdminClaims, error)
}

// JWTAdminValidator validates HMAC-signed admin tokens.
type JWTAdminValidator struct {
	signingKey []byte
}

func NewJWTAdminValidator(signingKey string) *JWTAdminValidator {
	return &JWTAdminValidator{signingKey: []byte(signingKey)}
}

func (v *JWTAdminValidator) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Admin {
		return nil, errors.New("token lacks admin claim")
	}
	return claims, nil
}

// RequireAdmin guards operational endpoints (reminder sweep, recomputes) with a
// bearer token carrying the admin claim.
func RequireAdmin(validator AdminValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			if _, err := validator.ValidateAdminToken(token); err != nil {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
