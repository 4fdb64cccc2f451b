// Package middleware holds the HTTP middleware shared by the admin API.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/auth"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

type contextKey string

// UserContextKey holds the *models.Claims of the authenticated staff member.
const UserContextKey contextKey = "user"

// publicPaths are served without a token regardless of method.
var publicPaths = map[string]bool{
	"/api/auth/login": true,
	"/health":         true,
}

// optionalAuthPaths accept anonymous requests but still authenticate a
// caller that sends a token, so handlers can tell the two apart.
var optionalAuthPaths = map[string]bool{
	"/api/auth/register": true,
}

// AuthMiddleware checks staff tokens and permissions.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and stores the claims and the
// acting username on the request context. Public paths pass through untouched.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" && optionalAuthPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		if header == "" {
			deny(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		token, err := m.authService.ExtractTokenFromHeader(header)
		if err != nil {
			deny(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		claims, err := m.authService.ValidateToken(token)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			deny(w, http.StatusUnauthorized, "Token expired")
			return
		case err != nil:
			deny(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		ctx = appointments.WithActor(ctx, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission rejects staff whose role does not grant action.
func (m *AuthMiddleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "User context not found")
				return
			}
			if !claims.Role.HasPermission(action) {
				deny(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// shouldSkipAuth reports whether a request is public. Besides login and
// health, customers may GET a single well-formed tracking code.
func shouldSkipAuth(method, path string) bool {
	if publicPaths[path] {
		return true
	}
	if method != http.MethodGet {
		return false
	}
	code, ok := strings.CutPrefix(path, "/api/tracking/")
	return ok && tracking.ValidateCode(code)
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
