package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/auth"
	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.Service) {
	t.Helper()
	authService, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthMiddleware(authService), authService
}

func tokenFor(t *testing.T, authService *auth.Service, username string, role models.Role) string {
	t.Helper()
	token, err := authService.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

// serve runs h and reports whether the inner handler was reached.
func serve(h func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	w := httptest.NewRecorder()
	h(inner).ServeHTTP(w, req)
	return w, called
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	middleware, authService := newTestMiddleware(t)

	t.Run("valid token", func(t *testing.T) {
		token := tokenFor(t, authService, "testuser", models.RoleManager)
		req := httptest.NewRequest("GET", "/api/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		var claims *models.Claims
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			claims, ok = GetUserFromContext(r.Context())
			assert.True(t, ok)
		})
		w := httptest.NewRecorder()
		middleware.Authenticate(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, claims)
		assert.Equal(t, "testuser", claims.Username)
		assert.Equal(t, models.RoleManager, claims.Role)
	})

	t.Run("valid token sets actor", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, "tech1", models.RoleTechnician))

		var actor string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor = appointments.ActorFromContext(r.Context())
		})
		middleware.Authenticate(handler).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "tech1", actor)
	})

	t.Run("registration is open but reads a token when sent", func(t *testing.T) {
		w, called := serve(middleware.Authenticate, httptest.NewRequest("POST", "/api/auth/register", nil))
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest("POST", "/api/auth/register", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, "boss", models.RoleAdmin))
		var claims *models.Claims
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ = GetUserFromContext(r.Context())
		})
		middleware.Authenticate(handler).ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, claims)
		assert.Equal(t, "boss", claims.Username)

		req = httptest.NewRequest("POST", "/api/auth/register", nil)
		req.Header.Set("Authorization", "Bearer forged")
		w, called = serve(middleware.Authenticate, req)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejection body is JSON", func(t *testing.T) {
		w, _ := serve(middleware.Authenticate, httptest.NewRequest("GET", "/api/appointments", nil))
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Authorization header required"}`, w.Body.String())
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing authorization header", ""},
		{"invalid token", "Bearer invalid-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/appointments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w, called := serve(middleware.Authenticate, req)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	t.Run("token from another secret", func(t *testing.T) {
		other, err := auth.NewService("other-secret", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/api/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, "x", models.RoleAdmin))
		w, called := serve(middleware.Authenticate, req)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestShouldSkipAuth(t *testing.T) {
	tests := []struct {
		method, path string
		expected     bool
	}{
		{"POST", "/api/auth/login", true},
		{"POST", "/api/auth/register", false},
		{"GET", "/health", true},
		{"GET", "/api/tracking/MC-2026-ABC123", true},
		{"GET", "/api/tracking/MC-2026-abc123", false},
		{"GET", "/api/tracking/MC-2026-ABC123/status", false},
		{"PUT", "/api/tracking/MC-2026-ABC123/status", false},
		{"GET", "/api/tracking/stats", false},
		{"GET", "/api/auth/profile", false},
		{"GET", "/api/appointments", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldSkipAuth(tt.method, tt.path))
		})
	}
}

func TestAuthMiddleware_RequirePermission(t *testing.T) {
	middleware, authService := newTestMiddleware(t)

	tests := []struct {
		name     string
		role     models.Role
		action   string
		expected int
	}{
		{"admin importing tracking codes", models.RoleAdmin, models.ActionImportTracking, http.StatusOK},
		{"manager importing tracking codes", models.RoleManager, models.ActionImportTracking, http.StatusForbidden},
		{"technician updating costs", models.RoleTechnician, models.ActionUpdateCosts, http.StatusOK},
		{"technician viewing analytics", models.RoleTechnician, models.ActionViewAnalytics, http.StatusForbidden},
		{"viewer viewing appointments", models.RoleViewer, models.ActionViewAppointments, http.StatusOK},
		{"viewer updating status", models.RoleViewer, models.ActionUpdateStatus, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/appointments", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, "user", tt.role))

			chain := func(next http.Handler) http.Handler {
				return middleware.Authenticate(middleware.RequirePermission(tt.action)(next))
			}
			w, called := serve(chain, req)
			assert.Equal(t, tt.expected, w.Code)
			assert.Equal(t, tt.expected == http.StatusOK, called)
		})
	}

	t.Run("no user in context", func(t *testing.T) {
		w, called := serve(middleware.RequirePermission(models.ActionViewAppointments), httptest.NewRequest("GET", "/", nil))
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{
		UserID:   "test-id",
		Username: "testuser",
		Role:     models.RoleAdmin,
	}

	ctx := context.WithValue(context.Background(), UserContextKey, claims)
	retrievedClaims, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims.UserID, retrievedClaims.UserID)
	assert.Equal(t, claims.Username, retrievedClaims.Username)
	assert.Equal(t, claims.Role, retrievedClaims.Role)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}
