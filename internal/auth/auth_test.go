package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(testSecret, time.Hour)
	require.NoError(t, err)
	return service
}

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     models.RoleTechnician,
	}
}

func TestNewService(t *testing.T) {
	service, err := NewService(testSecret, 0)
	assert.NoError(t, err)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	_, err = NewService("", time.Hour)
	assert.Error(t, err)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidateToken(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateTokenRejects(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	t.Run("other secret", func(t *testing.T) {
		other, err := NewService("another-secret", time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)
		_, err = service.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := service.GenerateToken(user)
		require.NoError(t, err)
		service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { service.now = time.Now }()
		_, err = service.ValidateToken(token)
		assert.Equal(t, ErrExpiredToken, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := models.Claims{
			UserID: "x",
			Role:   models.Role("owner"),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = service.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, models.Claims{UserID: "x"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestService_TokenExpiration(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	now := time.Now().Unix()
	assert.Greater(t, claims.ExpiresAt.Unix(), now)
	assert.LessOrEqual(t, claims.ExpiresAt.Unix(), now+int64(service.tokenExp.Seconds())+1)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer valid-token", "valid-token", false},
		{"", "", true},
		{"InvalidFormat", "", true},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"Bearer a b", "", true},
	}
	for _, tt := range tests {
		got, err := service.ExtractTokenFromHeader(tt.header)
		if tt.wantErr {
			assert.Equal(t, ErrInvalidToken, err, tt.header)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestService_Validators(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("validpassword123"))
	assert.ErrorContains(t, service.ValidatePassword("short"), "at least 8 characters")

	for _, email := range []string{"test@example.com", "tech.one@shop.mx"} {
		assert.NoError(t, service.ValidateEmail(email), email)
	}
	for _, email := range []string{"testexample.com", "test@", "test", "Test <t@example.com>", "a@localhost"} {
		assert.ErrorContains(t, service.ValidateEmail(email), "invalid email format", email)
	}

	assert.NoError(t, service.ValidateUsername("testuser"))
	assert.ErrorContains(t, service.ValidateUsername("ab"), "at least 3 characters")
	assert.ErrorContains(t, service.ValidateUsername(strings.Repeat("a", 51)), "less than 50 characters")
	assert.NoError(t, service.ValidateUsername("tech.one_2-b"))
	assert.ErrorContains(t, service.ValidateUsername("tech one"), "may only contain")
}

func TestService_ValidateRegistration(t *testing.T) {
	service := newTestService(t)
	valid := models.RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "password123",
		Role:     models.RoleTechnician,
	}
	require.NoError(t, service.ValidateRegistration(valid))

	tests := []struct {
		name    string
		mutate  func(*models.RegisterRequest)
		message string
	}{
		{"short username", func(r *models.RegisterRequest) { r.Username = "ab" }, "at least 3 characters"},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "nope" }, "invalid email format"},
		{"short password", func(r *models.RegisterRequest) { r.Password = "short" }, "at least 8 characters"},
		{"unknown role", func(r *models.RegisterRequest) { r.Role = "owner" }, "invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := service.ValidateRegistration(req)
			assert.ErrorIs(t, err, ErrInvalidRegistration)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestService_IssueTokens(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	resp, err := service.IssueTokens(user)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.Token, resp.RefreshToken)
	assert.Equal(t, user.Username, resp.User.Username)

	claims, err := service.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateRefreshToken()
	assert.NoError(t, err)
	assert.Len(t, token, 44)
}
