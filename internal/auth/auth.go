// Package auth issues and checks staff login tokens.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/shop-admin/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")

	// ErrInvalidRegistration wraps every registration validation failure.
	ErrInvalidRegistration = errors.New("invalid registration")
)

const (
	issuer = "shop-admin"

	minPasswordLength = 8
	minUsernameLength = 3
	maxUsernameLength = 50
	refreshTokenBytes = 32
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Service signs and verifies staff tokens and hashes passwords.
type Service struct {
	secret   []byte
	tokenExp time.Duration
	now      func() time.Time
}

// NewService creates an authentication service signing with secret.
// A non-positive tokenExp defaults to one working day.
func NewService(secret string, tokenExp time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), tokenExp: tokenExp, now: time.Now}, nil
}

// HashPassword returns the bcrypt hash stored on the staff record.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs an HS256 access token carrying the staff id, username and role.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := models.Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateRefreshToken returns an opaque random token.
func (s *Service) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// IssueTokens builds the login response for user: an access token plus a refresh token.
func (s *Service) IssueTokens(user *models.User) (models.LoginResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return models.LoginResponse{}, err
	}
	refresh, err := s.GenerateRefreshToken()
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{Token: token, RefreshToken: refresh, User: *user}, nil
}

// ValidateToken parses tokenString (with or without the Bearer prefix) and
// returns its claims. Expired tokens yield ErrExpiredToken, anything else ErrInvalidToken.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid || claims.UserID == "" || !models.IsValidRole(claims.Role):
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" Authorization header.
func (s *Service) ExtractTokenFromHeader(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || strings.ContainsRune(token, ' ') {
		return "", ErrInvalidToken
	}
	return token, nil
}

// ValidateRegistration checks a staff registration request field by field
// and returns the first violation wrapped in ErrInvalidRegistration.
func (s *Service) ValidateRegistration(req models.RegisterRequest) error {
	checks := []error{
		s.ValidateUsername(req.Username),
		s.ValidateEmail(req.Email),
		s.ValidatePassword(req.Password),
	}
	if !models.IsValidRole(req.Role) {
		checks = append(checks, errors.New("invalid role"))
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRegistration, err)
		}
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// ValidateEmail accepts a bare address whose domain contains a dot.
func (s *Service) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email format")
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername allows 3 to 50 letters, digits, dots, underscores and dashes.
func (s *Service) ValidateUsername(username string) error {
	switch {
	case len(username) < minUsernameLength:
		return fmt.Errorf("username must be at least %d characters long", minUsernameLength)
	case len(username) > maxUsernameLength:
		return fmt.Errorf("username must be less than %d characters", maxUsernameLength)
	case !usernamePattern.MatchString(username):
		return errors.New("username may only contain letters, digits, '.', '_' and '-'")
	}
	return nil
}
