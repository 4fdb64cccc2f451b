package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/auth"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/middleware"
	"github.com/ukydev/shop-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles staff authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	log            logrus.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, log logrus.FieldLogger) *AuthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		log:            log,
	}
}

// Login handles staff login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeJSON(w, r, &loginReq) {
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	logger := h.log.WithField("username", loginReq.Username)
	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		logger.WithError(err).Warn("Login rejected: unknown user")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		logger.Warn("Login rejected: account deactivated")
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		logger.Warn("Login rejected: wrong password")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	response, err := h.authService.IssueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		logger.WithError(err).Error("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

var errRoleNotGrantable = errors.New("only administrators can assign staff roles")

// Register handles staff registration. Staff with manage_users may create
// accounts of any role. Anonymous callers get viewer accounts; the first
// account of an empty user store may take any role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if !decodeJSON(w, r, &registerReq) {
		return
	}
	if registerReq.Role == "" {
		registerReq.Role = models.RoleViewer
	}

	if err := h.authService.ValidateRegistration(registerReq); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userCollection.FindUserByUsername(r.Context(), registerReq.Username); err == nil {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}
	if _, err := h.userCollection.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err := h.checkGrantableRole(r.Context(), registerReq.Role); err != nil {
		if errors.Is(err, errRoleNotGrantable) {
			h.log.WithFields(logrus.Fields{"username": registerReq.Username, "role": registerReq.Role}).Warn("Registration rejected: role not grantable")
			writeError(w, http.StatusForbidden, "Only administrators can assign staff roles")
			return
		}
		h.log.WithError(err).Error("Failed to count users")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FirstName:    registerReq.FirstName,
		LastName:     registerReq.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		h.log.WithError(err).WithField("username", user.Username).Error("Failed to create user")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	response, err := h.authService.IssueTokens(&user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	h.log.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Info("Registered staff account")
	writeJSON(w, http.StatusCreated, response)
}

func (h *AuthHandler) checkGrantableRole(ctx context.Context, role models.Role) error {
	if claims, ok := middleware.GetUserFromContext(ctx); ok {
		if !claims.Role.HasPermission(models.ActionManageUsers) {
			return errRoleNotGrantable
		}
		return nil
	}
	if role == models.RoleViewer {
		return nil
	}
	n, err := h.userCollection.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return errRoleNotGrantable
	}
	return nil
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the current user's name and email
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var updateReq struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if !decodeJSON(w, r, &updateReq) {
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if updateReq.FirstName != "" {
		user.FirstName = updateReq.FirstName
	}
	if updateReq.LastName != "" {
		user.LastName = updateReq.LastName
	}
	if updateReq.Email != "" {
		if err := h.authService.ValidateEmail(updateReq.Email); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		existingUser, err := h.userCollection.FindUserByEmail(r.Context(), updateReq.Email)
		if err == nil && existingUser.ID.Hex() != claims.UserID {
			writeError(w, http.StatusConflict, "Email already exists")
			return
		}
		user.Email = updateReq.Email
	}

	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var passwordReq struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &passwordReq) {
		return
	}

	if passwordReq.CurrentPassword == "" || passwordReq.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}
	if err := h.authService.ValidatePassword(passwordReq.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !h.authService.CheckPassword(passwordReq.CurrentPassword, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user.PasswordHash = newPasswordHash
	if err := h.userCollection.UpdateUser(r.Context(), claims.UserID, *user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
