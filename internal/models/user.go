package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents staff roles in the shop
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// Actions checked by HasPermission.
const (
	ActionManageUsers      = "manage_users"
	ActionViewAppointments = "view_appointments"
	ActionUpdateStatus     = "update_status"
	ActionUpdateNotes      = "update_notes"
	ActionUpdateCosts      = "update_costs"
	ActionViewTracking     = "view_tracking"
	ActionManageTracking   = "manage_tracking"
	ActionImportTracking   = "import_tracking"
	ActionViewAnalytics    = "view_analytics"
	ActionManageImages     = "manage_images"
)

// User is a member of the shop staff
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a staff registration request
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims are the JWT claims issued to staff
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleTechnician, RoleViewer:
		return true
	default:
		return false
	}
}

var rolePermissions = map[Role]map[string]bool{
	RoleManager: {
		ActionViewAppointments: true,
		ActionUpdateStatus:     true,
		ActionUpdateNotes:      true,
		ActionUpdateCosts:      true,
		ActionViewTracking:     true,
		ActionManageTracking:   true,
		ActionViewAnalytics:    true,
		ActionManageImages:     true,
	},
	RoleTechnician: {
		ActionViewAppointments: true,
		ActionUpdateStatus:     true,
		ActionUpdateNotes:      true,
		ActionUpdateCosts:      true,
		ActionViewTracking:     true,
	},
	RoleViewer: {
		ActionViewAppointments: true,
		ActionViewTracking:     true,
		ActionViewAnalytics:    true,
	},
}

// HasPermission checks if a role may perform an action. Admins may do everything.
func (r Role) HasPermission(action string) bool {
	if r == RoleAdmin {
		return true
	}
	return rolePermissions[r][action]
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	return u.Role.HasPermission(action)
}
