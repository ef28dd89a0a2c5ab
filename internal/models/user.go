package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an administrative user of the CMS
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone"`
	Role              string     `gorm:"default:editor" json:"role"`
	Status            string     `gorm:"default:active" json:"status"`
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	LastLoginAt       *time.Time `json:"last_login_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleEditor
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleEditor   = "editor"
	RoleAccounts = "accounts"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Privilege strings gating route groups
const (
	PrivilegeManageInvestors    = "manage_investors"
	PrivilegeManageInstallments = "manage_investor_installments"
	PrivilegeManageRules        = "manage_installment_rules"
	PrivilegeManageContent      = "manage_content"
	PrivilegeViewReports        = "view_reports"
	PrivilegeManageUsers        = "manage_users"
)

// rolePrivileges maps each role to the privileges it carries. Admin holds
// everything, editor owns the marketing content, accounts owns the investor
// subsystem and its reports.
var rolePrivileges = map[string][]string{
	RoleAdmin: {
		PrivilegeManageInvestors,
		PrivilegeManageInstallments,
		PrivilegeManageRules,
		PrivilegeManageContent,
		PrivilegeViewReports,
		PrivilegeManageUsers,
	},
	RoleEditor: {
		PrivilegeManageContent,
	},
	RoleAccounts: {
		PrivilegeManageInvestors,
		PrivilegeManageInstallments,
		PrivilegeManageRules,
		PrivilegeViewReports,
	},
}

// HasPrivilege reports whether the user's role carries the given privilege
func (u *User) HasPrivilege(privilege string) bool {
	return RoleHasPrivilege(u.Role, privilege)
}

// IsValidRole reports whether the role is one the panel recognizes
func IsValidRole(role string) bool {
	_, ok := rolePrivileges[role]
	return ok
}

// RoleHasPrivilege reports whether a role carries the given privilege
func RoleHasPrivilege(role, privilege string) bool {
	for _, p := range rolePrivileges[role] {
		if p == privilege {
			return true
		}
	}
	return false
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Privileges  []string   `json:"privileges"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		Privileges:  rolePrivileges[u.Role],
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
