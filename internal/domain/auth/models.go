package auth

import "time"

type User struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	RoleID       string    `json:"roleId"`
	RoleName     string    `json:"roleName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserContext carries the authenticated caller's identity through a request.
type UserContext struct {
	UserID   string
	TenantID string
	RoleID   string
	RoleName string
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
