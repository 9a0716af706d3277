package authsdk

import "time"

// ============================================================================
// Auth
// ============================================================================

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	InstituteID string `json:"instituteId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by register (201) and login (200).
type AuthResponse struct {
	User   UserResponse `json:"user"`
	Tokens Tokens       `json:"tokens"`
}

// RefreshResponse carries only a new access token; refresh tokens are not
// rotated.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Users
// ============================================================================

// UserResponse is the public view of an account. It never includes the
// password hash.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	InstituteID string     `json:"instituteId,omitempty"`
	Active      bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ProfileResponse struct {
	User UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	InstituteID string `json:"instituteId,omitempty"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Role   *string `json:"role,omitempty"`
	Active *bool   `json:"isActive,omitempty"`
}

type ListUsersParams struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ============================================================================
// Dashboard
// ============================================================================

// DashboardResponse describes the landing view for the caller. Anonymous
// callers get the public view.
type DashboardResponse struct {
	View     string   `json:"view"`
	Role     string   `json:"role,omitempty"`
	Sections []string `json:"sections"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
