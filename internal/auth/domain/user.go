package domain

import (
	"strings"
	"time"
)

// User is an account record. PasswordHash is the encoded hash and never
// leaves the service layer.
type User struct {
	ID           string
	Email        string // stored normalised, see NormalizeEmail
	Name         string
	PasswordHash string
	Role         Role
	InstituteID  string // empty when the account is not tied to an institute
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
