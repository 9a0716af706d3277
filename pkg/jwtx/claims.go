package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// token_use values. They keep an access token from being replayed as a
// refresh token even if both secrets were ever configured identically.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Identity is the claim set a token is minted from. It is always read from
// the account directory at mint time, never from client input.
type Identity struct {
	Subject     string
	Email       string
	Role        string
	InstituteID string
}

// Claims is the JWT payload for both token classes. Role and InstituteID are
// only present on access tokens.
type Claims struct {
	jwt.RegisteredClaims

	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	InstituteID string `json:"institute_id,omitempty"`
	TokenUse    string `json:"token_use"`
}

// Identity recovers the embedded claim subset.
func (c Claims) Identity() Identity {
	return Identity{
		Subject:     c.Subject,
		Email:       c.Email,
		Role:        c.Role,
		InstituteID: c.InstituteID,
	}
}

// ExpiresAtTime returns exp in UTC, or the zero time if absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}
