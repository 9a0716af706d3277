package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrEmptySubject = errors.New("jwtx: identity has no subject")

// TokenPair is what login and registration hand back to the client.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Issuer mints HS256 access and refresh tokens.
type Issuer struct {
	keys KeyConfig
}

func NewIssuer(keys KeyConfig) (*Issuer, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{keys: keys}, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.keys.AccessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.keys.RefreshTTL }

func (i *Issuer) IssueAccessToken(id Identity) (string, error) {
	return i.IssueAccessTokenAt(id, time.Now())
}

// IssueAccessTokenAt mints an access token as if the clock read now.
func (i *Issuer) IssueAccessTokenAt(id Identity, now time.Time) (string, error) {
	return i.sign(AccessToken, Claims{
		Email:       id.Email,
		Role:        id.Role,
		InstituteID: id.InstituteID,
		TokenUse:    UseAccess,
	}, id.Subject, now)
}

func (i *Issuer) IssueRefreshToken(id Identity) (string, error) {
	return i.IssueRefreshTokenAt(id, time.Now())
}

// IssueRefreshTokenAt mints a refresh token carrying only sub and email.
func (i *Issuer) IssueRefreshTokenAt(id Identity, now time.Time) (string, error) {
	return i.sign(RefreshToken, Claims{
		Email:    id.Email,
		TokenUse: UseRefresh,
	}, id.Subject, now)
}

func (i *Issuer) IssuePair(id Identity) (TokenPair, error) {
	return i.IssuePairAt(id, time.Now())
}

func (i *Issuer) IssuePairAt(id Identity, now time.Time) (TokenPair, error) {
	access, err := i.IssueAccessTokenAt(id, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefreshTokenAt(id, now)
	if err != nil {
		return TokenPair{}, err
	}

	now = now.UTC().Truncate(time.Second)
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(i.keys.AccessTTL),
		RefreshExpiresAt: now.Add(i.keys.RefreshTTL),
	}, nil
}

func (i *Issuer) sign(class TokenClass, claims Claims, subject string, now time.Time) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	// NumericDate has second precision; truncate so exp is exactly iat+ttl.
	now = now.UTC().Truncate(time.Second)

	ttl := i.keys.AccessTTL
	if class == RefreshToken {
		ttl = i.keys.RefreshTTL
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    i.keys.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.keys.secretFor(class))
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", class, err)
	}
	return signed, nil
}
