package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Exactly one applies to a rejected token and they
// are checked in this order.
var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// TokenClass selects the key a token is signed and verified with.
type TokenClass int

const (
	AccessToken TokenClass = iota + 1
	RefreshToken
)

func (c TokenClass) String() string {
	switch c {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return fmt.Sprintf("TokenClass(%d)", int(c))
	}
}

func (c TokenClass) use() string {
	if c == RefreshToken {
		return UseRefresh
	}
	return UseAccess
}

// Verifier checks a token of the given class and returns its claims.
type Verifier interface {
	Verify(token string, class TokenClass) (Claims, error)
}

// HS256Verifier is the Verifier for tokens minted by Issuer. It holds no
// mutable state and is safe for concurrent use.
type HS256Verifier struct {
	keys   KeyConfig
	parser *jwt.Parser
}

func NewVerifier(keys KeyConfig) (*HS256Verifier, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return &HS256Verifier{
		keys: keys,
		// Time based claims are checked by VerifyAt against its own clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func (v *HS256Verifier) Verify(token string, class TokenClass) (Claims, error) {
	return v.VerifyAt(token, class, time.Now())
}

// VerifyAt verifies token as if the clock read now. The token is valid on
// [iat, exp) and expired from exp onward.
func (v *HS256Verifier) VerifyAt(token string, class TokenClass, now time.Time) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.keys.secretFor(class), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	// The signature is good from here on, so anything unexpected in the
	// payload means it was minted for a different purpose.
	if claims.TokenUse != class.use() {
		return Claims{}, fmt.Errorf("%w: token_use %q is not %s", ErrInvalidSig, claims.TokenUse, class)
	}
	if v.keys.Issuer != "" && claims.Issuer != v.keys.Issuer {
		return Claims{}, fmt.Errorf("%w: issuer %q", ErrInvalidSig, claims.Issuer)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing sub or exp", ErrInvalidSig)
	}

	if !now.Before(claims.ExpiresAt.Time) {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

// Rejection is the coarse failure category callers branch on.
type Rejection int

const (
	RejectNone Rejection = iota
	RejectMalformed
	RejectInvalid
	RejectExpired
)

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectMalformed:
		return "malformed"
	case RejectInvalid:
		return "invalid"
	case RejectExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Classify maps a Verify error to its Rejection. Unknown errors count as
// invalid.
func Classify(err error) Rejection {
	switch {
	case err == nil:
		return RejectNone
	case errors.Is(err, ErrMalformed):
		return RejectMalformed
	case errors.Is(err, ErrExpired):
		return RejectExpired
	default:
		return RejectInvalid
	}
}
