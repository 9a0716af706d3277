package jwtx

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"
)

// MinSecretLength is the shortest accepted HMAC secret, matching the HS256
// output size.
const MinSecretLength = 32

// KeyConfig holds the signing material and lifetimes shared by Issuer and
// Verifier. It is built once at startup and never mutated.
type KeyConfig struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

var ErrKeyConfig = errors.New("jwtx: invalid key configuration")

func (k KeyConfig) Validate() error {
	switch {
	case len(k.AccessSecret) == 0:
		return fmt.Errorf("%w: access secret is empty", ErrKeyConfig)
	case len(k.RefreshSecret) == 0:
		return fmt.Errorf("%w: refresh secret is empty", ErrKeyConfig)
	case len(k.AccessSecret) < MinSecretLength:
		return fmt.Errorf("%w: access secret shorter than %d bytes", ErrKeyConfig, MinSecretLength)
	case len(k.RefreshSecret) < MinSecretLength:
		return fmt.Errorf("%w: refresh secret shorter than %d bytes", ErrKeyConfig, MinSecretLength)
	case subtle.ConstantTimeCompare(k.AccessSecret, k.RefreshSecret) == 1:
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrKeyConfig)
	case k.AccessTTL <= 0:
		return fmt.Errorf("%w: access TTL must be positive", ErrKeyConfig)
	case k.RefreshTTL <= 0:
		return fmt.Errorf("%w: refresh TTL must be positive", ErrKeyConfig)
	}
	return nil
}

func (k KeyConfig) secretFor(class TokenClass) []byte {
	if class == RefreshToken {
		return k.RefreshSecret
	}
	return k.AccessSecret
}
