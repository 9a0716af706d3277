package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by Hash for an empty plaintext. Callers are
// expected to validate input before hashing.
var ErrEmptyPassword = errors.New("cryptox: empty password")

// Algorithm names the password hashing scheme used for new hashes.
type Algorithm string

const (
	AlgArgon2id Algorithm = "argon2id"
	AlgBcrypt   Algorithm = "bcrypt"
)

const (
	saltLength = 16
	keyLength  = 32
)

// HashParams is the work factor configuration. It is read-only once a Hasher
// has been built from it.
type HashParams struct {
	Algorithm Algorithm

	// Argon2id
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8

	// bcrypt
	BcryptCost int
}

// DefaultHashParams follows the OWASP Argon2id baseline (19 MiB, t=2, p=1).
func DefaultHashParams() HashParams {
	return HashParams{
		Algorithm:   AlgArgon2id,
		Memory:      19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		BcryptCost:  12,
	}
}

func (p HashParams) Validate() error {
	switch p.Algorithm {
	case AlgArgon2id:
		if p.Memory < 8*uint32(p.Parallelism) || p.Iterations < 1 || p.Parallelism < 1 {
			return fmt.Errorf("cryptox: invalid argon2id parameters m=%d t=%d p=%d",
				p.Memory, p.Iterations, p.Parallelism)
		}
	case AlgBcrypt:
		if p.BcryptCost < bcrypt.MinCost || p.BcryptCost > bcrypt.MaxCost {
			return fmt.Errorf("cryptox: bcrypt cost %d out of range [%d,%d]",
				p.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return fmt.Errorf("cryptox: unknown hash algorithm %q", p.Algorithm)
	}
	return nil
}

// Hasher produces and checks self-salting password hashes.
//
// New hashes use the configured algorithm. Verify accepts both Argon2id PHC
// strings and bcrypt hashes so older accounts keep working; NeedsRehash
// reports which stored hashes should be upgraded on the next login.
//
// The pepper is mixed into Argon2id hashes only. bcrypt hashes are left
// unpeppered so hashes imported from systems without one still verify.
type Hasher struct {
	params HashParams
	pepper string
}

func NewHasher(params HashParams, pepper string) (*Hasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params, pepper: pepper}, nil
}

// Params returns the configured work factor.
func (h *Hasher) Params() HashParams { return h.params }

// Hash returns an encoded hash that embeds its own salt and parameters.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	if h.params.Algorithm == AlgBcrypt {
		out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.params.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("cryptox: bcrypt: %w", err)
		}
		return string(out), nil
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey(
		[]byte(plaintext+h.pepper),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether plaintext matches encoded. It never errors: a
// malformed or unsupported stored hash is simply a mismatch.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	}

	ph, err := parseArgon2id(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(plaintext+h.pepper),
		ph.salt,
		ph.iterations,
		ph.memory,
		ph.parallelism,
		uint32(len(ph.sum)), // #nosec G115 - bounded by parseArgon2id
	)
	return subtle.ConstantTimeCompare(computed, ph.sum) == 1
}

// NeedsRehash is true when encoded was produced by a different algorithm or
// with weaker parameters than the Hasher is configured with.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch h.params.Algorithm {
	case AlgBcrypt:
		if !isBcrypt(encoded) {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		return err != nil || cost < h.params.BcryptCost
	default:
		ph, err := parseArgon2id(encoded)
		if err != nil {
			return true
		}
		return ph.memory < h.params.Memory ||
			ph.iterations < h.params.Iterations ||
			ph.parallelism < h.params.Parallelism
	}
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

type argon2Hash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	sum         []byte
}

// maxArgon2Memory caps what a stored hash may ask for (1 GiB).
const maxArgon2Memory = 1 << 20

// parseArgon2id decodes $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parseArgon2id(encoded string) (argon2Hash, error) {
	var ph argon2Hash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return ph, errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != string(AlgArgon2id) {
		return ph, errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return ph, errors.New("invalid hash format: wrong version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &ph.memory, &ph.iterations, &ph.parallelism); err != nil {
		return ph, fmt.Errorf("invalid hash format: parameters: %w", err)
	}
	if ph.iterations < 1 || ph.parallelism < 1 || ph.memory < 8*uint32(ph.parallelism) || ph.memory > maxArgon2Memory {
		return ph, errors.New("invalid hash format: parameters out of range")
	}

	var err error
	if ph.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return ph, fmt.Errorf("invalid hash format: salt: %w", err)
	}
	if ph.sum, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return ph, fmt.Errorf("invalid hash format: hash: %w", err)
	}
	if len(ph.sum) == 0 || len(ph.sum) > 1024 {
		return ph, errors.New("invalid hash format: bad key length")
	}
	return ph, nil
}

// GeneratePassword returns a random alphanumeric password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
