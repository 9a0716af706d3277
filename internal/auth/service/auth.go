package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/idx"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

// DefaultPasswordMinLength applies when AuthService.PasswordMinLength is 0.
const DefaultPasswordMinLength = 6

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   domain.User
	Tokens jwtx.TokenPair
}

// AuthService owns the register, login and refresh flows. It is the only
// place tokens are minted.
type AuthService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Issuer   *jwtx.Issuer
	Verifier jwtx.Verifier

	PasswordMinLength int
	Now               func() time.Time // defaults to time.Now

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) minPassword() int {
	if s.PasswordMinLength > 0 {
		return s.PasswordMinLength
	}
	return DefaultPasswordMinLength
}

// Register creates a self-service account and signs it in. Admin cannot be
// self-assigned.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	in.normalize()
	if err := in.validate(s.minPassword()); err != nil {
		return AuthResult{}, err
	}

	role := domain.DefaultRole
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil || !r.SelfAssignable() {
			return AuthResult{}, fieldError("role", "must be student, teacher or faculty")
		}
		role = r
	}

	u, err := createUser(ctx, s.Store, s.Hasher, newUser{
		Email:       in.Email,
		Password:    in.Password,
		Name:        in.Name,
		Role:        role,
		InstituteID: in.InstituteID,
	}, s.now())
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := s.Issuer.IssuePairAt(identityOf(u), s.now())
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	l.Info("account registered", "user_id", u.ID, "role", u.Role)
	return AuthResult{User: u, Tokens: pair}, nil
}

// Login checks credentials and mints a fresh token pair. Unknown emails and
// wrong passwords are indistinguishable, including in timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	in := loginInput{Email: domain.NormalizeEmail(email), Password: password}
	if err := in.validate(); err != nil {
		return AuthResult{}, err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.Hasher.Verify(password, s.dummy())
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !u.Active {
		return AuthResult{}, ErrAccountInactive
	}

	now := s.now()
	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("record login: %w", err)
	}
	u.LastLoginAt = &now

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, &u, password)
	}

	pair, err := s.Issuer.IssuePairAt(identityOf(u), now)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue tokens: %w", err)
	}

	l.Info("login succeeded", "user_id", u.ID)
	return AuthResult{User: u, Tokens: pair}, nil
}

// rehash upgrades a stored hash after a successful login. Failure is logged
// and the login still succeeds.
func (s *AuthService) rehash(ctx context.Context, u *domain.User, password string) {
	l := slogx.FromContext(ctx)

	h, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("password rehash failed", "user_id", u.ID, slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, h); err != nil {
		l.Warn("password rehash not stored", "user_id", u.ID, slog.Any("error", err))
		return
	}
	u.PasswordHash = h
	l.Info("password hash upgraded", "user_id", u.ID)
}

// Refresh exchanges a refresh token for a new access token. The role is read
// from the directory again, so role changes apply at the next refresh. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", time.Time{}, fieldError("refreshToken", "cannot be blank")
	}

	claims, err := s.Verifier.Verify(refreshToken, jwtx.RefreshToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrInvalidRefresh, err)
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidRefresh
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("lookup user: %w", err)
	}
	if !u.Active {
		return "", time.Time{}, ErrAccountInactive
	}

	now := s.now()
	tok, err := s.Issuer.IssueAccessTokenAt(identityOf(u), now)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}
	return tok, now.Add(s.Issuer.AccessTTL()), nil
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return getUser(ctx, s.Store, userID)
}

// UpdateProfile changes the caller's display name. Role, email and active
// state are admin-only.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, maxNameLength)); err != nil {
		return domain.User{}, fieldError("name", err.Error())
	}

	err := s.Store.Users().UpdateName(ctx, userID, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("update name: %w", err)
	}
	return getUser(ctx, s.Store, userID)
}

// dummy is a hash of a random password, verified against when the email is
// unknown so the response takes as long as a real mismatch.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		pw, err := cryptox.GeneratePassword(24)
		if err == nil {
			s.dummyHash, _ = s.Hasher.Hash(pw)
		}
	})
	return s.dummyHash
}

func identityOf(u domain.User) jwtx.Identity {
	return jwtx.Identity{
		Subject:     u.ID,
		Email:       u.Email,
		Role:        u.Role.String(),
		InstituteID: u.InstituteID,
	}
}

type newUser struct {
	Email       string
	Password    string
	Name        string
	Role        domain.Role
	InstituteID string
}

// createUser hashes the password and inserts an active account. Inputs are
// expected to be validated and normalised already.
func createUser(ctx context.Context, st store.Store, h *cryptox.Hasher, nu newUser, now time.Time) (domain.User, error) {
	_, err := st.Users().GetUserByEmail(ctx, nu.Email)
	if err == nil {
		return domain.User{}, ErrDuplicateAccount
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := h.Hash(nu.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        nu.Email,
		Name:         nu.Name,
		PasswordHash: hash,
		Role:         nu.Role,
		InstituteID:  nu.InstituteID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = st.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrDuplicateAccount
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func getUser(ctx context.Context, st store.Store, id string) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
