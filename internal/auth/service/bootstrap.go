package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

var ErrBootstrapPasswordRequired = errors.New("bootstrap admin password required")

const generatedPasswordLength = 20

// BootstrapService seeds the first admin account into an empty directory.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	Email    string
	Name     string
	Password string

	// AllowGenerated lets Run mint a random password when none is
	// configured. The password is logged once at WARN.
	AllowGenerated bool

	Now func() time.Time
}

// Run creates the admin when Email is set and no accounts exist. It reports
// whether an account was created and is safe to call on every start.
func (s *BootstrapService) Run(ctx context.Context) (bool, error) {
	l := slogx.FromContext(ctx)

	if s.Email == "" {
		return false, nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		l.Debug("directory not empty, skipping admin bootstrap")
		return false, nil
	}

	password := s.Password
	generated := false
	if password == "" {
		if !s.AllowGenerated {
			return false, ErrBootstrapPasswordRequired
		}
		password, err = cryptox.GeneratePassword(generatedPasswordLength)
		if err != nil {
			return false, err
		}
		generated = true
	}

	name := s.Name
	if name == "" {
		name = "Administrator"
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	u, err := createUser(ctx, s.Store, s.Hasher, newUser{
		Email:    domain.NormalizeEmail(s.Email),
		Password: password,
		Name:     name,
		Role:     domain.RoleAdmin,
	}, now)
	if errors.Is(err, ErrDuplicateAccount) {
		// Lost a race with another instance.
		return false, nil
	}
	if err != nil {
		l.Error("failed to create bootstrap admin", slog.Any("error", err))
		return false, err
	}

	if generated {
		l.Warn("bootstrap admin created with generated password, change it after first login",
			slog.String("email", u.Email),
			slog.String("password", password),
		)
	} else {
		l.Info("bootstrap admin created", slog.String("user_id", u.ID), slog.String("email", u.Email))
	}
	return true, nil
}
