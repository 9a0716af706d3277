package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListInput selects one page of the directory. Page is 1-based.
type ListInput struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

// UserPage is one page of accounts plus paging totals.
type UserPage struct {
	Users []domain.User
	Page  int
	Limit int
	Total int
	Pages int
}

// UserService is the admin view of the account directory.
type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher

	PasswordMinLength int
	Now               func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *UserService) List(ctx context.Context, in ListInput) (UserPage, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	f := store.ListFilter{
		Search: strings.TrimSpace(in.Search),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return UserPage{}, fieldError("role", "must be a valid role")
		}
		f.Role = r
	}

	users, total, err := s.Store.Users().ListUsers(ctx, f)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}

	return UserPage{
		Users: users,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return getUser(ctx, s.Store, id)
}

// Create adds an account on an admin's behalf. Unlike Register any role,
// admin included, may be chosen.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	in.normalize()
	minLen := s.PasswordMinLength
	if minLen <= 0 {
		minLen = DefaultPasswordMinLength
	}
	if err := in.validate(minLen); err != nil {
		return domain.User{}, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return domain.User{}, fieldError("role", "must be a valid role")
	}

	u, err := createUser(ctx, s.Store, s.Hasher, newUser{
		Email:       in.Email,
		Password:    in.Password,
		Name:        in.Name,
		Role:        role,
		InstituteID: in.InstituteID,
	}, s.now())
	if err != nil {
		return domain.User{}, err
	}

	l.Info("account created by admin", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update applies a partial change atomically. A role change takes effect on
// the user's next login or refresh. actorID may not deactivate or demote
// their own account.
func (s *UserService) Update(ctx context.Context, actorID, id string, in UpdateUserInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.User{}, err
	}

	var role domain.Role
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return domain.User{}, fieldError("role", "must be a valid role")
		}
		role = r
	}

	if actorID == id {
		if in.Active != nil && !*in.Active {
			return domain.User{}, ErrSelfDeactivation
		}
		if in.Role != nil && role != domain.RoleAdmin {
			return domain.User{}, ErrSelfDemotion
		}
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, id); err != nil {
			return err
		}
		if in.Name != nil {
			if err := tx.Users().UpdateName(ctx, id, strings.TrimSpace(*in.Name)); err != nil {
				return err
			}
		}
		if in.Role != nil {
			if err := tx.Users().UpdateRole(ctx, id, role); err != nil {
				return err
			}
		}
		if in.Active != nil {
			if err := tx.Users().SetActive(ctx, id, *in.Active); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	l.Info("account updated", "user_id", id, "by", actorID)
	return getUser(ctx, s.Store, id)
}

// Deactivate soft-deletes an account: it stays in the directory but can no
// longer log in or refresh. Admins cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) error {
	l := slogx.FromContext(ctx)

	if actorID == id {
		return ErrSelfDeactivation
	}

	err := s.Store.Users().SetActive(ctx, id, false)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	l.Info("account deactivated", "user_id", id, "by", actorID)
	return nil
}
