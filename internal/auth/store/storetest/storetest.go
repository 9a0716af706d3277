// Package storetest is a driver-agnostic conformance suite for store.Store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/pkg/idx"
)

// Opener returns a migrated, empty store. It should register its own cleanup.
type Opener func(t *testing.T) store.Store

// Run exercises every Users operation against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("empty", func(t *testing.T) { testEmpty(t, open(t)) })
	t.Run("create and get", func(t *testing.T) { testCreateAndGet(t, open(t)) })
	t.Run("duplicate email", func(t *testing.T) { testDuplicateEmail(t, open(t)) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("updates", func(t *testing.T) { testUpdates(t, open(t)) })
	t.Run("list", func(t *testing.T) { testList(t, open(t)) })
	t.Run("transactions", func(t *testing.T) { testTx(t, open(t)) })
}

var base = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

// NewUser builds a valid active user; n keeps emails unique.
func NewUser(n int, role domain.Role) domain.User {
	created := base.Add(time.Duration(n) * time.Minute)
	return domain.User{
		ID:           idx.NewAt(created).String(),
		Email:        fmt.Sprintf("user%d@example.edu", n),
		Name:         fmt.Sprintf("User %d", n),
		PasswordHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		Role:         role,
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func testEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, s.Users().CreateUser(ctx, NewUser(1, domain.RoleAdmin)))

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
	require.NoError(t, s.Ping(ctx))
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser(1, domain.RoleTeacher)
	u.InstituteID = "inst-7"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, u.Name, got.Name)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.Equal(t, domain.RoleTeacher, got.Role)
	require.Equal(t, "inst-7", got.InstituteID)
	require.True(t, got.Active)
	require.Nil(t, got.LastLoginAt)
	require.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := s.Users().GetUserByEmail(ctx, "USER1@Example.EDU")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := NewUser(1, domain.RoleStudent)
	require.NoError(t, s.Users().CreateUser(ctx, first))

	dup := NewUser(2, domain.RoleStudent)
	dup.Email = "User1@example.edu"
	err := s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := idx.New().String()

	_, err := s.Users().GetUserByID(ctx, missing)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.edu")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().UpdateName(ctx, missing, "x"), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdateLastLogin(ctx, missing, base), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdateRole(ctx, missing, domain.RoleAdmin), store.ErrNotFound)
	require.ErrorIs(t, s.Users().SetActive(ctx, missing, false), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, missing, "h"), store.ErrNotFound)
}

func testUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	u := NewUser(1, domain.RoleStudent)
	require.NoError(t, users.CreateUser(ctx, u))

	login := base.Add(3 * time.Hour)
	require.NoError(t, users.UpdateLastLogin(ctx, u.ID, login))
	require.NoError(t, users.UpdateName(ctx, u.ID, "Renamed"))
	require.NoError(t, users.UpdateRole(ctx, u.ID, domain.RoleFaculty))
	require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "$2b$10$new"))
	require.NoError(t, users.SetActive(ctx, u.ID, false))

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, domain.RoleFaculty, got.Role)
	require.Equal(t, "$2b$10$new", got.PasswordHash)
	require.False(t, got.Active)
	require.NotNil(t, got.LastLoginAt)
	require.True(t, login.Equal(*got.LastLoginAt))
	require.True(t, got.UpdatedAt.After(u.UpdatedAt))
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	roles := []domain.Role{domain.RoleStudent, domain.RoleStudent, domain.RoleTeacher, domain.RoleStudent, domain.RoleAdmin}
	for i, r := range roles {
		u := NewUser(i+1, r)
		if i == 2 {
			u.Name = "Grace 100% Hopper"
		}
		require.NoError(t, users.CreateUser(ctx, u))
	}

	all, total, err := users.ListUsers(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, all, 5)
	require.Equal(t, "user5@example.edu", all[0].Email, "newest first")

	page, total, err := users.ListUsers(ctx, store.ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page, 2)
	require.Equal(t, "user3@example.edu", page[0].Email)

	students, total, err := users.ListUsers(ctx, store.ListFilter{Role: domain.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, students, 3)

	byName, total, err := users.ListUsers(ctx, store.ListFilter{Search: "hopper"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "user3@example.edu", byName[0].Email)

	// Wildcards in the search are literal.
	pct, total, err := users.ListUsers(ctx, store.ListFilter{Search: "100%"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, pct, 1)

	byEmail, total, err := users.ListUsers(ctx, store.ListFilter{Search: "USER4@", Role: domain.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "user4@example.edu", byEmail[0].Email)

	none, total, err := users.ListUsers(ctx, store.ListFilter{Search: "zzz"})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)
}

func testTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	rolledBack := NewUser(1, domain.RoleStudent)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, rolledBack))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Users().GetUserByID(ctx, rolledBack.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	committed := NewUser(2, domain.RoleStudent)
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, committed); err != nil {
			return err
		}
		_, nestedErr := tx.Tx(ctx)
		require.Error(t, nestedErr)
		return nil
	}))

	_, err = s.Users().GetUserByID(ctx, committed.ID)
	require.NoError(t, err)
}
