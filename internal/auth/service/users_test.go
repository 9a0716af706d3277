package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
)

func ptr[T any](v T) *T { return &v }

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	u, err := env.users.Create(ctx, CreateUserInput{
		Email: "Root@Example.com", Password: "secret123", Name: "Root", Role: "ADMIN",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.Equal(t, "root@example.com", u.Email)

	_, err = env.users.Create(ctx, CreateUserInput{
		Email: "root@example.com", Password: "secret123", Name: "Root", Role: "admin",
	})
	require.ErrorIs(t, err, ErrDuplicateAccount)

	_, err = env.users.Create(ctx, CreateUserInput{
		Email: "x@example.com", Password: "secret123", Name: "X",
	})
	require.ErrorIs(t, err, ErrValidation)

	res, err := env.auth.Login(ctx, "root@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 12; i++ {
		role := "student"
		if i%3 == 0 {
			role = "teacher"
		}
		env.register(t, fmt.Sprintf("user%02d@example.com", i), role)
	}

	page, err := env.users.List(ctx, ListInput{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, DefaultPageSize, page.Limit)
	require.Equal(t, 12, page.Total)
	require.Equal(t, 2, page.Pages)
	require.Len(t, page.Users, DefaultPageSize)

	page, err = env.users.List(ctx, ListInput{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)

	page, err = env.users.List(ctx, ListInput{Role: "teacher"})
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)

	page, err = env.users.List(ctx, ListInput{Search: "USER03"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = env.users.List(ctx, ListInput{Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, MaxPageSize, page.Limit)

	_, err = env.users.List(ctx, ListInput{Role: "janitor"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	reg := env.register(t, "ada@example.com", "student")

	u, err := env.users.Update(ctx, "admin-id", reg.User.ID, UpdateUserInput{
		Name: ptr("Ada L"),
		Role: ptr("Faculty"),
	})
	require.NoError(t, err)
	require.Equal(t, "Ada L", u.Name)
	require.Equal(t, domain.RoleFaculty, u.Role)
	require.True(t, u.Active)

	u, err = env.users.Update(ctx, "admin-id", reg.User.ID, UpdateUserInput{Active: ptr(false)})
	require.NoError(t, err)
	require.False(t, u.Active)

	_, err = env.users.Update(ctx, "admin-id", reg.User.ID, UpdateUserInput{Role: ptr("janitor")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.users.Update(ctx, "admin-id", reg.User.ID, UpdateUserInput{Name: ptr(" ")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.users.Update(ctx, "admin-id", "missing", UpdateUserInput{Name: ptr("x")})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateSelf(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin, err := env.users.Create(ctx, CreateUserInput{
		Email: "root@example.com", Password: "secret123", Name: "Root", Role: "admin",
	})
	require.NoError(t, err)

	_, err = env.users.Update(ctx, admin.ID, admin.ID, UpdateUserInput{Active: ptr(false)})
	require.ErrorIs(t, err, ErrSelfDeactivation)

	_, err = env.users.Update(ctx, admin.ID, admin.ID, UpdateUserInput{Role: ptr("student")})
	require.ErrorIs(t, err, ErrSelfDemotion)

	// Rejected changes leave the rest of the request unapplied.
	_, err = env.users.Update(ctx, admin.ID, admin.ID, UpdateUserInput{Name: ptr("Renamed"), Active: ptr(false)})
	require.ErrorIs(t, err, ErrSelfDeactivation)

	u, err := env.users.Get(ctx, admin.ID)
	require.NoError(t, err)
	require.True(t, u.Active)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.Equal(t, "Root", u.Name)

	u, err = env.users.Update(ctx, admin.ID, admin.ID, UpdateUserInput{
		Name:   ptr("Root User"),
		Role:   ptr("admin"),
		Active: ptr(true),
	})
	require.NoError(t, err)
	require.Equal(t, "Root User", u.Name)
	require.True(t, u.Active)
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin, err := env.users.Create(ctx, CreateUserInput{
		Email: "root@example.com", Password: "secret123", Name: "Root", Role: "admin",
	})
	require.NoError(t, err)
	reg := env.register(t, "ada@example.com", "")

	require.ErrorIs(t, env.users.Deactivate(ctx, admin.ID, admin.ID), ErrSelfDeactivation)
	require.ErrorIs(t, env.users.Deactivate(ctx, admin.ID, "missing"), ErrUserNotFound)

	require.NoError(t, env.users.Deactivate(ctx, admin.ID, reg.User.ID))

	u, err := env.users.Get(ctx, reg.User.ID)
	require.NoError(t, err)
	require.False(t, u.Active)

	_, err = env.auth.Login(ctx, "ada@example.com", "secret123")
	require.ErrorIs(t, err, ErrAccountInactive)
}
