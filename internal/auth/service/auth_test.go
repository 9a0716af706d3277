package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to student and issues tokens", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.auth.Register(ctx, RegisterInput{
			Email:       "  Ada@Example.COM ",
			Password:    "secret123",
			Name:        " Ada ",
			InstituteID: "inst-1",
		})
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", res.User.Email)
		require.Equal(t, "Ada", res.User.Name)
		require.Equal(t, domain.RoleStudent, res.User.Role)
		require.True(t, res.User.Active)
		require.NotEqual(t, "secret123", res.User.PasswordHash)

		claims, err := env.verifier.Verify(res.Tokens.AccessToken, jwtx.AccessToken)
		require.NoError(t, err)
		require.Equal(t, res.User.ID, claims.Subject)
		require.Equal(t, "student", claims.Role)
		require.Equal(t, "inst-1", claims.InstituteID)

		_, err = env.verifier.Verify(res.Tokens.RefreshToken, jwtx.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("self-assignable roles accepted", func(t *testing.T) {
		env := newTestEnv(t)
		for _, role := range []string{"teacher", "FACULTY", "student"} {
			res := env.register(t, role+"@example.com", role)
			require.Equal(t, domain.Role(strings.ToLower(role)), res.User.Role)
		}
	})

	t.Run("admin cannot be self-assigned", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Register(ctx, RegisterInput{
			Email: "eve@example.com", Password: "secret123", Name: "Eve", Role: "admin",
		})
		require.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "role")
	})

	t.Run("duplicate email is case-insensitive", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "bob@example.com", "")

		_, err := env.auth.Register(ctx, RegisterInput{
			Email: "BOB@example.com", Password: "secret123", Name: "Bob",
		})
		require.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		tests := []struct {
			name  string
			in    RegisterInput
			field string
		}{
			{"missing email", RegisterInput{Password: "secret123", Name: "A"}, "email"},
			{"bad email", RegisterInput{Email: "nope", Password: "secret123", Name: "A"}, "email"},
			{"short password", RegisterInput{Email: "a@example.com", Password: "123", Name: "A"}, "password"},
			{"missing name", RegisterInput{Email: "a@example.com", Password: "secret123"}, "name"},
			{"unknown role", RegisterInput{Email: "a@example.com", Password: "secret123", Name: "A", Role: "janitor"}, "role"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.auth.Register(ctx, tt.in)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				require.Contains(t, verr.Fields, tt.field)
			})
		}
	})

	t.Run("password minimum is configurable", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.PasswordMinLength = 12
		_, err := env.auth.Register(ctx, RegisterInput{
			Email: "a@example.com", Password: "secret123", Name: "A",
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success records last login", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "teacher")

		res, err := env.auth.Login(ctx, "ADA@example.com", "secret123")
		require.NoError(t, err)
		require.Equal(t, reg.User.ID, res.User.ID)
		require.NotNil(t, res.User.LastLoginAt)

		stored, err := env.store.Users().GetUserByID(ctx, reg.User.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLoginAt)
		require.True(t, stored.LastLoginAt.Equal(env.now))

		claims, err := env.verifier.Verify(res.Tokens.AccessToken, jwtx.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "teacher", claims.Role)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "ada@example.com", "")

		_, err := env.auth.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = env.auth.Login(ctx, "ghost@example.com", "secret123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account rejected after password check", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "")
		require.NoError(t, env.store.Users().SetActive(ctx, reg.User.ID, false))

		_, err := env.auth.Login(ctx, "ada@example.com", "secret123")
		require.ErrorIs(t, err, ErrAccountInactive)

		_, err = env.auth.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Login(ctx, "", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("legacy bcrypt hash is upgraded", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "")

		legacyParams := fastHashParams()
		legacyParams.Algorithm = cryptox.AlgBcrypt
		legacy, err := cryptox.NewHasher(legacyParams, "")
		require.NoError(t, err)
		h, err := legacy.Hash("secret123")
		require.NoError(t, err)
		require.NoError(t, env.store.Users().UpdatePasswordHash(ctx, reg.User.ID, h))

		_, err = env.auth.Login(ctx, "ada@example.com", "secret123")
		require.NoError(t, err)

		stored, err := env.store.Users().GetUserByID(ctx, reg.User.ID)
		require.NoError(t, err)
		require.False(t, env.hasher.NeedsRehash(stored.PasswordHash))
		require.True(t, env.hasher.Verify("secret123", stored.PasswordHash))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("returns access token with current role", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "student")
		require.NoError(t, env.store.Users().UpdateRole(ctx, reg.User.ID, domain.RoleTeacher))

		tok, exp, err := env.auth.Refresh(ctx, reg.Tokens.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, env.now.Add(jwtx.DefaultAccessTokenTTL), exp)

		claims, err := env.verifier.Verify(tok, jwtx.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "teacher", claims.Role)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "")

		_, _, err := env.auth.Refresh(ctx, reg.Tokens.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("garbage", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, err := env.auth.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("blank", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, err := env.auth.Refresh(ctx, "  ")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown subject", func(t *testing.T) {
		env := newTestEnv(t)
		iss, err := jwtx.NewIssuer(env.keys)
		require.NoError(t, err)
		tok, err := iss.IssueRefreshToken(jwtx.Identity{Subject: "01J00000000000000000000000", Email: "x@example.com"})
		require.NoError(t, err)

		_, _, err = env.auth.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("inactive account", func(t *testing.T) {
		env := newTestEnv(t)
		reg := env.register(t, "ada@example.com", "")
		require.NoError(t, env.store.Users().SetActive(ctx, reg.User.ID, false))

		_, _, err := env.auth.Refresh(ctx, reg.Tokens.RefreshToken)
		require.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	reg := env.register(t, "ada@example.com", "")

	u, err := env.auth.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)

	u, err = env.auth.UpdateProfile(ctx, reg.User.ID, "  Ada Lovelace ")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", u.Name)

	_, err = env.auth.UpdateProfile(ctx, reg.User.ID, "   ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.auth.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.auth.UpdateProfile(ctx, "missing", "Nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
