package service

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/internal/auth/store/drivers/sqlite"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

type testEnv struct {
	store    store.Store
	hasher   *cryptox.Hasher
	keys     jwtx.KeyConfig
	verifier *jwtx.HS256Verifier
	auth     *AuthService
	users    *UserService
	now      time.Time
}

func testKeys() jwtx.KeyConfig {
	return jwtx.KeyConfig{
		Issuer:        "scl-test",
		AccessSecret:  bytes.Repeat([]byte("a"), jwtx.MinSecretLength),
		RefreshSecret: bytes.Repeat([]byte("r"), jwtx.MinSecretLength),
		AccessTTL:     jwtx.DefaultAccessTokenTTL,
		RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
	}
}

func fastHashParams() cryptox.HashParams {
	return cryptox.HashParams{
		Algorithm:   cryptox.AlgArgon2id,
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		BcryptCost:  bcrypt.MinCost,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	h, err := cryptox.NewHasher(fastHashParams(), "test-pepper")
	require.NoError(t, err)

	keys := testKeys()
	iss, err := jwtx.NewIssuer(keys)
	require.NoError(t, err)
	ver, err := jwtx.NewVerifier(keys)
	require.NoError(t, err)

	env := &testEnv{
		store:    st,
		hasher:   h,
		keys:     keys,
		verifier: ver,
		now:      time.Now().UTC().Truncate(time.Second),
	}
	clock := func() time.Time { return env.now }

	env.auth = &AuthService{Store: st, Hasher: h, Issuer: iss, Verifier: ver, Now: clock}
	env.users = &UserService{Store: st, Hasher: h, Now: clock}
	return env
}

func (e *testEnv) register(t *testing.T, email, role string) AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "secret123",
		Name:     "Test User",
		Role:     role,
	})
	require.NoError(t, err)
	return res
}
