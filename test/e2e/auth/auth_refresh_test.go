package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/pkg/authsdk"
)

// TestRegisterLoginRefresh walks the full token lifecycle against the
// container.
func TestRegisterLoginRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	registered, user := registerUser(t, client, "lifecycle@scl.test", "student")
	assertTokens(t, registered.Tokens())
	require.Equal(t, "student", user.Role)

	session, err := client.Login(ctx, "lifecycle@scl.test", userPassword)
	require.NoError(t, err)
	assertTokens(t, session.Tokens())

	before := session.Tokens()
	require.NoError(t, session.RefreshAccessToken(ctx))
	after := session.Tokens()
	require.Equal(t, before.RefreshToken, after.RefreshToken, "refresh tokens are not rotated")

	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, profile.ID)

	_, err = client.Refresh(ctx, before.AccessToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidRefreshToken)
}
