package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/pkg/authsdk"
)

// TestBootstrapAdmin verifies the configured admin exists on first start and
// can manage other accounts.
func TestBootstrapAdmin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	profile, err := admin.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, "admin", profile.Role)

	_, student := registerUser(t, client, "student@scl.test", "student")

	list, err := admin.ListUsers(t.Context(), authsdk.ListUsersParams{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Pagination.Total)

	role := "teacher"
	updated, err := admin.UpdateUser(t.Context(), student.ID, authsdk.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	require.Equal(t, "teacher", updated.Role)

	require.NoError(t, admin.DeactivateUser(t.Context(), student.ID))

	_, err = client.Login(t.Context(), "student@scl.test", userPassword)
	require.ErrorIs(t, err, authsdk.ErrAccountInactive)
}
