package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/pkg/authsdk"
)

// TestRateLimitLogin verifies that login is rate limited per IP and email.
// The strict profile allows 5 requests per minute.
func TestRateLimitLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, "victim@scl.test", "wrong-password")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "request %d should not be rate limited", i+1)
	}

	_, err := client.Login(ctx, "victim@scl.test", "wrong-password")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 429, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeRateLimited, apiErr.Code)

	// Another account from the same address still has its own budget.
	_, err = client.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
}
