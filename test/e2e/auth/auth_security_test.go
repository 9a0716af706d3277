package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/pkg/authsdk"
)

func TestInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Login(t.Context(), adminEmail, "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, err = client.Login(t.Context(), "nobody@scl.test", "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

func TestInvalidAccessToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	session := client.NewSessionFromTokens(authsdk.Tokens{AccessToken: "not-a-jwt"})

	_, err := session.Profile(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
}

func TestStudentCannotAdminister(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	student, _ := registerUser(t, client, "student@scl.test", "student")

	_, err := student.ListUsers(t.Context(), authsdk.ListUsersParams{})
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	_, _, err = client.Register(t.Context(), authsdk.RegisterRequest{
		Email: "sneaky@scl.test", Password: userPassword, Name: "Sneaky", Role: "admin",
	})
	require.ErrorIs(t, err, authsdk.ErrValidation)
}
