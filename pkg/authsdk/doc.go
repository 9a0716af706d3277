/*
Package authsdk is the wire contract and Go client for the SCL auth service.

Server handlers use its request/response types and APIError values so the JSON
shapes live in one place; other services and tests use SDKClient and Session
to talk to it.

# SDKClient vs Session

SDKClient covers the public endpoints (register, login, refresh, health).
Logging in or registering yields a Session, which carries the token pair and
calls the authenticated endpoints:

	client := authsdk.NewSDKClient("https://auth.example.edu")

	session, err := client.Login(ctx, "teacher@example.edu", "secret1")
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			// account deactivated
		}
		return err
	}

	profile, err := session.Profile(ctx)

# Token refresh

Access tokens are short-lived. When an authenticated call comes back with
401 token_expired the Session exchanges its refresh token for a new access
token once and retries the call. Refresh tokens are not rotated; when the
refresh token itself expires the caller has to log in again.

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
