package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// Session is an authenticated client. It refreshes its access token once
// per call when the server reports it expired.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func (s *Session) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Tokens{AccessToken: s.accessToken, RefreshToken: s.refreshToken}
}

// RefreshAccessToken fetches a new access token with the session's refresh
// token.
func (s *Session) RefreshAccessToken(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh == "" {
		return fmt.Errorf("authsdk: session has no refresh token")
	}

	resp, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()
	return nil
}

func (s *Session) doAuth(ctx context.Context, method, path string, body, out any, expectedStatus int) error {
	err := s.send(ctx, method, path, body, out, expectedStatus)
	if !IsTokenExpired(err) {
		return err
	}
	if rerr := s.RefreshAccessToken(ctx); rerr != nil {
		return rerr
	}
	return s.send(ctx, method, path, body, out, expectedStatus)
}

func (s *Session) send(ctx context.Context, method, path string, body, out any, expectedStatus int) error {
	req, err := s.client.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	s.mu.RLock()
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	s.mu.RUnlock()

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, out, expectedStatus)
}

// ============================================================================
// Profile
// ============================================================================

func (s *Session) Profile(ctx context.Context) (*UserResponse, error) {
	var resp ProfileResponse
	if err := s.doAuth(ctx, http.MethodGet, "/v1/auth/profile", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *Session) UpdateProfile(ctx context.Context, name string) (*UserResponse, error) {
	var resp ProfileResponse
	req := UpdateProfileRequest{Name: name}
	if err := s.doAuth(ctx, http.MethodPatch, "/v1/auth/profile", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout tells the server the client is discarding its tokens and clears
// them locally. Tokens already handed out stay valid until they expire.
func (s *Session) Logout(ctx context.Context) error {
	err := s.doAuth(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, http.StatusOK)

	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.mu.Unlock()
	return err
}

func (s *Session) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := s.doAuth(ctx, http.MethodGet, "/v1/dashboard", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ============================================================================
// User administration (admin role)
// ============================================================================

func (s *Session) ListUsers(ctx context.Context, p ListUsersParams) (*UserListResponse, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Role != "" {
		q.Set("role", p.Role)
	}

	path := "/v1/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp UserListResponse
	if err := s.doAuth(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Session) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	var resp UserResponse
	if err := s.doAuth(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var resp UserResponse
	if err := s.doAuth(ctx, http.MethodPost, "/v1/users", req, &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	var resp UserResponse
	if err := s.doAuth(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeactivateUser soft-deletes an account; it can no longer log in or refresh.
func (s *Session) DeactivateUser(ctx context.Context, id string) error {
	return s.doAuth(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
