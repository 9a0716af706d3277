package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the public endpoints of the auth service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates a self-service account and returns a logged-in Session.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, *UserResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", req, &resp, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	return c.NewSessionFromTokens(resp.Tokens), &resp.User, nil
}

func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(resp.Tokens), nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	req := RefreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NewSessionFromTokens resumes a session from a stored token pair.
func (c *SDKClient) NewSessionFromTokens(t Tokens) *Session {
	return &Session{
		client:       c,
		accessToken:  t.AccessToken,
		refreshToken: t.RefreshToken,
	}
}

func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
