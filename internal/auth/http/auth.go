package http

import (
	"errors"
	"net/http"

	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

// AuthHandler serves the /v1/auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	Metrics     *Metrics
}

// Register godoc
//
//	@Summary		Register an account
//	@Description	Creates a student, teacher or faculty account and signs it in. The admin role cannot be self-assigned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"email, password, name, optional role and instituteId"
//	@Success		201		{object}	authsdk.AuthResponse	"user and tokens"
//	@Failure		400		{object}	httpx.ErrorBody			"validation_error"
//	@Failure		409		{object}	httpx.ErrorBody			"account_exists"
//	@Failure		429		{object}	httpx.ErrorBody			"rate_limit_exceeded"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		InstituteID: req.InstituteID,
	})
	if err != nil {
		h.Metrics.registrations.WithLabelValues(resultOf(err)).Inc()
		writeServiceError(w, r, err)
		return
	}
	h.Metrics.registrations.WithLabelValues("success").Inc()

	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		User:   toUserResponse(res.User),
		Tokens: toTokens(res.Tokens),
	})
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access and refresh token pair.
//	@Description	Unknown emails and wrong passwords return the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"email and password"
//	@Success		200		{object}	authsdk.AuthResponse	"user and tokens"
//	@Failure		400		{object}	httpx.ErrorBody			"validation_error"
//	@Failure		401		{object}	httpx.ErrorBody			"invalid_credentials"
//	@Failure		403		{object}	httpx.ErrorBody			"account_inactive"
//	@Failure		429		{object}	httpx.ErrorBody			"rate_limit_exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		result := loginServerError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			result = loginInvalid
		case errors.Is(err, service.ErrAccountInactive):
			result = loginInactive
		case errors.Is(err, service.ErrValidation):
			result = loginRejected
		}
		h.Metrics.logins.WithLabelValues(result).Inc()
		writeServiceError(w, r, err)
		return
	}
	h.Metrics.logins.WithLabelValues(loginSuccess).Inc()

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		User:   toUserResponse(res.User),
		Tokens: toTokens(res.Tokens),
	})
}

// Refresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Verifies a refresh token and returns a new access token. The refresh token is not rotated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"refreshToken"
//	@Success		200		{object}	authsdk.RefreshResponse	"accessToken"
//	@Failure		400		{object}	httpx.ErrorBody			"validation_error"
//	@Failure		401		{object}	httpx.ErrorBody			"invalid_token"
//	@Failure		403		{object}	httpx.ErrorBody			"account_inactive"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tok, _, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			slogx.FromContext(r.Context()).Debug("refresh rejected", "err", err)
		}
		h.Metrics.refreshes.WithLabelValues(resultOf(err)).Inc()
		writeServiceError(w, r, err)
		return
	}
	h.Metrics.refreshes.WithLabelValues("success").Inc()

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{AccessToken: tok})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Tokens are stateless; the client discards them. Kept for API symmetry and audit logging.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	httpx.ErrorBody	"token_required, invalid_token or token_expired"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("logout")
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "logged out"})
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "validation_error"
	case errors.Is(err, service.ErrDuplicateAccount):
		return "duplicate"
	case errors.Is(err, service.ErrInvalidRefresh):
		return "invalid_token"
	case errors.Is(err, service.ErrAccountInactive):
		return "account_inactive"
	default:
		return "error"
	}
}
