package http

import (
	"net/http"

	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
)

type ProfileHandler struct {
	AuthService *service.AuthService
}

// Get godoc
//
//	@Summary		Current user
//	@Description	Returns the account behind the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse
//	@Failure		401	{object}	httpx.ErrorBody	"token_required, invalid_token or token_expired"
//	@Failure		404	{object}	httpx.ErrorBody	"account no longer exists"
//	@Router			/v1/auth/profile [get].
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	u, err := h.AuthService.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: toUserResponse(u)})
}

// Update godoc
//
//	@Summary		Update current user
//	@Description	Changes the caller's display name. Role and status are admin-only.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.UpdateProfileRequest	true	"name"
//	@Success		200		{object}	authsdk.ProfileResponse
//	@Failure		400		{object}	httpx.ErrorBody	"validation_error"
//	@Failure		401		{object}	httpx.ErrorBody	"token_required, invalid_token or token_expired"
//	@Router			/v1/auth/profile [patch].
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.AuthService.UpdateProfile(r.Context(), userID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: toUserResponse(u)})
}
