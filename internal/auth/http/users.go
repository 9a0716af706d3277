package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
)

// UsersHandler serves the admin /v1/users endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// List godoc
//
//	@Summary		List users
//	@Description	Paginated account listing, newest first. Requires the admin role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int		false	"1-based page"	default(1)
//	@Param			limit	query		int		false	"page size"		default(10)	maximum(100)
//	@Param			search	query		string	false	"substring of name or email"
//	@Param			role	query		string	false	"exact role"	Enums(student, teacher, admin, faculty)
//	@Success		200		{object}	authsdk.UserListResponse
//	@Failure		400		{object}	httpx.ErrorBody	"validation_error"
//	@Failure		401		{object}	httpx.ErrorBody	"token_required, invalid_token or token_expired"
//	@Failure		403		{object}	httpx.ErrorBody	"insufficient_permissions"
//	@Router			/v1/users [get].
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.UserService.List(r.Context(), service.ListInput{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Role:   q.Get("role"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserListResponse{
		Users: toUserResponses(res.Users),
		Pagination: authsdk.Pagination{
			Page:  res.Page,
			Limit: res.Limit,
			Total: res.Total,
			Pages: res.Pages,
		},
	})
}

// Get godoc
//
//	@Summary		Get user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"user id"
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		403	{object}	httpx.ErrorBody	"insufficient_permissions"
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// Create godoc
//
//	@Summary		Create user
//	@Description	Creates an account with any role, admin included.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CreateUserRequest	true	"account"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	httpx.ErrorBody	"validation_error"
//	@Failure		403		{object}	httpx.ErrorBody	"insufficient_permissions"
//	@Failure		409		{object}	httpx.ErrorBody	"account_exists"
//	@Router			/v1/users [post].
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.UserService.Create(r.Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		InstituteID: req.InstituteID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update godoc
//
//	@Summary		Update user
//	@Description	Partial update of name, role and active flag. Role changes apply at the user's next login or refresh.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"user id"
//	@Param			body	body		authsdk.UpdateUserRequest	true	"fields to change"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		400		{object}	httpx.ErrorBody	"validation_error, or a change to your own role or active flag"
//	@Failure		403		{object}	httpx.ErrorBody	"insufficient_permissions"
//	@Failure		404		{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.UserService.Update(r.Context(), httpx.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.UpdateUserInput{
		Name:   req.Name,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// Deactivate godoc
//
//	@Summary		Deactivate user
//	@Description	Soft delete: the account remains but can no longer log in or refresh.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"user id"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"cannot deactivate your own account"
//	@Failure		403	{object}	httpx.ErrorBody	"insufficient_permissions"
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	err := h.UserService.Deactivate(r.Context(), httpx.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
