package http

import (
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/scholarspace/scholarspace/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

func toProfile(u domain.User) authsdk.UserProfile {
	return authsdk.UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role.String(),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// principal returns the caller, writing a 401 if there is none. The policy
// table keeps unauthenticated requests away from these handlers; this is the
// fallback if a route is ever made public.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return domain.Principal{}, false
	}
	return p, true
}

// HandleProfile returns the caller's profile.
//
//	@Summary		Current user profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserProfile
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthenticated"
//	@Failure		404	{object}	authsdk.ErrorResponse	"user_not_found"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/users/profile [get].
func (h *UsersHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Profile(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}

// HandleChangePassword replaces the caller's password.
//
//	@Summary		Change password
//	@Description	Replaces the caller's password after checking the current one. Outstanding reset links stop working.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request or weak_password"
//	@Failure		401		{object}	authsdk.ErrorResponse	"unauthenticated or invalid_credentials"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/users/me/password [post].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password changed successfully"})
}

// HandleCreate creates an account with an explicit role.
//
//	@Summary		Create user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"New account"
//	@Success		201		{object}	authsdk.UserProfile
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request or weak_password"
//	@Failure		401		{object}	authsdk.ErrorResponse	"unauthenticated"
//	@Failure		403		{object}	authsdk.ErrorResponse	"forbidden"
//	@Failure		409		{object}	authsdk.ErrorResponse	"email_taken"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/admin/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), service.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProfile(user))
}

// HandleActivate re-enables an account.
//
//	@Summary		Activate user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.UserProfile
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	authsdk.ErrorResponse	"forbidden"
//	@Failure		404	{object}	authsdk.ErrorResponse	"user_not_found"
//	@Router			/api/admin/users/{id}/activate [put].
func (h *UsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// HandleDeactivate disables an account. Its tokens stop authenticating on
// the next request.
//
//	@Summary		Deactivate user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.UserProfile
//	@Failure		401	{object}	authsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	authsdk.ErrorResponse	"forbidden"
//	@Failure		404	{object}	authsdk.ErrorResponse	"user_not_found"
//	@Router			/api/admin/users/{id}/deactivate [put].
func (h *UsersHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UsersHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	user, err := h.UserService.SetActive(r.Context(), r.PathValue("id"), active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}
