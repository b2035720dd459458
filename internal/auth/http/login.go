package http

import (
	"errors"
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/scholarspace/scholarspace/pkg/httpx"
)

type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Verifies email and password and returns a signed bearer token. The error code tells apart unknown accounts, deactivated accounts and wrong passwords.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"user_not_found or invalid_credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"account_deactivated"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	res, err := h.LoginService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, service.ErrUserNotFound.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token:     res.Token,
		UserID:    res.User.ID,
		Name:      res.User.Name,
		Email:     res.User.Email,
		Role:      res.User.Role.String(),
		ExpiresAt: res.ExpiresAt,
	})
}
