package http

import (
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/scholarspace/scholarspace/pkg/httpx"
)

type RegisterHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles self-registration.
//
//	@Summary		Register
//	@Description	Creates a student account. Self-registered accounts are always students.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.RegisterResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request or weak_password"
//	@Failure		409		{object}	authsdk.ErrorResponse	"email_taken"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
		Email:   user.Email,
	})
}
