package http

import (
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/scholarspace/scholarspace/pkg/httpx"
)

const forgotPasswordMessage = "If your email exists in our system, you will receive a password reset link shortly"

type ResetHandler struct {
	ResetService *service.ResetService
}

// HandleForgot starts a password reset.
//
//	@Summary		Request a password reset
//	@Description	Mails a single-use reset link to the address if it belongs to an active account. The response is the same whether or not it does.
//	@Tags			Password reset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	authsdk.ForgotPasswordResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/auth/forgot-password [post].
func (h *ResetHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	res, err := h.ResetService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ForgotPasswordResponse{
		Message: forgotPasswordMessage,
		Token:   res.Token,
	})
}

// HandleReset redeems a reset token.
//
//	@Summary		Reset a password
//	@Description	Redeems a reset token and sets a new password. Each token works once.
//	@Tags			Password reset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_token, expired_token, token_already_used or weak_password"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/auth/reset-password [post].
func (h *ResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	if err := h.ResetService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password has been reset successfully"})
}

// HandleValidate checks a reset token without using it.
//
//	@Summary		Validate a reset token
//	@Description	Reports whether the token could be redeemed right now. Never changes state.
//	@Tags			Password reset
//	@Produce		json
//	@Param			token	query		string	true	"Reset token"
//	@Success		200		{object}	authsdk.ValidateResetTokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/auth/validate-reset-token [get].
func (h *ResetHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:  "invalid_request",
			Fields: map[string]string{"token": "required"},
		})
		return
	}

	valid, err := h.ResetService.ValidateResetToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ValidateResetTokenResponse{Valid: valid})
}
