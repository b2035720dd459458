package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/pkg/httpx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// writeServiceError maps service errors onto status codes. Anything
// unrecognised is logged and reported as server_error with the request id
// as a reference.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrAccountDeactivated):
		httpx.WriteError(w, http.StatusForbidden, service.ErrAccountDeactivated.Error())
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrUserNotFound.Error())
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, service.ErrEmailTaken.Error())
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, service.ErrInvalidToken.Error())
	case errors.Is(err, service.ErrExpiredToken):
		httpx.WriteError(w, http.StatusBadRequest, service.ErrExpiredToken.Error())
	case errors.Is(err, service.ErrTokenAlreadyUsed):
		httpx.WriteError(w, http.StatusBadRequest, service.ErrTokenAlreadyUsed.Error())
	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:   service.ErrWeakPassword.Error(),
			Message: fmt.Sprintf("Password must be at least %d characters long", service.MinPasswordLength),
		})
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:   service.ErrInvalidRequest.Error(),
			Message: err.Error(),
		})
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		resp := httpx.ErrorResponse{Error: "server_error"}
		if id := slogx.RequestID(r.Context()); id != "" {
			resp.Message = "Reference: " + id
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, resp)
	}
}
