package authsdk

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeUnauthenticated    = "unauthenticated"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeUserNotFound       = "user_not_found"
	ErrorCodeAccountDeactivated = "account_deactivated"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeExpiredToken       = "expired_token"
	ErrorCodeTokenAlreadyUsed   = "token_already_used"
	ErrorCodeEmailTaken         = "email_taken"
	ErrorCodeWeakPassword       = "weak_password"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeServerError        = "server_error"
)

// APIError is a non-2xx response decoded by the client.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Code)
}

// Is matches another *APIError by code, so errors.Is(err, ErrForbidden)
// works on decoded responses.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUnauthenticated    = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeUnauthenticated}
	ErrForbidden          = &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodeForbidden}
	ErrUserNotFound       = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeUserNotFound}
	ErrAccountDeactivated = &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodeAccountDeactivated}
	ErrInvalidCredentials = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidCredentials}
	ErrInvalidToken       = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidToken}
	ErrExpiredToken       = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeExpiredToken}
	ErrTokenAlreadyUsed   = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeTokenAlreadyUsed}
	ErrEmailTaken         = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeEmailTaken}
	ErrWeakPassword       = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeWeakPassword}
)
