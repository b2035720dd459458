package service

import (
	"errors"
	"time"
)

// Errors returned by the services. The messages double as the stable error
// codes written by the HTTP layer.
var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrAccountDeactivated = errors.New("account_deactivated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrExpiredToken       = errors.New("expired_token")
	ErrTokenAlreadyUsed   = errors.New("token_already_used")
	ErrEmailTaken         = errors.New("email_taken")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidRequest     = errors.New("invalid_request")
)

// MinPasswordLength applies to every password a user sets.
const MinPasswordLength = 8

// PasswordHasher hashes and verifies passwords. cryptox.Hasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
	NeedsRehash(digest string) bool
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
