package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// TokenIssuer signs bearer tokens. jwtx.Codec implements it.
type TokenIssuer interface {
	Issue(subject, userID, role string, ttl time.Duration) (string, jwtx.Claims, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type LoginService struct {
	Store     store.Store
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	AccessTTL time.Duration
	Now       func() time.Time
}

// Login checks the credentials and issues a bearer token. Failures perform
// no writes.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login for unknown email")
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}
	if !user.Active {
		l.Info("login for deactivated account", slog.String("user_id", user.ID))
		return LoginResult{}, ErrAccountDeactivated
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Info("login with wrong password", slog.String("user_id", user.ID))
		return LoginResult{}, ErrInvalidCredentials
	}

	token, claims, err := s.Tokens.Issue(user.Email, user.ID, user.Role.String(), s.AccessTTL)
	if err != nil {
		l.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return LoginResult{}, err
	}

	now := clock(s.Now)
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.LastLoginAt = &now

	if s.Hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, &user, password, now)
	}

	l.Info("login succeeded", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAtTime(), User: user}, nil
}

// rehash upgrades a legacy digest. A failure leaves the old digest in place.
func (s *LoginService) rehash(ctx context.Context, user *domain.User, password string, now time.Time) {
	l := slogx.FromContext(ctx)

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("rehash failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, digest, now); err != nil {
		l.Warn("rehash not stored", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	user.PasswordHash = digest
	l.Info("password digest upgraded", slog.String("user_id", user.ID))
}
