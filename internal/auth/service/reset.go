package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/notify"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/pkg/cryptox"
	"github.com/scholarspace/scholarspace/pkg/idx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// DefaultResetWindow is how long a reset token stays redeemable.
const DefaultResetWindow = 30 * time.Minute

const resetSubject = "ScholarSpace Password Reset"

// ForgotResult is the success-shaped outcome of ForgotPassword. Token is only
// set when ExposeToken is on and a token was actually issued.
type ForgotResult struct {
	Token string
}

type ResetService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Notifier notify.Notifier

	// Window defaults to DefaultResetWindow.
	Window time.Duration
	// FrontendURL is the base of the link put in the mail.
	FrontendURL string
	// ExposeToken returns the raw token to the caller. Development only.
	ExposeToken bool

	Now func() time.Time
}

func (s *ResetService) window() time.Duration {
	if s.Window <= 0 {
		return DefaultResetWindow
	}
	return s.Window
}

// ForgotPassword issues a fresh reset token for an active account and mails
// it. Unknown and deactivated addresses get the same result with no side
// effects.
func (s *ResetService) ForgotPassword(ctx context.Context, email string) (ForgotResult, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			return ForgotResult{}, nil
		}
		return ForgotResult{}, err
	}
	if !user.Active {
		l.Info("password reset requested for deactivated account", slog.String("user_id", user.ID))
		return ForgotResult{}, nil
	}

	raw, tok, err := s.issue(ctx, user.ID)
	if errors.Is(err, store.ErrAlreadyExists) {
		// A concurrent request inserted between our invalidate and insert.
		raw, tok, err = s.issue(ctx, user.ID)
	}
	if err != nil {
		l.Error("failed to issue reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return ForgotResult{}, err
	}

	l.Info("reset token issued",
		slog.String("user_id", user.ID),
		slog.String("token_id", tok.ID),
		slog.Time("expires_at", tok.ExpiresAt),
	)

	if s.Notifier != nil {
		if err := s.Notifier.Send(ctx, s.resetMessage(user, raw)); err != nil {
			l.Warn("reset mail not sent", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}

	if s.ExposeToken {
		return ForgotResult{Token: raw}, nil
	}
	return ForgotResult{}, nil
}

// issue replaces any outstanding token of the user with a new one in a
// single transaction.
func (s *ResetService) issue(ctx context.Context, userID string) (string, domain.PasswordResetToken, error) {
	secret, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", domain.PasswordResetToken{}, err
	}

	now := clock(s.Now)
	tok := domain.PasswordResetToken{
		ID:        idx.NewAt(now).String(),
		TokenHash: secret.Fingerprint,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.window()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().LockUser(ctx, userID); err != nil {
			return err
		}
		n, err := tx.ResetTokens().InvalidateUserResetTokens(ctx, userID, now)
		if err != nil {
			return err
		}
		if n > 0 {
			slogx.FromContext(ctx).Debug("superseded reset tokens",
				slog.String("user_id", userID),
				slog.Int64("count", n),
			)
		}
		return tx.ResetTokens().CreateResetToken(ctx, tok)
	})
	if err != nil {
		return "", domain.PasswordResetToken{}, err
	}
	return secret.Raw, tok, nil
}

func (s *ResetService) resetMessage(user domain.User, raw string) notify.Message {
	link := strings.TrimRight(s.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(raw)
	body := fmt.Sprintf("Hello %s,\n\n"+
		"You have requested to reset your password. Please click the link below to set a new password:\n\n"+
		"%s\n\n"+
		"This link will expire in %d minutes.\n\n"+
		"If you did not request this password reset, please ignore this email.\n\n"+
		"Regards,\nScholarSpace Team",
		user.Name, link, int(s.window().Minutes()))

	return notify.Message{To: user.Email, Subject: resetSubject, Body: body}
}

// ResetPassword redeems token and sets a new password for its owner. Token
// state is checked before password strength, so an unusable token is always
// reported as such. The token is consumed with a conditional update before
// the password is written, so concurrent redemptions succeed at most once.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	hash := cryptox.FingerprintToken(token)
	if err := diagnose(ctx, s.Store.ResetTokens(), hash, clock(s.Now)); err != nil {
		if isResetError(err) {
			l.Info("password reset rejected", slog.String("reason", err.Error()))
		}
		return err
	}

	if err := checkPassword(newPassword); err != nil {
		return err
	}

	digest, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)

	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := tx.ResetTokens().ConsumeResetToken(ctx, hash, now)
		if errors.Is(err, store.ErrConflict) {
			if err := diagnose(ctx, tx.ResetTokens(), hash, now); err != nil {
				return err
			}
			// Redeemable now but not when the update ran; treat as raced.
			return ErrTokenAlreadyUsed
		}
		if err != nil {
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, id, digest, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		userID = id
		return nil
	})
	if err != nil {
		if isResetError(err) {
			l.Info("password reset rejected", slog.String("reason", err.Error()))
		}
		return err
	}

	l.Info("password reset", slog.String("user_id", userID))
	return nil
}

// diagnose returns the reason a token cannot be redeemed at now, or nil when
// it can. Used takes precedence over expired.
func diagnose(ctx context.Context, tokens store.ResetTokens, hash string, now time.Time) error {
	tok, err := tokens.GetResetTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	switch {
	case tok.Used:
		return ErrTokenAlreadyUsed
	case tok.Expired(now):
		return ErrExpiredToken
	default:
		return nil
	}
}

func isResetError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTokenAlreadyUsed)
}

// ValidateResetToken reports whether token could be redeemed right now. It
// never changes state.
func (s *ResetService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}

	tok, err := s.Store.ResetTokens().GetResetTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return tok.Redeemable(clock(s.Now)), nil
}
