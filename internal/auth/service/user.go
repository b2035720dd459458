package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/pkg/httpx"
	"github.com/scholarspace/scholarspace/pkg/idx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// NewUser describes an account to create.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type UserService struct {
	Store  store.Store
	Hasher PasswordHasher
	Now    func() time.Time
}

// Register creates a self-service account. Registered users are always
// students; any requested role is ignored.
func (s *UserService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	return s.create(ctx, NewUser{Name: name, Email: email, Password: password, Role: domain.RoleStudent})
}

// CreateUser creates an account with an explicit role.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	if !in.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidRequest, domain.ErrUnknownRole)
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUser) (domain.User, error) {
	l := slogx.FromContext(ctx)

	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if err := httpx.ValidateVar(email, "required,email"); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email", ErrInvalidRequest)
	}
	if err := checkPassword(in.Password); err != nil {
		return domain.User{}, err
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	l.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}

// SetActive activates or deactivates an account. Deactivated users can no
// longer log in and their outstanding tokens stop authenticating.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) (domain.User, error) {
	if _, err := idx.Parse(userID); err != nil {
		return domain.User{}, ErrUserNotFound
	}
	if err := s.Store.Users().SetActive(ctx, userID, active, clock(s.Now)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user active flag changed",
		slog.String("user_id", userID),
		slog.Bool("active", active),
	)
	return s.Profile(ctx, userID)
}

// ChangePassword replaces the password after checking the current one. Any
// outstanding reset token is invalidated.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !s.Hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	digest, err := s.Hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, digest, now); err != nil {
			return err
		}
		_, err := tx.ResetTokens().InvalidateUserResetTokens(ctx, userID, now)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}

// Profile returns the user with the given id.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
