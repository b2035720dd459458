package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Session is an authenticated connection to the auth service. Tokens are
// not refreshed; log in again once ExpiresAt has passed.
type Session struct {
	client    *SDKClient
	token     string
	expiresAt time.Time
	user      UserProfile
}

func newSession(c *SDKClient, resp LoginResponse) *Session {
	return &Session{
		client:    c,
		token:     resp.Token,
		expiresAt: resp.ExpiresAt,
		user: UserProfile{
			ID:     resp.UserID,
			Name:   resp.Name,
			Email:  resp.Email,
			Role:   resp.Role,
			Active: true,
		},
	}
}

// NewSessionFromToken wraps an existing bearer token.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string { return s.token }

// ExpiresAt returns the token expiry, or the zero time if unknown.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// User returns the user summary received at login.
func (s *Session) User() UserProfile { return s.user }

// Profile fetches the current user's profile.
func (s *Session) Profile(ctx context.Context) (*UserProfile, error) {
	var p UserProfile
	if err := s.client.doJSON(ctx, http.MethodGet, "/api/users/profile", s.token, nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// ChangePassword replaces the current user's password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	var resp MessageResponse
	return s.client.doJSON(ctx, http.MethodPost, "/api/users/me/password", s.token,
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, &resp, http.StatusOK)
}

// CreateUser creates an account with an explicit role. Admin only.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserProfile, error) {
	var p UserProfile
	if err := s.client.doJSON(ctx, http.MethodPost, "/api/admin/users", s.token, req, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetUserActive activates or deactivates an account. Admin only.
func (s *Session) SetUserActive(ctx context.Context, userID string, active bool) (*UserProfile, error) {
	action := "deactivate"
	if active {
		action = "activate"
	}
	var p UserProfile
	path := "/api/admin/users/" + url.PathEscape(userID) + "/" + action
	if err := s.client.doJSON(ctx, http.MethodPut, path, s.token, nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}
