package auth_test

import (
	"testing"

	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestPasswordResetFlow walks forgot, validate, reset and login.
func TestPasswordResetFlow(t *testing.T) {
	baseURL, cleanup := setupAuthServer(t, testConfig(t))
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	forgot, err := client.ForgotPassword(t.Context(), studentEmail)
	require.NoError(t, err)
	require.NotEmpty(t, forgot.Message)
	require.NotEmpty(t, forgot.Token, "token is exposed in test config")

	valid, err := client.ValidateResetToken(t.Context(), forgot.Token)
	require.NoError(t, err)
	require.True(t, valid)

	require.NoError(t, client.ResetPassword(t.Context(), forgot.Token, "fresh-password"))

	valid, err = client.ValidateResetToken(t.Context(), forgot.Token)
	require.NoError(t, err)
	require.False(t, valid)

	err = client.ResetPassword(t.Context(), forgot.Token, "another-password")
	require.ErrorIs(t, err, authsdk.ErrTokenAlreadyUsed)

	_, err = client.Login(t.Context(), studentEmail, studentPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	loginAs(t, client, studentEmail, "fresh-password")
}

// TestForgotPasswordUnknownEmail verifies the response does not reveal
// whether an account exists.
func TestForgotPasswordUnknownEmail(t *testing.T) {
	baseURL, cleanup := setupAuthServer(t, testConfig(t))
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	ghost, err := client.ForgotPassword(t.Context(), "ghost@example.com")
	require.NoError(t, err)
	require.Empty(t, ghost.Token)

	known, err := client.ForgotPassword(t.Context(), adminEmail)
	require.NoError(t, err)
	require.Equal(t, known.Message, ghost.Message)
}

// TestForgotPasswordSupersedes verifies only the newest token is redeemable.
func TestForgotPasswordSupersedes(t *testing.T) {
	baseURL, cleanup := setupAuthServer(t, testConfig(t))
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	first, err := client.ForgotPassword(t.Context(), instructorEmail)
	require.NoError(t, err)
	second, err := client.ForgotPassword(t.Context(), instructorEmail)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	err = client.ResetPassword(t.Context(), first.Token, "fresh-password")
	require.ErrorIs(t, err, authsdk.ErrTokenAlreadyUsed)

	require.NoError(t, client.ResetPassword(t.Context(), second.Token, "fresh-password"))
}

// TestResetPasswordRejections covers bad tokens and weak passwords.
func TestResetPasswordRejections(t *testing.T) {
	baseURL, cleanup := setupAuthServer(t, testConfig(t))
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	err := client.ResetPassword(t.Context(), "no-such-token", "fresh-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	// An unusable token is reported even when the password is also weak.
	err = client.ResetPassword(t.Context(), "no-such-token", "short")
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	forgot, err := client.ForgotPassword(t.Context(), studentEmail)
	require.NoError(t, err)

	err = client.ResetPassword(t.Context(), forgot.Token, "short")
	require.ErrorIs(t, err, authsdk.ErrWeakPassword)

	// A rejected attempt leaves the token usable.
	require.NoError(t, client.ResetPassword(t.Context(), forgot.Token, "fresh-password"))
}
