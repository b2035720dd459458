package auth_test

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/scholarspace/scholarspace/internal/auth/app"
	"github.com/scholarspace/scholarspace/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * The full application is built from config and served in-process, so
 * every request below crosses the real router, middleware and stores.
 */

const (
	adminEmail         = "admin@example.com"
	adminPassword      = "admin123"
	instructorEmail    = "instructor@example.com"
	instructorPassword = "instructor123"
	studentEmail       = "student@example.com"
	studentPassword    = "student123"
)

// testConfig returns a config backed by files under a fresh temp dir.
func testConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()

	return app.Config{
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "json",
		Port:                0,
		ShutdownGracePeriod: 5 * time.Second,
		Issuer:              "scholarspace-auth",
		Algorithm:           "EdDSA",
		SigningKeyFile:      filepath.Join(dir, "keys", "signing.pem"),
		AccessTTL:           10 * time.Hour,
		PepperFile:          filepath.Join(dir, "pepper"),
		DatabaseDriver:      "sqlite",
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		ResetWindow:         30 * time.Minute,
		FrontendURL:         "http://localhost:3000",
		ExposeResetToken:    true,
		SeedDemoUsers:       true,
		MailConfig:          app.MailConfig{Mode: "log"},
		WorkerConcurrency:   1,
	}
}

// setupAuthServer starts the auth service and returns its base URL.
func setupAuthServer(t *testing.T, cfg app.Config) (string, func()) {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())

	cleanup := func() {
		srv.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("failed to shut down application: %v", err)
		}
	}

	return srv.URL, cleanup
}

// loginAs logs in and fails the test on error.
func loginAs(t *testing.T, client *authsdk.SDKClient, email, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), email, password)
	require.NoError(t, err, "login as %s", email)
	require.NotEmpty(t, session.AccessToken())
	return session
}

// assertHealthy validates that a health response indicates a healthy service.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()

	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, app.BuildVersion, health.Version)
}
