package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/pkg/idx"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
)

func newLoginService(t *testing.T, f *fixture) (*LoginService, *jwtx.Codec) {
	t.Helper()

	signer, err := jwtx.NewSignerHS256("", []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(signer, jwtx.Options{
		Issuer: "scholarspace",
		Roles:  domain.RoleNames(),
		Now:    f.clock.Now,
	})
	require.NoError(t, err)

	return &LoginService{
		Store:     f.store,
		Hasher:    f.hasher,
		Tokens:    codec,
		AccessTTL: time.Hour,
		Now:       f.clock.Now,
	}, codec
}

func TestLogin_SeededAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore(t))
	login, codec := newLoginService(t, f)

	seeded, err := f.users.SeedDemoUsers(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	res, err := login.Login(ctx, " Admin@Example.com ", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "admin@example.com", res.User.Email)
	require.Equal(t, domain.RoleAdmin, res.User.Role)
	require.True(t, res.ExpiresAt.Equal(f.clock.Now().Add(time.Hour)))

	claims, err := codec.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Subject)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, "ADMIN", claims.Role)

	stored, err := f.store.Users().GetUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	require.True(t, stored.LastLoginAt.Equal(f.clock.Now()))
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore(t))
	login, _ := newLoginService(t, f)

	u := f.register(t, "alice@uni.edu", "correct-horse")

	t.Run("unknown email", func(t *testing.T) {
		_, err := login.Login(ctx, "ghost@uni.edu", "whatever1")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := login.Login(ctx, "alice@uni.edu", "battery-staple")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated beats wrong password", func(t *testing.T) {
		_, err := f.users.SetActive(ctx, u.ID, false)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = f.users.SetActive(ctx, u.ID, true) })

		_, err = login.Login(ctx, "alice@uni.edu", "correct-horse")
		require.ErrorIs(t, err, ErrAccountDeactivated)
		_, err = login.Login(ctx, "alice@uni.edu", "battery-staple")
		require.ErrorIs(t, err, ErrAccountDeactivated)
	})

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stored.LastLoginAt, "failed logins must not write")
}

func TestLogin_UpgradesLegacyBcrypt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore(t))
	login, _ := newLoginService(t, f)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	now := f.clock.Now()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Legacy Instructor",
		Email:        "legacy@uni.edu",
		PasswordHash: string(legacy),
		Role:         domain.RoleInstructor,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Users().CreateUser(ctx, u))

	_, err = login.Login(ctx, "legacy@uni.edu", "legacy-pass")
	require.NoError(t, err)

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, f.hasher.NeedsRehash(stored.PasswordHash))
	require.True(t, f.hasher.Verify("legacy-pass", stored.PasswordHash))

	_, err = login.Login(ctx, "legacy@uni.edu", "legacy-pass")
	require.NoError(t, err)
}
