package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/notify"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/sqlite"
	"github.com/scholarspace/scholarspace/pkg/cryptox"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *captureNotifier) Sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

func newMemStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newFileStore is used where transactions must actually run concurrently.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	store  *sqlite.Store
	clock  *testClock
	hasher *cryptox.Hasher
	mail   *captureNotifier
	users  *UserService
	reset  *ResetService
}

func newFixture(t *testing.T, s *sqlite.Store) *fixture {
	t.Helper()

	f := &fixture{
		store:  s,
		clock:  newTestClock(),
		hasher: cryptox.NewHasher("test-pepper"),
		mail:   &captureNotifier{},
	}
	f.users = &UserService{Store: s, Hasher: f.hasher, Now: f.clock.Now}
	f.reset = &ResetService{
		Store:       s,
		Hasher:      f.hasher,
		Notifier:    f.mail,
		FrontendURL: "https://scholarspace.example/",
		ExposeToken: true,
		Now:         f.clock.Now,
	}
	return f
}

func (f *fixture) register(t *testing.T, email, password string) domain.User {
	t.Helper()

	u, err := f.users.Register(context.Background(), "Alice Student", email, password)
	require.NoError(t, err)
	return u
}

func (f *fixture) liveTokens(t *testing.T, userID string) int64 {
	t.Helper()

	n, err := f.store.ResetTokens().CountLiveResetTokens(context.Background(), userID, f.clock.Now())
	require.NoError(t, err)
	return n
}
