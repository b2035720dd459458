package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/policy"
	"github.com/scholarspace/scholarspace/internal/auth/store"
)

// stubUsers serves GetUserByEmail from a map, or fails with err.
type stubUsers struct {
	store.Users
	byEmail map[string]domain.User
	err     error
}

func (s *stubUsers) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	u, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func capturePrincipal(t *testing.T, mw func(http.Handler) http.Handler, token string) (domain.Principal, bool) {
	t.Helper()

	var (
		got domain.Principal
		ok  bool
	)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, "authentication never aborts the request")
	return got, ok
}

func TestAuthenticate(t *testing.T) {
	codec := newTestCodec(t)

	alice := domain.User{ID: "01J0ALICE", Email: "alice@uni.edu", Role: domain.RoleInstructor, Active: true}
	bob := domain.User{ID: "01J0BOB", Email: "bob@uni.edu", Role: domain.RoleStudent, Active: false}
	users := &stubUsers{byEmail: map[string]domain.User{alice.Email: alice, bob.Email: bob}}

	// The claim says STUDENT; the record says INSTRUCTOR.
	aliceToken, _, err := codec.Issue(alice.Email, alice.ID, "STUDENT", 0)
	require.NoError(t, err)

	t.Run("role comes from the store", func(t *testing.T) {
		p, ok := capturePrincipal(t, Authenticate(codec, users), "Bearer "+aliceToken)
		require.True(t, ok)
		require.Equal(t, alice.Email, p.Subject)
		require.Equal(t, alice.ID, p.UserID)
		require.Equal(t, domain.RoleInstructor, p.Role)
		require.Equal(t, domain.RoleSourceStore, p.RoleSource)
		require.False(t, p.ExpiresAt.IsZero())
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		_, ok := capturePrincipal(t, Authenticate(codec, users), "bearer "+aliceToken)
		require.True(t, ok)
	})

	t.Run("no header", func(t *testing.T) {
		_, ok := capturePrincipal(t, Authenticate(codec, users), "")
		require.False(t, ok)
	})

	t.Run("other scheme", func(t *testing.T) {
		_, ok := capturePrincipal(t, Authenticate(codec, users), "Basic "+aliceToken)
		require.False(t, ok)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, ok := capturePrincipal(t, Authenticate(codec, users), "Bearer not.a.jwt")
		require.False(t, ok)
	})

	t.Run("deactivated user", func(t *testing.T) {
		tok, _, err := codec.Issue(bob.Email, bob.ID, "STUDENT", 0)
		require.NoError(t, err)
		_, ok := capturePrincipal(t, Authenticate(codec, users), "Bearer "+tok)
		require.False(t, ok)
	})

	t.Run("unknown subject", func(t *testing.T) {
		tok, _, err := codec.Issue("ghost@uni.edu", "01J0GHOST", "ADMIN", 0)
		require.NoError(t, err)
		_, ok := capturePrincipal(t, Authenticate(codec, users), "Bearer "+tok)
		require.False(t, ok)
	})

	t.Run("email reassigned to another account", func(t *testing.T) {
		tok, _, err := codec.Issue(alice.Email, "01J0SOMEONEELSE", "INSTRUCTOR", 0)
		require.NoError(t, err)
		_, ok := capturePrincipal(t, Authenticate(codec, users), "Bearer "+tok)
		require.False(t, ok)
	})

	t.Run("store unreachable falls back to token role", func(t *testing.T) {
		down := &stubUsers{err: errors.New("connection refused")}
		p, ok := capturePrincipal(t, Authenticate(codec, down), "Bearer "+aliceToken)
		require.True(t, ok)
		require.Equal(t, domain.RoleStudent, p.Role)
		require.Equal(t, domain.RoleSourceToken, p.RoleSource)
		require.Equal(t, alice.ID, p.UserID)
	})
}

func TestAuthorize(t *testing.T) {
	engine := policy.MustNew(
		policy.Rule{Pattern: "/auth/**", Access: policy.Public()},
		policy.Rule{Pattern: "/api/admin/**", Access: policy.Roles(domain.RoleAdmin)},
	)
	h := Authorize(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(path string, p *domain.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if p != nil {
			req = req.WithContext(WithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	student := &domain.Principal{Subject: "s@uni.edu", UserID: "1", Role: domain.RoleStudent}
	admin := &domain.Principal{Subject: "a@uni.edu", UserID: "2", Role: domain.RoleAdmin}

	t.Run("public", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, serve("/auth/login", nil).Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := serve("/api/admin/users", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
		require.Equal(t, "unauthenticated", errorCode(t, rec))
	})

	t.Run("forbidden", func(t *testing.T) {
		rec := serve("/api/admin/users", student)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Empty(t, rec.Header().Get("WWW-Authenticate"))
		require.Equal(t, "forbidden", errorCode(t, rec))
	})

	t.Run("allowed role", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, serve("/api/admin/users", admin).Code)
	})

	t.Run("unmatched path needs any principal", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, serve("/api/courses", nil).Code)
		require.Equal(t, http.StatusNoContent, serve("/api/courses", student).Code)
	})
}
