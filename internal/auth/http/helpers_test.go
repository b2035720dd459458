package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/notify"
	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/sqlite"
	"github.com/scholarspace/scholarspace/pkg/cryptox"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	signer, err := jwtx.NewSignerHS256("", testSecret)
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(signer, jwtx.Options{
		Issuer: "scholarspace-test",
		TTL:    time.Hour,
		Roles:  domain.RoleNames(),
	})
	require.NoError(t, err)
	return codec
}

type testServer struct {
	router *Router
	store  *sqlite.Store
	codec  *jwtx.Codec
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec := newTestCodec(t)
	hasher := cryptox.NewHasher("test-pepper")
	users := &service.UserService{Store: st, Hasher: hasher}

	seeded, err := users.SeedDemoUsers(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)

	r := NewRouter(codec, nil, "test", st, slogx.Discard(), false)
	r.LoginService = &service.LoginService{Store: st, Hasher: hasher, Tokens: codec}
	r.ResetService = &service.ResetService{
		Store:       st,
		Hasher:      hasher,
		Notifier:    notify.LogNotifier{},
		FrontendURL: "http://localhost:3000",
		ExposeToken: true,
	}
	r.UserService = users
	r.ApplyRoutes()

	return &testServer{router: r, store: st, codec: codec, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[struct {
		Error string `json:"error"`
	}](t, rec).Error
}
