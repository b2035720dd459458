package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scholarspace/scholarspace/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"), mw("c"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusForbidden, "forbidden")

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantFields map[string]string
	}{
		{name: "valid", body: `{"email":"a@b.co","password":"x"}`},
		{name: "not json", body: `{`, wantErr: true},
		{name: "missing password", body: `{"email":"a@b.co"}`, wantErr: true, wantFields: map[string]string{"password": "required"}},
		{name: "bad email", body: `{"email":"nope","password":"x"}`, wantErr: true, wantFields: map[string]string{"email": "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst loginBody
			err := httpx.DecodeJSON(req, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var verr *httpx.ValidationError
			if tt.wantFields == nil {
				require.True(t, errors.Is(err, httpx.ErrInvalidBody))
				return
			}
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.wantFields, verr.Fields)

			rec := httptest.NewRecorder()
			httpx.WriteDecodeError(rec, err)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp httpx.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, "invalid_request", resp.Error)
			require.Equal(t, tt.wantFields, resp.Fields)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), httpx.SecurityHeaders(false))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestValidateVar(t *testing.T) {
	require.NoError(t, httpx.ValidateVar("ada@uni.edu", "required,email"))

	for _, v := range []string{"", "ada", "ada@", "Ada <ada@uni.edu>", "a da@uni.edu"} {
		err := httpx.ValidateVar(v, "required,email")
		require.ErrorIs(t, err, httpx.ErrInvalidBody, v)
	}
}
