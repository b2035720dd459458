package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/internal/auth/policy"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/pkg/httpx"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// Verifier checks bearer tokens. jwtx.Codec implements it.
type Verifier interface {
	Verify(token string) (jwtx.Claims, error)
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal set by Authenticate, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the bearer token into a Principal. The role comes
// from the live user record; the token's role claim is only used when the
// store cannot be reached. The request always continues: a missing or bad
// token simply leaves no principal for Authorize to find.
func Authenticate(v Verifier, users store.Users) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			l := slogx.FromContext(ctx)

			claims, err := v.Verify(raw)
			if err != nil {
				l.Debug("bearer token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			p, ok := resolvePrincipal(ctx, users, claims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx = slogx.With(WithPrincipal(ctx, p), slog.String("user_id", p.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolvePrincipal(ctx context.Context, users store.Users, claims jwtx.Claims) (domain.Principal, bool) {
	l := slogx.FromContext(ctx)
	p := domain.Principal{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
	}

	user, err := users.GetUserByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.Info("token subject has no account", slog.String("subject", claims.Subject))
		return domain.Principal{}, false

	case err != nil:
		role, perr := domain.ParseRole(claims.Role)
		if perr != nil {
			return domain.Principal{}, false
		}
		l.Warn("identity store unavailable, using token role",
			slog.String("subject", claims.Subject),
			slog.Any("error", err),
		)
		p.Role = role
		p.RoleSource = domain.RoleSourceToken
		return p, true
	}

	if !user.Active {
		l.Info("token for deactivated account", slog.String("user_id", user.ID))
		return domain.Principal{}, false
	}
	if claims.UserID != "" && claims.UserID != user.ID {
		// The address now belongs to a different account.
		l.Info("token subject reassigned", slog.String("subject", claims.Subject))
		return domain.Principal{}, false
	}

	p.UserID = user.ID
	p.Role = user.Role
	p.RoleSource = domain.RoleSourceStore
	return p, true
}

// Authorize enforces the policy table. Denials are written here and the
// handler is never reached.
func Authorize(e *policy.Engine) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal *domain.Principal
			if p, ok := PrincipalFromContext(r.Context()); ok {
				principal = &p
			}

			switch e.Evaluate(r.Method, r.URL.Path, principal) {
			case policy.Allow:
				next.ServeHTTP(w, r)
			case policy.DenyUnauthenticated:
				w.Header().Set("WWW-Authenticate", `Bearer realm="scholarspace"`)
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
			default:
				slogx.FromContext(r.Context()).Info("request forbidden",
					slog.String("role", principal.Role.String()),
				)
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}
