package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
)

func principal(role domain.Role) *domain.Principal {
	return &domain.Principal{Subject: "someone@uni.edu", Role: role}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/auth/login", "/auth/login", true},
		{"/auth/login", "/auth/login/", true},
		{"/auth/login", "/auth/logout", false},
		{"/api/users/{id}", "/api/users/42", true},
		{"/api/users/{id}", "/api/users", false},
		{"/api/users/{id}", "/api/users/42/roles", false},
		{"/api/*/profile", "/api/users/profile", true},
		{"/api/admin/**", "/api/admin", true},
		{"/api/admin/**", "/api/admin/users/1/activate", true},
		{"/api/admin/**", "/api/administrator", false},
		{"/**", "/", true},
		{"/**", "/anything/at/all", true},
		{"/", "/", true},
		{"/api/admin/**", "/api/users/../admin/users", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p, err := compilePattern(tt.pattern)
			require.NoError(t, err)
			require.Equal(t, tt.want, p.match(splitPath(tt.path)))
		})
	}
}

func TestCompilePatternRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"api/users",
		"/api/**/users",
		"/api//users",
		"/api/{}",
		"/api/{id",
		"/api/user*",
		"/api/***",
	} {
		_, err := compilePattern(raw)
		require.ErrorIs(t, err, ErrBadPattern, "pattern %q", raw)
	}
}

func TestPatternCovers(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"/api/**", "/api/users/**", true},
		{"/api/**", "/api", true},
		{"/api/users/**", "/api/**", false},
		{"/api/*", "/api/users", true},
		{"/api/{id}", "/api/*", true},
		{"/api/users", "/api/{id}", false},
		{"/api/*", "/api/*/x", false},
		{"/**", "/", true},
	}

	for _, tt := range tests {
		a, err := compilePattern(tt.a)
		require.NoError(t, err)
		b, err := compilePattern(tt.b)
		require.NoError(t, err)
		require.Equal(t, tt.want, a.covers(b), "%s covers %s", tt.a, tt.b)
	}
}

func TestNewValidation(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		_, err := New(Rule{Pattern: "/x", Access: Roles("ROOT")})
		require.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("empty role set", func(t *testing.T) {
		_, err := New(Rule{Pattern: "/x", Access: Roles()})
		require.ErrorIs(t, err, ErrEmptyRoleSet)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := New(Rule{Pattern: "/a/**/b", Access: Public()})
		require.ErrorIs(t, err, ErrBadPattern)
	})

	t.Run("catch-all before specific rule", func(t *testing.T) {
		_, err := New(
			Rule{Pattern: "/api/**", Access: Authenticated()},
			Rule{Pattern: "/api/admin/**", Access: Roles(domain.RoleAdmin)},
		)
		require.ErrorIs(t, err, ErrShadowedRule)
	})

	t.Run("any-method rule shadows method rule", func(t *testing.T) {
		_, err := New(
			Rule{Pattern: "/api/users/{id}", Access: Roles(domain.RoleAdmin)},
			Rule{Method: http.MethodGet, Pattern: "/api/users/*", Access: Authenticated()},
		)
		require.ErrorIs(t, err, ErrShadowedRule)
	})

	t.Run("method rule does not shadow other methods", func(t *testing.T) {
		_, err := New(
			Rule{Method: http.MethodGet, Pattern: "/api/**", Access: Authenticated()},
			Rule{Pattern: "/api/admin/**", Access: Roles(domain.RoleAdmin)},
		)
		require.NoError(t, err)
	})

	t.Run("redundant rule with same access is allowed", func(t *testing.T) {
		_, err := New(
			Rule{Pattern: "/api/**", Access: Roles(domain.RoleAdmin, domain.RoleStudent)},
			Rule{Pattern: "/api/x", Access: Roles(domain.RoleStudent, domain.RoleAdmin)},
		)
		require.NoError(t, err)
	})

	t.Run("specific before general is fine", func(t *testing.T) {
		_, err := New(
			Rule{Pattern: "/api/admin/**", Access: Roles(domain.RoleAdmin)},
			Rule{Pattern: "/api/**", Access: Authenticated()},
		)
		require.NoError(t, err)
	})
}

func TestDefaultTableIsValid(t *testing.T) {
	_, err := New(DefaultRules()...)
	require.NoError(t, err)
}

// Every pair of overlapping rules with different access must be ordered
// specific-first. New enforces this; the test pins the property on the
// shipped table explicitly.
func TestDefaultTableOrdering(t *testing.T) {
	rules := DefaultRules()
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		p, err := compilePattern(r.Pattern)
		require.NoError(t, err)
		compiled[i] = compiledRule{Rule: r, method: r.Method, path: p}
	}

	for i := range compiled {
		for j := i + 1; j < len(compiled); j++ {
			earlier, later := compiled[i], compiled[j]
			if earlier.Access.equal(later.Access) {
				continue
			}
			shadowed := earlier.coversMethod(later) && earlier.path.covers(later.path)
			require.False(t, shadowed, "%s shadows %s", earlier.Rule, later.Rule)
		}
	}
}

func TestEvaluateDefault(t *testing.T) {
	e := Default()

	tests := []struct {
		name   string
		method string
		path   string
		who    *domain.Principal
		want   Decision
	}{
		{"login is public", http.MethodPost, "/auth/login", nil, Allow},
		{"forgot password is public", http.MethodPost, "/auth/forgot-password", nil, Allow},
		{"preflight is public", http.MethodOptions, "/api/admin/users", nil, Allow},
		{"livez is public", http.MethodGet, "/livez", nil, Allow},

		{"admin route, student", http.MethodPost, "/api/admin/users", principal(domain.RoleStudent), DenyForbidden},
		{"admin route, admin", http.MethodPost, "/api/admin/users", principal(domain.RoleAdmin), Allow},
		{"admin route, anonymous", http.MethodPost, "/api/admin/users", nil, DenyUnauthenticated},
		{"admin route via dot segments", http.MethodGet, "/api/users/../admin/users", principal(domain.RoleStudent), DenyForbidden},

		{"instructor route, instructor", http.MethodGet, "/api/instructor/courses", principal(domain.RoleInstructor), Allow},
		{"instructor route, student", http.MethodGet, "/api/instructor/courses", principal(domain.RoleStudent), DenyForbidden},

		{"student enrollments, student", http.MethodGet, "/api/enrollments/student/1", principal(domain.RoleStudent), Allow},
		{"student enrollments, instructor", http.MethodGet, "/api/enrollments/student/1", principal(domain.RoleInstructor), DenyForbidden},

		{"profile, any role", http.MethodGet, "/api/users/profile", principal(domain.RoleStudent), Allow},
		{"profile, anonymous", http.MethodGet, "/api/users/profile", nil, DenyUnauthenticated},

		{"unlisted api route, authenticated", http.MethodGet, "/api/reports", principal(domain.RoleStudent), Allow},
		{"unlisted route, anonymous", http.MethodGet, "/somewhere", nil, DenyUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, e.Evaluate(tt.method, tt.path, tt.who))
		})
	}
}

func TestEvaluateNoMatchDefaultsToAuthenticated(t *testing.T) {
	e := MustNew(Rule{Pattern: "/open", Access: Public()})

	require.Equal(t, Allow, e.Evaluate(http.MethodGet, "/open", nil))
	require.Equal(t, DenyUnauthenticated, e.Evaluate(http.MethodGet, "/closed", nil))
	require.Equal(t, Allow, e.Evaluate(http.MethodGet, "/closed", principal(domain.RoleStudent)))
}

func TestFirstMatchWins(t *testing.T) {
	e := MustNew(
		Rule{Method: http.MethodGet, Pattern: "/api/courses/**", Access: Public()},
		Rule{Pattern: "/api/courses/**", Access: Roles(domain.RoleInstructor)},
	)

	require.Equal(t, Allow, e.Evaluate(http.MethodGet, "/api/courses/1", nil))
	require.Equal(t, DenyUnauthenticated, e.Evaluate(http.MethodPost, "/api/courses/1", nil))
	require.Equal(t, DenyForbidden, e.Evaluate(http.MethodPost, "/api/courses/1", principal(domain.RoleStudent)))

	r, ok := e.Match("post", "/api/courses/1")
	require.True(t, ok)
	require.Equal(t, "/api/courses/**", r.Pattern)
	require.Empty(t, r.Method)
}
