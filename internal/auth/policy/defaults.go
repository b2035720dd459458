package policy

import (
	"net/http"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
)

// DefaultRules is the service's route table, most specific first.
func DefaultRules() []Rule {
	all := Roles(domain.RoleAdmin, domain.RoleInstructor, domain.RoleStudent)

	return []Rule{
		// Credential endpoints and pre-flight requests.
		{Pattern: "/auth/**", Access: Public()},
		{Pattern: "/public/**", Access: Public()},
		{Pattern: "/error", Access: Public()},
		{Method: http.MethodOptions, Pattern: "/**", Access: Public()},

		// Operational endpoints.
		{Method: http.MethodGet, Pattern: "/livez", Access: Public()},
		{Method: http.MethodGet, Pattern: "/readyz", Access: Public()},
		{Method: http.MethodGet, Pattern: "/swagger/**", Access: Public()},

		{Pattern: "/api/dashboard/**", Access: Authenticated()},
		{Pattern: "/api/admin/**", Access: Roles(domain.RoleAdmin)},
		{Pattern: "/api/instructor/**", Access: Roles(domain.RoleAdmin, domain.RoleInstructor)},
		{Pattern: "/api/enrollments/student/**", Access: Roles(domain.RoleAdmin, domain.RoleStudent)},
		{Pattern: "/api/courses/**", Access: all},
		{Pattern: "/api/users/**", Access: all},

		{Pattern: "/api/**", Access: Authenticated()},
		{Pattern: "/**", Access: Authenticated()},
	}
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	return MustNew(DefaultRules()...)
}
