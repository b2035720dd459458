// Package policy decides whether a request may proceed, given its method,
// path and the authenticated principal (if any).
//
// Rules are evaluated in order and the first match wins. A request that no
// rule matches requires an authenticated principal of any role. New rejects
// tables where a rule can never be reached because an earlier, broader rule
// with a different access level already matches all of its requests.
package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
)

var (
	ErrBadPattern   = errors.New("policy: bad pattern")
	ErrUnknownRole  = errors.New("policy: unknown role")
	ErrEmptyRoleSet = errors.New("policy: empty role set")
	ErrShadowedRule = errors.New("policy: rule shadowed by an earlier rule")
)

// Decision is the outcome of evaluating a request.
type Decision int

const (
	Allow Decision = iota
	// DenyUnauthenticated means a principal is required but absent (401).
	DenyUnauthenticated
	// DenyForbidden means the principal's role is not permitted (403).
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

type accessKind uint8

const (
	accessAuthenticated accessKind = iota
	accessPublic
	accessRoles
)

// Access is what a rule requires of the caller.
type Access struct {
	kind  accessKind
	roles []domain.Role
}

// Public allows every request, with or without a principal.
func Public() Access { return Access{kind: accessPublic} }

// Authenticated requires a principal of any role.
func Authenticated() Access { return Access{kind: accessAuthenticated} }

// Roles requires a principal whose role is one of roles.
func Roles(roles ...domain.Role) Access {
	return Access{kind: accessRoles, roles: roles}
}

func (a Access) equal(b Access) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind != accessRoles {
		return true
	}
	for _, r := range a.roles {
		if !slices.Contains(b.roles, r) {
			return false
		}
	}
	for _, r := range b.roles {
		if !slices.Contains(a.roles, r) {
			return false
		}
	}
	return true
}

func (a Access) String() string {
	switch a.kind {
	case accessPublic:
		return "public"
	case accessAuthenticated:
		return "authenticated"
	default:
		names := make([]string, len(a.roles))
		for i, r := range a.roles {
			names[i] = string(r)
		}
		return "roles(" + strings.Join(names, ",") + ")"
	}
}

// Rule maps a method and path pattern to the access it requires.
//
// Method "" or "*" matches any method. Pattern segments are literals,
// {name} or * (exactly one segment), or a trailing ** (zero or more
// segments).
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

func (r Rule) String() string {
	m := r.Method
	if m == "" {
		m = "*"
	}
	return m + " " + r.Pattern + " -> " + r.Access.String()
}

type compiledRule struct {
	Rule
	method string // upper-cased, "" for any
	path   pattern
}

func (c compiledRule) coversMethod(other compiledRule) bool {
	return c.method == "" || c.method == other.method
}

// Engine evaluates an ordered rule table.
type Engine struct {
	rules []compiledRule
}

// New validates and compiles rules, which are evaluated in the given order.
func New(rules ...Rule) (*Engine, error) {
	e := &Engine{rules: make([]compiledRule, 0, len(rules))}

	for i, r := range rules {
		p, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if r.Access.kind == accessRoles {
			if len(r.Access.roles) == 0 {
				return nil, fmt.Errorf("rule %d (%s): %w", i, r.Pattern, ErrEmptyRoleSet)
			}
			for _, role := range r.Access.roles {
				if !role.Valid() {
					return nil, fmt.Errorf("rule %d (%s): %w: %q", i, r.Pattern, ErrUnknownRole, role)
				}
			}
		}

		method := strings.ToUpper(strings.TrimSpace(r.Method))
		if method == "*" {
			method = ""
		}
		c := compiledRule{Rule: r, method: method, path: p}

		for j, prev := range e.rules {
			if prev.coversMethod(c) && prev.path.covers(c.path) && !prev.Access.equal(c.Access) {
				return nil, fmt.Errorf("%w: rule %d (%s) can never match after rule %d (%s)",
					ErrShadowedRule, i, r, j, prev.Rule)
			}
		}
		e.rules = append(e.rules, c)
	}
	return e, nil
}

// MustNew is New for tables known at compile time.
func MustNew(rules ...Rule) *Engine {
	e, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return e
}

// Rules returns the table in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, c := range e.rules {
		out[i] = c.Rule
	}
	return out
}

// Match returns the first rule matching the request.
func (e *Engine) Match(method, path string) (Rule, bool) {
	method = strings.ToUpper(method)
	segs := splitPath(path)
	for _, c := range e.rules {
		if c.method != "" && c.method != method {
			continue
		}
		if c.path.match(segs) {
			return c.Rule, true
		}
	}
	return Rule{}, false
}

// Evaluate decides a request. p is nil when the request is unauthenticated.
func (e *Engine) Evaluate(method, path string, p *domain.Principal) Decision {
	access := Authenticated()
	if r, ok := e.Match(method, path); ok {
		access = r.Access
	}

	switch access.kind {
	case accessPublic:
		return Allow
	case accessAuthenticated:
		if p == nil {
			return DenyUnauthenticated
		}
		return Allow
	default:
		if p == nil {
			return DenyUnauthenticated
		}
		if slices.Contains(access.roles, p.Role) {
			return Allow
		}
		return DenyForbidden
	}
}
