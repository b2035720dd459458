package domain

import "time"

// RoleSource records where a principal's role came from.
type RoleSource string

const (
	// RoleSourceStore means the live user record supplied the role.
	RoleSourceStore RoleSource = "store"
	// RoleSourceToken means the store was unreachable and the token's
	// role claim was used instead.
	RoleSourceToken RoleSource = "token"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Subject    string // email
	UserID     string
	Role       Role
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RoleSource RoleSource
}
