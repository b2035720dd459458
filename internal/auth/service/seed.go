package service

import (
	"context"
	"log/slog"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// DemoUsers are created by SeedDemoUsers.
var DemoUsers = []NewUser{
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: domain.RoleAdmin},
	{Name: "Instructor User", Email: "instructor@example.com", Password: "instructor123", Role: domain.RoleInstructor},
	{Name: "Student User", Email: "student@example.com", Password: "student123", Role: domain.RoleStudent},
}

// SeedDemoUsers creates DemoUsers when the user table is empty. It reports
// whether anything was created.
func (s *UserService) SeedDemoUsers(ctx context.Context) (bool, error) {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}

	for _, u := range DemoUsers {
		if _, err := s.CreateUser(ctx, u); err != nil {
			return false, err
		}
	}

	l.Warn("seeded demo users", slog.Int("count", len(DemoUsers)))
	return true, nil
}
