// Package memory holds repositories whose data comes from configuration.
package memory

import (
	"context"

	"github.com/stiarchives/portal/internal/core/domain"
)

// AdminRepository serves the operator accounts configured at startup.
type AdminRepository struct {
	admins map[string]domain.Admin
}

// NewAdminRepository registers a single admin with a bcrypt password hash.
// An empty username yields a repository with no admins.
func NewAdminRepository(username, passwordHash string) *AdminRepository {
	r := &AdminRepository{admins: make(map[string]domain.Admin)}
	if username != "" && passwordHash != "" {
		r.admins[username] = domain.Admin{Username: username, PasswordHash: passwordHash, Role: domain.RoleAdmin}
	}
	return r
}

func (r *AdminRepository) FindByUsername(_ context.Context, username string) (*domain.Admin, error) {
	a, ok := r.admins[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}
