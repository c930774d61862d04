package ports

import (
	"context"

	"github.com/stiarchives/portal/internal/core/domain"
)

// AdminRepository looks up operators allowed to sign in.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Admin, error)
}
