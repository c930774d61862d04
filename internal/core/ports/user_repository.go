package ports

import (
	"context"

	"github.com/stiarchives/portal/internal/core/domain"
)

// UserRepository persists the whole registrant collection as one document.
// Callers load, mutate and save; there is no per-record API.
type UserRepository interface {
	LoadAll(ctx context.Context) ([]domain.UserRecord, error)
	SaveAll(ctx context.Context, records []domain.UserRecord) error
	Ping(ctx context.Context) error
}

// MutationLocker serialises read-modify-write cycles on the collection.
type MutationLocker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}
