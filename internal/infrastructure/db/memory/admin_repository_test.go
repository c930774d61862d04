package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stiarchives/portal/internal/core/domain"
)

func TestAdminRepository(t *testing.T) {
	repo := NewAdminRepository("registrar", "$2a$10$hash")

	a, err := repo.FindByUsername(context.Background(), "registrar")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, a.Role)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewAdminRepository("", "").FindByUsername(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
