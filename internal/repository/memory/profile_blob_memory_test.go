package memory_test

import (
	"context"
	"testing"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProfileBlobRepository(t *testing.T) {
	repo := memory.NewMemoryProfileBlobRepository()
	ctx := context.Background()

	_, err := repo.ReadProfileBlob(ctx)
	assert.ErrorIs(t, err, repository.ErrProfileBlobNotFound)

	blob := []byte("sealed")
	require.NoError(t, repo.WriteProfileBlob(ctx, blob))
	blob[0] = 'X'

	got, err := repo.ReadProfileBlob(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got, "stored blob must not alias the caller's slice")

	require.NoError(t, repo.WriteProfileBlob(ctx, nil))
	got, err = repo.ReadProfileBlob(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
