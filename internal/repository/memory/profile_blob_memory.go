package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
)

// MemoryProfileBlobRepository implements ProfileBlobRepository in memory (NOT FOR PRODUCTION).
type MemoryProfileBlobRepository struct {
	blob  []byte
	mutex sync.RWMutex
}

func NewMemoryProfileBlobRepository() *MemoryProfileBlobRepository {
	return &MemoryProfileBlobRepository{}
}

func (r *MemoryProfileBlobRepository) ReadProfileBlob(ctx context.Context) ([]byte, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if r.blob == nil {
		return nil, repository.ErrProfileBlobNotFound
	}
	return slices.Clone(r.blob), nil
}

func (r *MemoryProfileBlobRepository) WriteProfileBlob(ctx context.Context, blob []byte) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.blob = slices.Clone(blob)
	if r.blob == nil {
		r.blob = []byte{}
	}
	return nil
}
