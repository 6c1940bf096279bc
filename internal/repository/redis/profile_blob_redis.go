package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
	"github.com/redis/go-redis/v9"
)

// RedisProfileBlobRepository implements ProfileBlobRepository using Redis.
type RedisProfileBlobRepository struct {
	client *redis.Client
	key    string
}

// Helper to construct the blob key
func makeProfileBlobKey(owner string) string {
	return fmt.Sprintf("profiles:%s", owner)
}

// NewRedisProfileBlobRepository stores the blob of owner under "profiles:<owner>".
func NewRedisProfileBlobRepository(client *redis.Client, owner string) repository.ProfileBlobRepository {
	return &RedisProfileBlobRepository{
		client: client,
		key:    makeProfileBlobKey(owner),
	}
}

// ReadProfileBlob retrieves the blob; a missing key maps to ErrProfileBlobNotFound.
func (r *RedisProfileBlobRepository) ReadProfileBlob(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrProfileBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return data, nil
}

// WriteProfileBlob replaces the blob without expiry.
func (r *RedisProfileBlobRepository) WriteProfileBlob(ctx context.Context, blob []byte) error {
	if err := r.client.Set(ctx, r.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}
