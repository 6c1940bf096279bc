package repository

import (
	"context"
	"errors"
)

// ErrProfileBlobNotFound is returned when no profile blob has been stored yet.
var ErrProfileBlobNotFound = errors.New("profile blob not found")

// ProfileBlobRepository stores the protected profile document for the current user.
// The blob is opaque to the repository.
type ProfileBlobRepository interface {
	// ReadProfileBlob returns the stored blob.
	// It should return ErrProfileBlobNotFound if nothing has been stored.
	ReadProfileBlob(ctx context.Context) ([]byte, error)
	// WriteProfileBlob replaces the stored blob.
	WriteProfileBlob(ctx context.Context, blob []byte) error
}
