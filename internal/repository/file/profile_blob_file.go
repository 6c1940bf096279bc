package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
)

// ProfileFileName is the fixed name of the profile blob inside the per-user directory.
const ProfileFileName = "profiles.json"

// FileProfileBlobRepository keeps the profile blob in a per-user application-data directory.
type FileProfileBlobRepository struct {
	dir string
}

// NewFileProfileBlobRepository creates a repository rooted at dir. The directory
// is created on first write.
func NewFileProfileBlobRepository(dir string) repository.ProfileBlobRepository {
	return &FileProfileBlobRepository{dir: dir}
}

// Path returns the full path of the profile blob.
func (r *FileProfileBlobRepository) Path() string {
	return filepath.Join(r.dir, ProfileFileName)
}

// ReadProfileBlob reads the whole blob from disk.
func (r *FileProfileBlobRepository) ReadProfileBlob(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repository.ErrProfileBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return data, nil
}

// WriteProfileBlob writes to a temporary file and renames it over the old blob,
// so a failed write never leaves a truncated file behind.
func (r *FileProfileBlobRepository) WriteProfileBlob(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ProfileFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary profile file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close profile file: %w", err)
	}
	if err := os.Rename(tmpName, r.Path()); err != nil {
		return fmt.Errorf("failed to replace profile file: %w", err)
	}
	return nil
}
