package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/promptpix/promptpix/internal/log"
)

// FileStore keeps objects on the local filesystem. Used for running
// the handlers outside AWS.
type FileStore struct {
	Dir string
}

func (s *FileStore) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", params.Name)
	return os.WriteFile(filepath.Join(s.Dir, params.Name), params.Data, 0600)
}

func (s *FileStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("reading", "file", name)

	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

func (s *FileStore) SignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}
