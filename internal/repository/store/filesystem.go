package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

// FilesystemStore keeps tiles under a base directory, mirroring the
// object key layout. Used for local development.
type FilesystemStore struct {
	baseDir string
}

var _ BlobStore = (*FilesystemStore)(nil)

func NewFilesystemStore(baseDir string) *FilesystemStore {
	return &FilesystemStore{baseDir: baseDir}
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *FilesystemStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.Newf(apperror.KindNotFound, "object %s not found", key)
		}
		return nil, apperror.Wrap(apperror.KindUpstream, fmt.Sprintf("read object %s", key), err)
	}
	return data, nil
}

func (s *FilesystemStore) Put(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperror.Wrap(apperror.KindUpstream, fmt.Sprintf("create dir for %s", key), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperror.Wrap(apperror.KindUpstream, fmt.Sprintf("write object %s", key), err)
	}
	return nil
}

func (s *FilesystemStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return apperror.Wrap(apperror.KindUpstream, fmt.Sprintf("delete object %s", key), err)
	}
	return nil
}
