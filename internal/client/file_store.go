package client

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockTimeout       = 3 * time.Second
)

// FileStore keeps each key in <dir>/<key>.json. Every access holds an
// exclusive lock on <dir>/<key>.json.lock so concurrent CLI processes never
// see a half-written file.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.withLock(ctx, key, func(path string) error {
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && len(b) == 0) {
			return ErrNoState
		}
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		data = b
		return nil
	})
	return data, err
}

func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	return s.withLock(ctx, key, func(path string) error {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("replace state: %w", err)
		}
		return nil
	})
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.withLock(ctx, key, func(path string) error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove state: %w", err)
		}
		return nil
	})
}

func (s *FileStore) withLock(ctx context.Context, key string, fn func(path string) error) error {
	path := s.Path(key)
	lock := flock.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("lock state: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock state: %s is held by another process", path)
	}
	defer func() { _ = lock.Unlock() }()

	return fn(path)
}
