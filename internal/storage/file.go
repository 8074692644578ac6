package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minicart/minicart/internal/types"
)

// FileStore keeps each key in its own JSON file under a directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a torn payload behind.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With("component", "file_store"),
	}, nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Key: key, Err: err}
	}
	return data, nil
}

func (s *FileStore) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &types.StorageError{Backend: s.Name(), Key: key, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &types.StorageError{Backend: s.Name(), Key: key, Err: err}
	}
	s.logger.Debug("payload written", "key", key, "bytes", len(data))
	return nil
}

func (s *FileStore) Close() error { return nil }

// path maps a key to a file name, replacing anything the filesystem
// would object to.
func (s *FileStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}
