package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cleverty/endpoint-provisioner/common"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// FileStore keeps all keys in one JSON object. The whole document is rewritten
// on every change through a temp file, fsync and rename, so a crash leaves either
// the old or the new content on disk.
type FileStore struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
}

func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &FileStore{path: path, log: log}

	// Surface a corrupt document at startup instead of on first read.
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) GetString(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}

	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", interfaces.ErrKeyNotFound, key)
	}
	return v, nil
}

func (s *FileStore) SetString(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if current, ok := values[key]; ok && current == value {
		return nil
	}

	values[key] = value
	if err := s.save(values); err != nil {
		return err
	}

	s.log.Debug("Stored config value", slog.String("key", key), slog.String("store", s.Name()))
	return nil
}

func (s *FileStore) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := s.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("value of %s is not a boolean: %w", key, err)
	}
	return b, nil
}

func (s *FileStore) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

func (s *FileStore) Name() string {
	return "file-" + filepath.Base(s.path)
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	return common.WriteFileAtomic(s.path, data, 0o600)
}
