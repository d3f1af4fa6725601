package reports

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cleverty/endpoint-provisioner/interfaces"
)

// FileSink stores reports as <baseDir>/<content id>.json.
type FileSink struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileSink creates the base directory if needed.
func NewFileSink(baseDir string, log *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &FileSink{
		baseDir:     baseDir,
		log:         log,
		locationURI: "file://" + baseDir,
	}, nil
}

// Fetch returns ErrContentNotFound if no report with this id exists.
func (s *FileSink) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return data, nil
}

func (s *FileSink) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	target := s.path(id)

	if _, err := os.Stat(target); err == nil {
		return id, nil
	}

	tmp, err := os.CreateTemp(s.baseDir, ".report-*")
	if err != nil {
		return id, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return id, fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return id, fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return id, fmt.Errorf("failed to publish report: %w", err)
	}

	s.log.Debug("Stored report in file",
		slog.String("path", target),
		slog.String("contentID", id.String()))

	return id, nil
}

func (s *FileSink) Available(ctx context.Context) bool {
	if _, err := os.Stat(s.baseDir); err != nil {
		s.log.Debug("File sink unavailable", "err", err)
		return false
	}
	return true
}

func (s *FileSink) Name() string {
	return "file-" + filepath.Base(s.baseDir)
}

func (s *FileSink) LocationURI() string {
	return s.locationURI
}

func (s *FileSink) path(id interfaces.ContentID) string {
	return filepath.Join(s.baseDir, id.String()+".json")
}
