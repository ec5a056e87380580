package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes blobs under a base directory on the local filesystem.
type LocalBackend struct {
	BasePath string
}

// NewLocalBackend creates the base directory if needed.
func NewLocalBackend(basePath string) (*LocalBackend, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalBackend{BasePath: basePath}, nil
}

// Save streams the reader into basePath/destination, creating intermediate
// directories. The destination must stay inside the base path.
func (l *LocalBackend) Save(reader io.Reader, destination, contentType string) (string, error) {
	fullPath, err := l.resolve(destination)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write document file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close document file: %w", err)
	}
	return destination, nil
}

// Delete removes a stored blob. A missing file is not an error.
func (l *LocalBackend) Delete(destination string) error {
	fullPath, err := l.resolve(destination)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns a reader over a stored blob for download endpoints.
func (l *LocalBackend) Open(destination string) (io.ReadCloser, error) {
	fullPath, err := l.resolve(destination)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (l *LocalBackend) resolve(destination string) (string, error) {
	cleaned := filepath.Clean(destination)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage destination: %s", destination)
	}
	return filepath.Join(l.BasePath, cleaned), nil
}
