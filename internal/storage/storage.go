// Package storage abstracts where applicant documents are persisted.
package storage

import (
	"errors"
	"io"
	"os"
	"strings"
)

// ErrNotSupported is returned by backends that are configured but not yet
// implemented for this deployment.
var ErrNotSupported = errors.New("storage backend not supported")

// Backend stores and removes uploaded document blobs. Save returns the
// destination actually used, which is recorded on the document row.
type Backend interface {
	Save(reader io.Reader, destination, contentType string) (string, error)
	Delete(destination string) error
}

// FromEnv selects a Backend from STAFFLINK_STORAGE_BACKEND. The default is
// local filesystem storage rooted at STAFFLINK_STORAGE_BASE_PATH.
func FromEnv() (Backend, error) {
	backend := strings.ToLower(os.Getenv("STAFFLINK_STORAGE_BACKEND"))
	switch backend {
	case "", "local":
		basePath := os.Getenv("STAFFLINK_STORAGE_BASE_PATH")
		if basePath == "" {
			basePath = "uploads"
		}
		return NewLocalBackend(basePath)
	case "cloud":
		return NewCloudBackend(os.Getenv("STAFFLINK_STORAGE_BUCKET")), nil
	default:
		return nil, errors.New("unknown storage backend: " + backend)
	}
}
