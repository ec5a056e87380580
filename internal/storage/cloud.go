package storage

import "io"

// CloudBackend is a placeholder for bucket-based storage. Deployments select
// it explicitly; until the integration lands every call fails loudly instead
// of silently writing to disk.
type CloudBackend struct {
	Bucket string
}

// NewCloudBackend records the target bucket name.
func NewCloudBackend(bucket string) *CloudBackend {
	return &CloudBackend{Bucket: bucket}
}

// Save is not implemented yet.
func (c *CloudBackend) Save(reader io.Reader, destination, contentType string) (string, error) {
	return "", ErrNotSupported
}

// Delete is not implemented yet.
func (c *CloudBackend) Delete(destination string) error {
	return ErrNotSupported
}
