package services

import (
	"context"
	"io"
)

// FileStorage stores order documents by key.
type FileStorage interface {
	// Put writes body under key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// URL returns a link a browser can fetch the object from.
	URL(ctx context.Context, key string) (string, error)

	// Open streams the object back.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

var storageInstance FileStorage

// InitStorage sets the storage backend used by file operations
func InitStorage(storage FileStorage) FileStorage {
	storageInstance = storage
	return storageInstance
}

// GetStorage returns the initialized storage backend
func GetStorage() FileStorage {
	return storageInstance
}

// SetStorage sets the storage backend (primarily for testing)
func SetStorage(storage FileStorage) {
	storageInstance = storage
}
