package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MockStorage is an in-memory FileStorage for testing
type MockStorage struct {
	files map[string][]byte
	mu    sync.RWMutex
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage instance for testing
func (m *MockStorage) SetAsMockForTesting() {
	SetStorage(m)
}

// Put stores the body in memory
func (m *MockStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()

	return nil
}

// URL returns a fake presigned URL
func (m *MockStorage) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.files[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.ap-south-1.amazonaws.com/%s?mock=true", key), nil
}

// Open returns the stored bytes
func (m *MockStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	content, exists := m.files[key]
	m.mu.RUnlock()

	if !exists {
		return nil, &NotFoundError{Resource: "file", ID: key}
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Delete drops the key
func (m *MockStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

// Files returns a copy of everything stored (for testing assertions)
func (m *MockStorage) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// Exists checks if a key is stored
func (m *MockStorage) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}
