package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signworks/orderflow-api/utils"
)

// LocalStorage keeps order files on disk below a root directory. It backs
// development setups without a bucket.
type LocalStorage struct {
	root    string
	secret  string
	linkTTL time.Duration
}

// NewLocalStorage creates a storage rooted at dir whose links are signed with secret
func NewLocalStorage(dir, secret string) *LocalStorage {
	return &LocalStorage{root: dir, secret: secret, linkTTL: utils.FileLinkTTL}
}

// Put writes body to disk under key
func (l *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	return utils.WriteFile(path, body)
}

// URL returns an expiring link to the uploads route
func (l *LocalStorage) URL(_ context.Context, key string) (string, error) {
	return utils.SignFileURL(key, l.secret, l.linkTTL)
}

// Open opens a stored file for reading
func (l *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Resource: "file", ID: key}
	}
	return f, err
}

// Delete removes a stored file
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) path(key string) (string, error) {
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", &ValidationError{Field: "key", Message: "invalid storage key"}
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}
