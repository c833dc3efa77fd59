package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is 25MB in bytes
const DefaultMaxFileSize = 25 * 1024 * 1024

var (
	// UploadDir is the directory where uploaded files are stored
	// Can be overridden for testing
	UploadDir = "./uploads"

	// allowedExtensions lists accepted extensions per order file kind
	allowedExtensions = map[string][]string{
		"image":     {".png", ".jpg", ".jpeg", ".webp"},
		"images":    {".png", ".jpg", ".jpeg", ".webp"},
		"cadFiles":  {".dxf", ".dwg", ".ai", ".eps", ".svg", ".pdf", ".cdr", ".plt"},
		"textFiles": {".txt", ".pdf", ".doc", ".docx", ".csv", ".rtf"},
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// AllowedExtensions returns the sorted extensions accepted for kind
func AllowedExtensions(kind string) []string {
	exts := append([]string(nil), allowedExtensions[kind]...)
	sort.Strings(exts)
	return exts
}

// ValidateOrderFile validates an uploaded file against the rules for its kind
func ValidateOrderFile(kind string, fileHeader *multipart.FileHeader, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}

	allowed, ok := allowedExtensions[kind]
	if !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_KIND",
			Message: fmt.Sprintf("Unknown file type %q", kind),
		}
	}

	if fileHeader.Size > maxBytes {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", maxBytes/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}

	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed for %s", strings.Join(AllowedExtensions(kind), ", "), kind),
	}
}

// SanitizeFilename strips directories and characters that are unsafe in storage keys
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// WriteFile copies src to fullPath, creating parent directories
func WriteFile(fullPath string, src io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// GetFileURL returns the URL path for accessing a locally stored file
func GetFileURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", key)
}
