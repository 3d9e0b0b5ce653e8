package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrLimitExceeded is returned by Spool when the source is larger than the limit.
var ErrLimitExceeded = errors.New("storage: size limit exceeded")

// FileStore keeps short-lived request artifacts on the local filesystem.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Spool copies at most limit bytes from r into key. When r holds more than
// limit bytes the partial file is removed and ErrLimitExceeded is returned.
func (s *FileStore) Spool(ctx context.Context, key string, r io.Reader, limit int64) (string, int64, error) {
	if s == nil {
		return "", 0, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", 0, err
	}
	fullPath := s.path(cleanKey)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(fullPath)
		return "", n, fmt.Errorf("storage: write file: %w", copyErr)
	case n > limit:
		_ = os.Remove(fullPath)
		return "", n, ErrLimitExceeded
	case closeErr != nil:
		_ = os.Remove(fullPath)
		return "", n, fmt.Errorf("storage: close file: %w", closeErr)
	}
	return cleanKey, n, nil
}

// Read returns the bytes stored at key.
func (s *FileStore) Read(key string) ([]byte, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(cleanKey))
	if err != nil {
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(cleanKey)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *FileStore) Exists(key string) bool {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.path(cleanKey))
	return err == nil
}

func (s *FileStore) path(cleanKey string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
