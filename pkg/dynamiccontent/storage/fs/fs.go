// Package fs provides a filesystem-backed media store.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

// Config options for the filesystem backend.
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix under which stored files are served
}

// Backend is a filesystem implementation of dynamiccontent.MediaStore.
type Backend struct {
	mu        sync.RWMutex
	baseDir   string
	urlPrefix string
}

// New creates a filesystem media store, creating the base directory if
// needed.
func New(config Config) (dynamiccontent.MediaStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// Save writes the object to disk and returns its serving URL.
func (b *Backend) Save(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	path, err := b.safePath(key)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return b.urlPrefix + "/" + key, nil
}

// Open returns the stored object for reading.
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := b.safePath(key)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New("object not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the stored object.
func (b *Backend) Delete(ctx context.Context, key string) error {
	path, err := b.safePath(key)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safePath rejects keys escaping the base directory.
func (b *Backend) safePath(key string) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}
	path := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(b.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return path, nil
}
