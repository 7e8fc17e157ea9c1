package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/foodgram-backend/pkg/logger"
)

// LocalStorage writes files below a media root that the router serves statically.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &LocalStorage{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root returns the absolute media directory.
func (l *LocalStorage) Root() string {
	return l.root
}

func (l *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	p := filepath.Join(l.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, l.root+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return p, nil
}

func (l *LocalStorage) Save(_ context.Context, key string, data []byte, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	logger.Debug("Stored media file", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
	return nil
}

// Delete removes key. A missing file is not an error.
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (l *LocalStorage) URL(key string) string {
	return l.baseURL + "/" + key
}
