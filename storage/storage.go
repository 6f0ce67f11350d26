// Package storage is the blob store used for lesson files and thumbnails.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"lms/config"
)

// Metadata describes an object at upload time.
type Metadata struct {
	FileName    string
	ContentType string
}

// Object is what the store returns for a completed upload.
type Object struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Checksum    string `json:"checksum"` // hex sha256
	Size        int64  `json:"size"`
}

// Storage uploads, signs and deletes objects keyed by opaque storage keys.
// Delete must treat a missing object as success so that retries are safe.
type Storage interface {
	Upload(ctx context.Context, r io.Reader, meta Metadata) (*Object, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey generates a storage key that keeps the original file extension.
func NewKey(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

// New builds the store selected by cfg.Driver.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "remote":
		if cfg.BaseURL == "" {
			return nil, errors.New("STORAGE_URL is required for the remote storage driver")
		}
		return NewRemoteStorage(cfg.BaseURL, cfg.Bucket, cfg.APIKey), nil
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURL, cfg.SigningKey), nil
	default:
		return nil, errors.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
