package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// LocalStorage keeps objects on disk and signs download URLs with HMAC.
type LocalStorage struct {
	dir        string
	publicURL  string
	signingKey []byte
	now        func() time.Time
}

var _ Storage = (*LocalStorage)(nil)

func NewLocalStorage(dir, publicURL, signingKey string) *LocalStorage {
	return &LocalStorage{dir: dir, publicURL: publicURL, signingKey: []byte(signingKey), now: time.Now}
}

// Dir is the directory objects are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(ctx context.Context, r io.Reader, meta Metadata) (*Object, error) {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}

	key := NewKey(meta.FileName)
	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return nil, errors.Wrap(err, "create object")
	}
	defer dst.Close()

	hash := sha256.New()
	size, err := io.Copy(dst, io.TeeReader(r, hash))
	if err != nil {
		return nil, errors.Wrap(err, "write object")
	}

	return &Object{
		Key:         key,
		FileName:    meta.FileName,
		ContentType: meta.ContentType,
		Checksum:    hex.EncodeToString(hash.Sum(nil)),
		Size:        size,
	}, nil
}

func (s *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !validKey(key) {
		return "", errors.Errorf("invalid storage key %q", key)
	}
	expires := s.now().Add(ttl).Unix()
	return fmt.Sprintf("%s/uploads/%s?expires=%d&signature=%s", s.publicURL, key, expires, s.sign(key, expires)), nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return errors.Errorf("invalid storage key %q", key)
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove object")
	}
	return nil
}

// Verify checks a signature produced by SignedURL and that it has not expired.
func (s *LocalStorage) Verify(key, expires, signature string) bool {
	if !validKey(key) {
		return false
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > exp {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(s.sign(key, exp)))
}

func (s *LocalStorage) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.signingKey)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func validKey(key string) bool {
	return key != "" && filepath.Base(key) == key && key != "." && key != ".."
}
