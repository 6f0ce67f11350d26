package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// RemoteStorage talks to an object storage REST API:
//
//	POST   /object/{bucket}/{key}       upload
//	POST   /object/sign/{bucket}/{key}  sign, body {"expiresIn": seconds}
//	DELETE /object/{bucket}/{key}       delete
type RemoteStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

var _ Storage = (*RemoteStorage)(nil)

func NewRemoteStorage(baseURL, bucket, apiKey string) *RemoteStorage {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &RemoteStorage{client: client, baseURL: baseURL, bucket: bucket}
}

func (s *RemoteStorage) Upload(ctx context.Context, r io.Reader, meta Metadata) (*Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := NewKey(meta.FileName)
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"bucket": s.bucket, "key": key}).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Post("/object/{bucket}/{key}")
	if err != nil {
		return nil, errors.Wrap(err, "upload object")
	}
	if resp.IsError() {
		return nil, errors.Errorf("upload object: unexpected status %s", resp.Status())
	}

	sum := sha256.Sum256(data)
	return &Object{
		Key:         key,
		FileName:    meta.FileName,
		ContentType: contentType,
		Checksum:    hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
	}, nil
}

func (s *RemoteStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var result struct {
		SignedURL string `json:"signedURL"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"bucket": s.bucket, "key": key}).
		SetBody(map[string]int64{"expiresIn": int64(ttl.Seconds())}).
		SetResult(&result).
		Post("/object/sign/{bucket}/{key}")
	if err != nil {
		return "", errors.Wrap(err, "sign object")
	}
	if resp.IsError() {
		return "", errors.Errorf("sign object: unexpected status %s", resp.Status())
	}
	if result.SignedURL == "" {
		return "", errors.New("sign object: empty signed url")
	}

	return s.baseURL + result.SignedURL, nil
}

func (s *RemoteStorage) Delete(ctx context.Context, key string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"bucket": s.bucket, "key": key}).
		Delete("/object/{bucket}/{key}")
	if err != nil {
		return errors.Wrap(err, "delete object")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return errors.Errorf("delete object: unexpected status %s", resp.Status())
	}
	return nil
}
