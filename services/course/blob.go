package courseService

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lms/apperr"
	"lms/storage"
)

const signConcurrency = 8

var errNoStorage = errors.New("blob storage is not configured")

func (s *Service) upload(ctx context.Context, r io.Reader, meta storage.Metadata) (*storage.Object, error) {
	if s.store == nil {
		return nil, apperr.Internal(errNoStorage, "File storage is unavailable")
	}
	obj, err := s.store.Upload(ctx, r, meta)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to upload file")
	}
	return obj, nil
}

// signAll resolves signed URLs for keys concurrently. Empty keys map to
// empty URLs.
func (s *Service) signAll(ctx context.Context, keys []string) ([]string, error) {
	urls := make([]string, len(keys))
	if s.store == nil {
		return urls, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i, key := range keys {
		if key == "" {
			continue
		}
		i, key := i, key
		g.Go(func() error {
			url, err := s.store.SignedURL(ctx, key, s.signedURLTTL)
			if err != nil {
				return errors.Wrapf(err, "sign %s", key)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// signOrEmpty is used for decorative URLs (thumbnails), where a signing
// failure should not fail the read.
func (s *Service) signOrEmpty(ctx context.Context, keys []string) []string {
	urls, err := s.signAll(ctx, keys)
	if err != nil {
		s.log.Warn("failed to sign thumbnail urls", zap.Error(err))
		return make([]string, len(keys))
	}
	return urls
}
