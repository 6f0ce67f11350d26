package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BlobSweeper retries storage deletions that failed after their rows were removed.
type BlobSweeper interface {
	RetryPendingBlobDeletions(ctx context.Context) (int, error)
}

// InitializeBlobSweeper schedules sweeper on spec (standard 5-field cron syntax)
// and starts the scheduler. Callers stop it on shutdown.
func InitializeBlobSweeper(sweeper BlobSweeper, spec string, log *zap.Logger) (*cron.Cron, error) {
	log.Info("[BLOB-SWEEPER] Initializing blob sweeper", zap.String("schedule", spec))

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := sweeper.RetryPendingBlobDeletions(ctx)
		if err != nil {
			log.Error("[BLOB-SWEEPER] Sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("[BLOB-SWEEPER] Reclaimed blobs", zap.Int("count", n))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
