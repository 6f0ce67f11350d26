// Package courseService holds the course domain logic: authoring, quiz
// submission and scoring, and cascading soft-deletes. Every operation takes
// the caller's context and runs its writes in a single transaction.
package courseService

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms/storage"
	"lms/utils"
)

const defaultSignedURLTTL = time.Hour

type Service struct {
	db           *gorm.DB
	store        storage.Storage
	mailer       utils.Mailer
	log          *zap.Logger
	signedURLTTL time.Duration
	now          func() time.Time
}

func New(db *gorm.DB, store storage.Storage, mailer utils.Mailer, log *zap.Logger, signedURLTTL time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if signedURLTTL <= 0 {
		signedURLTTL = defaultSignedURLTTL
	}
	return &Service{
		db:           db,
		store:        store,
		mailer:       mailer,
		log:          log,
		signedURLTTL: signedURLTTL,
		now:          time.Now,
	}
}
