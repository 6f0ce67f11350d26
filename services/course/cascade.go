package courseService

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
)

const (
	blobDeleteTimeout = 30 * time.Second
	blobSweepBatch    = 100
)

// cascade soft-deletes a subtree inside one transaction. Children go before
// their parents and rows that are already deleted are skipped by the default
// scope, so walking the same subtree twice is a no-op. Storage keys of the
// removed files are collected for deletion after commit.
type cascade struct {
	tx   *gorm.DB
	keys []string
}

func (c *cascade) softDelete(model interface{}, query string, args ...interface{}) error {
	return c.tx.Where(query, args...).Delete(model).Error
}

func (c *cascade) pluck(model interface{}, column string, dest *[]uint, query string, args ...interface{}) error {
	return c.tx.Model(model).Where(query, args...).Pluck(column, dest).Error
}

func (c *cascade) course(courseID uint) error {
	var moduleIDs []uint
	if err := c.pluck(&courseModels.Module{}, "id", &moduleIDs, "course_id = ?", courseID); err != nil {
		return err
	}
	if err := c.modules(moduleIDs); err != nil {
		return err
	}

	for _, model := range []interface{}{
		&courseModels.WatchedLesson{},
		&courseModels.Certificate{},
		&courseModels.Review{},
		&courseModels.Enrollment{},
	} {
		if err := c.softDelete(model, "course_id = ?", courseID); err != nil {
			return err
		}
	}

	var course courseModels.Course
	err := c.tx.Select("id", "thumbnail_key").Where("id = ?", courseID).Limit(1).Find(&course).Error
	if err != nil {
		return err
	}
	if course.ThumbnailKey != "" {
		c.keys = append(c.keys, course.ThumbnailKey)
	}
	return c.softDelete(&courseModels.Course{}, "id = ?", courseID)
}

func (c *cascade) modules(moduleIDs []uint) error {
	if len(moduleIDs) == 0 {
		return nil
	}

	var lessonIDs []uint
	if err := c.pluck(&courseModels.Lesson{}, "id", &lessonIDs, "module_id IN ?", moduleIDs); err != nil {
		return err
	}
	if err := c.lessons(lessonIDs); err != nil {
		return err
	}

	var quizIDs []uint
	if err := c.pluck(&courseModels.Quiz{}, "id", &quizIDs, "module_id IN ?", moduleIDs); err != nil {
		return err
	}
	if err := c.quizzes(quizIDs); err != nil {
		return err
	}

	return c.softDelete(&courseModels.Module{}, "id IN ?", moduleIDs)
}

func (c *cascade) lessons(lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	var fileIDs []uint
	if err := c.pluck(&courseModels.LessonFile{}, "file_id", &fileIDs, "lesson_id IN ?", lessonIDs); err != nil {
		return err
	}
	if err := c.files(fileIDs); err != nil {
		return err
	}
	if err := c.softDelete(&courseModels.LessonFile{}, "lesson_id IN ?", lessonIDs); err != nil {
		return err
	}
	if err := c.softDelete(&courseModels.LessonComment{}, "lesson_id IN ?", lessonIDs); err != nil {
		return err
	}
	return c.softDelete(&courseModels.Lesson{}, "id IN ?", lessonIDs)
}

func (c *cascade) files(fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	var keys []string
	if err := c.tx.Model(&courseModels.File{}).Where("id IN ?", fileIDs).Pluck("storage_key", &keys).Error; err != nil {
		return err
	}
	c.keys = append(c.keys, keys...)
	return c.softDelete(&courseModels.File{}, "id IN ?", fileIDs)
}

func (c *cascade) quizzes(quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}

	var questionIDs []uint
	if err := c.pluck(&courseModels.Question{}, "id", &questionIDs, "quiz_id IN ?", quizIDs); err != nil {
		return err
	}
	if err := c.questions(questionIDs); err != nil {
		return err
	}

	var attemptIDs []uint
	if err := c.pluck(&courseModels.QuizAttempt{}, "id", &attemptIDs, "quiz_id IN ?", quizIDs); err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := c.softDelete(&courseModels.QuizAnswer{}, "attempt_id IN ?", attemptIDs); err != nil {
			return err
		}
		if err := c.softDelete(&courseModels.QuizAttempt{}, "id IN ?", attemptIDs); err != nil {
			return err
		}
	}

	return c.softDelete(&courseModels.Quiz{}, "id IN ?", quizIDs)
}

// questions removes options then the questions. Answers that reference the
// questions stay with their attempts.
func (c *cascade) questions(questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := c.softDelete(&courseModels.Option{}, "question_id IN ?", questionIDs); err != nil {
		return err
	}
	return c.softDelete(&courseModels.Question{}, "id IN ?", questionIDs)
}

// runCascade loads the root (NotFound when absent or already deleted), walks
// its subtree in one transaction, then reclaims collected blobs.
func (s *Service) runCascade(ctx context.Context, root interface{}, id uint, notFound, failed string, walk func(c *cascade) error) error {
	c := &cascade{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, root, id, notFound); err != nil {
			return err
		}
		c.tx = tx
		return walk(c)
	})
	if err != nil {
		return internal(err, failed)
	}
	s.reclaimBlobs(ctx, c.keys)
	return nil
}

func (s *Service) DeleteCourse(ctx context.Context, auth models.AuthContext, id uint) error {
	err := s.runCascade(ctx, &courseModels.Course{}, id, "Course not found", "Failed to delete course", func(c *cascade) error {
		return c.course(id)
	})
	if err == nil {
		s.log.Info("course deleted", zap.Uint("courseId", id), zap.Uint("by", auth.UserID))
	}
	return err
}

func (s *Service) DeleteModule(ctx context.Context, auth models.AuthContext, id uint) error {
	err := s.runCascade(ctx, &courseModels.Module{}, id, "Module not found", "Failed to delete module", func(c *cascade) error {
		return c.modules([]uint{id})
	})
	if err == nil {
		s.log.Info("module deleted", zap.Uint("moduleId", id), zap.Uint("by", auth.UserID))
	}
	return err
}

func (s *Service) DeleteLesson(ctx context.Context, auth models.AuthContext, id uint) error {
	return s.runCascade(ctx, &courseModels.Lesson{}, id, "Lesson not found", "Failed to delete lesson", func(c *cascade) error {
		return c.lessons([]uint{id})
	})
}

func (s *Service) DeleteQuiz(ctx context.Context, auth models.AuthContext, id uint) error {
	return s.runCascade(ctx, &courseModels.Quiz{}, id, "Quiz not found", "Failed to delete quiz", func(c *cascade) error {
		return c.quizzes([]uint{id})
	})
}

func (s *Service) DeleteQuestion(ctx context.Context, auth models.AuthContext, id uint) error {
	return s.runCascade(ctx, &courseModels.Question{}, id, "Question not found", "Failed to delete question", func(c *cascade) error {
		return c.questions([]uint{id})
	})
}

// reclaimBlobs deletes objects whose rows are already committed as deleted.
// Failures never fail the caller: the key is queued for the sweeper instead.
func (s *Service) reclaimBlobs(ctx context.Context, keys []string) {
	if len(keys) == 0 || s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blobDeleteTimeout)
	defer cancel()

	for _, key := range keys {
		err := s.store.Delete(ctx, key)
		if err == nil {
			continue
		}
		s.log.Error("failed to delete blob, queued for retry", zap.String("key", key), zap.Error(err))
		pending := courseModels.PendingBlobDeletion{StorageKey: key, Attempts: 1, LastError: err.Error()}
		qerr := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&pending).Error
		if qerr != nil {
			s.log.Error("failed to queue blob deletion", zap.String("key", key), zap.Error(qerr))
		}
	}
}

// RetryPendingBlobDeletions retries queued blob deletions and returns how many
// objects were reclaimed. Reclaimed entries are removed from the queue.
func (s *Service) RetryPendingBlobDeletions(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	var pending []courseModels.PendingBlobDeletion
	err := s.db.WithContext(ctx).Order("id ASC").Limit(blobSweepBatch).Find(&pending).Error
	if err != nil {
		return 0, apperr.Internal(err, "Failed to load pending blob deletions")
	}

	reclaimed := 0
	for i := range pending {
		p := &pending[i]
		if err := s.store.Delete(ctx, p.StorageKey); err != nil {
			s.log.Warn("blob deletion retry failed",
				zap.String("key", p.StorageKey),
				zap.Int("attempts", p.Attempts+1),
				zap.Error(err),
			)
			uerr := s.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": err.Error(),
			}).Error
			if uerr != nil {
				return reclaimed, apperr.Internal(uerr, "Failed to update pending blob deletion")
			}
			continue
		}
		if err := s.db.WithContext(ctx).Unscoped().Delete(p).Error; err != nil {
			return reclaimed, apperr.Internal(err, "Failed to clear pending blob deletion")
		}
		reclaimed++
	}
	return reclaimed, nil
}
