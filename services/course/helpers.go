package courseService

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
)

// maxConflictRetries bounds how often a transaction is replayed after losing a
// unique-index race (attempt numbers, slugs).
const maxConflictRetries = 5

// first loads dest by id, mapping a missing (or soft-deleted) row to NotFound.
func first(tx *gorm.DB, dest interface{}, id uint, notFound string) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	if err != nil {
		return apperr.Internal(err, notFound)
	}
	return nil
}

// exists reports whether a non-deleted row of model matches the query.
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// visibleCourses limits learners to published courses.
func visibleCourses(tx *gorm.DB, auth models.AuthContext) *gorm.DB {
	if auth.IsAdmin() {
		return tx
	}
	return tx.Where("is_published = ?", true)
}

// visibleCourse fails with NotFound unless auth may see the course.
func visibleCourse(tx *gorm.DB, auth models.AuthContext, courseID uint, notFound string) error {
	return first(visibleCourses(tx, auth), &courseModels.Course{}, courseID, notFound)
}

// visibleModule is visibleCourse for the course owning moduleID.
func visibleModule(tx *gorm.DB, auth models.AuthContext, moduleID uint, notFound string) error {
	var module courseModels.Module
	if err := first(tx, &module, moduleID, notFound); err != nil {
		return err
	}
	return visibleCourse(tx, auth, module.CourseID, notFound)
}

// publishedModules selects the IDs of modules whose course is published.
func publishedModules(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&courseModels.Module{}).
		Select("modules.id").
		Joins("JOIN courses ON courses.id = modules.course_id AND courses.deleted_at IS NULL").
		Where("courses.is_published = ?", true)
}

// retryOnConflict runs fn until it stops failing with a unique violation.
func retryOnConflict(fn func() error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = fn()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// withSlugRetry replays a transaction that assigns a fresh slug, since a
// concurrent insert may claim the same slug between check and insert.
func (s *Service) withSlugRetry(ctx context.Context, conflict string, fn func(tx *gorm.DB) error) error {
	err := retryOnConflict(func() error {
		return s.db.WithContext(ctx).Transaction(fn)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(conflict)
	}
	return err
}

func paginate(page, limit int) (utils.Pagination, int) {
	page, limit, offset := utils.Paginate(page, limit)
	return utils.Pagination{Page: page, Limit: limit}, offset
}

func internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err, msg)
}
