package courseService

import (
	"context"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/storage"
	"lms/utils"
)

type CreateCourseInput struct {
	Title       string `json:"title" validate:"required,notblank,min=3,max=255"`
	Description string `json:"description" validate:"required,min=5"`
	Author      string `json:"author" validate:"required,min=3,excludesall=<>{}"`
	Duration    int64  `json:"duration" validate:"gt=0"`
}

type UpdateCourseInput struct {
	Title       *string `json:"title" validate:"omitempty,notblank,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,min=5"`
	Author      *string `json:"author" validate:"omitempty,min=3,excludesall=<>{}"`
	Duration    *int64  `json:"duration" validate:"omitempty,gt=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

type CourseFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

type CourseView struct {
	courseModels.Course
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (s *Service) CreateCourse(ctx context.Context, auth models.AuthContext, in CreateCourseInput) (*courseModels.Course, error) {
	var course courseModels.Course
	err := s.withSlugRetry(ctx, "A course with this title already exists", func(tx *gorm.DB) error {
		slug, err := utils.UniqueSlug(tx, &courseModels.Course{}, utils.Slugify(in.Title), nil)
		if err != nil {
			return err
		}
		course = courseModels.Course{
			Title:       in.Title,
			Slug:        slug,
			Description: in.Description,
			Author:      in.Author,
			Duration:    in.Duration,
			Status:      courseModels.CourseStatusDraft,
		}
		return tx.Create(&course).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create course")
	}
	s.log.Info("course created", zap.Uint("courseId", course.ID), zap.String("slug", course.Slug), zap.Uint("by", auth.UserID))
	return &course, nil
}

// UpdateCourse patches a course. The slug is kept so existing links survive
// a title change.
func (s *Service) UpdateCourse(ctx context.Context, auth models.AuthContext, id uint, in UpdateCourseInput) (*courseModels.Course, error) {
	var course courseModels.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &course, id, "Course not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Author != nil {
			updates["author"] = *in.Author
		}
		if in.Duration != nil {
			updates["duration"] = *in.Duration
		}
		if in.Status != nil {
			updates["status"] = *in.Status
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&course).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&course, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update course")
	}
	return &course, nil
}

// PublishCourse toggles learner visibility. Publishing also activates the course.
func (s *Service) PublishCourse(ctx context.Context, auth models.AuthContext, id uint, publish bool) (*courseModels.Course, error) {
	var course courseModels.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &course, id, "Course not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{"is_published": publish}
		if publish {
			updates["status"] = courseModels.CourseStatusActive
		}
		if err := tx.Model(&course).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&course, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to publish course")
	}
	return &course, nil
}

// GetCourse returns a course with its modules and lessons. Learners only see
// published courses.
func (s *Service) GetCourse(ctx context.Context, auth models.AuthContext, id uint) (*CourseView, error) {
	tx := s.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_order ASC, id ASC")
		})
	if !auth.IsAdmin() {
		tx = tx.Where("is_published = ?", true)
	}

	var course courseModels.Course
	if err := first(tx, &course, id, "Course not found"); err != nil {
		return nil, err
	}
	urls := s.signOrEmpty(ctx, []string{course.ThumbnailKey})
	return &CourseView{Course: course, ThumbnailURL: urls[0]}, nil
}

func (s *Service) ListCourses(ctx context.Context, auth models.AuthContext, filter CourseFilter) ([]CourseView, utils.Pagination, error) {
	pagination, offset := paginate(filter.Page, filter.Limit)
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&courseModels.Course{})
		if !auth.IsAdmin() {
			db = db.Where("is_published = ?", true)
		} else if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			db = db.Where("title LIKE ?", "%"+filter.Search+"%")
		}
		return db
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list courses")
	}
	var courses []courseModels.Course
	err := tx.Scopes(scope).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pagination.Limit).
		Find(&courses).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list courses")
	}

	keys := make([]string, len(courses))
	for i, c := range courses {
		keys[i] = c.ThumbnailKey
	}
	urls := s.signOrEmpty(ctx, keys)

	views := make([]CourseView, len(courses))
	for i, c := range courses {
		views[i] = CourseView{Course: c, ThumbnailURL: urls[i]}
	}
	return views, pagination, nil
}

// UploadCourseThumbnail stores a new thumbnail and releases the previous one.
func (s *Service) UploadCourseThumbnail(ctx context.Context, auth models.AuthContext, id uint, r io.Reader, meta storage.Metadata) (*CourseView, error) {
	if err := first(s.db.WithContext(ctx), &courseModels.Course{}, id, "Course not found"); err != nil {
		return nil, err
	}
	obj, err := s.upload(ctx, r, meta)
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	var previous string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &course, id, "Course not found"); err != nil {
			return err
		}
		previous = course.ThumbnailKey
		course.ThumbnailKey = obj.Key
		return tx.Model(&course).Update("thumbnail_key", obj.Key).Error
	})
	if err != nil {
		s.reclaimBlobs(ctx, []string{obj.Key})
		return nil, internal(err, "Failed to save thumbnail")
	}
	if previous != "" {
		s.reclaimBlobs(ctx, []string{previous})
	}

	urls := s.signOrEmpty(ctx, []string{course.ThumbnailKey})
	return &CourseView{Course: course, ThumbnailURL: urls[0]}, nil
}
