package courseService

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/storage"
	"lms/utils"
)

type CreateLessonInput struct {
	ModuleID    uint   `json:"moduleId" validate:"required"`
	Title       string `json:"title" validate:"required,notblank,min=3,max=255"`
	Description string `json:"description"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl" validate:"omitempty,url"`
	LessonOrder *int   `json:"lessonOrder" validate:"omitempty,gte=0"`
}

type UpdateLessonInput struct {
	Title       *string `json:"title" validate:"omitempty,notblank,min=3,max=255"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	VideoURL    *string `json:"videoUrl" validate:"omitempty,url"`
	LessonOrder *int    `json:"lessonOrder" validate:"omitempty,gte=0"`
}

type CommentInput struct {
	Body string `json:"body" validate:"required,notblank,max=2000"`
}

type FileView struct {
	courseModels.File
	URL string `json:"url"`
}

type LessonView struct {
	courseModels.Lesson
	Watched bool       `json:"watched"`
	Files   []FileView `json:"files"`
}

func (s *Service) CreateLesson(ctx context.Context, auth models.AuthContext, in CreateLessonInput) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Module{}, in.ModuleID, "Module not found"); err != nil {
			return err
		}

		order := 0
		if in.LessonOrder != nil {
			order = *in.LessonOrder
		} else {
			var maxOrder int
			err := tx.Model(&courseModels.Lesson{}).
				Where("module_id = ?", in.ModuleID).
				Select("COALESCE(MAX(lesson_order), 0)").
				Scan(&maxOrder).Error
			if err != nil {
				return err
			}
			order = maxOrder + 1
		}

		lesson = courseModels.Lesson{
			ModuleID:    in.ModuleID,
			Title:       in.Title,
			Description: in.Description,
			Content:     in.Content,
			VideoURL:    in.VideoURL,
			LessonOrder: order,
		}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create lesson")
	}
	return &lesson, nil
}

func (s *Service) UpdateLesson(ctx context.Context, auth models.AuthContext, id uint, in UpdateLessonInput) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &lesson, id, "Lesson not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Content != nil {
			updates["content"] = *in.Content
		}
		if in.VideoURL != nil {
			updates["video_url"] = *in.VideoURL
		}
		if in.LessonOrder != nil {
			updates["lesson_order"] = *in.LessonOrder
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&lesson).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&lesson, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update lesson")
	}
	return &lesson, nil
}

func (s *Service) ListLessons(ctx context.Context, auth models.AuthContext, moduleID uint) ([]courseModels.Lesson, error) {
	tx := s.db.WithContext(ctx)
	if err := visibleModule(tx, auth, moduleID, "Module not found"); err != nil {
		return nil, err
	}
	var lessons []courseModels.Lesson
	err := tx.Where("module_id = ?", moduleID).Order("lesson_order ASC, id ASC").Find(&lessons).Error
	if err != nil {
		return nil, apperr.Internal(err, "Failed to list lessons")
	}
	return lessons, nil
}

// GetLesson returns a lesson with signed URLs for its files.
func (s *Service) GetLesson(ctx context.Context, auth models.AuthContext, id uint) (*LessonView, error) {
	tx := s.db.WithContext(ctx)
	var lesson courseModels.Lesson
	if err := first(tx, &lesson, id, "Lesson not found"); err != nil {
		return nil, err
	}
	if err := visibleModule(tx, auth, lesson.ModuleID, "Lesson not found"); err != nil {
		return nil, err
	}

	var links []courseModels.LessonFile
	err := tx.Joins("File").Where("lesson_files.lesson_id = ?", id).Order("lesson_files.id ASC").Find(&links).Error
	if err != nil {
		return nil, apperr.Internal(err, "Failed to load lesson files")
	}

	keys := make([]string, len(links))
	for i, l := range links {
		keys[i] = l.File.StorageKey
	}
	urls, err := s.signAll(ctx, keys)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to sign lesson files")
	}

	watched, err := exists(tx, &courseModels.WatchedLesson{}, "user_id = ? AND lesson_id = ?", auth.UserID, id)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to load lesson")
	}

	view := &LessonView{Lesson: lesson, Watched: watched, Files: make([]FileView, len(links))}
	for i, l := range links {
		view.Files[i] = FileView{File: l.File, URL: urls[i]}
	}
	return view, nil
}

// MarkLessonWatched records that the caller finished a lesson and refreshes
// their enrollment progress. Marking twice returns the existing record.
func (s *Service) MarkLessonWatched(ctx context.Context, auth models.AuthContext, lessonID uint) (*courseModels.WatchedLesson, error) {
	var watched courseModels.WatchedLesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson courseModels.Lesson
		if err := first(tx, &lesson, lessonID, "Lesson not found"); err != nil {
			return err
		}
		var module courseModels.Module
		if err := first(tx, &module, lesson.ModuleID, "Module not found"); err != nil {
			return err
		}
		if err := visibleCourse(tx, auth, module.CourseID, "Lesson not found"); err != nil {
			return err
		}

		err := tx.Where("user_id = ? AND lesson_id = ?", auth.UserID, lessonID).First(&watched).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		watched = courseModels.WatchedLesson{UserID: auth.UserID, LessonID: lessonID, CourseID: module.CourseID}
		if err := tx.Create(&watched).Error; err != nil {
			return err
		}
		return s.refreshProgress(tx, auth.UserID, module.CourseID)
	})
	if err != nil {
		return nil, internal(err, "Failed to mark lesson as watched")
	}
	return &watched, nil
}

// refreshProgress recomputes the enrollment progress from watched lessons.
// Users that are not enrolled have nothing to update.
func (s *Service) refreshProgress(tx *gorm.DB, userID, courseID uint) error {
	var enrollment courseModels.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var total, done int64
	err = tx.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Count(&total).Error
	if err != nil {
		return err
	}
	err = tx.Model(&courseModels.WatchedLesson{}).
		Joins("JOIN lessons ON lessons.id = watched_lessons.lesson_id AND lessons.deleted_at IS NULL").
		Where("watched_lessons.user_id = ? AND watched_lessons.course_id = ?", userID, courseID).
		Distinct("watched_lessons.lesson_id").
		Count(&done).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	progress := 0.0
	if total > 0 {
		progress = float64(done*10000/total) / 100
	}
	updates["progress"] = progress
	if progress >= 100 {
		now := s.now().UTC()
		updates["status"] = courseModels.EnrollmentStatusCompleted
		updates["completed_at"] = &now
	} else if progress > 0 {
		updates["status"] = courseModels.EnrollmentStatusInProgress
	}
	return tx.Model(&enrollment).Updates(updates).Error
}

// UploadLessonFile stores r and attaches it to the lesson. The blob is
// released again if the rows cannot be written.
func (s *Service) UploadLessonFile(ctx context.Context, auth models.AuthContext, lessonID uint, r io.Reader, meta storage.Metadata) (*FileView, error) {
	if err := first(s.db.WithContext(ctx), &courseModels.Lesson{}, lessonID, "Lesson not found"); err != nil {
		return nil, err
	}
	obj, err := s.upload(ctx, r, meta)
	if err != nil {
		return nil, err
	}

	extra, err := json.Marshal(map[string]interface{}{
		"extension":  strings.TrimPrefix(strings.ToLower(filepath.Ext(meta.FileName)), "."),
		"lessonId":   lessonID,
		"uploadedAt": s.now().UTC(),
	})
	if err != nil {
		s.reclaimBlobs(ctx, []string{obj.Key})
		return nil, apperr.Internal(err, "Failed to encode file metadata")
	}

	file := courseModels.File{
		StorageKey: obj.Key,
		FileName:   obj.FileName,
		MimeType:   obj.ContentType,
		Size:       obj.Size,
		Checksum:   obj.Checksum,
		Metadata:   datatypes.JSON(extra),
		UploadedBy: auth.UserID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Lesson{}, lessonID, "Lesson not found"); err != nil {
			return err
		}
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return tx.Create(&courseModels.LessonFile{LessonID: lessonID, FileID: file.ID}).Error
	})
	if err != nil {
		s.reclaimBlobs(ctx, []string{obj.Key})
		return nil, internal(err, "Failed to attach file")
	}

	urls, err := s.signAll(ctx, []string{file.StorageKey})
	if err != nil {
		return nil, apperr.Internal(err, "Failed to sign file")
	}
	s.log.Info("lesson file uploaded",
		zap.Uint("lessonId", lessonID),
		zap.Uint("fileId", file.ID),
		zap.Int64("size", file.Size),
	)
	return &FileView{File: file, URL: urls[0]}, nil
}

func (s *Service) DeleteLessonFile(ctx context.Context, auth models.AuthContext, lessonID, fileID uint) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link courseModels.LessonFile
		err := tx.Where("lesson_id = ? AND file_id = ?", lessonID, fileID).First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("File not found")
		}
		if err != nil {
			return err
		}
		c := &cascade{tx: tx}
		if err := c.files([]uint{fileID}); err != nil {
			return err
		}
		if len(c.keys) > 0 {
			key = c.keys[0]
		}
		return tx.Delete(&link).Error
	})
	if err != nil {
		return internal(err, "Failed to delete file")
	}
	if key != "" {
		s.reclaimBlobs(ctx, []string{key})
	}
	return nil
}

func (s *Service) AddComment(ctx context.Context, auth models.AuthContext, lessonID uint, in CommentInput) (*courseModels.LessonComment, error) {
	comment := courseModels.LessonComment{LessonID: lessonID, UserID: auth.UserID, Body: strings.TrimSpace(in.Body)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.visibleLesson(tx, auth, lessonID); err != nil {
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to add comment")
	}
	return &comment, nil
}

func (s *Service) ListComments(ctx context.Context, auth models.AuthContext, lessonID uint, page, limit int) ([]courseModels.LessonComment, utils.Pagination, error) {
	pagination, offset := paginate(page, limit)
	tx := s.db.WithContext(ctx)
	if err := s.visibleLesson(tx, auth, lessonID); err != nil {
		return nil, pagination, err
	}

	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&courseModels.LessonComment{}).Where("lesson_id = ?", lessonID)
	}
	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list comments")
	}
	var comments []courseModels.LessonComment
	err := tx.Scopes(scope).Order("created_at DESC, id DESC").Offset(offset).Limit(pagination.Limit).Find(&comments).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list comments")
	}
	return comments, pagination, nil
}

func (s *Service) visibleLesson(tx *gorm.DB, auth models.AuthContext, lessonID uint) error {
	var lesson courseModels.Lesson
	if err := first(tx, &lesson, lessonID, "Lesson not found"); err != nil {
		return err
	}
	return visibleModule(tx, auth, lesson.ModuleID, "Lesson not found")
}

// DeleteComment lets authors remove their own comments and admins any comment.
func (s *Service) DeleteComment(ctx context.Context, auth models.AuthContext, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment courseModels.LessonComment
		if err := first(tx, &comment, id, "Comment not found"); err != nil {
			return err
		}
		if comment.UserID != auth.UserID && !auth.IsAdmin() {
			return apperr.Forbidden("You can only delete your own comments")
		}
		return tx.Delete(&comment).Error
	})
	return internal(err, "Failed to delete comment")
}
