package courseService

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/storage"
	"lms/utils"
)

type CreateWebinarInput struct {
	Title           string    `json:"title" validate:"required,notblank,min=3,max=255"`
	Description     string    `json:"description"`
	Host            string    `json:"host" validate:"required,notblank"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gt=0"`
	MeetingURL      string    `json:"meetingUrl" validate:"omitempty,url"`
}

type UpdateWebinarInput struct {
	Title           *string    `json:"title" validate:"omitempty,notblank,min=3,max=255"`
	Description     *string    `json:"description"`
	Host            *string    `json:"host" validate:"omitempty,notblank"`
	StartsAt        *time.Time `json:"startsAt"`
	DurationMinutes *int       `json:"durationMinutes" validate:"omitempty,gt=0"`
	MeetingURL      *string    `json:"meetingUrl" validate:"omitempty,url"`
}

type WebinarFilter struct {
	Upcoming bool `query:"upcoming"`
	Page     int  `query:"page"`
	Limit    int  `query:"limit"`
}

type WebinarView struct {
	courseModels.Webinar
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (s *Service) CreateWebinar(ctx context.Context, auth models.AuthContext, in CreateWebinarInput) (*courseModels.Webinar, error) {
	var webinar courseModels.Webinar
	err := s.withSlugRetry(ctx, "A webinar with this title already exists", func(tx *gorm.DB) error {
		slug, err := utils.UniqueSlug(tx, &courseModels.Webinar{}, utils.Slugify(in.Title), nil)
		if err != nil {
			return err
		}
		webinar = courseModels.Webinar{
			Title:           in.Title,
			Slug:            slug,
			Description:     in.Description,
			Host:            in.Host,
			StartsAt:        in.StartsAt.UTC(),
			DurationMinutes: in.DurationMinutes,
			MeetingURL:      in.MeetingURL,
		}
		return tx.Create(&webinar).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create webinar")
	}
	return &webinar, nil
}

func (s *Service) UpdateWebinar(ctx context.Context, auth models.AuthContext, id uint, in UpdateWebinarInput) (*courseModels.Webinar, error) {
	var webinar courseModels.Webinar
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &webinar, id, "Webinar not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Host != nil {
			updates["host"] = *in.Host
		}
		if in.StartsAt != nil {
			updates["starts_at"] = in.StartsAt.UTC()
		}
		if in.DurationMinutes != nil {
			updates["duration_minutes"] = *in.DurationMinutes
		}
		if in.MeetingURL != nil {
			updates["meeting_url"] = *in.MeetingURL
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&webinar).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&webinar, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update webinar")
	}
	return &webinar, nil
}

func (s *Service) GetWebinar(ctx context.Context, id uint) (*WebinarView, error) {
	var webinar courseModels.Webinar
	if err := first(s.db.WithContext(ctx), &webinar, id, "Webinar not found"); err != nil {
		return nil, err
	}
	urls := s.signOrEmpty(ctx, []string{webinar.ThumbnailKey})
	return &WebinarView{Webinar: webinar, ThumbnailURL: urls[0]}, nil
}

func (s *Service) ListWebinars(ctx context.Context, filter WebinarFilter) ([]WebinarView, utils.Pagination, error) {
	pagination, offset := paginate(filter.Page, filter.Limit)
	now := s.now().UTC()
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&courseModels.Webinar{})
		if filter.Upcoming {
			db = db.Where("starts_at >= ?", now)
		}
		return db
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list webinars")
	}
	var webinars []courseModels.Webinar
	err := tx.Scopes(scope).Order("starts_at ASC, id ASC").Offset(offset).Limit(pagination.Limit).Find(&webinars).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list webinars")
	}

	keys := make([]string, len(webinars))
	for i, w := range webinars {
		keys[i] = w.ThumbnailKey
	}
	urls := s.signOrEmpty(ctx, keys)
	views := make([]WebinarView, len(webinars))
	for i, w := range webinars {
		views[i] = WebinarView{Webinar: w, ThumbnailURL: urls[i]}
	}
	return views, pagination, nil
}

func (s *Service) DeleteWebinar(ctx context.Context, auth models.AuthContext, id uint) error {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var webinar courseModels.Webinar
		if err := first(tx, &webinar, id, "Webinar not found"); err != nil {
			return err
		}
		key = webinar.ThumbnailKey
		return tx.Delete(&webinar).Error
	})
	if err != nil {
		return internal(err, "Failed to delete webinar")
	}
	if key != "" {
		s.reclaimBlobs(ctx, []string{key})
	}
	return nil
}

func (s *Service) UploadWebinarThumbnail(ctx context.Context, auth models.AuthContext, id uint, r io.Reader, meta storage.Metadata) (*WebinarView, error) {
	if err := first(s.db.WithContext(ctx), &courseModels.Webinar{}, id, "Webinar not found"); err != nil {
		return nil, err
	}
	obj, err := s.upload(ctx, r, meta)
	if err != nil {
		return nil, err
	}

	var webinar courseModels.Webinar
	var previous string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &webinar, id, "Webinar not found"); err != nil {
			return err
		}
		previous = webinar.ThumbnailKey
		webinar.ThumbnailKey = obj.Key
		return tx.Model(&webinar).Update("thumbnail_key", obj.Key).Error
	})
	if err != nil {
		s.reclaimBlobs(ctx, []string{obj.Key})
		return nil, internal(err, "Failed to save thumbnail")
	}
	if previous != "" {
		s.reclaimBlobs(ctx, []string{previous})
	}

	urls := s.signOrEmpty(ctx, []string{obj.Key})
	return &WebinarView{Webinar: webinar, ThumbnailURL: urls[0]}, nil
}
