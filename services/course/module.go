package courseService

import (
	"context"

	"gorm.io/gorm"

	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
)

type CreateModuleInput struct {
	CourseID    uint   `json:"courseId" validate:"required"`
	Title       string `json:"title" validate:"required,notblank,min=3,max=255"`
	Description string `json:"description"`
	// OrderIndex defaults to the next free position in the course.
	OrderIndex *int `json:"orderIndex" validate:"omitempty,gte=0"`
}

type UpdateModuleInput struct {
	Title       *string `json:"title" validate:"omitempty,notblank,min=3,max=255"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"orderIndex" validate:"omitempty,gte=0"`
}

func moduleScope(courseID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("course_id = ?", courseID)
	}
}

func (s *Service) CreateModule(ctx context.Context, auth models.AuthContext, in CreateModuleInput) (*courseModels.Module, error) {
	var module courseModels.Module
	err := s.withSlugRetry(ctx, "A module with this title already exists in the course", func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Course{}, in.CourseID, "Course not found"); err != nil {
			return err
		}

		orderIndex := 0
		if in.OrderIndex != nil {
			orderIndex = *in.OrderIndex
		} else {
			var maxOrder int
			err := tx.Model(&courseModels.Module{}).
				Where("course_id = ?", in.CourseID).
				Select("COALESCE(MAX(order_index), 0)").
				Scan(&maxOrder).Error
			if err != nil {
				return err
			}
			orderIndex = maxOrder + 1
		}

		slug, err := utils.UniqueSlug(tx, &courseModels.Module{}, utils.Slugify(in.Title), moduleScope(in.CourseID))
		if err != nil {
			return err
		}
		module = courseModels.Module{
			CourseID:    in.CourseID,
			Title:       in.Title,
			Slug:        slug,
			Description: in.Description,
			OrderIndex:  orderIndex,
		}
		return tx.Create(&module).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create module")
	}
	return &module, nil
}

func (s *Service) UpdateModule(ctx context.Context, auth models.AuthContext, id uint, in UpdateModuleInput) (*courseModels.Module, error) {
	var module courseModels.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &module, id, "Module not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.OrderIndex != nil {
			updates["order_index"] = *in.OrderIndex
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&module).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&module, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update module")
	}
	return &module, nil
}

// GetModule returns a module with its lessons and quizzes. Modules of
// unpublished courses are hidden from learners.
func (s *Service) GetModule(ctx context.Context, auth models.AuthContext, id uint) (*courseModels.Module, error) {
	var module courseModels.Module
	tx := s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_order ASC, id ASC")
		}).
		Preload("Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_order ASC, id ASC")
		})
	if err := first(tx, &module, id, "Module not found"); err != nil {
		return nil, err
	}
	if err := visibleCourse(s.db.WithContext(ctx), auth, module.CourseID, "Module not found"); err != nil {
		return nil, err
	}
	return &module, nil
}

func (s *Service) ListModules(ctx context.Context, auth models.AuthContext, courseID uint) ([]courseModels.Module, error) {
	tx := s.db.WithContext(ctx)
	if err := visibleCourse(tx, auth, courseID, "Course not found"); err != nil {
		return nil, err
	}
	var modules []courseModels.Module
	err := tx.Where("course_id = ?", courseID).
		Order("order_index ASC, id ASC").
		Find(&modules).Error
	if err != nil {
		return nil, internal(err, "Failed to list modules")
	}
	return modules, nil
}
