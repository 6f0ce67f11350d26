package courseService

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
)

type ReviewInput struct {
	CourseID uint   `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=2000"`
}

type IssueCertificateInput struct {
	UserID   uint `json:"userId" validate:"required"`
	CourseID uint `json:"courseId" validate:"required"`
}

type ReviewSummary struct {
	Reviews       []courseModels.Review `json:"reviews"`
	AverageRating float64               `json:"averageRating"`
}

// Enroll adds the caller to a published course and sends a confirmation mail.
func (s *Service) Enroll(ctx context.Context, auth models.AuthContext, courseID uint) (*courseModels.Enrollment, error) {
	var course courseModels.Course
	var enrollment courseModels.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx.Where("is_published = ?", true), &course, courseID, "Course not found"); err != nil {
			return err
		}
		enrolled, err := exists(tx, &courseModels.Enrollment{}, "user_id = ? AND course_id = ?", auth.UserID, courseID)
		if err != nil {
			return err
		}
		if enrolled {
			return apperr.Conflict("Already enrolled in this course")
		}
		enrollment = courseModels.Enrollment{
			UserID:   auth.UserID,
			CourseID: courseID,
			Status:   courseModels.EnrollmentStatusEnrolled,
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to enroll")
	}

	s.notify(ctx, auth.UserID, func(name string) (string, string) {
		return utils.EnrollmentEmail(name, course.Title)
	})
	return &enrollment, nil
}

func (s *Service) MyEnrollments(ctx context.Context, auth models.AuthContext, page, limit int) ([]courseModels.Enrollment, utils.Pagination, error) {
	pagination, offset := paginate(page, limit)
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&courseModels.Enrollment{}).Where("user_id = ?", auth.UserID)
	}
	tx := s.db.WithContext(ctx)
	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list enrollments")
	}
	var enrollments []courseModels.Enrollment
	err := tx.Scopes(scope).Order("created_at DESC, id DESC").Offset(offset).Limit(pagination.Limit).Find(&enrollments).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list enrollments")
	}
	return enrollments, pagination, nil
}

// CreateReview records the caller's rating of a course they are enrolled in.
// A user reviews a course at most once.
func (s *Service) CreateReview(ctx context.Context, auth models.AuthContext, in ReviewInput) (*courseModels.Review, error) {
	review := courseModels.Review{
		UserID:   auth.UserID,
		CourseID: in.CourseID,
		Rating:   in.Rating,
		Comment:  strings.TrimSpace(in.Comment),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Course{}, in.CourseID, "Course not found"); err != nil {
			return err
		}
		enrolled, err := exists(tx, &courseModels.Enrollment{}, "user_id = ? AND course_id = ?", auth.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if !enrolled {
			return apperr.PreconditionFailed("Enroll in the course before reviewing it")
		}
		reviewed, err := exists(tx, &courseModels.Review{}, "user_id = ? AND course_id = ?", auth.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if reviewed {
			return apperr.Conflict("You have already reviewed this course")
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create review")
	}
	return &review, nil
}

func (s *Service) ListReviews(ctx context.Context, courseID uint, page, limit int) (*ReviewSummary, utils.Pagination, error) {
	pagination, offset := paginate(page, limit)
	tx := s.db.WithContext(ctx)
	if err := first(tx, &courseModels.Course{}, courseID, "Course not found"); err != nil {
		return nil, pagination, err
	}
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&courseModels.Review{}).Where("course_id = ?", courseID)
	}

	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list reviews")
	}
	summary := &ReviewSummary{Reviews: []courseModels.Review{}}
	if err := tx.Scopes(scope).Select("COALESCE(AVG(rating), 0)").Scan(&summary.AverageRating).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list reviews")
	}
	err := tx.Scopes(scope).Order("created_at DESC, id DESC").Offset(offset).Limit(pagination.Limit).Find(&summary.Reviews).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list reviews")
	}
	return summary, pagination, nil
}

func (s *Service) DeleteReview(ctx context.Context, auth models.AuthContext, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review courseModels.Review
		if err := first(tx, &review, id, "Review not found"); err != nil {
			return err
		}
		if review.UserID != auth.UserID && !auth.IsAdmin() {
			return apperr.Forbidden("You can only delete your own reviews")
		}
		return tx.Delete(&review).Error
	})
	return internal(err, "Failed to delete review")
}

// IssueCertificate completes the user's enrollment and issues a numbered
// certificate for it.
func (s *Service) IssueCertificate(ctx context.Context, auth models.AuthContext, in IssueCertificateInput) (*courseModels.Certificate, error) {
	var course courseModels.Course
	var cert courseModels.Certificate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &course, in.CourseID, "Course not found"); err != nil {
			return err
		}
		var enrollment courseModels.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", in.UserID, in.CourseID).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.PreconditionFailed("User is not enrolled in this course")
		}
		if err != nil {
			return err
		}
		issued, err := exists(tx, &courseModels.Certificate{}, "user_id = ? AND course_id = ?", in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if issued {
			return apperr.Conflict("Certificate already issued for this course")
		}

		now := s.now().UTC()
		cert = courseModels.Certificate{
			UserID:            in.UserID,
			CourseID:          in.CourseID,
			CertificateNumber: newCertificateNumber(),
			IssuedAt:          now,
		}
		if err := tx.Create(&cert).Error; err != nil {
			return err
		}
		return tx.Model(&enrollment).Updates(map[string]interface{}{
			"status":       courseModels.EnrollmentStatusCompleted,
			"progress":     100,
			"completed_at": &now,
		}).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to issue certificate")
	}

	s.log.Info("certificate issued",
		zap.Uint("userId", in.UserID),
		zap.Uint("courseId", in.CourseID),
		zap.String("number", cert.CertificateNumber),
		zap.Uint("by", auth.UserID),
	)
	s.notify(ctx, in.UserID, func(name string) (string, string) {
		return utils.CertificateEmail(name, course.Title, cert.CertificateNumber)
	})
	return &cert, nil
}

func (s *Service) MyCertificates(ctx context.Context, auth models.AuthContext) ([]courseModels.Certificate, error) {
	var certs []courseModels.Certificate
	err := s.db.WithContext(ctx).Where("user_id = ?", auth.UserID).Order("issued_at DESC").Find(&certs).Error
	if err != nil {
		return nil, apperr.Internal(err, "Failed to list certificates")
	}
	return certs, nil
}

func newCertificateNumber() string {
	return "LMS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// notify mails a user. Delivery problems are logged and never fail the
// operation that triggered them.
func (s *Service) notify(ctx context.Context, userID uint, compose func(name string) (subject, body string)) {
	if s.mailer == nil {
		return
	}
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "name", "email").First(&user, userID).Error; err != nil {
		s.log.Warn("skipping notification, user not found", zap.Uint("userId", userID), zap.Error(err))
		return
	}
	subject, body := compose(user.Name)
	if err := s.mailer.Send(ctx, user.Email, user.Name, subject, body); err != nil {
		s.log.Error("failed to send email", zap.String("to", user.Email), zap.String("subject", subject), zap.Error(err))
	}
}
