package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentStatusEnrolled   = "ENROLLED"
	EnrollmentStatusInProgress = "IN_PROGRESS"
	EnrollmentStatusCompleted  = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"userId" gorm:"index;not null"`
	CourseID    uint       `json:"courseId" gorm:"index;not null"`
	Status      string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Progress    float64    `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	CompletedAt *time.Time `json:"completedAt"`
}

type Review struct {
	gorm.Model
	UserID   uint   `json:"userId" gorm:"index;not null"`
	CourseID uint   `json:"courseId" gorm:"index;not null"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment" gorm:"type:text"`
}
