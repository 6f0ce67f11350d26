package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"userId" gorm:"index;not null"`
	CourseID          uint      `json:"courseId" gorm:"index;not null"`
	CertificateNumber string    `json:"certificateNumber" gorm:"uniqueIndex;size:64"`
	IssuedAt          time.Time `json:"issuedAt"`
}
