package course

import "gorm.io/gorm"

const (
	CourseStatusDraft    = "DRAFT"
	CourseStatusActive   = "ACTIVE"
	CourseStatusInactive = "INACTIVE"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string   `json:"title"`
	Slug         string   `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Description  string   `json:"description" gorm:"type:text"`
	Author       string   `json:"author"`
	Duration     int64    `json:"duration" gorm:"default:0"`     // duration in hours
	Status       string   `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailKey string   `json:"-"`
	IsPublished  bool     `json:"isPublished" gorm:"default:false"`
	Modules      []Module `json:"modules,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
