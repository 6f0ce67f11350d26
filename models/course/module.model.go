package course

import "gorm.io/gorm"

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint     `json:"courseId" gorm:"not null;uniqueIndex:idx_module_course_slug"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug" gorm:"size:191;not null;uniqueIndex:idx_module_course_slug"`
	Description string   `json:"description" gorm:"type:text"`
	OrderIndex  int      `json:"orderIndex" gorm:"default:0"` // Module order in course
	Lessons     []Lesson `json:"lessons,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quizzes     []Quiz   `json:"quizzes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
