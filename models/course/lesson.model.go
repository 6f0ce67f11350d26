package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson is a unit of content within a module
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"moduleId" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
	Content     string `json:"content" gorm:"type:text"`
	VideoURL    string `json:"videoUrl"`
	LessonOrder int    `json:"lessonOrder" gorm:"default:0"`
}

// File is an uploaded object tracked by its storage key
type File struct {
	gorm.Model
	StorageKey string         `json:"-" gorm:"uniqueIndex;size:191;not null"`
	FileName   string         `json:"fileName"`
	MimeType   string         `json:"mimeType"`
	Size       int64          `json:"size"`
	Checksum   string         `json:"checksum"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	UploadedBy uint           `json:"uploadedBy" gorm:"index"`
}

// LessonFile links a file to the lesson it was attached to
type LessonFile struct {
	gorm.Model
	LessonID uint `json:"lessonId" gorm:"index;not null"`
	FileID   uint `json:"fileId" gorm:"index;not null"`
	File     File `json:"file"`
}

type LessonComment struct {
	gorm.Model
	LessonID uint   `json:"lessonId" gorm:"index;not null"`
	UserID   uint   `json:"userId" gorm:"index;not null"`
	Body     string `json:"body" gorm:"type:text"`
}

// WatchedLesson records that a user finished a lesson
type WatchedLesson struct {
	gorm.Model
	UserID   uint `json:"userId" gorm:"index:idx_watched_user_lesson;not null"`
	LessonID uint `json:"lessonId" gorm:"index:idx_watched_user_lesson;not null"`
	CourseID uint `json:"courseId" gorm:"index;not null"`
}
