package course

import "gorm.io/gorm"

// PendingBlobDeletion is a storage key whose removal failed and must be retried.
// Rows are hard-deleted once the object is gone.
type PendingBlobDeletion struct {
	gorm.Model
	StorageKey string `gorm:"uniqueIndex;size:191;not null"`
	Attempts   int    `gorm:"default:0"`
	LastError  string `gorm:"type:text"`
}

// All lists every model owned by this package, in migration order.
func All() []interface{} {
	return []interface{}{
		&Course{},
		&Module{},
		&Lesson{},
		&File{},
		&LessonFile{},
		&LessonComment{},
		&WatchedLesson{},
		&Quiz{},
		&Question{},
		&Option{},
		&QuizAttempt{},
		&QuizAnswer{},
		&Enrollment{},
		&Review{},
		&Certificate{},
		&Webinar{},
		&PendingBlobDeletion{},
	}
}
