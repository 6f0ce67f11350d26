package course

import (
	"time"

	"gorm.io/gorm"
)

// Quiz belongs to a module and may be gated behind a lesson
type Quiz struct {
	gorm.Model
	ModuleID            uint       `json:"moduleId" gorm:"index;not null"`
	Title               string     `json:"title"`
	Instructions        *string    `json:"instructions" gorm:"type:text"`
	QuizOrder           int        `json:"quizOrder" gorm:"default:0"`
	UnlockAfterLessonID *uint      `json:"unlockAfterLessonId"`
	Questions           []Question `json:"questions,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

type Question struct {
	gorm.Model
	QuizID        uint     `json:"quizId" gorm:"index;not null"`
	QuestionText  string   `json:"questionText" gorm:"type:text"`
	QuestionOrder int      `json:"questionOrder" gorm:"default:0"`
	Options       []Option `json:"options,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

type Option struct {
	gorm.Model
	QuestionID uint   `json:"questionId" gorm:"index;not null"`
	OptionText string `json:"optionText"`
	IsCorrect  bool   `json:"isCorrect" gorm:"default:false"`
}

// QuizAttempt is one scored submission of a quiz by a user
type QuizAttempt struct {
	gorm.Model
	QuizID        uint       `json:"quizId" gorm:"not null;uniqueIndex:idx_attempt_quiz_user_number"`
	UserID        uint       `json:"userId" gorm:"not null;uniqueIndex:idx_attempt_quiz_user_number"`
	AttemptNumber int        `json:"attemptNumber" gorm:"not null;uniqueIndex:idx_attempt_quiz_user_number"`
	Score         *string    `json:"score" gorm:"type:varchar(8)"` // fixed-point, two decimals
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt"`
}

// QuizAnswer keeps the correctness of the selected option as it was at submission time
type QuizAnswer struct {
	gorm.Model
	AttemptID        uint `json:"attemptId" gorm:"index;not null"`
	UserID           uint `json:"userId" gorm:"index;not null"`
	QuestionID       uint `json:"questionId" gorm:"index;not null"`
	SelectedOptionID uint `json:"selectedOptionId" gorm:"not null"`
	IsCorrect        bool `json:"isCorrect"`
}
