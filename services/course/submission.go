package courseService

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
)

type AnswerInput struct {
	QuestionID       uint `json:"questionId" validate:"required"`
	SelectedOptionID uint `json:"selectedOptionId" validate:"required"`
}

type SubmitQuizInput struct {
	QuizID  uint          `json:"quizId" validate:"required"`
	Answers []AnswerInput `json:"answers" validate:"required,dive"`
}

type SubmissionResult struct {
	AttemptID      uint      `json:"attemptId"`
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	AttemptNumber  int       `json:"attemptNumber"`
	CompletedAt    time.Time `json:"completedAt"`
}

// SubmitQuizAnswers scores a complete answer set and records it as the
// caller's next attempt. Validation and persistence share one transaction,
// so a rejected submission leaves no attempt or answer rows behind. A
// question answered more than once is rejected with a validation error
// instead of being scored twice. When a concurrent submission takes the
// same attempt number the transaction is replayed with a fresh number.
func (s *Service) SubmitQuizAnswers(ctx context.Context, auth models.AuthContext, in SubmitQuizInput) (*SubmissionResult, error) {
	var result *SubmissionResult
	retries := 0
	err := retryOnConflict(func() error {
		if retries > 0 {
			s.log.Warn("attempt number taken, retrying submission",
				zap.Uint("quizId", in.QuizID),
				zap.Uint("userId", auth.UserID),
				zap.Int("retry", retries),
			)
		}
		retries++
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			r, err := s.submit(tx, auth, in)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("Another submission for this quiz is in progress, please retry")
	}
	if err != nil {
		return nil, internal(err, "Failed to submit quiz")
	}

	s.log.Info("quiz submitted",
		zap.Uint("quizId", in.QuizID),
		zap.Uint("userId", auth.UserID),
		zap.Uint("attemptId", result.AttemptID),
		zap.Int("attemptNumber", result.AttemptNumber),
		zap.Float64("score", result.Score),
	)
	return result, nil
}

func (s *Service) submit(tx *gorm.DB, auth models.AuthContext, in SubmitQuizInput) (*SubmissionResult, error) {
	var quiz courseModels.Quiz
	if err := first(withQuestions(tx), &quiz, in.QuizID, "Quiz not found"); err != nil {
		return nil, err
	}
	if err := visibleModule(tx, auth, quiz.ModuleID, "Quiz not found"); err != nil {
		return nil, err
	}

	unlocked, err := s.isUnlocked(tx, auth.UserID, &quiz)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, apperr.PreconditionFailed("Required lesson not completed")
	}

	total := len(quiz.Questions)
	if total == 0 {
		return nil, apperr.Validation("Quiz has no questions to answer")
	}

	answered := make(map[uint]int, len(in.Answers))
	for _, a := range in.Answers {
		answered[a.QuestionID]++
	}
	for _, q := range quiz.Questions {
		if answered[q.ID] == 0 {
			return nil, apperr.Validation("All questions must be answered")
		}
	}

	// questionID -> optionID -> option
	options := make(map[uint]map[uint]courseModels.Option, total)
	for _, q := range quiz.Questions {
		byID := make(map[uint]courseModels.Option, len(q.Options))
		for _, o := range q.Options {
			byID[o.ID] = o
		}
		options[q.ID] = byID
	}
	for _, a := range in.Answers {
		byID, ok := options[a.QuestionID]
		if !ok {
			return nil, apperr.NotFound("Question %d not found in quiz %d", a.QuestionID, quiz.ID)
		}
		if _, ok := byID[a.SelectedOptionID]; !ok {
			return nil, apperr.NotFound("Option %d not found for question %d", a.SelectedOptionID, a.QuestionID)
		}
		if answered[a.QuestionID] > 1 {
			return nil, apperr.Validation("Question %d answered more than once", a.QuestionID)
		}
	}

	attemptNumber, err := nextAttemptNumber(tx, quiz.ID, auth.UserID)
	if err != nil {
		return nil, err
	}

	attempt := courseModels.QuizAttempt{
		QuizID:        quiz.ID,
		UserID:        auth.UserID,
		AttemptNumber: attemptNumber,
		StartedAt:     s.now().UTC(),
	}
	if err := tx.Create(&attempt).Error; err != nil {
		return nil, err
	}

	correct := 0
	answers := make([]courseModels.QuizAnswer, 0, len(in.Answers))
	for _, a := range in.Answers {
		isCorrect := options[a.QuestionID][a.SelectedOptionID].IsCorrect
		if isCorrect {
			correct++
		}
		answers = append(answers, courseModels.QuizAnswer{
			AttemptID:        attempt.ID,
			UserID:           auth.UserID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        isCorrect,
		})
	}
	if err := tx.Create(&answers).Error; err != nil {
		return nil, err
	}

	stored, score := computeScore(correct, total)
	completedAt := s.now().UTC()
	err = tx.Model(&attempt).Updates(map[string]interface{}{
		"score":        stored,
		"completed_at": completedAt,
	}).Error
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{
		AttemptID:      attempt.ID,
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		AttemptNumber:  attemptNumber,
		CompletedAt:    completedAt,
	}, nil
}

// nextAttemptNumber reads MAX+1 over every attempt, soft-deleted ones
// included, because they still hold their slot in the unique index.
func nextAttemptNumber(tx *gorm.DB, quizID, userID uint) (int, error) {
	var last int
	err := tx.Unscoped().Model(&courseModels.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// computeScore returns correct/total as a percentage rounded half-up to two
// decimals, both as the stored fixed-point text and as a number.
func computeScore(correct, total int) (string, float64) {
	c, t := int64(correct), int64(total)
	hundredths := (c*10000*2 + t) / (2 * t)
	return fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100), float64(hundredths) / 100
}
