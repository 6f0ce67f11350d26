package courseService

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lms/apperr"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
)

type CreateQuizInput struct {
	ModuleID            uint    `json:"moduleId" validate:"required"`
	Title               string  `json:"title" validate:"required,notblank,max=255"`
	QuizOrder           int     `json:"quizOrder" validate:"gte=0"`
	Instructions        *string `json:"instructions"`
	UnlockAfterLessonID *uint   `json:"unlockAfterLessonId" validate:"omitempty,gt=0"`
}

type UpdateQuizInput struct {
	Title               *string `json:"title" validate:"omitempty,notblank,max=255"`
	QuizOrder           *int    `json:"quizOrder" validate:"omitempty,gte=0"`
	Instructions        *string `json:"instructions"`
	UnlockAfterLessonID *uint   `json:"unlockAfterLessonId"`
	// ClearUnlock removes the lesson gate; it wins over UnlockAfterLessonID.
	ClearUnlock bool `json:"clearUnlock"`
}

type OptionInput struct {
	OptionText string `json:"optionText" validate:"required,notblank"`
	IsCorrect  bool   `json:"isCorrect"`
}

type AddQuestionInput struct {
	QuizID        uint          `json:"quizId" validate:"required"`
	QuestionText  string        `json:"questionText" validate:"required,notblank"`
	QuestionOrder int           `json:"questionOrder" validate:"gte=0"`
	Options       []OptionInput `json:"options" validate:"required,min=2,dive"`
}

type UpdateQuestionInput struct {
	QuestionText  *string `json:"questionText" validate:"omitempty,notblank"`
	QuestionOrder *int    `json:"questionOrder" validate:"omitempty,gte=0"`
	// A non-empty Options replaces every existing option of the question.
	Options []OptionInput `json:"options" validate:"omitempty,min=2,dive"`
}

type QuizFilter struct {
	ModuleID uint `query:"moduleId"`
	Page     int  `query:"page"`
	Limit    int  `query:"limit"`
}

// UserOption hides correctness from learners.
type UserOption struct {
	ID         uint   `json:"id"`
	OptionText string `json:"optionText"`
}

type UserQuestion struct {
	ID            uint         `json:"id"`
	QuestionText  string       `json:"questionText"`
	QuestionOrder int          `json:"questionOrder"`
	Options       []UserOption `json:"options"`
}

type UserQuiz struct {
	ID                  uint           `json:"id"`
	ModuleID            uint           `json:"moduleId"`
	Title               string         `json:"title"`
	Instructions        *string        `json:"instructions"`
	QuizOrder           int            `json:"quizOrder"`
	UnlockAfterLessonID *uint          `json:"unlockAfterLessonId"`
	IsLocked            bool           `json:"isLocked"`
	Questions           []UserQuestion `json:"questions"`
}

// validateOptions enforces at least two options with exactly one correct.
func validateOptions(options []OptionInput) error {
	if len(options) < 2 {
		return apperr.Validation("A question needs at least two options")
	}
	correct := 0
	for _, o := range options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return apperr.Validation("A question needs exactly one correct option, got %d", correct)
	}
	return nil
}

func newOptions(questionID uint, in []OptionInput) []courseModels.Option {
	options := make([]courseModels.Option, 0, len(in))
	for _, o := range in {
		options = append(options, courseModels.Option{
			QuestionID: questionID,
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
		})
	}
	return options
}

// withQuestions preloads live questions and options in display order.
func withQuestions(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

func (s *Service) CreateQuiz(ctx context.Context, auth models.AuthContext, in CreateQuizInput) (*courseModels.Quiz, error) {
	quiz := courseModels.Quiz{
		ModuleID:            in.ModuleID,
		Title:               in.Title,
		Instructions:        in.Instructions,
		QuizOrder:           in.QuizOrder,
		UnlockAfterLessonID: in.UnlockAfterLessonID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Module{}, in.ModuleID, "Module not found"); err != nil {
			return err
		}
		return tx.Create(&quiz).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to create quiz")
	}
	s.log.Info("quiz created",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("moduleId", quiz.ModuleID),
		zap.Uint("by", auth.UserID),
	)
	return &quiz, nil
}

func (s *Service) UpdateQuiz(ctx context.Context, auth models.AuthContext, id uint, in UpdateQuizInput) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &quiz, id, "Quiz not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.QuizOrder != nil {
			updates["quiz_order"] = *in.QuizOrder
		}
		if in.Instructions != nil {
			updates["instructions"] = *in.Instructions
		}
		if in.ClearUnlock {
			updates["unlock_after_lesson_id"] = nil
		} else if in.UnlockAfterLessonID != nil {
			updates["unlock_after_lesson_id"] = *in.UnlockAfterLessonID
		}
		if len(updates) > 0 {
			if err := tx.Model(&quiz).Updates(updates).Error; err != nil {
				return err
			}
		}
		return withQuestions(tx).First(&quiz, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update quiz")
	}
	return &quiz, nil
}

func (s *Service) AddQuestion(ctx context.Context, auth models.AuthContext, in AddQuestionInput) (*courseModels.Question, error) {
	if err := validateOptions(in.Options); err != nil {
		return nil, err
	}

	question := courseModels.Question{
		QuizID:        in.QuizID,
		QuestionText:  in.QuestionText,
		QuestionOrder: in.QuestionOrder,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &courseModels.Quiz{}, in.QuizID, "Quiz not found"); err != nil {
			return err
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		question.Options = newOptions(question.ID, in.Options)
		return tx.Create(&question.Options).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to add question")
	}
	return &question, nil
}

// UpdateQuestion patches a question. Supplying options soft-deletes the
// current set and inserts the new one; omitting them leaves options as is.
func (s *Service) UpdateQuestion(ctx context.Context, auth models.AuthContext, id uint, in UpdateQuestionInput) (*courseModels.Question, error) {
	if len(in.Options) > 0 {
		if err := validateOptions(in.Options); err != nil {
			return nil, err
		}
	}

	var question courseModels.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &question, id, "Question not found"); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.QuestionText != nil {
			updates["question_text"] = *in.QuestionText
		}
		if in.QuestionOrder != nil {
			updates["question_order"] = *in.QuestionOrder
		}
		if len(updates) > 0 {
			if err := tx.Model(&question).Updates(updates).Error; err != nil {
				return err
			}
		}
		if len(in.Options) > 0 {
			if err := tx.Where("question_id = ?", id).Delete(&courseModels.Option{}).Error; err != nil {
				return err
			}
			options := newOptions(id, in.Options)
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).First(&question, id).Error
	})
	if err != nil {
		return nil, internal(err, "Failed to update question")
	}
	return &question, nil
}

func (s *Service) GetQuizAdmin(ctx context.Context, id uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	if err := first(withQuestions(s.db.WithContext(ctx)), &quiz, id, "Quiz not found"); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *Service) ListQuizzesAdmin(ctx context.Context, filter QuizFilter) ([]courseModels.Quiz, utils.Pagination, error) {
	return s.listQuizzes(ctx, filter, false)
}

func (s *Service) listQuizzes(ctx context.Context, filter QuizFilter, publishedOnly bool) ([]courseModels.Quiz, utils.Pagination, error) {
	pagination, offset := paginate(filter.Page, filter.Limit)
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&courseModels.Quiz{})
		if filter.ModuleID != 0 {
			db = db.Where("module_id = ?", filter.ModuleID)
		}
		if publishedOnly {
			db = db.Where("module_id IN (?)", publishedModules(db))
		}
		return db
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Scopes(scope).Count(&pagination.Total).Error; err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list quizzes")
	}

	var quizzes []courseModels.Quiz
	err := withQuestions(tx.Scopes(scope)).
		Order("quiz_order ASC, id ASC").
		Offset(offset).Limit(pagination.Limit).
		Find(&quizzes).Error
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list quizzes")
	}
	return quizzes, pagination, nil
}

// GetQuizUser returns the learner view of a quiz, or PreconditionFailed while
// its gating lesson has not been watched.
func (s *Service) GetQuizUser(ctx context.Context, auth models.AuthContext, id uint) (*UserQuiz, error) {
	tx := s.db.WithContext(ctx)
	var quiz courseModels.Quiz
	if err := first(withQuestions(tx), &quiz, id, "Quiz not found"); err != nil {
		return nil, err
	}
	if err := visibleModule(tx, auth, quiz.ModuleID, "Quiz not found"); err != nil {
		return nil, err
	}
	unlocked, err := s.isUnlocked(tx, auth.UserID, &quiz)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to load quiz")
	}
	if !unlocked {
		return nil, apperr.PreconditionFailed("Required lesson not completed")
	}
	view := toUserQuiz(&quiz, false)
	return &view, nil
}

// ListQuizzesUser lists quizzes of published courses for learners. Gated
// quizzes are flagged isLocked and carry no questions.
func (s *Service) ListQuizzesUser(ctx context.Context, auth models.AuthContext, filter QuizFilter) ([]UserQuiz, utils.Pagination, error) {
	tx := s.db.WithContext(ctx)
	quizzes, pagination, err := s.listQuizzes(ctx, filter, !auth.IsAdmin())
	if err != nil {
		return nil, pagination, err
	}

	watched, err := s.watchedLessons(tx, auth.UserID, quizzes)
	if err != nil {
		return nil, pagination, apperr.Internal(err, "Failed to list quizzes")
	}

	views := make([]UserQuiz, 0, len(quizzes))
	for i := range quizzes {
		locked := quizzes[i].UnlockAfterLessonID != nil && !watched[*quizzes[i].UnlockAfterLessonID]
		views = append(views, toUserQuiz(&quizzes[i], locked))
	}
	return views, pagination, nil
}

func (s *Service) isUnlocked(tx *gorm.DB, userID uint, quiz *courseModels.Quiz) (bool, error) {
	if quiz.UnlockAfterLessonID == nil {
		return true, nil
	}
	return exists(tx, &courseModels.WatchedLesson{}, "user_id = ? AND lesson_id = ?", userID, *quiz.UnlockAfterLessonID)
}

func (s *Service) watchedLessons(tx *gorm.DB, userID uint, quizzes []courseModels.Quiz) (map[uint]bool, error) {
	var gates []uint
	for _, q := range quizzes {
		if q.UnlockAfterLessonID != nil {
			gates = append(gates, *q.UnlockAfterLessonID)
		}
	}
	watched := make(map[uint]bool, len(gates))
	if len(gates) == 0 {
		return watched, nil
	}

	var ids []uint
	err := tx.Model(&courseModels.WatchedLesson{}).
		Where("user_id = ? AND lesson_id IN ?", userID, gates).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		watched[id] = true
	}
	return watched, nil
}

func toUserQuiz(q *courseModels.Quiz, locked bool) UserQuiz {
	view := UserQuiz{
		ID:                  q.ID,
		ModuleID:            q.ModuleID,
		Title:               q.Title,
		Instructions:        q.Instructions,
		QuizOrder:           q.QuizOrder,
		UnlockAfterLessonID: q.UnlockAfterLessonID,
		IsLocked:            locked,
		Questions:           []UserQuestion{},
	}
	if locked {
		return view
	}
	for _, question := range q.Questions {
		uq := UserQuestion{
			ID:            question.ID,
			QuestionText:  question.QuestionText,
			QuestionOrder: question.QuestionOrder,
			Options:       make([]UserOption, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			uq.Options = append(uq.Options, UserOption{ID: o.ID, OptionText: o.OptionText})
		}
		view.Questions = append(view.Questions, uq)
	}
	return view
}

// ListMyAttempts returns the caller's attempts at a quiz, newest first.
func (s *Service) ListMyAttempts(ctx context.Context, auth models.AuthContext, quizID uint) ([]courseModels.QuizAttempt, error) {
	tx := s.db.WithContext(ctx)
	if err := first(tx, &courseModels.Quiz{}, quizID, "Quiz not found"); err != nil {
		return nil, err
	}
	var attempts []courseModels.QuizAttempt
	err := tx.Where("quiz_id = ? AND user_id = ?", quizID, auth.UserID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, apperr.Internal(err, "Failed to list attempts")
	}
	return attempts, nil
}
