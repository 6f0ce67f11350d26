package courseService

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/apperr"
	courseModels "lms/models/course"
)

func TestCreateQuizRequiresLiveModule(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	_, err := env.svc.CreateQuiz(ctx, admin, CreateQuizInput{ModuleID: 9999, Title: "Nope"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, env.svc.DeleteModule(ctx, admin, f.module.ID))
	_, err = env.svc.CreateQuiz(ctx, admin, CreateQuizInput{ModuleID: f.module.ID, Title: "Nope"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Module not found", apperr.PublicMessage(err))
}

func TestAddQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)

	tests := []struct {
		name    string
		in      AddQuestionInput
		kind    apperr.Kind
		message string
	}{
		{
			name: "missing quiz",
			in: AddQuestionInput{QuizID: 9999, QuestionText: "?", Options: []OptionInput{
				{OptionText: "a", IsCorrect: true}, {OptionText: "b"},
			}},
			kind:    apperr.KindNotFound,
			message: "Quiz not found",
		},
		{
			name:    "one option",
			in:      AddQuestionInput{QuizID: f.quiz.ID, QuestionText: "?", Options: []OptionInput{{OptionText: "a", IsCorrect: true}}},
			kind:    apperr.KindValidation,
			message: "A question needs at least two options",
		},
		{
			name: "no correct option",
			in: AddQuestionInput{QuizID: f.quiz.ID, QuestionText: "?", Options: []OptionInput{
				{OptionText: "a"}, {OptionText: "b"},
			}},
			kind:    apperr.KindValidation,
			message: "A question needs exactly one correct option, got 0",
		},
		{
			name: "two correct options",
			in: AddQuestionInput{QuizID: f.quiz.ID, QuestionText: "?", Options: []OptionInput{
				{OptionText: "a", IsCorrect: true}, {OptionText: "b", IsCorrect: true}, {OptionText: "c"},
			}},
			kind:    apperr.KindValidation,
			message: "A question needs exactly one correct option, got 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AddQuestion(context.Background(), admin, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.PublicMessage(err))
		})
	}
	assert.Equal(t, int64(2), env.count(t, &courseModels.Question{}, true))
}

func TestUpdateQuestionReplacesOptions(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	text := "Which keyword declares a variable in Go?"
	q, err := env.svc.UpdateQuestion(ctx, admin, f.q1.ID, UpdateQuestionInput{QuestionText: &text})
	require.NoError(t, err)
	assert.Equal(t, text, q.QuestionText)
	require.Len(t, q.Options, 2)
	assert.Equal(t, f.a.ID, q.Options[0].ID)

	q, err = env.svc.UpdateQuestion(ctx, admin, f.q1.ID, UpdateQuestionInput{Options: []OptionInput{
		{OptionText: "var", IsCorrect: true},
		{OptionText: "let"},
		{OptionText: "const"},
	}})
	require.NoError(t, err)
	require.Len(t, q.Options, 3)
	assert.NotEqual(t, f.a.ID, q.Options[0].ID)

	var live, all int64
	require.NoError(t, env.svc.db.Model(&courseModels.Option{}).Where("question_id = ?", f.q1.ID).Count(&live).Error)
	require.NoError(t, env.svc.db.Unscoped().Model(&courseModels.Option{}).Where("question_id = ?", f.q1.ID).Count(&all).Error)
	assert.Equal(t, int64(3), live)
	assert.Equal(t, int64(5), all)

	_, err = env.svc.UpdateQuestion(ctx, admin, f.q1.ID, UpdateQuestionInput{Options: []OptionInput{
		{OptionText: "x"}, {OptionText: "y"},
	}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.svc.UpdateQuestion(ctx, admin, 9999, UpdateQuestionInput{QuestionText: &text})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateQuiz(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	title := "Renamed"
	order := 5
	quiz, err := env.svc.UpdateQuiz(ctx, admin, f.quiz.ID, UpdateQuizInput{
		Title: &title, QuizOrder: &order, UnlockAfterLessonID: &f.lesson.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", quiz.Title)
	assert.Equal(t, 5, quiz.QuizOrder)
	require.NotNil(t, quiz.UnlockAfterLessonID)
	assert.Len(t, quiz.Questions, 2)

	quiz, err = env.svc.UpdateQuiz(ctx, admin, f.quiz.ID, UpdateQuizInput{ClearUnlock: true})
	require.NoError(t, err)
	assert.Nil(t, quiz.UnlockAfterLessonID)

	_, err = env.svc.UpdateQuiz(ctx, admin, 9999, UpdateQuizInput{Title: &title})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestQuizViews(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	gated, err := env.svc.CreateQuiz(ctx, admin, CreateQuizInput{
		ModuleID: f.module.ID, Title: "Gated", QuizOrder: 0, UnlockAfterLessonID: &f.lesson.ID,
	})
	require.NoError(t, err)
	env.addQuestion(t, gated.ID, "Hidden?", 1, 0, "yes", "no")

	adminQuiz, err := env.svc.GetQuizAdmin(ctx, f.quiz.ID)
	require.NoError(t, err)
	require.Len(t, adminQuiz.Questions, 2)
	assert.True(t, adminQuiz.Questions[0].Options[0].IsCorrect)

	list, pagination, err := env.svc.ListQuizzesUser(ctx, learner, QuizFilter{ModuleID: f.module.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pagination.Total)
	require.Len(t, list, 2)
	assert.Equal(t, gated.ID, list[0].ID, "ordered by quizOrder")
	assert.True(t, list[0].IsLocked)
	assert.Empty(t, list[0].Questions)
	assert.False(t, list[1].IsLocked)
	assert.Len(t, list[1].Questions, 2)

	body, err := json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "isCorrect")

	_, err = env.svc.GetQuizUser(ctx, learner, gated.ID)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	_, err = env.svc.MarkLessonWatched(ctx, learner, f.lesson.ID)
	require.NoError(t, err)
	view, err := env.svc.GetQuizUser(ctx, learner, gated.ID)
	require.NoError(t, err)
	assert.False(t, view.IsLocked)
	assert.Len(t, view.Questions, 1)

	adminList, _, err := env.svc.ListQuizzesAdmin(ctx, QuizFilter{ModuleID: f.module.ID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, adminList, 1)
}
