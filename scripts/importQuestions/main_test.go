package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lms/database"
	courseModels "lms/models/course"
	courseService "lms/services/course"
)

const sample = `question,option_1,option_2,option_3,correct,order
What is 2+2?,3,4,5,2,1
Capital of France?,Paris,Rome,,1,2
,a,b,,1,3
Broken,only,,,1,4
Bad answer,a,b,,x,5
Out of range,a,b,,3,6
`

func TestParseQuestions(t *testing.T) {
	questions, skipped, err := parseQuestions(strings.NewReader(sample), 7)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Len(t, skipped, 4)

	q := questions[0]
	assert.Equal(t, uint(7), q.QuizID)
	assert.Equal(t, 1, q.QuestionOrder)
	require.Len(t, q.Options, 3)
	assert.False(t, q.Options[0].IsCorrect)
	assert.True(t, q.Options[1].IsCorrect)

	assert.Len(t, questions[1].Options, 2)
	assert.True(t, questions[1].Options[0].IsCorrect)
}

func TestParseQuestionsRequiresColumns(t *testing.T) {
	_, _, err := parseQuestions(strings.NewReader("question,option_1\nQ,A\n"), 1)
	assert.Error(t, err)

	_, _, err = parseQuestions(strings.NewReader("question,correct\n"), 1)
	assert.Error(t, err)
}

func TestImportQuestions(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	course := courseModels.Course{Title: "Go", Slug: "go"}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Basics", Slug: "basics"}
	require.NoError(t, db.Create(&module).Error)
	quiz := courseModels.Quiz{ModuleID: module.ID, Title: "Checkpoint"}
	require.NoError(t, db.Create(&quiz).Error)

	questions, _, err := parseQuestions(strings.NewReader(sample), quiz.ID)
	require.NoError(t, err)
	missing := append(questions, courseService.AddQuestionInput{
		QuizID:       quiz.ID + 100,
		QuestionText: "Orphan",
		Options:      questions[0].Options,
	})

	svc := courseService.New(db, nil, nil, nil, 0)
	inserted, failed := importQuestions(context.Background(), svc, missing, zap.NewNop())
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, failed)

	var n int64
	require.NoError(t, db.Model(&courseModels.Option{}).Count(&n).Error)
	assert.EqualValues(t, 5, n)
}
