package courseService

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lms/apperr"
	courseModels "lms/models/course"
	"lms/storage"
)

// courseTree extends quizFixture with every kind of row a course cascade touches.
type courseTree struct {
	*quizFixture
	fileKey      string
	thumbnailKey string
	attemptID    uint
}

func (e *testEnv) seedCourseTree(t *testing.T) *courseTree {
	t.Helper()
	ctx := context.Background()
	tree := &courseTree{quizFixture: e.seedQuiz(t)}

	thumb, err := e.svc.UploadCourseThumbnail(ctx, admin, tree.course.ID, fileReader("png"), storage.Metadata{FileName: "cover.png", ContentType: "image/png"})
	require.NoError(t, err)
	tree.thumbnailKey = thumb.ThumbnailKey

	file, err := e.svc.UploadLessonFile(ctx, admin, tree.lesson.ID, fileReader("slides"), storage.Metadata{FileName: "slides.pdf", ContentType: "application/pdf"})
	require.NoError(t, err)
	tree.fileKey = file.StorageKey

	_, err = e.svc.AddComment(ctx, learner, tree.lesson.ID, CommentInput{Body: "Nice lesson"})
	require.NoError(t, err)
	_, err = e.svc.Enroll(ctx, learner, tree.course.ID)
	require.NoError(t, err)
	_, err = e.svc.MarkLessonWatched(ctx, learner, tree.lesson.ID)
	require.NoError(t, err)
	_, err = e.svc.CreateReview(ctx, learner, ReviewInput{CourseID: tree.course.ID, Rating: 5})
	require.NoError(t, err)
	_, err = e.svc.IssueCertificate(ctx, admin, IssueCertificateInput{UserID: learner.UserID, CourseID: tree.course.ID})
	require.NoError(t, err)

	res, err := e.svc.SubmitQuizAnswers(ctx, learner, SubmitQuizInput{
		QuizID:  tree.quiz.ID,
		Answers: answers(tree.q1.ID, tree.a.ID, tree.q2.ID, tree.d.ID),
	})
	require.NoError(t, err)
	tree.attemptID = res.AttemptID
	return tree
}

var courseTables = []interface{}{
	&courseModels.Course{},
	&courseModels.Module{},
	&courseModels.Lesson{},
	&courseModels.File{},
	&courseModels.LessonFile{},
	&courseModels.LessonComment{},
	&courseModels.WatchedLesson{},
	&courseModels.Quiz{},
	&courseModels.Question{},
	&courseModels.Option{},
	&courseModels.QuizAttempt{},
	&courseModels.QuizAnswer{},
	&courseModels.Enrollment{},
	&courseModels.Review{},
	&courseModels.Certificate{},
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	tree := env.seedCourseTree(t)
	ctx := context.Background()

	retained := make([]int64, len(courseTables))
	for i, model := range courseTables {
		retained[i] = env.count(t, model, true)
		require.NotZero(t, retained[i], "%T", model)
	}
	require.True(t, env.store.has(tree.fileKey))
	require.True(t, env.store.has(tree.thumbnailKey))

	require.NoError(t, env.svc.DeleteCourse(ctx, admin, tree.course.ID))

	for i, model := range courseTables {
		assert.Zero(t, env.count(t, model, false), "%T still visible", model)
		assert.Equal(t, retained[i], env.count(t, model, true), "%T rows must be retained", model)
	}
	assert.False(t, env.store.has(tree.fileKey))
	assert.False(t, env.store.has(tree.thumbnailKey))
	assert.Zero(t, env.count(t, &courseModels.PendingBlobDeletion{}, true))

	var quiz courseModels.Quiz
	require.NoError(t, env.svc.db.Unscoped().First(&quiz, tree.quiz.ID).Error)
	assert.True(t, quiz.DeletedAt.Valid)
}

func TestDeleteCourseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	tree := env.seedCourseTree(t)
	ctx := context.Background()
	db := env.svc.db

	require.NoError(t, env.svc.DeleteCourse(ctx, admin, tree.course.ID))
	var before courseModels.Question
	require.NoError(t, db.Unscoped().First(&before, tree.q1.ID).Error)
	deletesBefore := env.store.deletes

	err := env.svc.DeleteCourse(ctx, admin, tree.course.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// walking the already deleted subtree again changes nothing
	var keys []string
	err = db.Transaction(func(tx *gorm.DB) error {
		c := &cascade{tx: tx}
		if err := c.course(tree.course.ID); err != nil {
			return err
		}
		keys = c.keys
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, keys)

	var after courseModels.Question
	require.NoError(t, db.Unscoped().First(&after, tree.q1.ID).Error)
	assert.Equal(t, before.DeletedAt, after.DeletedAt)
	assert.Equal(t, deletesBefore, env.store.deletes)
}

func TestDeleteCourseQueuesFailedBlobDeletes(t *testing.T) {
	env := newTestEnv(t)
	tree := env.seedCourseTree(t)
	ctx := context.Background()

	env.store.failDelete = errors.New("storage unavailable")
	require.NoError(t, env.svc.DeleteCourse(ctx, admin, tree.course.ID))

	assert.Zero(t, env.count(t, &courseModels.Course{}, false))
	assert.True(t, env.store.has(tree.fileKey))
	assert.Equal(t, int64(2), env.count(t, &courseModels.PendingBlobDeletion{}, true))

	// still failing: attempts are recorded, nothing reclaimed
	n, err := env.svc.RetryPendingBlobDeletions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	var pending courseModels.PendingBlobDeletion
	require.NoError(t, env.svc.db.Where("storage_key = ?", tree.fileKey).First(&pending).Error)
	assert.Equal(t, 2, pending.Attempts)
	assert.Equal(t, "storage unavailable", pending.LastError)

	env.store.failDelete = nil
	n, err = env.svc.RetryPendingBlobDeletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, env.count(t, &courseModels.PendingBlobDeletion{}, true))
	assert.False(t, env.store.has(tree.fileKey))
	assert.False(t, env.store.has(tree.thumbnailKey))
}

func TestDeleteModuleSoftDeletesAttempts(t *testing.T) {
	env := newTestEnv(t)
	tree := env.seedCourseTree(t)
	ctx := context.Background()

	require.NoError(t, env.svc.DeleteModule(ctx, admin, tree.module.ID))

	var attempt courseModels.QuizAttempt
	require.NoError(t, env.svc.db.Unscoped().First(&attempt, tree.attemptID).Error)
	assert.True(t, attempt.DeletedAt.Valid)
	assert.Equal(t, int64(2), env.count(t, &courseModels.QuizAnswer{}, true))
	assert.Zero(t, env.count(t, &courseModels.QuizAnswer{}, false))

	// the course and its course-level rows survive a module delete
	assert.Equal(t, int64(1), env.count(t, &courseModels.Course{}, false))
	assert.Equal(t, int64(1), env.count(t, &courseModels.Enrollment{}, false))
	assert.False(t, env.store.has(tree.fileKey))
	assert.True(t, env.store.has(tree.thumbnailKey))

	err := env.svc.DeleteModule(ctx, admin, tree.module.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteQuestionIsVisibilityOnly(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	require.NoError(t, env.svc.DeleteQuestion(ctx, admin, f.q1.ID))

	view, err := env.svc.GetQuizUser(ctx, learner, f.quiz.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, f.q2.ID, view.Questions[0].ID)

	adminView, err := env.svc.GetQuizAdmin(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, adminView.Questions, 1)

	var question courseModels.Question
	require.NoError(t, env.svc.db.Unscoped().First(&question, f.q1.ID).Error)
	assert.True(t, question.DeletedAt.Valid)

	var options []courseModels.Option
	require.NoError(t, env.svc.db.Unscoped().Where("question_id = ?", f.q1.ID).Find(&options).Error)
	require.Len(t, options, 2)
	for _, o := range options {
		assert.True(t, o.DeletedAt.Valid)
	}

	err = env.svc.DeleteQuestion(ctx, admin, f.q1.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteQuizAndLesson(t *testing.T) {
	env := newTestEnv(t)
	tree := env.seedCourseTree(t)
	ctx := context.Background()

	require.NoError(t, env.svc.DeleteQuiz(ctx, admin, tree.quiz.ID))
	assert.Zero(t, env.count(t, &courseModels.Question{}, false))
	assert.Zero(t, env.count(t, &courseModels.Option{}, false))
	assert.Zero(t, env.count(t, &courseModels.QuizAttempt{}, false))

	_, err := env.svc.GetQuizUser(ctx, learner, tree.quiz.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, env.svc.DeleteLesson(ctx, admin, tree.lesson.ID))
	assert.Zero(t, env.count(t, &courseModels.Lesson{}, false))
	assert.Zero(t, env.count(t, &courseModels.LessonComment{}, false))
	assert.Zero(t, env.count(t, &courseModels.File{}, false))
	assert.False(t, env.store.has(tree.fileKey))

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.svc.DeleteLesson(ctx, admin, tree.lesson.ID)))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.svc.DeleteQuiz(ctx, admin, 9999)))
}
