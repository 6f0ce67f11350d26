package courseService

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/apperr"
	courseModels "lms/models/course"
	"lms/storage"
)

func TestCreateCourseAssignsUniqueSlugs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := CreateCourseInput{Title: "Intro to Go!", Description: "Learn Go", Author: "Rob", Duration: 3}

	first, err := env.svc.CreateCourse(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go", first.Slug)
	assert.Equal(t, courseModels.CourseStatusDraft, first.Status)

	second, err := env.svc.CreateCourse(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go-2", second.Slug)

	// deleted courses keep their slug reserved
	require.NoError(t, env.svc.DeleteCourse(ctx, admin, first.ID))
	third, err := env.svc.CreateCourse(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go-3", third.Slug)
}

func TestCourseVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft, err := env.svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Draft course", Description: "Not yet", Author: "Ann", Duration: 1})
	require.NoError(t, err)
	live, err := env.svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Live course", Description: "Ready now", Author: "Ann", Duration: 1})
	require.NoError(t, err)
	published, err := env.svc.PublishCourse(ctx, admin, live.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.Equal(t, courseModels.CourseStatusActive, published.Status)

	_, err = env.svc.GetCourse(ctx, learner, draft.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	view, err := env.svc.GetCourse(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft course", view.Title)

	courses, pagination, err := env.svc.ListCourses(ctx, learner, CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pagination.Total)
	require.Len(t, courses, 1)
	assert.Equal(t, live.ID, courses[0].ID)

	courses, pagination, err = env.svc.ListCourses(ctx, admin, CourseFilter{Search: "Draft"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pagination.Total)
	assert.Equal(t, draft.ID, courses[0].ID)

	status := courseModels.CourseStatusInactive
	updated, err := env.svc.UpdateCourse(ctx, admin, draft.ID, UpdateCourseInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, updated.Status)
	assert.Equal(t, "draft-course", updated.Slug)
}

func TestUploadCourseThumbnailReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, err := env.svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Go", Description: "Learn Go", Author: "Rob", Duration: 1})
	require.NoError(t, err)

	meta := storage.Metadata{FileName: "cover.PNG", ContentType: "image/png"}
	first, err := env.svc.UploadCourseThumbnail(ctx, admin, course.ID, fileReader("one"), meta)
	require.NoError(t, err)
	assert.Contains(t, first.ThumbnailURL, first.ThumbnailKey)
	assert.Contains(t, first.ThumbnailKey, ".png")

	second, err := env.svc.UploadCourseThumbnail(ctx, admin, course.ID, fileReader("two"), meta)
	require.NoError(t, err)
	assert.NotEqual(t, first.ThumbnailKey, second.ThumbnailKey)
	assert.False(t, env.store.has(first.ThumbnailKey))
	assert.True(t, env.store.has(second.ThumbnailKey))

	_, err = env.svc.UploadCourseThumbnail(ctx, admin, 9999, fileReader("x"), meta)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestModules(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	second, err := env.svc.CreateModule(ctx, admin, CreateModuleInput{CourseID: f.course.ID, Title: "Basics"})
	require.NoError(t, err)
	assert.Equal(t, "basics-2", second.Slug)
	assert.Equal(t, f.module.OrderIndex+1, second.OrderIndex)

	// slugs are scoped per course
	other, err := env.svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Other", Description: "Other course", Author: "Rob", Duration: 1})
	require.NoError(t, err)
	elsewhere, err := env.svc.CreateModule(ctx, admin, CreateModuleInput{CourseID: other.ID, Title: "Basics"})
	require.NoError(t, err)
	assert.Equal(t, "basics", elsewhere.Slug)

	modules, err := env.svc.ListModules(ctx, learner, f.course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, f.module.ID, modules[0].ID)

	order := 0
	_, err = env.svc.UpdateModule(ctx, admin, second.ID, UpdateModuleInput{OrderIndex: &order})
	require.NoError(t, err)
	modules, err = env.svc.ListModules(ctx, learner, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, modules[0].ID)

	module, err := env.svc.GetModule(ctx, learner, f.module.ID)
	require.NoError(t, err)
	assert.Len(t, module.Lessons, 1)
	assert.Len(t, module.Quizzes, 1)

	_, err = env.svc.CreateModule(ctx, admin, CreateModuleInput{CourseID: 9999, Title: "Lost"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLessonFilesAndProgress(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	second, err := env.svc.CreateLesson(ctx, admin, CreateLessonInput{ModuleID: f.module.ID, Title: "Functions"})
	require.NoError(t, err)
	assert.Equal(t, f.lesson.LessonOrder+1, second.LessonOrder)

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := env.svc.UploadLessonFile(ctx, admin, f.lesson.ID, fileReader(name), storage.Metadata{FileName: name, ContentType: "application/pdf"})
		require.NoError(t, err)
	}

	view, err := env.svc.GetLesson(ctx, learner, f.lesson.ID)
	require.NoError(t, err)
	require.Len(t, view.Files, 3)
	assert.False(t, view.Watched)
	for _, file := range view.Files {
		assert.Contains(t, file.URL, file.StorageKey)
		assert.Contains(t, string(file.Metadata), `"extension":"pdf"`)
	}

	require.NoError(t, env.svc.DeleteLessonFile(ctx, admin, f.lesson.ID, view.Files[0].ID))
	assert.False(t, env.store.has(view.Files[0].StorageKey))
	err = env.svc.DeleteLessonFile(ctx, admin, f.lesson.ID, view.Files[0].ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = env.svc.Enroll(ctx, learner, f.course.ID)
	require.NoError(t, err)
	_, err = env.svc.MarkLessonWatched(ctx, learner, f.lesson.ID)
	require.NoError(t, err)
	again, err := env.svc.MarkLessonWatched(ctx, learner, f.lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, f.lesson.ID, again.LessonID)
	assert.Equal(t, int64(1), env.count(t, &courseModels.WatchedLesson{}, false))

	var enrollment courseModels.Enrollment
	require.NoError(t, env.svc.db.Where("user_id = ?", learner.UserID).First(&enrollment).Error)
	assert.Equal(t, 50.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentStatusInProgress, enrollment.Status)

	_, err = env.svc.MarkLessonWatched(ctx, learner, second.ID)
	require.NoError(t, err)
	require.NoError(t, env.svc.db.Where("user_id = ?", learner.UserID).First(&enrollment).Error)
	assert.Equal(t, 100.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentStatusCompleted, enrollment.Status)
	assert.NotNil(t, enrollment.CompletedAt)

	view, err = env.svc.GetLesson(ctx, learner, f.lesson.ID)
	require.NoError(t, err)
	assert.True(t, view.Watched)
	assert.Len(t, view.Files, 2)
}

func TestUploadLessonFileFailures(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	_, err := env.svc.UploadLessonFile(ctx, admin, 9999, fileReader("x"), storage.Metadata{FileName: "x.txt"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	noStore := New(env.svc.db, nil, nil, nil, 0)
	_, err = noStore.UploadLessonFile(ctx, admin, f.lesson.ID, fileReader("x"), storage.Metadata{FileName: "x.txt"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Zero(t, env.count(t, &courseModels.File{}, true))
}

func TestUnpublishedCourseContentIsHidden(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	_, err := env.svc.PublishCourse(ctx, admin, f.course.ID, false)
	require.NoError(t, err)

	hidden := map[string]error{}
	_, hidden["course"] = env.svc.GetCourse(ctx, learner, f.course.ID)
	_, hidden["modules"] = env.svc.ListModules(ctx, learner, f.course.ID)
	_, hidden["module"] = env.svc.GetModule(ctx, learner, f.module.ID)
	_, hidden["lessons"] = env.svc.ListLessons(ctx, learner, f.module.ID)
	_, hidden["lesson"] = env.svc.GetLesson(ctx, learner, f.lesson.ID)
	_, hidden["watched"] = env.svc.MarkLessonWatched(ctx, learner, f.lesson.ID)
	_, hidden["comment"] = env.svc.AddComment(ctx, learner, f.lesson.ID, CommentInput{Body: "Early"})
	_, _, hidden["comments"] = env.svc.ListComments(ctx, learner, f.lesson.ID, 1, 10)
	_, hidden["quiz"] = env.svc.GetQuizUser(ctx, learner, f.quiz.ID)
	_, hidden["submit"] = env.svc.SubmitQuizAnswers(ctx, learner, SubmitQuizInput{
		QuizID:  f.quiz.ID,
		Answers: answers(f.q1.ID, f.a.ID, f.q2.ID, f.d.ID),
	})
	for name, err := range hidden {
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), name)
	}
	assert.Zero(t, env.count(t, &courseModels.QuizAttempt{}, true))
	assert.Zero(t, env.count(t, &courseModels.WatchedLesson{}, true))

	quizzes, pagination, err := env.svc.ListQuizzesUser(ctx, learner, QuizFilter{ModuleID: f.module.ID})
	require.NoError(t, err)
	assert.Empty(t, quizzes)
	assert.Zero(t, pagination.Total)

	// admins keep working on drafts
	module, err := env.svc.GetModule(ctx, admin, f.module.ID)
	require.NoError(t, err)
	assert.Len(t, module.Quizzes, 1)
	lessons, err := env.svc.ListLessons(ctx, admin, f.module.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	adminQuizzes, _, err := env.svc.ListQuizzesUser(ctx, admin, QuizFilter{ModuleID: f.module.ID})
	require.NoError(t, err)
	assert.Len(t, adminQuizzes, 1)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()
	stranger := learner
	stranger.UserID = 3

	comment, err := env.svc.AddComment(ctx, learner, f.lesson.ID, CommentInput{Body: "  Great lesson  "})
	require.NoError(t, err)
	assert.Equal(t, "Great lesson", comment.Body)
	_, err = env.svc.AddComment(ctx, stranger, f.lesson.ID, CommentInput{Body: "Agreed"})
	require.NoError(t, err)

	comments, pagination, err := env.svc.ListComments(ctx, learner, f.lesson.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pagination.Total)
	assert.Len(t, comments, 1)

	err = env.svc.DeleteComment(ctx, stranger, comment.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	require.NoError(t, env.svc.DeleteComment(ctx, learner, comment.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.svc.DeleteComment(ctx, admin, comment.ID)))

	_, err = env.svc.AddComment(ctx, learner, 9999, CommentInput{Body: "?"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEnrollmentsReviewsAndCertificates(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	ctx := context.Background()

	_, err := env.svc.CreateReview(ctx, learner, ReviewInput{CourseID: f.course.ID, Rating: 4})
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	enrollment, err := env.svc.Enroll(ctx, learner, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.EnrollmentStatusEnrolled, enrollment.Status)
	_, err = env.svc.Enroll(ctx, learner, f.course.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "learner@example.com", env.mailer.sent[0].To)

	enrollments, pagination, err := env.svc.MyEnrollments(ctx, learner, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pagination.Total)
	assert.Len(t, enrollments, 1)

	review, err := env.svc.CreateReview(ctx, learner, ReviewInput{CourseID: f.course.ID, Rating: 4, Comment: "Solid"})
	require.NoError(t, err)
	_, err = env.svc.CreateReview(ctx, learner, ReviewInput{CourseID: f.course.ID, Rating: 5})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.svc.Enroll(ctx, admin, f.course.ID)
	require.NoError(t, err)
	_, err = env.svc.CreateReview(ctx, admin, ReviewInput{CourseID: f.course.ID, Rating: 1})
	require.NoError(t, err)

	summary, pagination, err := env.svc.ListReviews(ctx, f.course.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pagination.Total)
	assert.InDelta(t, 2.5, summary.AverageRating, 1e-9)

	stranger := learner
	stranger.UserID = 3
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(env.svc.DeleteReview(ctx, stranger, review.ID)))
	require.NoError(t, env.svc.DeleteReview(ctx, admin, review.ID))

	cert, err := env.svc.IssueCertificate(ctx, admin, IssueCertificateInput{UserID: learner.UserID, CourseID: f.course.ID})
	require.NoError(t, err)
	assert.Regexp(t, `^LMS-[0-9A-F]{32}$`, cert.CertificateNumber)
	_, err = env.svc.IssueCertificate(ctx, admin, IssueCertificateInput{UserID: learner.UserID, CourseID: f.course.ID})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, err = env.svc.IssueCertificate(ctx, admin, IssueCertificateInput{UserID: 3, CourseID: f.course.ID})
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	certs, err := env.svc.MyCertificates(ctx, learner)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, cert.CertificateNumber, certs[0].CertificateNumber)

	var completed courseModels.Enrollment
	require.NoError(t, env.svc.db.First(&completed, enrollment.ID).Error)
	assert.Equal(t, courseModels.EnrollmentStatusCompleted, completed.Status)
}

func TestEnrollSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedQuiz(t)
	env.mailer.fail = errors.New("smtp down")

	_, err := env.svc.Enroll(context.Background(), learner, f.course.ID)
	require.NoError(t, err)
	assert.Empty(t, env.mailer.sent)
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draft, err := env.svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Draft", Description: "Not yet", Author: "Ann", Duration: 1})
	require.NoError(t, err)

	_, err = env.svc.Enroll(ctx, learner, draft.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
