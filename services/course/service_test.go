package courseService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/storage"
)

var (
	admin   = models.AuthContext{UserID: 1, Role: models.RoleAdmin}
	learner = models.AuthContext{UserID: 2, Role: models.RoleUser}
)

// memStore is an in-memory storage.Storage with switchable delete failures.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failDelete error
	deletes    int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Upload(_ context.Context, r io.Reader, meta storage.Metadata) (*storage.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := storage.NewKey(meta.FileName)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return &storage.Object{
		Key:         key,
		FileName:    meta.FileName,
		ContentType: meta.ContentType,
		Checksum:    fmt.Sprintf("len-%d", len(data)),
		Size:        int64(len(data)),
	}, nil
}

func (m *memStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", errors.Errorf("object %s not found", key)
	}
	return fmt.Sprintf("https://cdn.test/%s?ttl=%s", key, ttl), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.objects, key)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type sentMail struct {
	To, Subject string
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *memMailer) Send(_ context.Context, toEmail, _, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{To: toEmail, Subject: subject})
	return nil
}

type testEnv struct {
	svc    *Service
	store  *memStore
	mailer *memMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	for _, u := range []models.User{
		{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, Password: "x"},
		{Name: "Learner", Email: "learner@example.com", Role: models.RoleUser, Password: "x"},
		{Name: "Other", Email: "other@example.com", Role: models.RoleUser, Password: "x"},
	} {
		u := u
		require.NoError(t, db.Create(&u).Error)
	}

	store := newMemStore()
	mailer := &memMailer{}
	return &testEnv{
		svc:    New(db, store, mailer, zap.NewNop(), time.Minute),
		store:  store,
		mailer: mailer,
	}
}

// quizFixture is a published course with one module, one lesson and a quiz
// with two questions: Q1 (A correct, B) and Q2 (C, D correct).
type quizFixture struct {
	course *courseModels.Course
	module *courseModels.Module
	lesson *courseModels.Lesson
	quiz   *courseModels.Quiz
	q1, q2 *courseModels.Question
	a, b   courseModels.Option
	c, d   courseModels.Option
}

func (e *testEnv) seedQuiz(t *testing.T) *quizFixture {
	t.Helper()
	ctx := context.Background()
	f := &quizFixture{}
	var err error

	f.course, err = e.svc.CreateCourse(ctx, admin, CreateCourseInput{
		Title: "Intro to Go", Description: "Learn Go from scratch", Author: "Rob", Duration: 10,
	})
	require.NoError(t, err)
	_, err = e.svc.PublishCourse(ctx, admin, f.course.ID, true)
	require.NoError(t, err)

	f.module, err = e.svc.CreateModule(ctx, admin, CreateModuleInput{CourseID: f.course.ID, Title: "Basics"})
	require.NoError(t, err)

	f.lesson, err = e.svc.CreateLesson(ctx, admin, CreateLessonInput{ModuleID: f.module.ID, Title: "Variables"})
	require.NoError(t, err)

	f.quiz, err = e.svc.CreateQuiz(ctx, admin, CreateQuizInput{ModuleID: f.module.ID, Title: "Basics quiz", QuizOrder: 1})
	require.NoError(t, err)

	f.q1 = e.addQuestion(t, f.quiz.ID, "Which keyword declares a variable?", 1, 0, "var", "let")
	f.q2 = e.addQuestion(t, f.quiz.ID, "Zero value of int?", 2, 1, "nil", "0")
	f.a, f.b = f.q1.Options[0], f.q1.Options[1]
	f.c, f.d = f.q2.Options[0], f.q2.Options[1]
	return f
}

// addQuestion adds a question whose option at index correct is the right one.
func (e *testEnv) addQuestion(t *testing.T, quizID uint, text string, order, correct int, options ...string) *courseModels.Question {
	t.Helper()
	in := AddQuestionInput{QuizID: quizID, QuestionText: text, QuestionOrder: order}
	for i, o := range options {
		in.Options = append(in.Options, OptionInput{OptionText: o, IsCorrect: i == correct})
	}
	q, err := e.svc.AddQuestion(context.Background(), admin, in)
	require.NoError(t, err)
	return q
}

func (e *testEnv) count(t *testing.T, model interface{}, unscoped bool) int64 {
	t.Helper()
	tx := e.svc.db
	if unscoped {
		tx = tx.Unscoped()
	}
	var n int64
	require.NoError(t, tx.Model(model).Count(&n).Error)
	return n
}

func fileReader(content string) io.Reader {
	return bytes.NewReader([]byte(content))
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
