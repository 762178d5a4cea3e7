package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingActivity collects activity events delivered on other goroutines.
type recordingActivity struct {
	mu     sync.Mutex
	events []ActivityEvent
	err    error
	panics bool
}

func (r *recordingActivity) Record(_ context.Context, event ActivityEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	panics, err := r.panics, r.err
	r.mu.Unlock()
	if panics {
		panic("activity sink exploded")
	}
	return err
}

func (r *recordingActivity) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (r *recordingActivity) waitFor(t *testing.T, eventType string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count(eventType) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d %q events, got %d", n, eventType, r.count(eventType))
}

// failingDirectory fails lookups of one template and delegates the rest.
type failingDirectory struct {
	next     ExamDirectory
	failOnID uint
}

func (d failingDirectory) GetTemplate(ctx context.Context, templateID uint) (*model.ExamTemplate, error) {
	if templateID == d.failOnID {
		return nil, errors.New("exam directory unavailable")
	}
	return d.next.GetTemplate(ctx, templateID)
}

// fixture is a seeded database plus a wired AttemptService.
type fixture struct {
	db       *gorm.DB
	clock    *fakeClock
	activity *recordingActivity
	attempts repository.AttemptRepository
	answers  repository.AnswerRepository
	svc      AttemptService

	// Template "algebra": 30 minutes, single choice + true/false + essay.
	algebra model.ExamTemplate
	// Template "history": 60 minutes, one single choice question.
	history model.ExamTemplate
	// Template "draft": not published.
	draft model.ExamTemplate
}

type fixtureOption func(*EngineSettings, *ExamDirectory)

func withStrictTimeBudget() fixtureOption {
	return func(s *EngineSettings, _ *ExamDirectory) { s.StrictTimeBudget = true }
}

func withFailingTemplate(id uint) fixtureOption {
	return func(_ *EngineSettings, d *ExamDirectory) {
		*d = failingDirectory{next: *d, failOnID: id}
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.ExamTemplate{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.Answer{},
		&model.StudentLock{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	db := openTestDB(t)

	f := &fixture{
		db:       db,
		clock:    newFakeClock(),
		activity: &recordingActivity{},
		attempts: repository.NewAttemptRepository(db),
		answers:  repository.NewAnswerRepository(db),
	}

	f.algebra = model.ExamTemplate{
		Title:           "Algebra I",
		DurationMinutes: 30,
		Published:       true,
		Questions: []model.Question{
			{Prompt: "2 + 2 = ?", Type: model.QuestionTypeSingleChoice, OrderInTemplate: 1, Options: []model.Option{
				{Label: "4", IsCorrect: true, OrderInList: 1},
				{Label: "5", OrderInList: 2},
			}},
			{Prompt: "0 is even", Type: model.QuestionTypeTrueFalse, OrderInTemplate: 2, Options: []model.Option{
				{Label: "True", IsCorrect: true, OrderInList: 1},
				{Label: "False", OrderInList: 2},
			}},
			{Prompt: "Explain the distributive law", Type: model.QuestionTypeEssay, OrderInTemplate: 3},
		},
	}
	f.history = model.ExamTemplate{
		Title:           "History",
		DurationMinutes: 60,
		Published:       true,
		Questions: []model.Question{
			{Prompt: "Year of the moon landing", Type: model.QuestionTypeSingleChoice, OrderInTemplate: 1, Options: []model.Option{
				{Label: "1969", IsCorrect: true, OrderInList: 1},
				{Label: "1972", OrderInList: 2},
			}},
		},
	}
	f.draft = model.ExamTemplate{Title: "Draft", DurationMinutes: 10, Published: false}

	for _, tpl := range []*model.ExamTemplate{&f.algebra, &f.history, &f.draft} {
		if err := db.Create(tpl).Error; err != nil {
			t.Fatalf("seed template %q: %v", tpl.Title, err)
		}
	}

	settings := EngineSettings{ReconcileGrace: 15 * time.Minute}
	exams := NewExamDirectory(repository.NewExamRepository(db))
	for _, opt := range opts {
		opt(&settings, &exams)
	}

	f.svc = NewAttemptService(
		db,
		f.attempts,
		f.answers,
		NewQuestionCatalog(repository.NewQuestionRepository(db)),
		exams,
		NewTokenStudentDirectory(),
		f.activity,
		NewScoringService(),
		settings,
		f.clock.Now,
	)
	return f
}

func (f *fixture) question(tpl model.ExamTemplate, order int) model.Question {
	for _, q := range tpl.Questions {
		if q.OrderInTemplate == order {
			return q
		}
	}
	panic("no such question")
}

func (f *fixture) option(q model.Question, label string) uint {
	for _, o := range q.Options {
		if o.Label == label {
			return o.ID
		}
	}
	panic("no such option " + label)
}

func (f *fixture) start(t *testing.T, studentID string, tpl model.ExamTemplate) string {
	t.Helper()
	attempt, _, err := f.svc.StartAttempt(context.Background(), studentID, tpl.ID)
	if err != nil {
		t.Fatalf("StartAttempt(%s, %d): %v", studentID, tpl.ID, err)
	}
	return attempt.ID
}

func (f *fixture) submit(t *testing.T, attemptID, studentID string, questionID uint, answer AnswerInput) {
	t.Helper()
	if err := f.svc.SubmitAnswer(context.Background(), attemptID, studentID, questionID, answer); err != nil {
		t.Fatalf("SubmitAnswer(q=%d): %v", questionID, err)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}
