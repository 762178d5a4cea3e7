package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService is the attempt lifecycle: start, answer, finish, read back
// and the maintenance reconcile.
type AttemptService interface {
	// StartAttempt returns the attempt to work on and whether it was created
	// by this call (false when an open attempt on the same template resumes).
	StartAttempt(ctx context.Context, studentID string, examTemplateID uint) (*dto.AttemptDTO, bool, error)
	SubmitAnswer(ctx context.Context, attemptID, studentID string, questionID uint, answer AnswerInput) error
	FinishAttempt(ctx context.Context, attemptID, studentID string, pending []PendingAnswer) (*dto.ResultDTO, error)
	GetResult(ctx context.Context, attemptID, studentID string) (*dto.ResultDTO, error)
	ListInProgress(ctx context.Context, studentID string) ([]dto.AttemptDTO, error)
	Reconcile(ctx context.Context, studentID string) (*dto.ReconcileReportDTO, error)
	// ReconcileAll sweeps stuck attempts of every student, at most limit per call.
	ReconcileAll(ctx context.Context, limit int) (*dto.ReconcileReportDTO, error)
}

// EngineSettings are the tunables the service reads from config.
type EngineSettings struct {
	StrictTimeBudget bool
	ReconcileGrace   time.Duration
}

type attemptService struct {
	db          *gorm.DB
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	catalog     QuestionCatalog
	exams       ExamDirectory
	students    StudentDirectory
	activity    ActivityLogger
	scoring     ScoringService
	guard       *ConcurrencyGuard
	recorder    *AnswerRecorder
	settings    EngineSettings
	clock       Clock
}

// NewAttemptService wires the lifecycle manager. A nil clock means wall time.
func NewAttemptService(
	db *gorm.DB,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	catalog QuestionCatalog,
	exams ExamDirectory,
	students StudentDirectory,
	activity ActivityLogger,
	scoring ScoringService,
	settings EngineSettings,
	clock Clock,
) AttemptService {
	if clock == nil {
		clock = SystemClock
	}
	return &attemptService{
		db:          db,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		catalog:     catalog,
		exams:       exams,
		students:    students,
		activity:    activity,
		scoring:     scoring,
		guard:       NewConcurrencyGuard(db, attemptRepo, clock),
		recorder:    NewAnswerRecorder(db, attemptRepo, answerRepo, catalog, exams, clock, settings.StrictTimeBudget),
		settings:    settings,
		clock:       clock,
	}
}

func (s *attemptService) StartAttempt(ctx context.Context, studentID string, examTemplateID uint) (*dto.AttemptDTO, bool, error) {
	ctx = context.WithoutCancel(ctx)

	// Validate the student and the template before touching any lock
	known, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return nil, false, internalError(err, "failed to check student %s", studentID)
	}
	if !known {
		return nil, false, notFoundf("student %q not found", studentID)
	}

	template, err := s.loadTemplate(ctx, examTemplateID)
	if err != nil {
		return nil, false, err
	}
	if template.DeletedAt.Valid {
		return nil, false, notFoundf("exam template %d not found", examTemplateID)
	}
	if !template.Published {
		return nil, false, &EngineError{Kind: KindFailedPrecondition, Message: fmt.Sprintf("exam template %d is not published", examTemplateID)}
	}

	// Create, resume or refuse under the per-student lock
	attempt, created, err := s.guard.Admit(ctx, studentID, examTemplateID)
	if err != nil {
		if IsKind(err, KindConflict) {
			log.Info().Str("studentID", studentID).Uint("examTemplateID", examTemplateID).Msg("StartAttempt: blocked by open attempt on another template")
		} else {
			log.Error().Err(err).Str("studentID", studentID).Uint("examTemplateID", examTemplateID).Msg("StartAttempt: guard failed")
		}
		return nil, false, err
	}

	if created {
		log.Info().Str("attemptID", attempt.ID).Str("studentID", studentID).Uint("examTemplateID", examTemplateID).Msg("StartAttempt: attempt created")
		notifyActivity(ctx, s.activity, ActivityEvent{
			Type:           ActivityAttemptStarted,
			AttemptID:      attempt.ID,
			StudentID:      studentID,
			ExamTemplateID: examTemplateID,
			OccurredAt:     attempt.StartedAt,
		})
	} else {
		log.Info().Str("attemptID", attempt.ID).Str("studentID", studentID).Msg("StartAttempt: resuming open attempt")
	}

	handle := s.toAttemptDTO(*attempt, template.Duration(), s.clock())
	return &handle, created, nil
}

func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID, studentID string, questionID uint, answer AnswerInput) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.recorder.Record(ctx, attemptID, studentID, questionID, answer); err != nil {
		if KindOf(err) == KindInternal {
			log.Error().Err(err).Str("attemptID", attemptID).Uint("questionID", questionID).Msg("SubmitAnswer: failed")
		}
		return err
	}
	return nil
}

func (s *attemptService) FinishAttempt(ctx context.Context, attemptID, studentID string, pending []PendingAnswer) (*dto.ResultDTO, error) {
	ctx = context.WithoutCancel(ctx)

	attempt, err := loadOwnedAttempt(ctx, s.attemptRepo, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.IsFinalized() {
		// The stored result stands; every pending answer is reported as refused.
		log.Info().Str("attemptID", attemptID).Int("pending", len(pending)).Msg("FinishAttempt: already finished, returning stored result")
		return s.buildResult(ctx, attempt, refusePending(pending, alreadyFinalized(attempt.ID, attempt.FinishedAt)))
	}

	// Pending answers go in first so the score sees them
	outcomes := s.applyPending(ctx, attempt, pending)

	template, err := s.loadTemplate(ctx, attempt.ExamTemplateID)
	if err != nil {
		return nil, err
	}
	finalized, _, err := s.finalize(ctx, attempt.ID, template, model.FinalizedByStudent)
	if err != nil {
		log.Error().Err(err).Str("attemptID", attemptID).Msg("FinishAttempt: finalize failed")
		return nil, err
	}
	return s.buildResult(ctx, finalized, outcomes)
}

func (s *attemptService) GetResult(ctx context.Context, attemptID, studentID string) (*dto.ResultDTO, error) {
	attempt, err := loadOwnedAttempt(ctx, s.attemptRepo, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsFinalized() {
		return nil, &EngineError{Kind: KindFailedPrecondition, Message: fmt.Sprintf("attempt %s is not completed yet", attemptID)}
	}
	return s.buildResult(ctx, attempt, nil)
}

func (s *attemptService) ListInProgress(ctx context.Context, studentID string) ([]dto.AttemptDTO, error) {
	open, err := s.attemptRepo.FindOpenByStudent(ctx, studentID)
	if err != nil {
		log.Error().Err(err).Str("studentID", studentID).Msg("ListInProgress: failed to read open attempts")
		return nil, internalError(err, "failed to list open attempts of student %s", studentID)
	}

	now := s.clock()
	// Students rarely hold more than one open attempt, but cache templates anyway
	templates := make(map[uint]*model.ExamTemplate)
	handles := make([]dto.AttemptDTO, 0, len(open))
	for _, a := range open {
		template, ok := templates[a.ExamTemplateID]
		if !ok {
			template, err = s.loadTemplate(ctx, a.ExamTemplateID)
			if err != nil {
				return nil, err
			}
			templates[a.ExamTemplateID] = template
		}
		handles = append(handles, s.toAttemptDTO(a, template.Duration(), now))
	}
	return handles, nil
}

func (s *attemptService) Reconcile(ctx context.Context, studentID string) (*dto.ReconcileReportDTO, error) {
	ctx = context.WithoutCancel(ctx)
	open, err := s.attemptRepo.FindOpenByStudent(ctx, studentID)
	if err != nil {
		log.Error().Err(err).Str("studentID", studentID).Msg("Reconcile: failed to read open attempts")
		return nil, internalError(err, "failed to list open attempts of student %s", studentID)
	}
	report := s.reconcileAttempts(ctx, open)
	report.StudentID = studentID
	log.Info().Str("studentID", studentID).Int("examined", report.Examined).Int("finalized", report.Finalized).Int("failed", report.Failed).Msg("Reconcile: done")
	return report, nil
}

func (s *attemptService) ReconcileAll(ctx context.Context, limit int) (*dto.ReconcileReportDTO, error) {
	ctx = context.WithoutCancel(ctx)
	now := s.clock()
	// No attempt can be stale before the grace period alone has passed.
	cutoff := now.Add(-s.settings.ReconcileGrace)

	pageSize := reconcilePageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	// Walk the open attempts oldest first until limit stale ones are found.
	// Attempts still inside a long budget are counted and passed over, so
	// they never crowd stale attempts on shorter exams out of the batch.
	var (
		stale        []model.Attempt
		withinBudget int
		after        *repository.AttemptCursor
	)
	templates := make(map[uint]*model.ExamTemplate)
	for limit <= 0 || len(stale) < limit {
		page, err := s.attemptRepo.FindOpenStartedBefore(ctx, cutoff, after, pageSize)
		if err != nil {
			log.Error().Err(err).Msg("ReconcileAll: failed to read open attempts")
			return nil, internalError(err, "failed to list open attempts")
		}
		for _, a := range page {
			template, ok := templates[a.ExamTemplateID]
			if !ok {
				// A failed lookup leaves template nil; reconcileAttempts records it.
				if loaded, err := s.loadTemplate(ctx, a.ExamTemplateID); err == nil {
					template = loaded
					templates[a.ExamTemplateID] = loaded
				}
			}
			if template != nil && !IsStale(a, template.Duration(), s.settings.ReconcileGrace, now) {
				withinBudget++
				continue
			}
			stale = append(stale, a)
			if limit > 0 && len(stale) == limit {
				break
			}
		}
		if len(page) < pageSize {
			break
		}
		last := page[len(page)-1]
		after = &repository.AttemptCursor{StartedAt: last.StartedAt, ID: last.ID}
	}

	report := s.reconcileAttempts(ctx, stale)
	report.Examined += withinBudget
	report.Skipped += withinBudget
	log.Info().Int("examined", report.Examined).Int("finalized", report.Finalized).Int("failed", report.Failed).Msg("ReconcileAll: done")
	return report, nil
}

// reconcilePageSize bounds one read of the global sweep.
const reconcilePageSize = 100

// reconcileAttempts finalizes the stale attempts of the batch. A failure on
// one attempt is recorded and the batch moves on.
func (s *attemptService) reconcileAttempts(ctx context.Context, attempts []model.Attempt) *dto.ReconcileReportDTO {
	now := s.clock()
	report := &dto.ReconcileReportDTO{CheckedAt: now, Items: make([]dto.ReconcileItemDTO, 0, len(attempts))}

	for _, a := range attempts {
		report.Examined++
		item := dto.ReconcileItemDTO{AttemptID: a.ID, StudentID: a.StudentID, ExamTemplateID: a.ExamTemplateID}

		template, err := s.loadTemplate(ctx, a.ExamTemplateID)
		if err != nil {
			item.Outcome = dto.ReconcileFailed
			item.Error = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			log.Warn().Err(err).Str("attemptID", a.ID).Msg("Reconcile: skipping attempt, template lookup failed")
			continue
		}

		if !IsStale(a, template.Duration(), s.settings.ReconcileGrace, now) {
			item.Outcome = dto.ReconcileWithinBudget
			report.Skipped++
			report.Items = append(report.Items, item)
			continue
		}

		finalized, won, err := s.finalize(ctx, a.ID, template, model.FinalizedByReconcile)
		if err != nil {
			item.Outcome = dto.ReconcileFailed
			item.Error = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			log.Warn().Err(err).Str("attemptID", a.ID).Msg("Reconcile: failed to finalize attempt")
			continue
		}
		item.Score = finalized.Score
		if won {
			item.Outcome = dto.ReconcileFinalized
			report.Finalized++
		} else {
			item.Outcome = dto.ReconcileAlreadyFinalized
			report.Skipped++
		}
		report.Items = append(report.Items, item)
	}
	return report
}

// applyPending records each pending answer on its own. Failures are logged
// and reported but never stop the finish.
func (s *attemptService) applyPending(ctx context.Context, attempt *model.Attempt, pending []PendingAnswer) []dto.PendingAnswerOutcome {
	if len(pending) == 0 {
		return nil
	}
	outcomes := make([]dto.PendingAnswerOutcome, 0, len(pending))
	for _, p := range pending {
		outcome := dto.PendingAnswerOutcome{QuestionID: p.QuestionID}
		if err := s.recorder.Record(ctx, attempt.ID, attempt.StudentID, p.QuestionID, p.Answer); err != nil {
			log.Warn().Err(err).Str("attemptID", attempt.ID).Uint("questionID", p.QuestionID).Msg("FinishAttempt: skipping pending answer")
			outcome.Reason = err.Error()
		} else {
			outcome.Applied = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func refusePending(pending []PendingAnswer, reason error) []dto.PendingAnswerOutcome {
	if len(pending) == 0 {
		return nil
	}
	outcomes := make([]dto.PendingAnswerOutcome, 0, len(pending))
	for _, p := range pending {
		outcomes = append(outcomes, dto.PendingAnswerOutcome{QuestionID: p.QuestionID, Reason: reason.Error()})
	}
	return outcomes
}

// finalize scores the attempt and sets finished_at/score once. It returns the
// persisted attempt and whether this call made the transition; a caller that
// lost the race gets the winner's stored values.
func (s *attemptService) finalize(ctx context.Context, attemptID string, template *model.ExamTemplate, finalizedBy string) (*model.Attempt, bool, error) {
	questions, err := s.catalog.GetQuestionsForTemplate(ctx, template.ID)
	if err != nil {
		return nil, false, internalError(err, "failed to load questions of exam template %d", template.ID)
	}

	var (
		won       bool
		finalized *model.Attempt
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		current, err := attemptRepo.FindByIDForUpdate(ctx, attemptID)
		if err != nil {
			return internalError(err, "failed to lock attempt %s", attemptID)
		}
		if current.IsFinalized() {
			finalized = current
			return nil
		}

		// Score from the answers visible inside this transaction
		answers, err := s.answerRepo.WithTx(tx).FindByAttemptID(ctx, attemptID)
		if err != nil {
			return internalError(err, "failed to load answers of attempt %s", attemptID)
		}
		sheet := s.scoring.Score(questions, answers)
		finishedAt := s.clock()

		won, err = attemptRepo.Finalize(ctx, attemptID, finishedAt, sheet.Score, finalizedBy)
		if err != nil {
			return internalError(err, "failed to finalize attempt %s", attemptID)
		}
		// Re-read so a lost race returns the winner's values
		finalized, err = attemptRepo.FindByID(ctx, attemptID)
		if err != nil {
			return internalError(err, "failed to re-read attempt %s", attemptID)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if won {
		log.Info().Str("attemptID", attemptID).Float64("score", *finalized.Score).Str("finalizedBy", finalizedBy).Msg("Attempt finalized")
		notifyActivity(ctx, s.activity, ActivityEvent{
			Type:           ActivityAttemptFinished,
			AttemptID:      finalized.ID,
			StudentID:      finalized.StudentID,
			ExamTemplateID: finalized.ExamTemplateID,
			Score:          finalized.Score,
			FinalizedBy:    finalizedBy,
			OccurredAt:     *finalized.FinishedAt,
		})
	}
	return finalized, won, nil
}

// buildResult renders a finalized attempt. The score is the stored one; the
// breakdown is derived from the answers, which no longer change.
func (s *attemptService) buildResult(ctx context.Context, attempt *model.Attempt, outcomes []dto.PendingAnswerOutcome) (*dto.ResultDTO, error) {
	template, err := s.loadTemplate(ctx, attempt.ExamTemplateID)
	if err != nil {
		return nil, err
	}
	questions, err := s.catalog.GetQuestionsForTemplate(ctx, attempt.ExamTemplateID)
	if err != nil {
		return nil, internalError(err, "failed to load questions of exam template %d", attempt.ExamTemplateID)
	}
	answers, err := s.answerRepo.FindByAttemptID(ctx, attempt.ID)
	if err != nil {
		return nil, internalError(err, "failed to load answers of attempt %s", attempt.ID)
	}

	sheet := s.scoring.Score(questions, answers)
	score := sheet.Score
	if attempt.Score != nil {
		score = *attempt.Score
	}

	// Copy the attempt fields, then fill in the derived ones
	var resp dto.ResultDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Str("attemptID", attempt.ID).Msg("buildResult: failed to copy attempt")
		return nil, internalError(err, "failed to prepare result of attempt %s", attempt.ID)
	}
	resp.AttemptID = attempt.ID
	resp.Status = string(DeriveStatus(*attempt, template.Duration(), s.clock()))
	resp.Score = score
	resp.MaxScore = sheet.MaxScore
	resp.Percentage = Percentage(score, sheet.MaxScore)
	resp.AnsweredCount = sheet.AnsweredCount
	resp.TotalQuestions = len(questions)
	resp.Questions = sheet.Questions
	resp.PendingAnswers = outcomes
	resp.Timing = timingOf(*attempt, template.Duration())
	return &resp, nil
}

func (s *attemptService) loadTemplate(ctx context.Context, templateID uint) (*model.ExamTemplate, error) {
	template, err := s.exams.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("exam template %d not found", templateID)
		}
		return nil, internalError(err, "failed to load exam template %d", templateID)
	}
	return template, nil
}

func (s *attemptService) toAttemptDTO(a model.Attempt, budget time.Duration, now time.Time) dto.AttemptDTO {
	handle := dto.AttemptDTO{
		ID:             a.ID,
		StudentID:      a.StudentID,
		ExamTemplateID: a.ExamTemplateID,
		StartedAt:      a.StartedAt,
		FinishedAt:     a.FinishedAt,
		Score:          a.Score,
	}
	handle.Status = string(DeriveStatus(a, budget, now))
	handle.DurationSeconds = int64(budget / time.Second)
	handle.DeadlineAt = a.StartedAt.Add(budget)
	if a.FinishedAt == nil {
		handle.RemainingSeconds = int64(Remaining(now, a.StartedAt, budget) / time.Second)
	}
	return handle
}

func timingOf(a model.Attempt, budget time.Duration) dto.TimingDTO {
	timing := dto.TimingDTO{
		StartedAt:       a.StartedAt,
		FinishedAt:      a.FinishedAt,
		DurationSeconds: int64(budget / time.Second),
	}
	if a.FinishedAt != nil {
		spent := Elapsed(*a.FinishedAt, a.StartedAt)
		timing.TimeSpentSeconds = int64(spent / time.Second)
		timing.TimedOut = spent > budget
	}
	return timing
}
