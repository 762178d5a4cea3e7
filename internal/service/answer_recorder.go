package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerRecorder validates one answer against the attempt's template and
// upserts it by (attempt, question).
type AnswerRecorder struct {
	db               *gorm.DB
	attemptRepo      repository.AttemptRepository
	answerRepo       repository.AnswerRepository
	catalog          QuestionCatalog
	exams            ExamDirectory
	clock            Clock
	strictTimeBudget bool
}

func NewAnswerRecorder(
	db *gorm.DB,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	catalog QuestionCatalog,
	exams ExamDirectory,
	clock Clock,
	strictTimeBudget bool,
) *AnswerRecorder {
	if clock == nil {
		clock = SystemClock
	}
	return &AnswerRecorder{
		db:               db,
		attemptRepo:      attemptRepo,
		answerRepo:       answerRepo,
		catalog:          catalog,
		exams:            exams,
		clock:            clock,
		strictTimeBudget: strictTimeBudget,
	}
}

// Record stores the answer. Resubmitting overwrites the earlier value.
func (r *AnswerRecorder) Record(ctx context.Context, attemptID, studentID string, questionID uint, input AnswerInput) error {
	if input == nil {
		return invalidArgumentf("an answer needs option_id or non-blank essay_text")
	}

	attempt, err := loadOwnedAttempt(ctx, r.attemptRepo, attemptID, studentID)
	if err != nil {
		return err
	}
	// Cheap early exit; the transaction below checks again under lock
	if attempt.IsFinalized() {
		return alreadyFinalized(attempt.ID, attempt.FinishedAt)
	}

	// Late answers are only refused when the strict budget is switched on
	if r.strictTimeBudget {
		template, err := r.exams.GetTemplate(ctx, attempt.ExamTemplateID)
		if err != nil {
			return internalError(err, "failed to load exam template %d", attempt.ExamTemplateID)
		}
		if DeriveStatus(*attempt, template.Duration(), r.clock()) == StatusTimeout {
			return &EngineError{
				Kind:    KindDeadlineExceeded,
				Message: fmt.Sprintf("time budget of attempt %s is exhausted; finish the attempt to see the result", attempt.ID),
			}
		}
	}

	// The question must belong to the attempt's template
	questions, err := r.catalog.GetQuestionsForTemplate(ctx, attempt.ExamTemplateID)
	if err != nil {
		return internalError(err, "failed to load questions of exam template %d", attempt.ExamTemplateID)
	}
	question, ok := findQuestion(questions, questionID)
	if !ok {
		return invalidArgumentf("question %d does not belong to exam template %d", questionID, attempt.ExamTemplateID)
	}

	answer := model.Answer{AttemptID: attempt.ID, QuestionID: question.ID}
	switch in := input.(type) {
	case OptionAnswer:
		if question.IsFreeText() {
			return invalidArgumentf("question %d is free-text and takes essay_text, not option_id", question.ID)
		}
		if !hasOption(question, in.OptionID) {
			return invalidArgumentf("option %d does not belong to question %d", in.OptionID, question.ID)
		}
		optionID := in.OptionID
		answer.OptionID = &optionID
	case EssayAnswer:
		if !question.IsFreeText() {
			return invalidArgumentf("question %d is objective and takes option_id, not essay_text", question.ID)
		}
		// Callers outside the HTTP layer can hand us whitespace directly.
		if strings.TrimSpace(in.Text) == "" {
			return invalidArgumentf("essay_text for question %d must not be blank", question.ID)
		}
		text := in.Text
		answer.EssayText = &text
	default:
		return invalidArgumentf("unsupported answer shape %T", input)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Shared lock: concurrent answers proceed, a finalize waits for them.
		locked, err := r.attemptRepo.WithTx(tx).FindByIDForShare(ctx, attempt.ID)
		if err != nil {
			return internalError(err, "failed to re-read attempt %s", attempt.ID)
		}
		if locked.IsFinalized() {
			return alreadyFinalized(locked.ID, locked.FinishedAt)
		}
		if err := r.answerRepo.WithTx(tx).Upsert(ctx, &answer); err != nil {
			log.Error().Err(err).Str("attemptID", attempt.ID).Uint("questionID", question.ID).Msg("AnswerRecorder: upsert failed")
			return internalError(err, "failed to save answer for question %d", question.ID)
		}
		return nil
	})
}

// loadOwnedAttempt hides attempts of other students behind NotFound.
func loadOwnedAttempt(ctx context.Context, repo repository.AttemptRepository, attemptID, studentID string) (*model.Attempt, error) {
	attempt, err := repo.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("attempt %s not found", attemptID)
		}
		return nil, internalError(err, "failed to load attempt %s", attemptID)
	}
	if attempt.StudentID != studentID {
		log.Warn().Str("attemptID", attemptID).Str("studentID", studentID).Msg("Attempt requested by a student who does not own it")
		return nil, notFoundf("attempt %s not found", attemptID)
	}
	return attempt, nil
}

func findQuestion(questions []model.Question, questionID uint) (model.Question, bool) {
	for _, q := range questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return model.Question{}, false
}

func hasOption(question model.Question, optionID uint) bool {
	for _, o := range question.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
