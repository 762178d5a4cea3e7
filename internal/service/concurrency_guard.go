package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ConcurrencyGuard admits a new attempt only when the student has no open
// attempt on another template, and hands back the open attempt on the same
// template instead of creating a second one.
type ConcurrencyGuard struct {
	db          *gorm.DB
	attemptRepo repository.AttemptRepository
	clock       Clock
	newID       func() string
}

func NewConcurrencyGuard(db *gorm.DB, attemptRepo repository.AttemptRepository, clock Clock) *ConcurrencyGuard {
	if clock == nil {
		clock = SystemClock
	}
	return &ConcurrencyGuard{
		db:          db,
		attemptRepo: attemptRepo,
		clock:       clock,
		newID:       uuid.NewString,
	}
}

// Admit returns the attempt the student should work on and whether it was
// created by this call. The read of open attempts and the insert happen under
// the student's lock row, so concurrent starts for one student serialize.
func (g *ConcurrencyGuard) Admit(ctx context.Context, studentID string, examTemplateID uint) (*model.Attempt, bool, error) {
	var (
		admitted *model.Attempt
		created  bool
	)

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := g.attemptRepo.WithTx(tx)
		now := g.clock()

		if err := repo.LockStudent(ctx, studentID, now); err != nil {
			return internalError(err, "failed to lock student %s", studentID)
		}

		open, err := repo.FindOpenByStudent(ctx, studentID)
		if err != nil {
			return internalError(err, "failed to read open attempts of student %s", studentID)
		}

		var sameTemplate []model.Attempt
		for _, a := range open {
			if a.ExamTemplateID != examTemplateID {
				// open is ordered by started_at, so the oldest blocker is reported.
				return &EngineError{
					Kind:                   KindConflict,
					Message:                fmt.Sprintf("attempt %s on exam template %d is still in progress; finish it before starting another exam", a.ID, a.ExamTemplateID),
					BlockingExamTemplateID: a.ExamTemplateID,
					BlockingAttemptID:      a.ID,
				}
			}
			sameTemplate = append(sameTemplate, a)
		}

		if len(sameTemplate) > 0 {
			latest := sameTemplate[len(sameTemplate)-1]
			if len(sameTemplate) > 1 {
				ids := make([]string, 0, len(sameTemplate))
				for _, a := range sameTemplate {
					ids = append(ids, a.ID)
				}
				log.Error().Str("studentID", studentID).Uint("examTemplateID", examTemplateID).Strs("attemptIDs", ids).
					Msg("ConcurrencyGuard: more than one open attempt for the same template, resuming the most recent")
			}
			admitted = &latest
			return nil
		}

		attempt := model.Attempt{
			ID:             g.newID(),
			StudentID:      studentID,
			ExamTemplateID: examTemplateID,
			StartedAt:      now,
		}
		if err := repo.Create(ctx, &attempt); err != nil {
			return internalError(err, "failed to create attempt for student %s", studentID)
		}
		admitted = &attempt
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return admitted, created, nil
}
