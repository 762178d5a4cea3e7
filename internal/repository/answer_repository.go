package repository

import (
	"context"

	"github.com/lshigami/attempt-engine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	// Upsert writes the answer keyed by (attempt_id, question_id). Both value
	// columns are always written so the unused one ends up NULL.
	Upsert(ctx context.Context, answer *model.Answer) error
	FindByAttemptID(ctx context.Context, attemptID string) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) Upsert(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_id", "essay_text", "updated_at"}),
		}).
		Create(answer).Error
}

func (r *answerRepository) FindByAttemptID(ctx context.Context, attemptID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error
	return answers, err
}
