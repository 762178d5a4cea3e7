package repository

import (
	"context"

	"github.com/lshigami/attempt-engine/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByTemplateID(ctx context.Context, templateID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// FindByTemplateID loads the template's questions with their options, in
// presentation order.
func (r *questionRepository) FindByTemplateID(ctx context.Context, templateID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("exam_template_id = ?", templateID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_in_list ASC, options.id ASC")
		}).
		Order("order_in_template ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
