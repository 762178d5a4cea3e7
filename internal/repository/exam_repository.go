package repository

import (
	"context"

	"github.com/lshigami/attempt-engine/internal/model"
	"gorm.io/gorm"
)

// ExamSummary is an exam template row with its question count.
type ExamSummary struct {
	model.ExamTemplate
	QuestionCount int
}

type ExamRepository interface {
	FindByID(ctx context.Context, id uint) (*model.ExamTemplate, error)
	FindByIDWithQuestions(ctx context.Context, id uint) (*model.ExamTemplate, error)
	FindPublishedWithQuestionCount(ctx context.Context) ([]ExamSummary, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

// FindByID includes soft-deleted templates so attempts taken on a retired
// exam can still be finished and read back. Callers check DeletedAt.
func (r *examRepository) FindByID(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	var exam model.ExamTemplate
	if err := r.db.WithContext(ctx).Unscoped().First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithQuestions(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	var exam model.ExamTemplate
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_in_template ASC, questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_in_list ASC, options.id ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindPublishedWithQuestionCount(ctx context.Context) ([]ExamSummary, error) {
	var results []ExamSummary
	err := r.db.WithContext(ctx).Model(&model.ExamTemplate{}).
		Select("exam_templates.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_template_id = exam_templates.id AND questions.deleted_at IS NULL) as question_count").
		Where("exam_templates.deleted_at IS NULL AND exam_templates.published = ?", true).
		Order("exam_templates.created_at DESC").
		Scan(&results).Error
	return results, err
}
