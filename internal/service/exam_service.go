package service

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamService is the student-facing view of published exam templates.
// Correctness flags never leave it.
type ExamService interface {
	ListPublished(ctx context.Context) ([]dto.ExamSummaryDTO, error)
	GetExam(ctx context.Context, examTemplateID uint) (*dto.ExamDetailDTO, error)
}

type examService struct {
	examRepo repository.ExamRepository
}

func NewExamService(examRepo repository.ExamRepository) ExamService {
	return &examService{examRepo: examRepo}
}

func (s *examService) ListPublished(ctx context.Context) ([]dto.ExamSummaryDTO, error) {
	summaries, err := s.examRepo.FindPublishedWithQuestionCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get published exams with question count from repository")
		return nil, internalError(err, "failed to list exams")
	}

	dtos := make([]dto.ExamSummaryDTO, 0, len(summaries))
	for _, es := range summaries {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:              es.ExamTemplate.ID,
			Title:           es.ExamTemplate.Title,
			Description:     es.ExamTemplate.Description,
			DurationMinutes: es.ExamTemplate.DurationMinutes,
			QuestionCount:   es.QuestionCount,
			CreatedAt:       es.ExamTemplate.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *examService) GetExam(ctx context.Context, examTemplateID uint) (*dto.ExamDetailDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(ctx, examTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("exam template %d not found", examTemplateID)
		}
		log.Error().Err(err).Uint("examTemplateID", examTemplateID).Msg("Failed to get exam details from repository")
		return nil, internalError(err, "failed to load exam template %d", examTemplateID)
	}
	if !exam.Published {
		return nil, notFoundf("exam template %d not found", examTemplateID)
	}

	// OptionDTO has no IsCorrect field, so copier drops the flag.
	var resp dto.ExamDetailDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy ExamTemplate model to ExamDetailDTO")
		return nil, internalError(err, "failed to prepare exam details")
	}
	return &resp, nil
}
