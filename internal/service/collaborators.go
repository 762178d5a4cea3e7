package service

import (
	"context"
	"strings"

	"github.com/lshigami/attempt-engine/internal/model"
	"github.com/lshigami/attempt-engine/internal/repository"
)

// QuestionCatalog is the read-only source of template questions, options and
// correctness flags.
type QuestionCatalog interface {
	GetQuestionsForTemplate(ctx context.Context, templateID uint) ([]model.Question, error)
}

// ExamDirectory resolves exam templates and their published state.
type ExamDirectory interface {
	GetTemplate(ctx context.Context, templateID uint) (*model.ExamTemplate, error)
}

// StudentDirectory answers whether a student identity is known.
type StudentDirectory interface {
	Exists(ctx context.Context, studentID string) (bool, error)
}

type repositoryCatalog struct {
	questions repository.QuestionRepository
}

func NewQuestionCatalog(questions repository.QuestionRepository) QuestionCatalog {
	return &repositoryCatalog{questions: questions}
}

func (c *repositoryCatalog) GetQuestionsForTemplate(ctx context.Context, templateID uint) ([]model.Question, error) {
	return c.questions.FindByTemplateID(ctx, templateID)
}

type repositoryDirectory struct {
	exams repository.ExamRepository
}

func NewExamDirectory(exams repository.ExamRepository) ExamDirectory {
	return &repositoryDirectory{exams: exams}
}

func (d *repositoryDirectory) GetTemplate(ctx context.Context, templateID uint) (*model.ExamTemplate, error) {
	return d.exams.FindByID(ctx, templateID)
}

// tokenStudentDirectory trusts identities already resolved by the auth layer.
type tokenStudentDirectory struct{}

func NewTokenStudentDirectory() StudentDirectory {
	return tokenStudentDirectory{}
}

func (tokenStudentDirectory) Exists(_ context.Context, studentID string) (bool, error) {
	return strings.TrimSpace(studentID) != "", nil
}
