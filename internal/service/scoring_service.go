package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/model"
)

// ManualGradingRequired is shown as the correct answer of free-text questions.
const ManualGradingRequired = "manual grading required"

// PointsPerQuestion is the weight of every answered question.
const PointsPerQuestion float64 = 1.0

// ScoreSheet is the outcome of scoring one attempt's answers.
type ScoreSheet struct {
	Score         float64
	MaxScore      float64
	Percentage    float64
	AnsweredCount int
	Questions     []dto.QuestionResultDTO
}

type ScoringService interface {
	Score(questions []model.Question, answers []model.Answer) ScoreSheet
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

// Score awards one point per answer whose option is flagged correct. Essay
// answers earn nothing here but still count towards the maximum.
func (s *scoringService) Score(questions []model.Question, answers []model.Answer) ScoreSheet {
	questionMap := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		questionMap[q.ID] = q
	}

	sorted := make([]model.Answer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool {
		qi, oki := questionMap[sorted[i].QuestionID]
		qj, okj := questionMap[sorted[j].QuestionID]
		if oki != okj {
			return oki
		}
		if qi.OrderInTemplate != qj.OrderInTemplate {
			return qi.OrderInTemplate < qj.OrderInTemplate
		}
		return sorted[i].QuestionID < sorted[j].QuestionID
	})

	sheet := ScoreSheet{Questions: make([]dto.QuestionResultDTO, 0, len(sorted))}
	for _, answer := range sorted {
		question := questionMap[answer.QuestionID]
		line := dto.QuestionResultDTO{
			QuestionID:   answer.QuestionID,
			QuestionType: question.Type,
			Prompt:       question.Prompt,
			MaxPoints:    PointsPerQuestion,
		}

		if question.IsFreeText() {
			line.CorrectAnswer = ManualGradingRequired
		} else if correct, ok := question.FirstCorrectOption(); ok {
			correctID := correct.ID
			line.CorrectOptionID = &correctID
			line.CorrectAnswer = correct.Label
		}

		switch {
		case answer.OptionID != nil:
			optionID := *answer.OptionID
			line.StudentOptionID = &optionID
			line.StudentAnswer = optionLabel(question, optionID)
			if isCorrectOption(question, optionID) {
				line.Correct = true
				line.PointsEarned = PointsPerQuestion
			}
		case answer.EssayText != nil:
			line.StudentAnswer = *answer.EssayText
		}

		sheet.Score += line.PointsEarned
		sheet.MaxScore += line.MaxPoints
		sheet.Questions = append(sheet.Questions, line)
	}

	sheet.AnsweredCount = len(sorted)
	sheet.Percentage = Percentage(sheet.Score, sheet.MaxScore)
	return sheet
}

// Percentage is score/max*100 rounded to two decimals, 0 when max is 0.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.Round(score/maxScore*100*100) / 100
}

func isCorrectOption(question model.Question, optionID uint) bool {
	for _, o := range question.Options {
		if o.ID == optionID {
			return o.IsCorrect
		}
	}
	return false
}

func optionLabel(question model.Question, optionID uint) string {
	for _, o := range question.Options {
		if o.ID == optionID {
			return o.Label
		}
	}
	return fmt.Sprintf("option #%d", optionID)
}
