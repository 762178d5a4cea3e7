package dto

import "time"

// AttemptDTO is the handle returned by start and by the in-progress listing.
type AttemptDTO struct {
	ID               string     `json:"id"`
	StudentID        string     `json:"student_id"`
	ExamTemplateID   uint       `json:"exam_template_id"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Score            *float64   `json:"score,omitempty"`
	Status           string     `json:"status"`
	DurationSeconds  int64      `json:"duration_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	DeadlineAt       time.Time  `json:"deadline_at"`
}

// QuestionResultDTO is one line of the per-question breakdown.
type QuestionResultDTO struct {
	QuestionID      uint    `json:"question_id"`
	QuestionType    string  `json:"question_type"`
	Prompt          string  `json:"prompt,omitempty"`
	StudentOptionID *uint   `json:"student_option_id,omitempty"`
	StudentAnswer   string  `json:"student_answer"`
	CorrectOptionID *uint   `json:"correct_option_id,omitempty"`
	CorrectAnswer   string  `json:"correct_answer"`
	PointsEarned    float64 `json:"points_earned"`
	MaxPoints       float64 `json:"max_points"`
	Correct         bool    `json:"correct"`
}

type TimingDTO struct {
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	DurationSeconds  int64      `json:"duration_seconds"`
	TimeSpentSeconds int64      `json:"time_spent_seconds"`
	TimedOut         bool       `json:"timed_out"`
}

// PendingAnswerOutcome reports what happened to one pending answer on finish.
type PendingAnswerOutcome struct {
	QuestionID uint   `json:"question_id"`
	Applied    bool   `json:"applied"`
	Reason     string `json:"reason,omitempty"`
}

type ResultDTO struct {
	AttemptID      string                 `json:"attempt_id"`
	StudentID      string                 `json:"student_id"`
	ExamTemplateID uint                   `json:"exam_template_id"`
	Status         string                 `json:"status"`
	FinalizedBy    string                 `json:"finalized_by,omitempty"`
	Score          float64                `json:"score"`
	MaxScore       float64                `json:"max_score"`
	Percentage     float64                `json:"percentage"`
	AnsweredCount  int                    `json:"answered_count"`
	TotalQuestions int                    `json:"total_questions"`
	Questions      []QuestionResultDTO    `json:"questions"`
	Timing         TimingDTO              `json:"timing"`
	PendingAnswers []PendingAnswerOutcome `json:"pending_answers,omitempty"`
}

const (
	ReconcileFinalized        = "finalized"
	ReconcileAlreadyFinalized = "already_finalized"
	ReconcileWithinBudget     = "within_budget"
	ReconcileFailed           = "failed"
)

type ReconcileItemDTO struct {
	AttemptID      string   `json:"attempt_id"`
	StudentID      string   `json:"student_id"`
	ExamTemplateID uint     `json:"exam_template_id"`
	Outcome        string   `json:"outcome"`
	Score          *float64 `json:"score,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type ReconcileReportDTO struct {
	StudentID string             `json:"student_id,omitempty"`
	CheckedAt time.Time          `json:"checked_at"`
	Examined  int                `json:"examined"`
	Finalized int                `json:"finalized"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Items     []ReconcileItemDTO `json:"items"`
}
