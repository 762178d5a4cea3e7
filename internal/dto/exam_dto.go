package dto

import "time"

// OptionDTO never carries the correctness flag.
type OptionDTO struct {
	ID          uint   `json:"id"`
	Label       string `json:"label"`
	OrderInList int    `json:"order_in_list"`
}

type QuestionDTO struct {
	ID              uint        `json:"id"`
	Prompt          string      `json:"prompt"`
	Type            string      `json:"type"`
	OrderInTemplate int         `json:"order_in_template"`
	Options         []OptionDTO `json:"options,omitempty"`
}

type ExamDetailDTO struct {
	ID              uint          `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	DurationMinutes int           `json:"duration_minutes"`
	Questions       []QuestionDTO `json:"questions"`
	CreatedAt       time.Time     `json:"created_at"`
}

type ExamSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}
