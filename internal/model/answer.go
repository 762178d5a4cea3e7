package model

import "time"

// Answer holds either an option reference or essay text, never both.
type Answer struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AttemptID  string    `json:"attempt_id" gorm:"not null;size:36;uniqueIndex:idx_answer_attempt_question,priority:1"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question,priority:2"`
	OptionID   *uint     `json:"option_id,omitempty"`
	EssayText  *string   `json:"essay_text,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
