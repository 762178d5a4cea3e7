package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeSingleChoice   = "single_choice"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeEssay          = "essay"
)

type Question struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ExamTemplateID  uint           `json:"exam_template_id" gorm:"not null;index"`
	Prompt          string         `json:"prompt" gorm:"type:text;not null"`
	Type            string         `json:"type" gorm:"not null"` // single_choice, multiple_choice, true_false, essay
	OrderInTemplate int            `json:"order_in_template" gorm:"not null"`
	Options         []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsFreeText reports whether the question takes essay text instead of an option.
func (q Question) IsFreeText() bool {
	return q.Type == QuestionTypeEssay
}

// FirstCorrectOption returns the first option flagged correct, if any.
func (q Question) FirstCorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}
