package model

import (
	"time"

	"gorm.io/gorm"
)

// ExamTemplate is the read-only catalog entry an attempt is taken against.
type ExamTemplate struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Published       bool           `json:"published" gorm:"not null;default:false;index"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamTemplateID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Duration is the time budget of a single attempt.
func (t ExamTemplate) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}
