package model

import "time"

const (
	FinalizedByStudent   = "student"
	FinalizedByReconcile = "reconcile"
)

// Attempt is one student taking one exam template. FinishedAt and Score are
// written together, exactly once.
type Attempt struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	StudentID      string       `json:"student_id" gorm:"not null;size:255;index:idx_attempt_student_open,priority:1"`
	ExamTemplateID uint         `json:"exam_template_id" gorm:"not null;index"`
	ExamTemplate   ExamTemplate `json:"exam_template,omitempty" gorm:"foreignKey:ExamTemplateID"`
	StartedAt      time.Time    `json:"started_at" gorm:"not null;index"`
	FinishedAt     *time.Time   `json:"finished_at,omitempty" gorm:"index:idx_attempt_student_open,priority:2"`
	Score          *float64     `json:"score,omitempty"`
	FinalizedBy    string       `json:"finalized_by,omitempty" gorm:"size:16"`
	Answers        []Answer     `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (a Attempt) IsFinalized() bool {
	return a.FinishedAt != nil
}
