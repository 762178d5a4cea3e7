package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Kind    string   `json:"kind,omitempty"`
	Details []string `json:"details,omitempty"`
	// Set on Conflict: the template whose open attempt blocks the start.
	BlockingExamTemplateID *uint   `json:"blocking_exam_template_id,omitempty"`
	BlockingAttemptID      *string `json:"blocking_attempt_id,omitempty"`
	// Set when the attempt was already finalized.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
