package dto

// SubmitAnswerRequest carries exactly one of OptionID or EssayText.
type SubmitAnswerRequest struct {
	OptionID  *uint   `json:"option_id"`
	EssayText *string `json:"essay_text"`
}

// PendingAnswerRequest is an answer the client had not yet synced when the
// learner pressed finish.
type PendingAnswerRequest struct {
	QuestionID uint    `json:"question_id" binding:"required"`
	OptionID   *uint   `json:"option_id"`
	EssayText  *string `json:"essay_text"`
}

type FinishAttemptRequest struct {
	PendingAnswers []PendingAnswerRequest `json:"pending_answers" binding:"omitempty,dive"`
}
