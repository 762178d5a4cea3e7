package service

import "strings"

// AnswerInput is either an OptionAnswer or an EssayAnswer.
type AnswerInput interface {
	isAnswerInput()
}

type OptionAnswer struct {
	OptionID uint
}

type EssayAnswer struct {
	Text string
}

func (OptionAnswer) isAnswerInput() {}
func (EssayAnswer) isAnswerInput()  {}

// PendingAnswer is an answer applied as part of finishing an attempt.
type PendingAnswer struct {
	QuestionID uint
	Answer     AnswerInput
}

// NewAnswerInput turns the nullable wire fields into an AnswerInput. Blank
// essay text counts as absent. Both or neither set is InvalidArgument.
func NewAnswerInput(optionID *uint, essayText *string) (AnswerInput, error) {
	hasOption := optionID != nil
	hasEssay := essayText != nil && strings.TrimSpace(*essayText) != ""

	switch {
	case hasOption && hasEssay:
		return nil, invalidArgumentf("an answer carries either option_id or essay_text, not both")
	case hasOption:
		return OptionAnswer{OptionID: *optionID}, nil
	case hasEssay:
		return EssayAnswer{Text: *essayText}, nil
	default:
		return nil, invalidArgumentf("an answer needs option_id or non-blank essay_text")
	}
}
