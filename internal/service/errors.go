package service

import (
	"errors"
	"fmt"
	"time"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidArgument
	KindFailedPrecondition
	KindConflict
	// KindDeadlineExceeded is only returned when the strict time budget is on.
	KindDeadlineExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindFailedPrecondition:
		return "FailedPrecondition"
	case KindConflict:
		return "Conflict"
	case KindDeadlineExceeded:
		return "DeadlineExceeded"
	default:
		return "Internal"
	}
}

// EngineError is the error type every AttemptService operation returns.
type EngineError struct {
	Kind    ErrorKind
	Message string

	BlockingExamTemplateID uint
	BlockingAttemptID      string
	FinishedAt             *time.Time

	Err error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an engine error; anything else is Internal.
func KindOf(err error) ErrorKind {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func notFoundf(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgumentf(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func internalError(err error, format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

func alreadyFinalized(attemptID string, finishedAt *time.Time) *EngineError {
	return &EngineError{
		Kind:       KindFailedPrecondition,
		Message:    fmt.Sprintf("attempt %s is already finished; start a new attempt to continue", attemptID),
		FinishedAt: finishedAt,
	}
}
