package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ActivityAttemptStarted  = "attempt.started"
	ActivityAttemptFinished = "attempt.finished"
)

type ActivityEvent struct {
	Type           string
	AttemptID      string
	StudentID      string
	ExamTemplateID uint
	Score          *float64
	FinalizedBy    string
	OccurredAt     time.Time
}

// ActivityLogger receives start/finish notifications. Its failures never
// reach the caller of the engine.
type ActivityLogger interface {
	Record(ctx context.Context, event ActivityEvent) error
}

type zerologActivityLogger struct{}

func NewZerologActivityLogger() ActivityLogger {
	return zerologActivityLogger{}
}

func (zerologActivityLogger) Record(_ context.Context, event ActivityEvent) error {
	entry := log.Info().
		Str("activity", event.Type).
		Str("attemptID", event.AttemptID).
		Str("studentID", event.StudentID).
		Uint("examTemplateID", event.ExamTemplateID).
		Time("occurredAt", event.OccurredAt)
	if event.Score != nil {
		entry = entry.Float64("score", *event.Score)
	}
	if event.FinalizedBy != "" {
		entry = entry.Str("finalizedBy", event.FinalizedBy)
	}
	entry.Msg("activity")
	return nil
}

// notifyActivity hands the event to the logger on its own goroutine.
func notifyActivity(ctx context.Context, logger ActivityLogger, event ActivityEvent) {
	if logger == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("activity", event.Type).Msg("Activity logger panicked")
			}
		}()
		if err := logger.Record(ctx, event); err != nil {
			log.Warn().Err(err).Str("activity", event.Type).Str("attemptID", event.AttemptID).Msg("Failed to record activity")
		}
	}()
}
