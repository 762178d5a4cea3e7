package service

import (
	"time"

	"github.com/lshigami/attempt-engine/internal/model"
)

// Clock returns the current time. Tests swap it for a fixed clock.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "IN_PROGRESS"
	StatusTimeout    AttemptStatus = "TIMEOUT"
	StatusCompleted  AttemptStatus = "COMPLETED"
)

// Elapsed is the time since the attempt started, never negative.
func Elapsed(now, startedAt time.Time) time.Duration {
	d := now.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Remaining is the unused part of the budget, floored at zero.
func Remaining(now, startedAt time.Time, budget time.Duration) time.Duration {
	r := budget - Elapsed(now, startedAt)
	if r < 0 {
		return 0
	}
	return r
}

// DeriveStatus computes the read-side status. An attempt is TIMEOUT once
// elapsed time is strictly greater than the budget.
func DeriveStatus(attempt model.Attempt, budget time.Duration, now time.Time) AttemptStatus {
	if attempt.FinishedAt != nil {
		return StatusCompleted
	}
	if Elapsed(now, attempt.StartedAt) > budget {
		return StatusTimeout
	}
	return StatusInProgress
}

// IsStale reports whether an open attempt has outlived its budget plus grace
// and should be force-finalized.
func IsStale(attempt model.Attempt, budget, grace time.Duration, now time.Time) bool {
	if attempt.FinishedAt != nil {
		return false
	}
	return Elapsed(now, attempt.StartedAt) > budget+grace
}
