package model

import "time"

// StudentLock is the per-student row the start path locks before it reads
// the student's open attempts.
type StudentLock struct {
	StudentID string    `gorm:"primaryKey;size:255"`
	TouchedAt time.Time `gorm:"not null"`
}
