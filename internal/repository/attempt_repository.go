package repository

import (
	"context"
	"time"

	"github.com/lshigami/attempt-engine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository interface {
	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) AttemptRepository

	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id string) (*model.Attempt, error)
	// FindByIDForShare reads the attempt under a shared row lock (no-op on SQLite).
	FindByIDForShare(ctx context.Context, id string) (*model.Attempt, error)
	// FindByIDForUpdate reads the attempt under an exclusive row lock (no-op on SQLite).
	FindByIDForUpdate(ctx context.Context, id string) (*model.Attempt, error)
	FindOpenByStudent(ctx context.Context, studentID string) ([]model.Attempt, error)
	// FindOpenStartedBefore pages through open attempts started before cutoff,
	// ordered by (started_at, id). A nil cursor starts from the oldest.
	FindOpenStartedBefore(ctx context.Context, cutoff time.Time, after *AttemptCursor, limit int) ([]model.Attempt, error)
	// Finalize sets finished_at and score only if the attempt is still open.
	// It reports whether this call performed the transition.
	Finalize(ctx context.Context, id string, finishedAt time.Time, score float64, finalizedBy string) (bool, error)
	// LockStudent touches the student's lock row; the row lock is held until
	// the surrounding transaction ends.
	LockStudent(ctx context.Context, studentID string, now time.Time) error
}

// AttemptCursor is the (started_at, id) position of the last attempt read.
type AttemptCursor struct {
	StartedAt time.Time
	ID        string
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) WithTx(tx *gorm.DB) AttemptRepository {
	return &attemptRepository{db: tx}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(attempt).Error
}

func (r *attemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDForShare(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", id).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindOpenByStudent(ctx context.Context, studentID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND finished_at IS NULL", studentID).
		Order("started_at ASC, id ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindOpenStartedBefore(ctx context.Context, cutoff time.Time, after *AttemptCursor, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.db.WithContext(ctx).
		Where("finished_at IS NULL AND started_at < ?", cutoff)
	if after != nil {
		// Keyset paging; ties on started_at are broken by id.
		query = query.Where("(started_at > ? OR (started_at = ? AND id > ?))", after.StartedAt, after.StartedAt, after.ID)
	}
	query = query.Order("started_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) Finalize(ctx context.Context, id string, finishedAt time.Time, score float64, finalizedBy string) (bool, error) {
	// Conditional update: only the first finalize matches finished_at IS NULL
	result := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND finished_at IS NULL", id).
		Updates(map[string]interface{}{
			"finished_at":  finishedAt,
			"score":        score,
			"finalized_by": finalizedBy,
			"updated_at":   finishedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *attemptRepository) LockStudent(ctx context.Context, studentID string, now time.Time) error {
	// Upsert so the first call creates the row and later ones lock it
	lock := model.StudentLock{StudentID: studentID, TouchedAt: now}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"touched_at"}),
		}).
		Create(&lock).Error
}
