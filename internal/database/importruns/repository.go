// Package importruns records catalogue import runs.
//
// It implements the ProgressReporter used by the catalogue service, so every
// import leaves a row with its counters and outcome.
//
// # Usage
//
//	repo := importruns.NewRepository(db)
//	svc.SetProgressReporter(repo)
//	runs, err := repo.Recent(ctx, 10)
package importruns

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readinglist/internal/entities"
)

// StaleAfter is how long a running import may go without an update before
// it is treated as interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all import run database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new import run repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// StartImport creates the record for a new run.
func (r *Repository) StartImport(ctx context.Context, runID string) error {
	now := r.now()
	run := entities.ImportRun{
		RunID:     runID,
		Status:    entities.ImportRunRunning,
		StartedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Create(&run).Error
}

// UpdateImport stores the counters of an ongoing run.
func (r *Repository) UpdateImport(ctx context.Context, runID string, fetched, processed, added, skipped int, currentTitle string) error {
	return r.db.WithContext(ctx).Model(&entities.ImportRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"fetched":       fetched,
			"processed":     processed,
			"added":         added,
			"skipped":       skipped,
			"current_title": currentTitle,
			"updated_at":    r.now(),
		}).Error
}

// CompleteImport marks a run as completed or failed.
func (r *Repository) CompleteImport(ctx context.Context, runID string, succeeded bool, errorMsg string) error {
	now := r.now()
	status := entities.ImportRunCompleted
	if !succeeded {
		status = entities.ImportRunFailed
	}

	updates := map[string]any{
		"status":        status,
		"current_title": "",
		"updated_at":    now,
		"completed_at":  now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.WithContext(ctx).Model(&entities.ImportRun{}).
		Where("run_id = ?", runID).
		Updates(updates).Error
}

// Get returns a run by its run ID, or nil when unknown.
func (r *Repository) Get(ctx context.Context, runID string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns the latest runs, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []entities.ImportRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// FailStale marks runs that stopped reporting progress as failed. A process
// killed mid-import leaves such rows behind. Returns the number of rows changed.
func (r *Repository) FailStale(ctx context.Context) (int64, error) {
	now := r.now()
	result := r.db.WithContext(ctx).Model(&entities.ImportRun{}).
		Where("status = ? AND updated_at < ?", entities.ImportRunRunning, now.Add(-StaleAfter)).
		Updates(map[string]any{
			"status":       entities.ImportRunFailed,
			"error":        "import was interrupted",
			"updated_at":   now,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}
