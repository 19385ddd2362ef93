package http

import (
	"context"
	"time"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/entities"
)

// ImportQueue enqueues background imports. Implemented by *tasks.Client.
type ImportQueue interface {
	EnqueueImport(requestedBy string) (string, error)
	TaskState(ctx context.Context, taskID string) (string, error)
}

// ImportSchedule reports on the periodic import. Implemented by
// *scheduler.ImportScheduler.
type ImportSchedule interface {
	IsRunning() bool
	IsSyncing() bool
	NextRun() *time.Time
}

// ImportHistory lists recorded import runs. Implemented by *importruns.Repository.
type ImportHistory interface {
	Recent(ctx context.Context, limit int) ([]entities.ImportRun, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalogue *catalogue.Service
	Database  Pinger

	// Optional background import plumbing; nil means imports run inline
	// and no schedule is reported.
	ImportQueue    ImportQueue
	ImportSchedule ImportSchedule
	ImportHistory  ImportHistory

	// Application info
	Version string
}
