package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readinglist/internal/catalogue"
)

// Importer runs a catalogue import. Implemented by *catalogue.Service.
type Importer interface {
	Import(ctx context.Context) (catalogue.ImportResult, error)
}

// ImportCatalogueTask merges the remote catalogue into the reading list.
type ImportCatalogueTask struct {
	// RequestedBy records which surface queued the import ("http", "cli")
	RequestedBy string `json:"requested_by,omitempty"`
}

// Config returns the queue configuration for import tasks.
// Imports are never retried: a failed run is reported, not repeated.
func (t ImportCatalogueTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_catalogue",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportCatalogueProcessor creates a processor function for ImportCatalogueTask.
func ImportCatalogueProcessor(importer Importer) backlite.QueueProcessor[ImportCatalogueTask] {
	return func(ctx context.Context, task ImportCatalogueTask) error {
		if importer == nil {
			return fmt.Errorf("importer not configured")
		}

		result, err := importer.Import(ctx)
		if err != nil {
			return fmt.Errorf("import catalogue (requested by %s): %w", task.RequestedBy, err)
		}

		log.Printf("[TASK] Import %s complete: %d fetched, %d added, %d skipped",
			result.RunID, result.Fetched, result.Added, result.Skipped)

		return nil
	}
}

// NewImportCatalogueQueue creates a backlite queue for import tasks.
func NewImportCatalogueQueue(importer Importer) backlite.Queue {
	return backlite.NewQueue(ImportCatalogueProcessor(importer))
}
