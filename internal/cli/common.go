package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/database"
	"github.com/mrlokans/readinglist/internal/database/books"
	"github.com/mrlokans/readinglist/internal/database/importruns"
)

// openCatalogue opens the database at dbPath and returns a loaded service.
// The caller must close the returned database.
func openCatalogue(ctx context.Context, dbPath string, source catalogue.CandidateSource) (*catalogue.Service, *database.Database, error) {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	svc := catalogue.NewService(books.NewRepository(db.DB), source)
	svc.SetProgressReporter(importruns.NewRepository(db.DB))
	if err := svc.Load(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load reading list: %w", err)
	}

	return svc, db, nil
}

func stdoutIfNil(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
