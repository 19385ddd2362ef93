package http

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/database"
	"github.com/mrlokans/readinglist/internal/database/books"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	candidates []catalogue.Candidate
	err        error
}

func (s *stubSource) FetchCandidates(ctx context.Context) ([]catalogue.Candidate, error) {
	return s.candidates, s.err
}

// setupCatalogue opens a seeded database in a temp dir and returns a loaded service.
func setupCatalogue(t *testing.T, source catalogue.CandidateSource) (*catalogue.Service, *database.Database) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDatabase(dbPath, database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := catalogue.NewService(books.NewRepository(db.DB), source)
	require.NoError(t, svc.Load(context.Background()))

	return svc, db
}
