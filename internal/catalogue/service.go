// Package catalogue holds the reading list orchestration layer.
//
// The Service sits between the presentation adapters (HTTP API, CLI, task
// queue, scheduler) and the books store. It keeps the current list in
// memory and reloads it after every mutation before returning, so callers
// always observe the post-mutation state.
package catalogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mrlokans/readinglist/internal/entities"
)

// Store is the persistence contract the Service depends on.
type Store interface {
	ListAll(ctx context.Context) ([]entities.Book, error)
	Insert(ctx context.Context, title, author string) (uint, error)
	UpdateStatus(ctx context.Context, id uint, status entities.Status) error
	UpdateFields(ctx context.Context, id uint, title, author string, status entities.Status) error
	Delete(ctx context.Context, id uint) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Search(ctx context.Context, query string, status entities.Status) ([]entities.Book, error)
	CountByStatus(ctx context.Context) (map[entities.Status]int64, error)
}

// ProgressReporter records the progress of import runs. Failures to record
// are logged and never abort the import.
type ProgressReporter interface {
	StartImport(ctx context.Context, runID string) error
	UpdateImport(ctx context.Context, runID string, fetched, processed, added, skipped int, currentTitle string) error
	CompleteImport(ctx context.Context, runID string, succeeded bool, errorMsg string) error
}

// Candidate is a book offered by a remote catalogue for import.
type Candidate struct {
	Title  string
	Author string
}

// CandidateSource fetches import candidates from a remote catalogue.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]Candidate, error)
}

// ImportResult contains the outcome of an import run.
type ImportResult struct {
	RunID   string `json:"run_id"`
	Fetched int    `json:"fetched"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

// Stats summarises the reading list.
type Stats struct {
	Total    int64                     `json:"total"`
	ByStatus map[entities.Status]int64 `json:"by_status"`
}

// Snapshot is a consistent view of the state exposed to presentation code.
type Snapshot struct {
	Books       []entities.Book `json:"books"`
	Loading     bool            `json:"loading"`
	ImportError string          `json:"import_error"`
}

type Service struct {
	store    Store
	source   CandidateSource
	progress ProgressReporter

	// opMu serializes operations that touch the store, so they run one at a time
	opMu sync.Mutex

	mu          sync.RWMutex
	books       []entities.Book
	loading     bool
	importError string
}

// NewService creates a Service. source may be nil, in which case Import fails.
func NewService(store Store, source CandidateSource) *Service {
	return &Service{
		store:  store,
		source: source,
	}
}

// SetProgressReporter sets where import progress is recorded (optional).
func (s *Service) SetProgressReporter(reporter ProgressReporter) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.progress = reporter
}

// Books returns a copy of the current list.
func (s *Service) Books() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// ImportError returns the message of the last failed import, or "".
func (s *Service) ImportError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.importError
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]entities.Book, len(s.books))
	copy(books, s.books)
	return Snapshot{
		Books:       books,
		Loading:     s.loading,
		ImportError: s.importError,
	}
}

// Find looks up a book in the current list.
func (s *Service) Find(id uint) (entities.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return entities.Book{}, false
}

// Load replaces the current list with the store contents.
func (s *Service) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	books, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return nil
}

// Add validates the title, stores a new planning book and reloads.
func (s *Service) Add(ctx context.Context, title, author string) (uint, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	id, err := s.store.Insert(ctx, title, strings.TrimSpace(author))
	if err != nil {
		return 0, err
	}
	return id, s.reload(ctx)
}

// Edit validates and overwrites title, author and status of a book, then reloads.
func (s *Service) Edit(ctx context.Context, id uint, title, author string, status entities.Status) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.UpdateFields(ctx, id, title, strings.TrimSpace(author), status); err != nil {
		return err
	}
	return s.reload(ctx)
}

// Remove deletes a book and reloads. Unknown IDs are a no-op.
func (s *Service) Remove(ctx context.Context, id uint) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	return s.reload(ctx)
}

// AdvanceStatus moves a book to the next status in the cycle and reloads.
func (s *Service) AdvanceStatus(ctx context.Context, book entities.Book) (entities.Status, error) {
	next := book.Status.Next()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.UpdateStatus(ctx, book.ID, next); err != nil {
		return "", err
	}
	return next, s.reload(ctx)
}

// Import merges remote candidates whose title is not already stored.
// The first failure aborts the run; books inserted before it are kept.
// The list is reloaded once at the end either way.
func (s *Service) Import(ctx context.Context) (ImportResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	result := ImportResult{RunID: uuid.NewString()}

	s.mu.Lock()
	s.loading = true
	s.importError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	log.Printf("Import %s: starting", result.RunID)
	s.reportStart(ctx, result.RunID)

	mergeErr := s.merge(ctx, &result)

	// Rows inserted before a cancellation are persisted, so the list and the
	// run record are finished even when ctx is already done.
	finishCtx := context.WithoutCancel(ctx)
	reloadErr := s.reload(finishCtx)

	if mergeErr != nil {
		s.mu.Lock()
		s.importError = MessageImportFailed
		s.mu.Unlock()

		runErr := errors.Join(mergeErr, reloadErr)
		log.Printf("Import %s: failed after adding %d books: %v", result.RunID, result.Added, runErr)
		s.reportComplete(finishCtx, result.RunID, runErr)
		return result, &ImportError{Err: runErr}
	}
	s.reportComplete(finishCtx, result.RunID, reloadErr)
	if reloadErr != nil {
		return result, reloadErr
	}

	log.Printf("Import %s: complete, %d fetched, %d added, %d skipped",
		result.RunID, result.Fetched, result.Added, result.Skipped)
	return result, nil
}

func (s *Service) merge(ctx context.Context, result *ImportResult) error {
	if s.source == nil {
		return fmt.Errorf("no remote catalogue configured")
	}

	candidates, err := s.source.FetchCandidates(ctx)
	if err != nil {
		return fmt.Errorf("fetch candidates: %w", err)
	}
	result.Fetched = len(candidates)

	for i, c := range candidates {
		s.reportUpdate(ctx, result, i, c.Title)

		exists, err := s.store.ExistsByTitle(ctx, c.Title)
		if err != nil {
			return fmt.Errorf("check %q: %w", c.Title, err)
		}
		if exists {
			result.Skipped++
			continue
		}
		if _, err := s.store.Insert(ctx, c.Title, c.Author); err != nil {
			return fmt.Errorf("insert %q: %w", c.Title, err)
		}
		result.Added++
	}
	s.reportUpdate(ctx, result, len(candidates), "")
	return nil
}

func (s *Service) reportStart(ctx context.Context, runID string) {
	if s.progress == nil {
		return
	}
	if err := s.progress.StartImport(ctx, runID); err != nil {
		log.Printf("Import %s: failed to record start: %v", runID, err)
	}
}

func (s *Service) reportUpdate(ctx context.Context, result *ImportResult, processed int, currentTitle string) {
	if s.progress == nil {
		return
	}
	err := s.progress.UpdateImport(ctx, result.RunID, result.Fetched, processed, result.Added, result.Skipped, currentTitle)
	if err != nil {
		log.Printf("Import %s: failed to record progress: %v", result.RunID, err)
	}
}

func (s *Service) reportComplete(ctx context.Context, runID string, runErr error) {
	if s.progress == nil {
		return
	}
	errorMsg := ""
	if runErr != nil {
		errorMsg = runErr.Error()
	}
	if err := s.progress.CompleteImport(ctx, runID, runErr == nil, errorMsg); err != nil {
		log.Printf("Import %s: failed to record completion: %v", runID, err)
	}
}

// Search filters the stored books without touching the current list.
func (s *Service) Search(ctx context.Context, query string, status entities.Status) ([]entities.Book, error) {
	return s.store.Search(ctx, strings.TrimSpace(query), status)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return Stats{Total: total, ByStatus: counts}, nil
}
