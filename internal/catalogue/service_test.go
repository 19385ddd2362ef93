package catalogue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglist/internal/database"
	"github.com/mrlokans/readinglist/internal/database/books"
	"github.com/mrlokans/readinglist/internal/entities"
)

type mockSource struct {
	candidates []Candidate
	err        error
	calls      int
}

func (m *mockSource) FetchCandidates(ctx context.Context) ([]Candidate, error) {
	m.calls++
	return m.candidates, m.err
}

// failingStore wraps a real store and fails selected operations.
type failingStore struct {
	Store
	failInsertAfter int // fail the insert following this many successful ones; -1 disables
	inserts         int
	failUpdate      bool
}

func (f *failingStore) Insert(ctx context.Context, title, author string) (uint, error) {
	if f.failInsertAfter >= 0 && f.inserts >= f.failInsertAfter {
		return 0, &books.StoreError{Op: "insert", Err: errors.New("disk full")}
	}
	f.inserts++
	return f.Store.Insert(ctx, title, author)
}

func (f *failingStore) UpdateFields(ctx context.Context, id uint, title, author string, status entities.Status) error {
	if f.failUpdate {
		return &books.StoreError{Op: "update fields", Err: errors.New("read-only database")}
	}
	return f.Store.UpdateFields(ctx, id, title, author, status)
}

// cancellingStore cancels the import context once the first insert lands.
type cancellingStore struct {
	Store
	cancel context.CancelFunc
}

func (c *cancellingStore) Insert(ctx context.Context, title, author string) (uint, error) {
	id, err := c.Store.Insert(ctx, title, author)
	c.cancel()
	return id, err
}

func tickingClock() func() time.Time {
	current := time.Now()
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

func setupStore(t *testing.T) *books.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalogue.db")
	db, err := database.NewDatabase(dbPath, database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return books.NewRepository(db.DB, books.WithClock(tickingClock()))
}

func setupService(t *testing.T, source CandidateSource) (*Service, *books.Repository) {
	t.Helper()
	store := setupStore(t)
	svc := NewService(store, source)
	require.NoError(t, svc.Load(context.Background()))
	return svc, store
}

func bookTitles(list []entities.Book) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.Title)
	}
	return out
}

func TestService_AddAdvanceRemoveOnFreshDatabase(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	// Fresh database: two seed books, most recent seed first
	assert.Equal(t, []string{"Atomic Habits", "Clean Code"}, bookTitles(svc.Books()))

	id, err := svc.Add(ctx, "Deep Work", "Cal Newport")
	require.NoError(t, err)

	list := svc.Books()
	require.Len(t, list, 3)
	assert.Equal(t, "Deep Work", list[0].Title)
	assert.Equal(t, entities.StatusPlanning, list[0].Status)

	next, err := svc.AdvanceStatus(ctx, list[0])
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReading, next)

	book, ok := svc.Find(id)
	require.True(t, ok)
	assert.Equal(t, entities.StatusReading, book.Status)

	require.NoError(t, svc.Remove(ctx, id))
	assert.Equal(t, []string{"Atomic Habits", "Clean Code"}, bookTitles(svc.Books()))
}

func TestService_Add(t *testing.T) {
	t.Run("adds exactly one planning book with a new id", func(t *testing.T) {
		svc, _ := setupService(t, nil)
		before := svc.Books()

		id, err := svc.Add(context.Background(), "  The Hobbit ", " J.R.R. Tolkien ")
		require.NoError(t, err)

		for _, b := range before {
			assert.NotEqual(t, b.ID, id)
		}

		after := svc.Books()
		require.Len(t, after, len(before)+1)

		added, ok := svc.Find(id)
		require.True(t, ok)
		assert.Equal(t, "The Hobbit", added.Title)
		assert.Equal(t, "J.R.R. Tolkien", added.Author)
		assert.Equal(t, entities.StatusPlanning, added.Status)
	})

	t.Run("rejects empty title without touching the store", func(t *testing.T) {
		svc, store := setupService(t, nil)
		ctx := context.Background()

		_, err := svc.Add(ctx, "   ", "Someone")
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.True(t, IsValidation(err))

		stored, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("allows missing author", func(t *testing.T) {
		svc, _ := setupService(t, nil)

		id, err := svc.Add(context.Background(), "Beowulf", "")
		require.NoError(t, err)

		book, ok := svc.Find(id)
		require.True(t, ok)
		assert.Equal(t, entities.UnknownAuthor, book.DisplayAuthor())
	})
}

func TestService_Edit(t *testing.T) {
	t.Run("overwrites all fields", func(t *testing.T) {
		svc, _ := setupService(t, nil)
		ctx := context.Background()

		id, err := svc.Add(ctx, "Draft", "Nobody")
		require.NoError(t, err)

		require.NoError(t, svc.Edit(ctx, id, "Final", "Somebody", entities.StatusDone))

		book, ok := svc.Find(id)
		require.True(t, ok)
		assert.Equal(t, "Final", book.Title)
		assert.Equal(t, "Somebody", book.Author)
		assert.Equal(t, entities.StatusDone, book.Status)
	})

	t.Run("rejects empty title before any mutation", func(t *testing.T) {
		svc, store := setupService(t, nil)
		ctx := context.Background()
		before, err := store.ListAll(ctx)
		require.NoError(t, err)

		err = svc.Edit(ctx, before[0].ID, "", "Author", entities.StatusDone)
		assert.ErrorIs(t, err, ErrEmptyTitle)

		after, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, before, svc.Books())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _ := setupService(t, nil)
		list := svc.Books()

		err := svc.Edit(context.Background(), list[0].ID, "Title", "", entities.Status("paused"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := &failingStore{Store: setupStore(t), failInsertAfter: -1, failUpdate: true}
		svc := NewService(store, nil)
		ctx := context.Background()
		require.NoError(t, svc.Load(ctx))

		err := svc.Edit(ctx, svc.Books()[0].ID, "Title", "", entities.StatusDone)
		require.Error(t, err)

		var storeErr *books.StoreError
		assert.True(t, errors.As(err, &storeErr))
		assert.Equal(t, MessageStoreFailed, UserMessage(err))
	})
}

func TestService_Remove(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	id, err := svc.Add(ctx, "Temporary", "")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, id))
	_, ok := svc.Find(id)
	assert.False(t, ok)

	// Removing again is a no-op
	before := svc.Books()
	require.NoError(t, svc.Remove(ctx, id))
	assert.Equal(t, before, svc.Books())
}

func TestService_AdvanceStatus_CycleCloses(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	for _, original := range svc.Books() {
		book := original
		for i := 0; i < 3; i++ {
			_, err := svc.AdvanceStatus(ctx, book)
			require.NoError(t, err)
			var ok bool
			book, ok = svc.Find(original.ID)
			require.True(t, ok)
		}
		assert.Equal(t, original.Status, book.Status)
	}
}

func TestService_Import(t *testing.T) {
	t.Run("adds only titles not already present", func(t *testing.T) {
		source := &mockSource{candidates: []Candidate{
			{Title: "clean code", Author: "Robert C. Martin"},
			{Title: "Frankenstein", Author: "Mary Wollstonecraft Shelley"},
		}}
		svc, _ := setupService(t, source)
		before := len(svc.Books())

		result, err := svc.Import(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 1, result.Skipped)
		assert.NotEmpty(t, result.RunID)

		list := svc.Books()
		require.Len(t, list, before+1)
		assert.Equal(t, "Frankenstein", list[0].Title)
		assert.Equal(t, entities.StatusPlanning, list[0].Status)
		assert.False(t, svc.Loading())
		assert.Empty(t, svc.ImportError())
	})

	t.Run("duplicate titles within a batch are imported once", func(t *testing.T) {
		source := &mockSource{candidates: []Candidate{
			{Title: "Dracula", Author: "Bram Stoker"},
			{Title: "DRACULA", Author: "Someone Else"},
		}}
		svc, _ := setupService(t, source)

		result, err := svc.Import(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("fetch failure sets generic error and keeps list", func(t *testing.T) {
		source := &mockSource{err: errors.New("connection refused")}
		svc, _ := setupService(t, source)
		before := svc.Books()

		_, err := svc.Import(context.Background())
		require.Error(t, err)

		var importErr *ImportError
		assert.True(t, errors.As(err, &importErr))
		assert.Equal(t, MessageImportFailed, UserMessage(err))
		assert.Equal(t, MessageImportFailed, svc.ImportError())
		assert.False(t, svc.Loading())
		assert.Equal(t, before, svc.Books())
	})

	t.Run("partial failure keeps earlier inserts and reloads", func(t *testing.T) {
		store := &failingStore{Store: setupStore(t), failInsertAfter: 1}
		source := &mockSource{candidates: []Candidate{
			{Title: "Emma", Author: "Jane Austen"},
			{Title: "Persuasion", Author: "Jane Austen"},
			{Title: "Sanditon", Author: "Jane Austen"},
		}}
		svc := NewService(store, source)
		ctx := context.Background()
		require.NoError(t, svc.Load(ctx))

		result, err := svc.Import(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, MessageImportFailed, svc.ImportError())

		titles := bookTitles(svc.Books())
		assert.Contains(t, titles, "Emma")
		assert.NotContains(t, titles, "Persuasion")
		assert.NotContains(t, titles, "Sanditon")
	})

	t.Run("cancellation mid-import still reloads persisted rows", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := &cancellingStore{Store: setupStore(t), cancel: cancel}
		source := &mockSource{candidates: []Candidate{
			{Title: "Mansfield Park", Author: "Jane Austen"},
			{Title: "Northanger Abbey", Author: "Jane Austen"},
		}}
		svc := NewService(store, source)
		require.NoError(t, svc.Load(context.Background()))
		require.Len(t, svc.Books(), 2)

		reporter := &recordingReporter{}
		svc.SetProgressReporter(reporter)

		result, err := svc.Import(ctx)
		require.Error(t, err)

		var importErr *ImportError
		require.True(t, errors.As(err, &importErr))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, MessageImportFailed, svc.ImportError())

		list := svc.Books()
		require.Len(t, list, 3)
		assert.Equal(t, "Mansfield Park", list[0].Title)

		last := reporter.events[len(reporter.events)-1]
		assert.Equal(t, "complete", last.kind)
		assert.False(t, last.ok)
		assert.NoError(t, last.ctxErr)
	})

	t.Run("a successful import clears the previous error", func(t *testing.T) {
		source := &mockSource{err: errors.New("timeout")}
		svc, _ := setupService(t, source)
		ctx := context.Background()

		_, err := svc.Import(ctx)
		require.Error(t, err)
		require.NotEmpty(t, svc.ImportError())

		source.err = nil
		source.candidates = []Candidate{{Title: "Ulysses", Author: "James Joyce"}}
		_, err = svc.Import(ctx)
		require.NoError(t, err)
		assert.Empty(t, svc.ImportError())
	})

	t.Run("fails without a source", func(t *testing.T) {
		svc, _ := setupService(t, nil)

		_, err := svc.Import(context.Background())
		assert.Error(t, err)
		assert.Equal(t, MessageImportFailed, svc.ImportError())
	})
}

func TestService_SearchAndStats(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Deep Work", "Cal Newport")
	require.NoError(t, err)

	found, err := svc.Search(ctx, " newport ", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Deep Work"}, bookTitles(found))

	// Search does not replace the current list
	assert.Len(t, svc.Books(), 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[entities.StatusPlanning])
	assert.Equal(t, int64(1), stats.ByStatus[entities.StatusReading])
	assert.Equal(t, int64(0), stats.ByStatus[entities.StatusDone])
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, ErrEmptyTitle.Message, UserMessage(ErrEmptyTitle))
	assert.Equal(t, MessageImportFailed, UserMessage(&ImportError{Err: errors.New("boom")}))
	assert.Equal(t, MessageStoreFailed, UserMessage(&books.StoreError{Op: "delete", Err: errors.New("boom")}))
	assert.Equal(t, MessageUnexpected, UserMessage(errors.New("boom")))
}

type progressEvent struct {
	kind      string
	runID     string
	processed int
	added     int
	skipped   int
	current   string
	ok        bool
	errorMsg  string
	ctxErr    error
}

type recordingReporter struct {
	events  []progressEvent
	failAll bool
}

func (r *recordingReporter) StartImport(ctx context.Context, runID string) error {
	r.events = append(r.events, progressEvent{kind: "start", runID: runID})
	return r.err()
}

func (r *recordingReporter) UpdateImport(ctx context.Context, runID string, fetched, processed, added, skipped int, currentTitle string) error {
	r.events = append(r.events, progressEvent{kind: "update", runID: runID, processed: processed, added: added, skipped: skipped, current: currentTitle})
	return r.err()
}

func (r *recordingReporter) CompleteImport(ctx context.Context, runID string, succeeded bool, errorMsg string) error {
	r.events = append(r.events, progressEvent{kind: "complete", runID: runID, ok: succeeded, errorMsg: errorMsg, ctxErr: ctx.Err()})
	return r.err()
}

func (r *recordingReporter) err() error {
	if r.failAll {
		return errors.New("progress table locked")
	}
	return nil
}

func TestService_ImportProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("records start, each candidate and completion", func(t *testing.T) {
		source := &mockSource{candidates: []Candidate{
			{Title: "Frankenstein", Author: "Mary Shelley"},
			{Title: "Clean Code", Author: "Robert C. Martin"},
		}}
		svc, _ := setupService(t, source)
		reporter := &recordingReporter{}
		svc.SetProgressReporter(reporter)

		result, err := svc.Import(ctx)
		require.NoError(t, err)

		require.Len(t, reporter.events, 5)
		assert.Equal(t, "start", reporter.events[0].kind)
		assert.Equal(t, result.RunID, reporter.events[0].runID)
		assert.Equal(t, progressEvent{kind: "update", runID: result.RunID, processed: 0, current: "Frankenstein"}, reporter.events[1])
		assert.Equal(t, progressEvent{kind: "update", runID: result.RunID, processed: 1, added: 1, current: "Clean Code"}, reporter.events[2])
		assert.Equal(t, progressEvent{kind: "update", runID: result.RunID, processed: 2, added: 1, skipped: 1}, reporter.events[3])
		assert.Equal(t, progressEvent{kind: "complete", runID: result.RunID, ok: true}, reporter.events[4])
	})

	t.Run("records failure with the underlying error", func(t *testing.T) {
		source := &mockSource{err: errors.New("timeout awaiting headers")}
		svc, _ := setupService(t, source)
		reporter := &recordingReporter{}
		svc.SetProgressReporter(reporter)

		_, err := svc.Import(ctx)
		require.Error(t, err)

		last := reporter.events[len(reporter.events)-1]
		assert.Equal(t, "complete", last.kind)
		assert.False(t, last.ok)
		assert.Contains(t, last.errorMsg, "timeout awaiting headers")
	})

	t.Run("reporter errors do not abort the import", func(t *testing.T) {
		source := &mockSource{candidates: []Candidate{{Title: "Frankenstein", Author: "Mary Shelley"}}}
		svc, _ := setupService(t, source)
		svc.SetProgressReporter(&recordingReporter{failAll: true})

		result, err := svc.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Empty(t, svc.ImportError())
	})
}
