package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readinglist/internal/catalogue"
)

// Importer runs a catalogue import. Implemented by *catalogue.Service.
type Importer interface {
	Import(ctx context.Context) (catalogue.ImportResult, error)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a 5-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// ImportScheduler runs periodic imports from the remote catalogue.
type ImportScheduler struct {
	importer Importer
	schedule string
	timeout  time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
	lastResult *catalogue.ImportResult
	lastErr    error
}

// NewImportScheduler creates a scheduler. timeout bounds each run; zero means 10 minutes.
func NewImportScheduler(importer Importer, schedule string, timeout time.Duration) *ImportScheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ImportScheduler{
		importer: importer,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the import job and starts the cron loop.
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runImport)
	if err != nil {
		return fmt.Errorf("failed to schedule import job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Import scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running import to finish.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	entryID := s.entryID
	s.mu.Unlock()

	// The running job takes s.mu when it finishes, so wait without holding it
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(entryID)

	if cancel != nil {
		cancel()
	}

	log.Printf("Import scheduler: stopped")
}

// RunNow triggers an immediate import in the background.
func (s *ImportScheduler) RunNow() {
	go s.runImport()
}

func (s *ImportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether an import started by the scheduler is in progress.
func (s *ImportScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// NextRun returns when the next import will occur, or nil when stopped.
func (s *ImportScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

// LastRun returns the result and error of the most recent scheduled import.
func (s *ImportScheduler) LastRun() (*catalogue.ImportResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult, s.lastErr
}

func (s *ImportScheduler) runImport() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Import scheduler: skipped (already importing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	log.Printf("Import scheduler: starting import")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.importer.Import(ctx)
	if err != nil {
		log.Printf("Import scheduler: import failed: %v", err)
	}

	s.mu.Lock()
	s.lastResult = &result
	s.lastErr = err
	s.mu.Unlock()
}
