// Package tasks runs catalogue imports in the background on a backlite
// queue stored in its own SQLite file.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the import queue: its database, its workers and the
// enqueue/status calls the HTTP API needs.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

// TasksDBPath derives the task queue database path from the main database
// path: ./readinglist.db becomes ./readinglist-tasks.db.
func TasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens the task database next to mainDBPath and registers the
// import queue, which hands each task to importer.
func NewClient(mainDBPath string, cfg Config, importer Importer) (*Client, error) {
	workers := max(cfg.Workers, 1)

	db, err := sql.Open("sqlite3", TasksDBPath(mainDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}
	// Workers each hold a connection; two more serve enqueue and status calls
	db.SetMaxOpenConns(workers + 2)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	queue.Register(NewImportCatalogueQueue(importer))

	return &Client{queue: queue, db: db, workers: workers}, nil
}

// Start runs the workers until ctx is cancelled or Stop is called.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[TASK] Import queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for running imports, reporting whether they finished before
// ctx expired.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}
	ok := c.queue.Stop(ctx)
	log.Printf("[TASK] Import queue stopped (graceful: %t)", ok)
	return ok
}

func (c *Client) Close() error {
	return c.db.Close()
}

// EnqueueImport queues a catalogue import and returns the task ID.
func (c *Client) EnqueueImport(requestedBy string) (string, error) {
	ids, err := c.queue.Add(ImportCatalogueTask{RequestedBy: requestedBy}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue import: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue import: no task id returned")
	}
	return ids[0], nil
}

// TaskState returns the state of a queued import as a lowercase string.
func (c *Client) TaskState(ctx context.Context, taskID string) (string, error) {
	status, err := c.queue.Status(ctx, taskID)
	if err != nil {
		return "", err
	}
	return StatusString(status), nil
}

// StatusString converts a backlite task status to its API name.
func StatusString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (taskLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
