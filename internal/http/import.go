package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglist/internal/catalogue"
)

// ImportController triggers catalogue imports and reports on them.
type ImportController struct {
	catalogue *catalogue.Service
	queue     ImportQueue
	schedule  ImportSchedule
	history   ImportHistory
}

func NewImportController(svc *catalogue.Service, queue ImportQueue, schedule ImportSchedule, history ImportHistory) *ImportController {
	return &ImportController{
		catalogue: svc,
		queue:     queue,
		schedule:  schedule,
		history:   history,
	}
}

// ImportStatusResponse is returned by GET /api/import/status.
type ImportStatusResponse struct {
	Loading     bool            `json:"loading"`
	ImportError string          `json:"import_error"`
	Schedule    *ScheduleStatus `json:"schedule,omitempty"`
}

type ScheduleStatus struct {
	Running bool       `json:"running"`
	Syncing bool       `json:"syncing"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Run handles POST /api/import.
// With a task queue the import is enqueued and 202 returned; otherwise it
// runs within the request.
func (ic *ImportController) Run(c *gin.Context) {
	if ic.queue != nil {
		taskID, err := ic.queue.EnqueueImport("http")
		if err != nil {
			log.Printf("Failed to enqueue import: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: catalogue.MessageImportFailed, Code: "enqueue_failed"})
			return
		}
		respondAccepted(c, "import queued", gin.H{"task_id": taskID})
		return
	}

	result, err := ic.catalogue.Import(c.Request.Context())
	if err != nil {
		log.Printf("Import failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: catalogue.UserMessage(err), Code: "import_failed"})
		return
	}

	respondSuccess(c, "import complete", result)
}

// Status handles GET /api/import/status.
func (ic *ImportController) Status(c *gin.Context) {
	resp := ImportStatusResponse{
		Loading:     ic.catalogue.Loading(),
		ImportError: ic.catalogue.ImportError(),
	}

	if ic.schedule != nil {
		resp.Schedule = &ScheduleStatus{
			Running: ic.schedule.IsRunning(),
			Syncing: ic.schedule.IsSyncing(),
			NextRun: ic.schedule.NextRun(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Runs handles GET /api/import/runs?limit=N.
func (ic *ImportController) Runs(c *gin.Context) {
	if ic.history == nil {
		respondNotFound(c, "import history")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondBadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := ic.history.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Failed to list import runs: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: catalogue.MessageUnexpected, Code: "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// TaskStatus handles GET /api/import/tasks/:id.
func (ic *ImportController) TaskStatus(c *gin.Context) {
	if ic.queue == nil {
		respondNotFound(c, "task queue")
		return
	}

	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := ic.queue.TaskState(ctx, taskID)
	if err != nil {
		log.Printf("Failed to read task %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: catalogue.MessageUnexpected, Code: "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": state})
}
