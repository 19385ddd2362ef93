package entities

import (
	"time"
)

type ImportRunStatus string

const (
	ImportRunRunning   ImportRunStatus = "running"
	ImportRunCompleted ImportRunStatus = "completed"
	ImportRunFailed    ImportRunStatus = "failed"
)

// ImportRun records the progress and outcome of one catalogue import.
type ImportRun struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RunID        string          `gorm:"size:36;uniqueIndex" json:"run_id"`
	Status       ImportRunStatus `gorm:"size:20;index" json:"status"`
	Fetched      int             `json:"fetched"`
	Processed    int             `json:"processed"`
	Added        int             `json:"added"`
	Skipped      int             `json:"skipped"`
	CurrentTitle string          `gorm:"size:512" json:"current_title,omitempty"`
	Error        string          `gorm:"type:text" json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
