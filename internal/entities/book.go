package entities

import (
	"fmt"
	"strings"
)

// UnknownAuthor is shown for books stored without an author.
const UnknownAuthor = "Unknown"

type Status string

const (
	StatusPlanning Status = "planning"
	StatusReading  Status = "reading"
	StatusDone     Status = "done"
)

// Statuses lists every status in cycle order.
var Statuses = []Status{StatusPlanning, StatusReading, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusReading, StatusDone:
		return true
	}
	return false
}

// Next returns the following status in the planning -> reading -> done -> planning cycle.
// Unknown values restart the cycle at planning.
func (s Status) Next() Status {
	switch s {
	case StatusPlanning:
		return StatusReading
	case StatusReading:
		return StatusDone
	default:
		return StatusPlanning
	}
}

// ParseStatus converts user input into a Status, ignoring case and surrounding spaces.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

type Book struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"not null;size:512;index" json:"title"`
	Author    string `gorm:"size:256" json:"author"`
	Status    Status `gorm:"size:16;not null;default:planning;index" json:"status"`
	CreatedAt int64  `gorm:"autoCreateTime:milli;index" json:"created_at"` // milliseconds since epoch
}

func (Book) TableName() string {
	return "books"
}

// DisplayAuthor returns the author, or UnknownAuthor when none was stored.
func (b Book) DisplayAuthor() string {
	if strings.TrimSpace(b.Author) == "" {
		return UnknownAuthor
	}
	return b.Author
}
