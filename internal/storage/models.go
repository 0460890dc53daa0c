package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord is a persisted knowledge-base document.
type DocumentRecord struct {
	ID           string
	Title        string
	Content      string
	Category     string
	DocumentType string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IncidentRecord is a persisted triage outcome.
type IncidentRecord struct {
	ID             string
	Description    string
	Category       string
	Confidence     float64
	Severity       string
	Priority       string
	AssignedTo     string
	EstimatedTime  string
	ResolutionMins int
	CreatedAt      time.Time
}
