package analysis

import (
	"io"
	"strings"
)

// Priority is the normalized urgency attached to a review.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	// StatusOpen is the only status a freshly analyzed review can carry.
	StatusOpen = "Open"
	// DefaultSummary is used when upstream omits a usable summary.
	DefaultSummary = "No summary provided."
)

// Audio is an optional recording attached to a capture.
type Audio struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Submission is one capture forwarded for analysis. It is built per request
// and never persisted by this package.
type Submission struct {
	Phone       string
	ContactName string
	Notes       string
	Correction  string
	Audio       *Audio
}

func (s Submission) trimmed() Submission {
	s.Phone = strings.TrimSpace(s.Phone)
	s.ContactName = strings.TrimSpace(s.ContactName)
	s.Notes = strings.TrimSpace(s.Notes)
	s.Correction = strings.TrimSpace(s.Correction)
	return s
}

// Review is the normalized summary derived from a capture.
type Review struct {
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	DueDate  *string   `json:"dueDate"`
	Priority *Priority `json:"priority"`
	Status   string    `json:"status"`
}

// Result is a fully normalized analysis outcome.
type Result struct {
	OK         bool    `json:"ok"`
	Review     Review  `json:"review"`
	Transcript *string `json:"transcript"`
}
