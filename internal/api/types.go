package api

import (
	"strings"

	"capturedesk/internal/analysis"
)

// Paths served by the daemon.
const (
	AnalyzePath = "/api/analyze"
	HealthPath  = "/api/health"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Capture is what the CLI collects before asking for a review.
type Capture struct {
	ContactID   string `json:"contactId,omitempty"`
	ContactName string `json:"contactName,omitempty"`
	Phone       string `json:"phone"`
	Notes       string `json:"textNotes"`
	AudioPath   string `json:"audioPath,omitempty"`
}

// AnalyzeResponse is the body of every /api/analyze reply, success or failure.
type AnalyzeResponse struct {
	OK         bool             `json:"ok"`
	Review     *analysis.Review `json:"review,omitempty"`
	Transcript *string          `json:"transcript"`
	Error      string           `json:"error,omitempty"`
	Details    []string         `json:"details,omitempty"`
}

// SuccessResponse wraps a normalized analysis result.
func SuccessResponse(result analysis.Result) AnalyzeResponse {
	review := result.Review
	return AnalyzeResponse{OK: result.OK, Review: &review, Transcript: result.Transcript}
}

// ErrorResponse is the failure body for an error code and optional details.
type ErrorResponse struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

// Error is a failed analyze call as seen by the CLI.
type Error struct {
	StatusCode int
	Code       string
	Details    []string
	Err        error
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return strings.Join(e.Details, ", ")
	}
	if e.Code != "" {
		return e.Code
	}
	return "Analyze failed"
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind returns the daemon's error code.
func (e *Error) ErrorKind() string { return e.Code }
