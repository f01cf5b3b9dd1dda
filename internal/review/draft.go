package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
)

// DateLayout is the calendar-date form used for due dates.
const DateLayout = "2006-01-02"

var stubPriorities = []analysis.Priority{analysis.PriorityLow, analysis.PriorityMedium, analysis.PriorityHigh}

// Draft is a review awaiting approval.
type Draft struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Summary      string             `json:"summary"`
	DueDate      *string            `json:"dueDate,omitempty"`
	Priority     *analysis.Priority `json:"priority,omitempty"`
	Status       string             `json:"status"`
	ContactName  string             `json:"contactName,omitempty"`
	ContactPhone string             `json:"contactPhone"`
	Transcript   *string            `json:"transcript,omitempty"`
}

// FromResponse builds a draft from a successful daemon reply.
func FromResponse(capture api.Capture, resp api.AnalyzeResponse) Draft {
	draft := Draft{
		ID:           uuid.NewString(),
		Title:        fallbackTitle(capture),
		Summary:      analysis.DefaultSummary,
		Status:       analysis.StatusOpen,
		ContactName:  capture.ContactName,
		ContactPhone: capture.Phone,
	}
	if r := resp.Review; r != nil {
		if r.Title != "" {
			draft.Title = r.Title
		}
		if r.Summary != "" {
			draft.Summary = r.Summary
		}
		if r.DueDate != nil && *r.DueDate != "" {
			due := *r.DueDate
			draft.DueDate = &due
		}
		if r.Priority != nil && *r.Priority != "" {
			priority := *r.Priority
			draft.Priority = &priority
		}
	}
	if resp.Transcript != nil && *resp.Transcript != "" {
		transcript := *resp.Transcript
		draft.Transcript = &transcript
	}
	return draft
}

// Stub generates a draft locally when the daemon is not used. It is
// deterministic for a given capture, correction, and day.
func Stub(capture api.Capture, correction string, now time.Time) Draft {
	due := now.AddDate(0, 0, 1).Format(DateLayout)
	priority := stubPriorities[(len(capture.Phone)+len(capture.Notes))%len(stubPriorities)]

	summary := strings.TrimSpace(capture.Notes)
	if summary == "" {
		summary = "Audio note received from " + displayName(capture)
	}
	if correction = strings.TrimSpace(correction); correction != "" {
		summary = fmt.Sprintf("%s (Adjusted after feedback: %s)", summary, correction)
	}

	return Draft{
		ID:           uuid.NewString(),
		Title:        fallbackTitle(capture),
		Summary:      summary,
		DueDate:      &due,
		Priority:     &priority,
		Status:       analysis.StatusOpen,
		ContactName:  capture.ContactName,
		ContactPhone: capture.Phone,
	}
}

func fallbackTitle(capture api.Capture) string {
	return "Follow up with " + displayName(capture)
}

func displayName(capture api.Capture) string {
	if capture.ContactName != "" {
		return capture.ContactName
	}
	return capture.Phone
}
