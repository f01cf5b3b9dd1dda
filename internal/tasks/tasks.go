package tasks

import (
	"fmt"
	"strings"

	"capturedesk/internal/review"
)

// Status is the lifecycle state of a saved task.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusDone     Status = "Done"
	StatusWaiting  Status = "Waiting"
	StatusSnoozed  Status = "Snoozed"
	StatusCanceled Status = "Canceled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusOpen, StatusDone, StatusWaiting, StatusSnoozed, StatusCanceled}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	for _, status := range Statuses {
		if strings.EqualFold(trimmed, string(status)) {
			return status, nil
		}
	}
	names := make([]string, len(Statuses))
	for i, status := range Statuses {
		names[i] = string(status)
	}
	return "", fmt.Errorf("unknown status %q (expected one of %s)", value, strings.Join(names, ", "))
}

// Task is an approved review draft.
type Task struct {
	review.Draft
	CreatedAt string `json:"createdAt"`
}
