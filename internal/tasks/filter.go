package tasks

import (
	"fmt"
	"strings"
	"time"

	"capturedesk/internal/review"
)

// Filter selects a subset of tasks by due date.
type Filter string

const (
	FilterToday   Filter = "today"
	FilterWeek    Filter = "week"
	FilterOverdue Filter = "overdue"
	FilterAll     Filter = "all"
)

// ParseFilter accepts today, week (or "this week"), overdue, and all.
func ParseFilter(value string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return FilterAll, nil
	case "today":
		return FilterToday, nil
	case "week", "this week", "this-week":
		return FilterWeek, nil
	case "overdue":
		return FilterOverdue, nil
	default:
		return "", fmt.Errorf("unknown filter %q (expected today, week, overdue, or all)", value)
	}
}

// Apply returns the tasks matching f relative to now, preserving order. Due
// dates are compared as calendar days in now's location. A task with an
// unreadable due date only appears under FilterAll.
func Apply(list []Task, f Filter, now time.Time) []Task {
	if f == FilterAll || f == "" {
		return list
	}
	today := startOfDay(now)
	weekEnd := today.AddDate(0, 0, 7)

	out := make([]Task, 0, len(list))
	for _, task := range list {
		if task.DueDate == nil || *task.DueDate == "" {
			if f == FilterWeek {
				out = append(out, task)
			}
			continue
		}
		due, ok := parseDue(*task.DueDate, now.Location())
		if !ok {
			continue
		}
		var keep bool
		switch f {
		case FilterToday:
			keep = due.Equal(today)
		case FilterOverdue:
			keep = due.Before(today) && Status(task.Status) != StatusDone
		case FilterWeek:
			keep = !due.Before(today) && !due.After(weekEnd)
		}
		if keep {
			out = append(out, task)
		}
	}
	return out
}

func parseDue(value string, loc *time.Location) (time.Time, bool) {
	if day, err := time.ParseInLocation(review.DateLayout, value, loc); err == nil {
		return day, true
	}
	if instant, err := time.Parse(time.RFC3339, value); err == nil {
		return startOfDay(instant.In(loc)), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
