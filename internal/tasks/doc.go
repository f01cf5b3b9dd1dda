// Package tasks manages approved reviews: the task list persisted as one JSON
// value, status changes, and the today/week/overdue/all views.
package tasks
