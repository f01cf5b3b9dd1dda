// Package store persists small string values in a local SQLite file.
//
// Every piece of client state (the task list, the PIN hash, the pending
// review, and settings) is one key. Values are written wholesale; callers own
// their encoding. Busy errors from concurrent CLI invocations are retried with
// a short exponential backoff.
package store
