// Package preflight provides readiness checks for the filesystem paths and
// services capturedesk depends on.
//
// The daemon runs RunAll at startup and logs failures as warnings; the
// analysis endpoint may come up later, so nothing here is fatal. The CLI
// "capturedesk status" command uses the individual checks, plus CheckDaemon,
// to display health.
package preflight
