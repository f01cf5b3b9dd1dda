// Command capturedesk is the operator CLI for capturedesk.
//
// It captures call notes and audio, sends them to the capturedeskd daemon
// for analysis (or builds a local draft with --offline), and keeps approved
// drafts as follow-up tasks in a PIN-locked local store.
//
//	capturedesk pin set
//	capturedesk capture new --contact 3 --notes "call back about invoice"
//	capturedesk capture fix "due date is Friday"
//	capturedesk capture approve
//	capturedesk tasks list --filter week
package main
