// Package review turns analyze replies (or the offline stub) into drafts and
// keeps the single draft awaiting approval between CLI invocations.
package review
