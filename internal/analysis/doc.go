// Package analysis forwards captures to the external analysis webhook and
// turns its untrusted reply into a normalized review.
//
// # Flow
//
// Client.Analyze trims and validates the submission, encodes it as a
// multipart form, and issues one POST under a deadline (25s by default). The
// reply is decoded as loosely typed JSON and normalized field by field:
// title and summary fall back to defaults, dueDate and priority are coerced
// or dropped, and status is always Open.
//
// # Errors
//
// Every failure is an *Error with one of three kinds: VALIDATION (with the
// violated rules in Details), UPSTREAM_BAD_RESPONSE, or UPSTREAM_TIMEOUT.
// Error.HTTPStatus maps them to 400, 502, and 504. Nothing is retried.
package analysis
