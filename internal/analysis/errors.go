package analysis

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a terminal analysis failure.
type Kind string

const (
	// KindValidation means the capture was incomplete; the caller should correct and resubmit.
	KindValidation Kind = "VALIDATION"
	// KindUpstreamBadResponse covers unreachable upstream, non-2xx status,
	// unparsable bodies, and payloads without a review object.
	KindUpstreamBadResponse Kind = "UPSTREAM_BAD_RESPONSE"
	// KindUpstreamTimeout means the upstream deadline expired.
	KindUpstreamTimeout Kind = "UPSTREAM_TIMEOUT"
)

// Error is the typed outcome returned by Client.Analyze for every failure.
type Error struct {
	Kind    Kind
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("analysis: ")
	b.WriteString(string(e.Kind))
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind returns the wire code of the failure.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// HTTPStatus maps the failure kind to the status the inbound route responds with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// KindOf reports the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var analysisErr *Error
	if errors.As(err, &analysisErr) {
		return analysisErr.Kind, true
	}
	return "", false
}

func badResponse(format string, args ...any) *Error {
	return &Error{Kind: KindUpstreamBadResponse, Err: fmt.Errorf(format, args...)}
}
