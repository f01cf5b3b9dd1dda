package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"capturedesk/internal/logging"
)

const (
	// DefaultTimeout bounds one upstream call from issuance to a fully read body.
	DefaultTimeout          = 25 * time.Second
	defaultMaxResponseBytes = 4 << 20
)

// Client forwards captures to the analysis webhook and normalizes its reply.
// It performs exactly one outbound call per Analyze and never retries.
type Client struct {
	endpoint         string
	httpClient       *http.Client
	timeout          time.Duration
	maxResponseBytes int64
	logger           *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its own Timeout should be
// zero or longer than the analysis deadline.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the upstream deadline (defaults to 25s).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxResponseBytes caps how much of the upstream body is read.
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxResponseBytes = limit
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a client for the given webhook endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	client := &Client{
		endpoint:         strings.TrimSpace(endpoint),
		httpClient:       &http.Client{},
		timeout:          DefaultTimeout,
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "analysis")
	return client
}

// Analyze validates sub, forwards it upstream under the client deadline, and
// returns the normalized review. Every failure is an *Error.
func (c *Client) Analyze(ctx context.Context, sub Submission) (Result, error) {
	sub = sub.trimmed()
	logger := logging.WithContext(ctx, c.logger)

	if details := Validate(sub); len(details) > 0 {
		logger.Info("capture rejected",
			logging.String(logging.FieldErrorKind, string(KindValidation)),
			logging.Int("violations", len(details)),
		)
		return Result{}, &Error{Kind: KindValidation, Details: details}
	}

	started := time.Now()
	result, status, err := c.forward(ctx, sub)
	elapsed := time.Since(started)
	if err != nil {
		kind, _ := KindOf(err)
		attrs := []logging.Attr{
			logging.String(logging.FieldErrorKind, string(kind)),
			logging.Duration("duration", elapsed),
			logging.Bool("has_audio", sub.Audio != nil),
			logging.Error(err),
		}
		if status != 0 {
			attrs = append(attrs, logging.Int(logging.FieldStatusCode, status))
		}
		logger.Warn("analysis failed", logging.Args(attrs...)...)
		return Result{}, err
	}

	attrs := []logging.Attr{
		logging.Int(logging.FieldStatusCode, status),
		logging.Duration("duration", elapsed),
		logging.Bool("has_audio", sub.Audio != nil),
		logging.Bool("upstream_ok", result.OK),
		logging.Bool("has_due_date", result.Review.DueDate != nil),
	}
	if result.Review.Priority != nil {
		attrs = append(attrs, logging.String("priority", string(*result.Review.Priority)))
	}
	logger.Info("analysis completed", logging.Args(attrs...)...)
	return result, nil
}

// forward performs the upstream call. The returned status is zero when no
// response arrived.
func (c *Client) forward(ctx context.Context, sub Submission) (Result, int, error) {
	if c.endpoint == "" {
		return Result{}, 0, badResponse("webhook endpoint not configured")
	}
	body, contentType, err := encodeSubmission(sub)
	if err != nil {
		return Result{}, 0, badResponse("encode submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Result{}, 0, badResponse("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, 0, transportError(ctx, "http request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return Result{}, resp.StatusCode, transportError(ctx, "read body", err)
	}
	if int64(len(raw)) > c.maxResponseBytes {
		return Result{}, resp.StatusCode, badResponse("response exceeds %d bytes", c.maxResponseBytes)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{}, resp.StatusCode, badResponse("decode response (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, resp.StatusCode, badResponse("unexpected status %d", resp.StatusCode)
	}
	payload, ok := decoded.(map[string]any)
	if !ok {
		return Result{}, resp.StatusCode, badResponse("response is not a JSON object")
	}
	review, ok := payload["review"].(map[string]any)
	if !ok {
		return Result{}, resp.StatusCode, badResponse("response has no review object")
	}
	return normalizeResult(sub.Phone, payload, review), resp.StatusCode, nil
}

func normalizeResult(phone string, payload, review map[string]any) Result {
	result := Result{
		OK: true,
		Review: Review{
			Title:    nonBlankString(review["title"], "Follow up with "+phone),
			Summary:  nonBlankString(review["summary"], DefaultSummary),
			DueDate:  NormalizeDueDate(review["dueDate"]),
			Priority: NormalizePriority(review["priority"]),
			Status:   StatusOpen,
		},
	}
	if ok, isBool := payload["ok"].(bool); isBool && !ok {
		result.OK = false
	}
	if transcript, ok := payload["transcript"].(string); ok {
		result.Transcript = &transcript
	}
	return result
}

// transportError separates deadline expiry from every other transport failure.
func transportError(ctx context.Context, op string, err error) *Error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindUpstreamTimeout, Err: wrapped}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindUpstreamTimeout, Err: wrapped}
	}
	return &Error{Kind: KindUpstreamBadResponse, Err: wrapped}
}
