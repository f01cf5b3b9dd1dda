package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"capturedesk/internal/analysis"
)

// clientTimeout stays above the daemon's analysis deadline so the daemon,
// not the CLI, decides when upstream took too long.
const clientTimeout = 60 * time.Second

var audioTypes = map[string]string{
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".flac": "audio/flac",
}

// Client calls the capturedesk daemon over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes a client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient constructs a client for the daemon at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: clientTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Analyze submits a capture, with an optional correction, and returns the
// daemon's normalized review. Failures are *Error.
func (c *Client) Analyze(ctx context.Context, capture Capture, correction string) (AnalyzeResponse, error) {
	sub := analysis.Submission{
		Phone:       capture.Phone,
		ContactName: capture.ContactName,
		Notes:       capture.Notes,
		Correction:  correction,
	}
	if path := strings.TrimSpace(capture.AudioPath); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return AnalyzeResponse{}, fmt.Errorf("open audio: %w", err)
		}
		defer file.Close()
		sub.Audio = &analysis.Audio{
			Filename:    filepath.Base(path),
			ContentType: AudioContentType(path),
			Content:     file,
		}
	}

	body, contentType, err := analysis.EncodeForm(sub)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("encode capture: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, AnalyzePath, body)
	if err != nil {
		return AnalyzeResponse{}, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	var decoded AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return AnalyzeResponse{}, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.OK || decoded.Review == nil {
		return decoded, &Error{StatusCode: resp.StatusCode, Code: decoded.Error, Details: decoded.Details}
	}
	return decoded, nil
}

// Health checks that the daemon is reachable.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, HealthPath, nil)
	if err != nil {
		return HealthResponse{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return HealthResponse{}, fmt.Errorf("health: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return HealthResponse{}, fmt.Errorf("decode health: %w", err)
	}
	return health, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("daemon url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// AudioContentType infers a recording's MIME type from its file extension.
func AudioContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := audioTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
