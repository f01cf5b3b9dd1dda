package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
	"capturedesk/internal/logging"
	"capturedesk/internal/testsupport"
)

type analyzerStub struct {
	result analysis.Result
	err    error

	calls     int
	got       analysis.Submission
	audioBody string
	requestID string
}

func (a *analyzerStub) Analyze(ctx context.Context, sub analysis.Submission) (analysis.Result, error) {
	a.calls++
	a.got = sub
	a.requestID, _ = logging.RequestIDFromContext(ctx)
	if sub.Audio != nil && sub.Audio.Content != nil {
		data, _ := io.ReadAll(sub.Audio.Content)
		a.audioBody = string(data)
	}
	return a.result, a.err
}

func newTestServer(t *testing.T, analyzer Analyzer, opts ...testsupport.ConfigOption) *Server {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	return New(cfg, analyzer, logging.NewNop(), "test")
}

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, part := range parts {
		// A part with a content type but no filename is sent as filename="".
		if part.filename == "" && part.contentType == "" {
			if err := writer.WriteField(part.name, part.value); err != nil {
				t.Fatalf("write field: %v", err)
			}
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+part.name+`"; filename="`+part.filename+`"`)
		header.Set("Content-Type", part.contentType)
		w, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = io.WriteString(w, part.value)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func postAnalyze(t *testing.T, srv *Server, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, api.AnalyzePath, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleAnalyzeSuccess(t *testing.T) {
	high := analysis.PriorityHigh
	due := "2024-03-01"
	stub := &analyzerStub{result: analysis.Result{
		OK:     true,
		Review: analysis.Review{Title: "T", Summary: "S", DueDate: &due, Priority: &high, Status: "Open"},
	}}
	srv := newTestServer(t, stub)

	body, contentType := multipartBody(t,
		formPart{name: "phone", value: "+15550001111"},
		formPart{name: "notes", value: "Called about renewal"},
		formPart{name: "audio", value: "webm-bytes", filename: "memo.webm", contentType: "audio/webm"},
	)
	w := postAnalyze(t, srv, body, contentType)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := `{"ok":true,"review":{"title":"T","summary":"S","dueDate":"2024-03-01","priority":"high","status":"Open"},"transcript":null}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Fatalf("unexpected body\n got: %s\nwant: %s", got, want)
	}
	if stub.got.Phone != "+15550001111" || stub.got.Notes != "Called about renewal" {
		t.Fatalf("unexpected submission: %+v", stub.got)
	}
	if stub.got.Audio == nil || stub.got.Audio.Filename != "memo.webm" || stub.got.Audio.ContentType != "audio/webm" || stub.audioBody != "webm-bytes" {
		t.Fatalf("unexpected audio: %+v body=%q", stub.got.Audio, stub.audioBody)
	}
	if id := w.Header().Get(api.RequestIDHeader); id == "" || id != stub.requestID {
		t.Fatalf("expected request id %q to reach the analyzer, got %q", id, stub.requestID)
	}
}

func TestHandleAnalyzeIgnoresTextAudioField(t *testing.T) {
	stub := &analyzerStub{result: analysis.Result{OK: true}}
	srv := newTestServer(t, stub)

	body, contentType := multipartBody(t,
		formPart{name: "phone", value: "+1"},
		formPart{name: "audio", value: "not a file"},
	)
	postAnalyze(t, srv, body, contentType)
	if stub.got.Audio != nil {
		t.Fatalf("expected text audio value to be ignored, got %+v", stub.got.Audio)
	}
}

func TestHandleAnalyzeKeepsAudioWithEmptyFilename(t *testing.T) {
	stub := &analyzerStub{result: analysis.Result{OK: true}}
	srv := newTestServer(t, stub)

	body, contentType := multipartBody(t,
		formPart{name: "phone", value: "+15550001111"},
		formPart{name: "audio", value: "ogg-bytes", contentType: "audio/ogg"},
	)
	w := postAnalyze(t, srv, body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if stub.got.Audio == nil {
		t.Fatal("expected audio with an empty filename to be forwarded")
	}
	if stub.got.Audio.Filename != "" || stub.got.Audio.ContentType != "audio/ogg" || stub.audioBody != "ogg-bytes" {
		t.Fatalf("unexpected audio: %+v body=%q", stub.got.Audio, stub.audioBody)
	}
	if got := analysis.AudioFilename(stub.got.Audio); got != "audio.ogg" {
		t.Fatalf("expected synthesized name audio.ogg, got %q", got)
	}
}

func TestHandleAnalyzeForwardsFirstAudioOnly(t *testing.T) {
	stub := &analyzerStub{result: analysis.Result{OK: true}}
	srv := newTestServer(t, stub)

	body, contentType := multipartBody(t,
		formPart{name: "audio", value: "first", filename: "dir/one.webm", contentType: "audio/webm"},
		formPart{name: "audio", value: "second", filename: "two.webm", contentType: "audio/webm"},
		formPart{name: "phone", value: "+1"},
		formPart{name: "phone", value: "+2"},
	)
	postAnalyze(t, srv, body, contentType)
	if stub.got.Phone != "+1" {
		t.Fatalf("expected first phone value, got %q", stub.got.Phone)
	}
	if stub.got.Audio == nil || stub.got.Audio.Filename != "one.webm" || stub.audioBody != "first" {
		t.Fatalf("unexpected audio: %+v body=%q", stub.got.Audio, stub.audioBody)
	}
}

func TestHandleAnalyzeURLEncoded(t *testing.T) {
	stub := &analyzerStub{result: analysis.Result{OK: true}}
	srv := newTestServer(t, stub)

	form := url.Values{"phone": {"+1"}, "notes": {"hi"}, "contactName": {"Alex Johnson"}}
	w := postAnalyze(t, srv, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if stub.got.ContactName != "Alex Johnson" || stub.got.Notes != "hi" {
		t.Fatalf("unexpected submission: %+v", stub.got)
	}
}

func TestHandleAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    &analysis.Error{Kind: analysis.KindValidation, Details: []string{"phone is required"}},
			status: http.StatusBadRequest,
			body:   `{"ok":false,"error":"VALIDATION","details":["phone is required"]}`,
		},
		{
			name:   "bad response",
			err:    &analysis.Error{Kind: analysis.KindUpstreamBadResponse, Err: errors.New("status 500")},
			status: http.StatusBadGateway,
			body:   `{"ok":false,"error":"UPSTREAM_BAD_RESPONSE"}`,
		},
		{
			name:   "timeout",
			err:    &analysis.Error{Kind: analysis.KindUpstreamTimeout},
			status: http.StatusGatewayTimeout,
			body:   `{"ok":false,"error":"UPSTREAM_TIMEOUT"}`,
		},
		{
			name:   "untyped",
			err:    errors.New("boom"),
			status: http.StatusBadGateway,
			body:   `{"ok":false,"error":"UPSTREAM_BAD_RESPONSE"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &analyzerStub{err: tt.err})
			body, contentType := multipartBody(t, formPart{name: "phone", value: "+1"}, formPart{name: "notes", value: "n"})
			w := postAnalyze(t, srv, body, contentType)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.body {
				t.Fatalf("unexpected body\n got: %s\nwant: %s", got, tt.body)
			}
		})
	}
}

func TestHandleAnalyzeRejectsBadRequests(t *testing.T) {
	stub := &analyzerStub{}
	srv := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, api.AnalyzePath, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}

	w = postAnalyze(t, srv, strings.NewReader("phone=+1"), "multipart/form-data")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed multipart, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("analyzer should not run for rejected requests, got %d calls", stub.calls)
	}
}

func TestHandleAnalyzeBodyLimit(t *testing.T) {
	stub := &analyzerStub{}
	srv := newTestServer(t, stub)
	srv.maxUpload = 1024

	body, contentType := multipartBody(t,
		formPart{name: "phone", value: "+1"},
		formPart{name: "audio", value: strings.Repeat("x", 4096), filename: "big.webm", contentType: "audio/webm"},
	)
	w := postAnalyze(t, srv, body, contentType)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Fatal("analyzer should not run for oversized bodies")
	}
}

func TestHealthAndAuth(t *testing.T) {
	srv := newTestServer(t, &analyzerStub{}, testsupport.WithAPIToken("secret"))
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, api.HealthPath, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, api.HealthPath, nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	const incoming = "6f1c3b8e-2f4d-4a7b-9c1e-0a2b3c4d5e6f"
	req = httptest.NewRequest(http.MethodGet, api.HealthPath, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set(api.RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var health api.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !health.OK || health.Version != "test" {
		t.Fatalf("unexpected health: %+v", health)
	}
	if got := w.Header().Get(api.RequestIDHeader); got != incoming {
		t.Fatalf("expected incoming request id echoed, got %q", got)
	}
}

func TestRequestIDReplacesMalformed(t *testing.T) {
	srv := newTestServer(t, &analyzerStub{})
	req := httptest.NewRequest(http.MethodGet, api.HealthPath, nil)
	req.Header.Set(api.RequestIDHeader, "not-a-uuid\nX-Injected: 1")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	got := w.Header().Get(api.RequestIDHeader)
	if got == "" || strings.Contains(got, "not-a-uuid") {
		t.Fatalf("expected a fresh request id, got %q", got)
	}
}

func TestWriteTimeoutExceedsAnalysisDeadline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv := New(cfg, &analyzerStub{}, nil, "test")
	if srv.WriteTimeout() <= cfg.AnalysisTimeout() {
		t.Fatalf("write timeout %s must exceed analysis deadline %s", srv.WriteTimeout(), cfg.AnalysisTimeout())
	}
}

func TestEndToEndWithUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"review":{"title":"","summary":null,"priority":"MEDIUM","dueDate":"2024-05-01"},"transcript":"spoken"}`)
	}))
	defer upstream.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(upstream.URL))
	client := analysis.NewClient(cfg.Analysis.WebhookURL, analysis.WithHTTPClient(upstream.Client()), analysis.WithTimeout(2*time.Second))
	daemon := httptest.NewServer(New(cfg, client, nil, "test").Handler())
	defer daemon.Close()

	resp, err := api.NewClient(daemon.URL, api.WithHTTPClient(daemon.Client())).Analyze(context.Background(), api.Capture{Phone: "+15551234567", Notes: "hello"}, "")
	if err != nil {
		t.Fatalf("Analyze through daemon failed: %v", err)
	}
	if resp.Review.Title != "Follow up with +15551234567" || resp.Review.Summary != "No summary provided." {
		t.Fatalf("unexpected review: %+v", resp.Review)
	}
	if resp.Review.Priority == nil || *resp.Review.Priority != analysis.PriorityMedium {
		t.Fatalf("unexpected priority: %v", resp.Review.Priority)
	}
	if resp.Transcript == nil || *resp.Transcript != "spoken" {
		t.Fatalf("unexpected transcript: %v", resp.Transcript)
	}
}

func TestEndToEndSynthesizesAudioFilename(t *testing.T) {
	filenames := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if files := r.MultipartForm.File["audio"]; len(files) > 0 {
				name = files[0].Filename
			}
		}
		filenames <- name
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"review":{"title":"t","summary":"s"}}`)
	}))
	defer upstream.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(upstream.URL))
	client := analysis.NewClient(cfg.Analysis.WebhookURL, analysis.WithHTTPClient(upstream.Client()), analysis.WithTimeout(2*time.Second))
	srv := New(cfg, client, nil, "test")

	body, contentType := multipartBody(t,
		formPart{name: "phone", value: "+15550001111"},
		formPart{name: "audio", value: "ogg-bytes", contentType: "audio/ogg"},
	)
	w := postAnalyze(t, srv, body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := <-filenames; got != "audio.ogg" {
		t.Fatalf("expected upstream to receive audio.ogg, got %q", got)
	}
}

func TestStartAndStop(t *testing.T) {
	srv := newTestServer(t, &analyzerStub{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + api.HealthPath)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	srv.Stop()
}
