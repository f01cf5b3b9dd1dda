// Package server hosts the capturedesk HTTP API.
//
// POST /api/analyze reads a multipart (or URL-encoded) capture, hands it to an
// Analyzer, and writes the normalized review or a typed failure:
// 400 VALIDATION with details, 502 UPSTREAM_BAD_RESPONSE, or 504
// UPSTREAM_TIMEOUT. GET /api/health reports liveness and version.
//
// Every request carries a correlation id in X-Request-ID and in its log
// lines. When a token is configured all routes require bearer auth.
package server
