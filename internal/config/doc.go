// Package config loads, normalizes, and validates capturedesk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAPTUREDESK_WEBHOOK_URL. The daemon and CLI share one Config type; only the
// daemon insists on a webhook URL, via RequireWebhook.
package config
