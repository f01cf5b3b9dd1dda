package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"capturedesk/internal/analysis"
	"capturedesk/internal/config"
	"capturedesk/internal/logging"
	"capturedesk/internal/preflight"
	"capturedesk/internal/server"
)

// daemon owns the single-instance lock and the HTTP server.
type daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	server *server.Server

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

func newDaemon(cfg *config.Config, logger *slog.Logger) (*daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if err := cfg.RequireWebhook(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := analysis.NewClient(
		cfg.Analysis.WebhookURL,
		analysis.WithTimeout(cfg.AnalysisTimeout()),
		analysis.WithLogger(logger),
	)
	lockPath := cfg.LockPath()
	return &daemon{
		cfg:      cfg,
		logger:   logger,
		server:   server.New(cfg, client, logger, version),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the lock, runs preflight checks, and begins serving.
func (d *daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another capturedeskd instance is already using %s", d.cfg.Paths.DataDir)
	}

	for _, result := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		d.logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}

	if err := d.server.Start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("capturedeskd started",
		logging.String("lock", d.lockPath),
		logging.String("version", version),
		logging.Duration("analysis_timeout", d.cfg.AnalysisTimeout()),
	)
	return nil
}

// Stop shuts the server down and releases the lock.
func (d *daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("capturedeskd stopped")
}

// Addr reports the address the server is bound to.
func (d *daemon) Addr() string {
	return d.server.Addr()
}
