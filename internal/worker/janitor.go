package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/vidfetch/internal/config"
)

// ErrShutdownTimeout is returned when the janitor doesn't stop within timeout.
var ErrShutdownTimeout = errors.New("janitor shutdown timed out")

const defaultSweepInterval = 10 * time.Minute

// Sweeper removes scratch directories last modified before cutoff.
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Janitor periodically reclaims expired scratch directories.
type Janitor struct {
	sweeper   Sweeper
	retention time.Duration
	interval  time.Duration
	enabled   bool
	now       func() time.Time
	logger    *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewJanitor creates a janitor for the scratch root described by cfg.
// A negative retention disables sweeping; Start then does nothing.
func NewJanitor(cfg config.ScratchConfig, sweeper Sweeper, logger *slog.Logger) *Janitor {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Janitor{
		sweeper:   sweeper,
		retention: cfg.Retention,
		interval:  interval,
		enabled:   cfg.RetentionEnabled(),
		now:       time.Now,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start sweeps once and then launches the periodic sweep loop.
func (j *Janitor) Start() {
	if !j.enabled {
		j.logger.Info("scratch janitor disabled", "retention", j.retention)
		return
	}

	j.logger.Info("starting scratch janitor",
		"retention", j.retention,
		"interval", j.interval,
	)

	j.wg.Add(1)
	go j.run()
}

// Stop cancels the sweep loop and waits for it to exit.
func (j *Janitor) Stop(timeout time.Duration) error {
	j.logger.Info("stopping scratch janitor")
	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("scratch janitor stopped")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// SweepOnce removes directories older than the retention window.
func (j *Janitor) SweepOnce(ctx context.Context) (int, error) {
	if !j.enabled {
		return 0, nil
	}

	cutoff := j.now().Add(-j.retention)
	removed, err := j.sweeper.Sweep(ctx, cutoff)
	if err != nil {
		j.logger.Error("scratch sweep failed", "removed", removed, "error", err)
		return removed, err
	}
	if removed > 0 {
		j.logger.Info("scratch sweep completed",
			"removed", removed,
			"cutoff", humanize.Time(cutoff),
		)
	}
	return removed, nil
}

func (j *Janitor) run() {
	defer j.wg.Done()

	j.SweepOnce(j.ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.SweepOnce(j.ctx)
		}
	}
}
