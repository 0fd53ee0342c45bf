// Package watch keeps a long-running session on the current week: it polls
// the week selector and reports when the current ISO week rolls over.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/sithub-client/internal/weekselector"
)

const defaultInterval = time.Minute

// WeekSource is the part of the week selector the watcher polls
type WeekSource interface {
	WeekOptions() []weekselector.WeekOption
}

// RolloverFunc is called with the previous and the new current week
type RolloverFunc func(ctx context.Context, previous, current string) error

// Watcher detects week rollover in a long-lived session
type Watcher struct {
	source     WeekSource
	interval   time.Duration
	onRollover RolloverFunc
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc

	mu          sync.Mutex
	currentWeek string
	lastCheck   time.Time
	rollovers   int
	running     bool
}

// NewWatcher creates a watcher polling source every interval
func NewWatcher(source WeekSource, interval time.Duration, onRollover RolloverFunc, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		source:      source,
		interval:    interval,
		onRollover:  onRollover,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		currentWeek: currentWeek(source),
	}
}

// Start blocks until ctx is done, Stop is called, or SIGINT/SIGTERM arrives
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Watching for week rollover",
		zap.String("current_week", w.CurrentWeek()),
		zap.Duration("interval", w.interval))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil

		case <-w.ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil

		case sig := <-sigChan:
			w.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			w.Stop()
			return nil

		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				w.logger.Error("Rollover handler failed", zap.Error(err))
			}
		}
	}
}

// Stop stops a running Start
func (w *Watcher) Stop() {
	w.cancel()
}

// Check re-reads the week options once and runs the rollover handler if the
// current week changed. Concurrent checks are skipped.
func (w *Watcher) Check(ctx context.Context) (bool, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Debug("Check already running, skipping")
		return false, nil
	}
	w.running = true
	previous := w.currentWeek
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	current := currentWeek(w.source)

	w.mu.Lock()
	w.lastCheck = time.Now()
	w.mu.Unlock()

	if current == previous {
		return false, nil
	}

	w.logger.Info("Week rolled over",
		zap.String("previous_week", previous),
		zap.String("current_week", current))

	if w.onRollover != nil {
		if err := w.onRollover(ctx, previous, current); err != nil {
			return true, fmt.Errorf("failed to handle rollover to %s: %w", current, err)
		}
	}

	w.mu.Lock()
	w.currentWeek = current
	w.rollovers++
	w.mu.Unlock()

	return true, nil
}

// CurrentWeek returns the last observed current week
func (w *Watcher) CurrentWeek() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentWeek
}

// GetStatus returns watcher status
func (w *Watcher) GetStatus() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := map[string]interface{}{
		"current_week": w.currentWeek,
		"interval":     w.interval.String(),
		"rollovers":    w.rollovers,
	}
	if !w.lastCheck.IsZero() {
		status["last_check"] = w.lastCheck.Format(time.RFC3339)
	}
	return status
}

func currentWeek(source WeekSource) string {
	options := source.WeekOptions()
	if len(options) == 0 {
		return ""
	}
	return options[0].Value
}
