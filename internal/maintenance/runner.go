// Package maintenance runs backend housekeeping on a cron schedule.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/store/db"
)

// ErrAlreadyRunning is returned by RunOnce while another run is in progress.
var ErrAlreadyRunning = errors.New("maintenance already running")

type Runner struct {
	cron    string
	backend db.Backend
	next    func(now time.Time) (time.Time, error)

	mu      sync.Mutex
	running bool
	runs    int
}

func NewRunner(cron string, backend db.Backend) *Runner {
	r := &Runner{cron: cron, backend: backend}
	r.next = func(now time.Time) (time.Time, error) {
		return gronx.NextTickAfter(r.cron, now, false)
	}
	return r
}

// Start launches the schedule loop when cfg enables it. The returned cancel
// stops the loop; it is a no-op when maintenance is disabled.
func Start(ctx context.Context, cfg config.MaintenanceConfig, backend db.Backend) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("maintenance_disabled")
		return func() {}, nil
	}
	if !gronx.IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid maintenance cron %q", cfg.Cron)
	}
	ctx2, cancel := context.WithCancel(ctx)
	r := NewRunner(cfg.Cron, backend)
	logger.Info("maintenance_enabled", "cron", cfg.Cron, "backend", backend.Name())
	go r.scheduleLoop(ctx2)
	return cancel, nil
}

// Runs reports how many maintenance passes have completed.
func (r *Runner) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func (r *Runner) scheduleLoop(ctx context.Context) {
	for {
		next, err := r.next(time.Now())
		if err != nil {
			logger.Error("maintenance_nexttick_failed", "cron", r.cron, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-time.After(wait):
			if err := r.RunOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				logger.Error("maintenance_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("maintenance_stopped")
			return
		}
	}
}

// RunOnce performs a single maintenance pass. Backends that do not implement
// db.Maintainer are skipped.
func (r *Runner) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	m, ok := r.backend.(db.Maintainer)
	if !ok {
		logger.Info("maintenance_skipped", "backend", r.backend.Name())
		return nil
	}

	start := time.Now()
	logger.Info("maintenance_run_start", "backend", r.backend.Name())
	if err := m.Maintain(ctx); err != nil {
		return fmt.Errorf("maintain %s: %w", r.backend.Name(), err)
	}
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	logger.Info("maintenance_run_done", "backend", r.backend.Name(), "took", time.Since(start))
	return nil
}
