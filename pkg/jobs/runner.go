package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DrainFunc claims and processes one batch of pending work. It returns the
// number of entries handled; the worker loops again immediately while work
// remains and falls back to the poll interval once the batch comes back
// empty. Durability and claim atomicity live in the backing store, not here.
type DrainFunc func(ctx context.Context) (int, error)

// RunnerConfig configures worker pool behaviour.
type RunnerConfig struct {
	Workers      int
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Runner drives a pool of workers that drain a durable queue. A nudge
// channel lets producers wake an idle worker without waiting out the poll
// interval.
type Runner struct {
	name  string
	drain DrainFunc

	workers      int
	pollInterval time.Duration
	logger       *zap.Logger

	nudge   chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRunner builds a runner around the provided drain function.
func NewRunner(name string, drain DrainFunc, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Runner{
		name:         name,
		drain:        drain,
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
		nudge:        make(chan struct{}, 1),
	}
}

// Start begins worker consumption. Safe to call once.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i + 1)
	}
	r.started = true
	r.logger.Sugar().Infow("runner started", "runner", r.name, "workers", r.workers)
}

// Stop cancels workers and waits for them to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("runner stopped", "runner", r.name)
}

// Nudge wakes an idle worker. Non-blocking; a pending nudge is enough.
func (r *Runner) Nudge() {
	select {
	case r.nudge <- struct{}{}:
	default:
	}
}

func (r *Runner) worker(workerID int) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		handled, err := r.drain(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			r.logger.Sugar().Warnw("drain failed", "runner", r.name, "worker", workerID, "error", err)
		}
		if handled > 0 {
			// More work may be waiting behind this batch.
			continue
		}

		select {
		case <-r.ctx.Done():
			return
		case <-r.nudge:
		case <-ticker.C:
		}
	}
}
