// Package dispatch provides the in-process execution substrate for
// sync jobs: one single-consumer FIFO queue per organisation, a retry
// budget for transient failures, and drain/close lifecycle management.
//
// The queue-per-organisation shape is the mutual exclusion mechanism:
// at most one page job per organisation runs at any instant, and
// continuation jobs re-enter the same queue, so pages execute in strict
// sequence per organisation while organisations proceed in parallel.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
	"github.com/windlass-labs/windlass/internal/core/ports/driving"
	"github.com/windlass-labs/windlass/internal/logger"
)

// ErrDispatcherClosed indicates a job was dispatched after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Ensure Dispatcher implements the port.
var _ driven.Dispatcher = (*Dispatcher)(nil)

// Config holds dispatcher tuning.
type Config struct {
	// MaxAttempts is the total attempt budget per job. Terminal errors
	// stop retrying immediately regardless of remaining budget.
	MaxAttempts int

	// RetryDelay is the base delay between attempts; attempt N waits
	// N times this delay.
	RetryDelay time.Duration

	// QueueDepth is the per-organisation queue buffer size.
	QueueDepth int
}

// DefaultConfig returns the default dispatcher tuning.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		RetryDelay:  time.Second,
		QueueDepth:  64,
	}
}

// Result describes one finished job, after all retries.
type Result struct {
	Job      domain.SyncJob
	Report   *driving.PageReport
	Err      error
	Attempts int
}

// Dispatcher executes sync jobs asynchronously with per-organisation
// serialisation. The worker it drives is expected to be wrapped by the
// failure classifier already.
type Dispatcher struct {
	worker driving.PageWorker
	cfg    Config
	hook   func(Result)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queues  map[string]chan domain.SyncJob
	closed  bool
	wg      sync.WaitGroup // consumer goroutines
	pending sync.WaitGroup // queued and running jobs
}

// New creates an unbound dispatcher. Bind must be called with the
// worker before the first Dispatch; the two-step construction exists
// because the worker itself dispatches continuation jobs. The hook, if
// not nil, is invoked once per finished job (after retries); it runs on
// the consumer goroutine and must be quick.
func New(cfg Config, hook func(Result)) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.QueueDepth < 1 {
		cfg.QueueDepth = DefaultConfig().QueueDepth
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:    cfg,
		hook:   hook,
		ctx:    ctx,
		cancel: cancel,
		queues: make(map[string]chan domain.SyncJob),
	}
}

// Bind sets the worker the dispatcher drives. Must be called exactly
// once, before the first Dispatch.
func (d *Dispatcher) Bind(worker driving.PageWorker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.worker = worker
}

// Dispatch enqueues a job on its organisation's queue, creating the
// queue and its consumer on first use. Returns without waiting for
// execution.
func (d *Dispatcher) Dispatch(ctx context.Context, job domain.SyncJob) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	if d.worker == nil {
		d.mu.Unlock()
		return errors.New("dispatcher has no worker bound")
	}
	q, ok := d.queues[job.OrganisationID]
	if !ok {
		q = make(chan domain.SyncJob, d.cfg.QueueDepth)
		d.queues[job.OrganisationID] = q
		d.wg.Add(1)
		go d.consume(q)
	}
	d.pending.Add(1)
	d.mu.Unlock()

	select {
	case q <- job:
		return nil
	case <-ctx.Done():
		d.pending.Done()
		return ctx.Err()
	case <-d.ctx.Done():
		d.pending.Done()
		return ErrDispatcherClosed
	}
}

// Drain blocks until every queued job, continuations included, has
// finished. Call before Close when a clean flush is needed.
func (d *Dispatcher) Drain() {
	d.pending.Wait()
}

// Close stops all consumers and releases resources. Jobs still queued
// are discarded; Drain first for a graceful flush.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	return nil
}

// consume is the single consumer for one organisation's queue.
func (d *Dispatcher) consume(q chan domain.SyncJob) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			// Discard whatever is still queued so Drain unblocks.
			for {
				select {
				case <-q:
					d.pending.Done()
				default:
					return
				}
			}
		case job := <-q:
			d.run(job)
			d.pending.Done()
		}
	}
}

// run executes one job with the retry budget. The identical payload is
// replayed on every attempt: re-fetching the same page cursor is
// idempotent by contract.
func (d *Dispatcher) run(job domain.SyncJob) {
	var report *driving.PageReport
	var err error
	attempts := 0

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		attempts = attempt
		report, err = d.worker.ProcessPage(d.ctx, job)
		if err == nil || domain.IsTerminal(err) {
			break
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}
		logger.Debug("dispatch: organisation %s attempt %d failed, retrying: %v", job.OrganisationID, attempt, err)
		select {
		case <-time.After(d.cfg.RetryDelay * time.Duration(attempt)):
		case <-d.ctx.Done():
			attempt = d.cfg.MaxAttempts // stop retrying on shutdown
		}
	}

	if err != nil {
		logger.Warn("dispatch: organisation %s page failed after %d attempt(s): %v", job.OrganisationID, attempts, err)
	}
	if d.hook != nil {
		d.hook(Result{Job: job, Report: report, Err: err, Attempts: attempts})
	}
}
