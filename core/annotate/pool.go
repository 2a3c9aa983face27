package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

// Pool owns a fixed set of workers and the two bounded channels that connect
// them to a single producer.
type Pool struct {
	workers int
	jobs    chan message
	results chan Result
	wg      sync.WaitGroup
	closed  atomic.Bool
	logger  *slog.Logger

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// PoolStats contains pool counters.
type PoolStats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Failed    uint64
}

// NewPool builds one engine per worker and starts the workers.
// Both channels have capacity workers. If any engine cannot be built, the
// engines built so far are closed and no worker is started.
func NewPool(factory engine.Factory, workers int, logger *slog.Logger) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	if factory == nil {
		return nil, fmt.Errorf("annotate: nil engine factory")
	}
	if logger == nil {
		logger = slog.Default()
	}

	engines := make([]engine.Engine, 0, workers)
	for i := 0; i < workers; i++ {
		eng, err := factory()
		if err != nil {
			for _, built := range engines {
				built.Close()
			}
			return nil, fmt.Errorf("annotate: start engine %d of %d: %w", i+1, workers, err)
		}
		engines = append(engines, eng)
	}

	p := &Pool{
		workers: workers,
		jobs:    make(chan message, workers),
		results: make(chan Result, workers),
		logger:  logger,
	}

	p.wg.Add(workers)
	for i, eng := range engines {
		w := &worker{
			id:      i,
			engine:  eng,
			jobs:    p.jobs,
			results: p.results,
			pool:    p,
			logger:  logger,
		}
		go w.run()
	}

	return p, nil
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// TrySubmit offers j to the job channel without blocking.
// It reports false when the channel is full.
func (p *Pool) TrySubmit(j Job) (bool, error) {
	if p.closed.Load() {
		return false, ErrClosed
	}

	select {
	case p.jobs <- message{kind: msgJob, job: j}:
		p.submitted.Add(1)
		return true, nil
	default:
		return false, nil
	}
}

// Receive blocks until a result is available or ctx is done.
func (p *Pool) Receive(ctx context.Context) (Result, error) {
	if p.closed.Load() {
		return Result{}, ErrClosed
	}

	select {
	case r := <-p.results:
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close sends one shutdown message per worker and waits for all of them to
// exit. Results produced meanwhile are discarded. A second call returns ErrClosed.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return ErrClosed
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	// Workers still busy with an aborted batch may be blocked on the result
	// channel, so keep draining while the shutdown messages go out.
	for sent := 0; sent < p.workers; {
		select {
		case p.jobs <- message{kind: msgShutdown}:
			sent++
		case <-p.results:
		}
	}
	for {
		select {
		case <-p.results:
		case <-done:
			p.logger.Debug("annotation pool closed", "workers", p.workers, "completed", p.completed.Load())
			return nil
		}
	}
}

// Stats returns current pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}
