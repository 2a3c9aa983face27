package annotate

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

// Bridge annotates batches of paragraphs on a worker pool and returns the
// results in input order.
type Bridge struct {
	pool   *Pool
	logger *slog.Logger
	closed bool

	// stale counts results of an aborted batch that are still in flight.
	stale int
}

type options struct {
	workers int
	logger  *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithWorkers sets the number of workers. The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger used by the bridge and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open starts the worker pool. Each worker gets its own engine from factory.
func Open(factory engine.Factory, opts ...Option) (*Bridge, error) {
	o := options{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	pool, err := NewPool(factory, o.workers, o.logger)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("annotation bridge opened", "workers", o.workers)
	return &Bridge{pool: pool, logger: o.logger}, nil
}

// Workers returns the size of the worker pool.
func (b *Bridge) Workers() int {
	return b.pool.Workers()
}

// Stats returns the pool counters.
func (b *Bridge) Stats() PoolStats {
	return b.pool.Stats()
}

// Tokenize annotates inputs and returns one Paragraph per input, in the same order.
func (b *Bridge) Tokenize(inputs []Input) ([]Paragraph, error) {
	return b.TokenizeContext(context.Background(), inputs)
}

// TokenizeContext is Tokenize with cancellation of the blocking result pull.
// If any paragraph fails, it returns a *TokenizationError and no paragraphs.
func (b *Bridge) TokenizeContext(ctx context.Context, inputs []Input) ([]Paragraph, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if err := b.discardStale(ctx); err != nil {
		return nil, err
	}

	n := len(inputs)
	if n == 0 {
		return []Paragraph{}, nil
	}
	start := time.Now()

	pending := make([]Job, n)
	for i, in := range inputs {
		pending[i] = Job{ID: i, Text: in.Text, Offset: in.Offset}
	}

	collected := make([]Result, 0, n)
	inflight := 0
	for len(collected) < n {
		for len(pending) > 0 {
			ok, err := b.pool.TrySubmit(pending[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			pending = pending[1:]
			inflight++
		}

		r, err := b.pool.Receive(ctx)
		if err != nil {
			b.stale += inflight
			return nil, err
		}
		inflight--

		if r.Failed() {
			b.stale += inflight
			return nil, &TokenizationError{JobID: r.ID, Err: r.Err}
		}
		collected = append(collected, r)
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].ID < collected[j].ID
	})

	paragraphs := make([]Paragraph, n)
	for i, r := range collected {
		paragraphs[i] = r.Paragraph
	}

	b.logger.Debug("batch annotated", "paragraphs", n, "duration_ms", time.Since(start).Milliseconds())
	return paragraphs, nil
}

// discardStale drops results left over from an aborted batch.
func (b *Bridge) discardStale(ctx context.Context) error {
	for b.stale > 0 {
		if _, err := b.pool.Receive(ctx); err != nil {
			return err
		}
		b.stale--
	}
	return nil
}

// Close stops all workers and waits for them to exit.
func (b *Bridge) Close() error {
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	return b.pool.Close()
}
