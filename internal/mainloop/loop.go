// Package mainloop confines driver state to a single logical thread.
//
// Loop runs posted tasks one at a time on the goroutine that calls Run.
// Queue holds tasks until the caller drains them, which keeps tests
// deterministic. Both identify the main thread by goroutine, so a callback
// arriving from a timer or handler goroutine is never mistaken for it.
package mainloop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/feedstream/internal/logging"
)

// Loop serializes tasks onto one goroutine.
// Its task queue is unbounded, so Post never blocks, including from a task.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	wake   chan struct{}
	done   chan struct{}
	owner  atomic.Uint64
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues fn. Tasks posted after Run returned are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Debug("mainloop: dropping task posted after shutdown")
		return
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// IsMainThread reports whether the caller is the goroutine running the loop.
func (l *Loop) IsMainThread() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// Pending returns the number of tasks waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Run executes tasks until ctx is canceled.
// A task that panics brings the loop down with it.
func (l *Loop) Run(ctx context.Context) error {
	l.owner.Store(goroutineID())
	defer l.shutdown()
	l.logger.Debug("mainloop: started")
	for {
		for {
			if err := ctx.Err(); err != nil {
				l.logger.Debug("mainloop: stopped", "cause", err)
				return err
			}
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}
		select {
		case <-ctx.Done():
			l.logger.Debug("mainloop: stopped", "cause", ctx.Err())
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.closed = true
	dropped := len(l.tasks)
	l.tasks = nil
	l.mu.Unlock()
	l.owner.Store(0)
	if dropped > 0 {
		l.logger.Debug("mainloop: dropped pending tasks", "count", dropped)
	}
	close(l.done)
}

// Do runs fn on the loop and waits for it to finish.
// Called from the loop goroutine it runs fn inline.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.IsMainThread() {
		fn()
		return nil
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return context.Canceled
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
