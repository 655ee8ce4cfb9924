package usecase

import (
	"context"
	"sync"
)

// Status is the lifecycle of a Query.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// QueryState is a snapshot of a Query. Value is only set when Status is
// StatusSucceeded and Err only when Status is StatusFailed.
type QueryState[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Query runs a fetch once in the background and exposes its state.
type Query[T any] struct {
	fetch func(context.Context) (T, error)

	once  sync.Once
	done  chan struct{}
	mu    sync.RWMutex
	state QueryState[T]
}

// NewQuery wraps fetch. Nothing runs until Start.
func NewQuery[T any](fetch func(context.Context) (T, error)) *Query[T] {
	return &Query[T]{
		fetch: fetch,
		done:  make(chan struct{}),
	}
}

// Start launches the fetch. Later calls are no-ops.
func (q *Query[T]) Start(ctx context.Context) {
	q.once.Do(func() {
		go func() {
			defer close(q.done)
			value, err := q.fetch(ctx)

			q.mu.Lock()
			defer q.mu.Unlock()
			if err != nil {
				q.state = QueryState[T]{Status: StatusFailed, Err: err}
				return
			}
			q.state = QueryState[T]{Status: StatusSucceeded, Value: value}
		}()
	})
}

// State returns the current snapshot.
func (q *Query[T]) State() QueryState[T] {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// Wait blocks until the fetch settles or ctx is done.
func (q *Query[T]) Wait(ctx context.Context) (QueryState[T], error) {
	select {
	case <-q.done:
		return q.State(), nil
	case <-ctx.Done():
		return q.State(), ctx.Err()
	}
}
