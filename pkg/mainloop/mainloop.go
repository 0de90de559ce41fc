// Package mainloop provides the single execution context that owns the stage
// coordinator state. Engine callbacks and user intents are posted to the loop
// and executed one after another on its goroutine.
package mainloop

import (
	"context"
	"errors"
	"sync"
)

var ErrLoopStopped = errors.New("main loop stopped")

type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	quit  chan struct{}
	done  chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Run executes posted tasks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case <-l.wake:
		}

		for _, task := range l.take() {
			task()
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.queue
	l.queue = nil
	return tasks
}

func (l *Loop) Stop() {
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
}

func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post enqueues fn and never blocks, so tasks running on the loop may post
// further tasks. It drops fn once the loop is stopped.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-finished:
		return nil
	}
}
