package linklayer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// EventLoop is a linklayer.Handler backed by a single goroutine.
// Post never blocks; functions run one at a time in post order.
type EventLoop struct {
	name   string
	logger *zap.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewEventLoop starts a new event loop goroutine.
func NewEventLoop(name string, logger *zap.Logger) *EventLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &EventLoop{
		name:   name,
		logger: logger.With(zap.String("loop", name)),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Post schedules fn. Functions posted after Close are dropped.
func (l *EventLoop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Sync waits until every function posted before the call has run.
func (l *EventLoop) Sync(ctx context.Context) error {
	reached := make(chan struct{})
	l.Post(func() { close(reached) })
	select {
	case <-reached:
		return nil
	case <-l.done:
		return linklayer.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop and drops pending work. It must not be called from
// a function running on the loop.
func (l *EventLoop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	l.mu.Unlock()

	close(l.done)
	l.wg.Wait()
}

func (l *EventLoop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.notify:
		}

		for {
			l.mu.Lock()
			if l.closed || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			l.invoke(fn)
		}
	}
}

func (l *EventLoop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

var _ linklayer.Handler = (*EventLoop)(nil)
