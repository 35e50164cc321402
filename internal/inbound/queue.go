package inbound

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// Queue implements inbound.Bridge as a bounded FIFO shared by every helper.
// Each key has its own sequence counter starting from 0. An event is counted
// as delivered only once a consumer's callback accepts it.
// It is safe for concurrent use.
type Queue struct {
	config Config
	logger *zap.Logger

	mu           sync.Mutex
	events       []*inbound.Event
	nextSeqByKey map[linklayer.ServiceKey]uint64 // key -> next sequence
	countByKey   map[linklayer.ServiceKey]uint64
	ready        chan struct{}
	done         chan struct{}
	closed       bool
	pushed       uint64
	delivered    uint64
	dropped      uint64
}

// NewQueue creates a new inbound queue.
func NewQueue(config *Config, logger *zap.Logger) (*Queue, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inbound config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	configCopy := *config
	configCopy.SetDefaults()

	return &Queue{
		config:       configCopy,
		logger:       logger.Named("inbound"),
		events:       make([]*inbound.Event, 0, configCopy.Capacity),
		nextSeqByKey: make(map[linklayer.ServiceKey]uint64),
		countByKey:   make(map[linklayer.ServiceKey]uint64),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Push queues a received packet. It never blocks.
func (q *Queue) Push(key linklayer.ServiceKey, payload []byte) {
	event := inbound.NewEvent(key, payload)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	event = event.WithSequence(q.nextSeqByKey[key])
	q.nextSeqByKey[key]++
	q.countByKey[key]++
	q.pushed++

	if len(q.events) >= q.config.Capacity {
		q.dropped++
		if q.config.Overflow == DropNewest {
			q.logger.Warn("inbound queue full, dropping packet",
				zap.Stringer("key", key), zap.Uint64("sequence", event.Sequence))
			return
		}
		oldest := q.events[0]
		q.events[0] = nil
		q.events = q.events[1:]
		q.logger.Warn("inbound queue full, dropping oldest packet",
			zap.Stringer("key", oldest.Key), zap.Uint64("sequence", oldest.Sequence))
	}

	q.events = append(q.events, event)
	q.notifyLocked()
}

// ResetSequence restarts the sequence of key at 0. Events already queued
// keep their numbers.
func (q *Queue) ResetSequence(key linklayer.ServiceKey) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.nextSeqByKey, key)
}

func (q *Queue) notifyLocked() {
	close(q.ready)
	q.ready = make(chan struct{})
}

// Next blocks until an event is available, ctx is done or the queue closes.
// A done ctx never takes an event.
func (q *Queue) Next(ctx context.Context) (*inbound.Event, error) {
	event, err := q.take(ctx)
	if err != nil {
		return nil, err
	}
	q.mu.Lock()
	q.delivered++
	q.mu.Unlock()
	return event, nil
}

// take pops the head event without counting it as delivered
func (q *Queue) take(ctx context.Context) (*inbound.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, inbound.ErrBridgeClosed
		}
		if len(q.events) > 0 {
			event := q.events[0]
			q.events[0] = nil
			q.events = q.events[1:]
			q.mu.Unlock()
			return event, nil
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-q.done:
			return nil, inbound.ErrBridgeClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// RunLoop delivers events to fn until ctx is done, fn fails or the queue closes.
// An event fn rejects goes back to the head of the queue for the next consumer.
func (q *Queue) RunLoop(ctx context.Context, fn func(*inbound.Event) error) error {
	for {
		event, err := q.take(ctx)
		if err != nil {
			return err
		}
		if err := fn(event); err != nil {
			q.requeue(event)
			return err
		}
		q.mu.Lock()
		q.delivered++
		q.mu.Unlock()
	}
}

// requeue puts an undelivered event back at the head. When producers have
// filled the queue meanwhile, the event is the oldest and the overflow policy
// drops it.
func (q *Queue) requeue(event *inbound.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	if len(q.events) >= q.config.Capacity {
		q.dropped++
		q.logger.Warn("inbound queue full, dropping undelivered packet",
			zap.Stringer("key", event.Key), zap.Uint64("sequence", event.Sequence))
		return
	}
	q.events = append([]*inbound.Event{event}, q.events...)
	q.notifyLocked()
}

// GetStatistics returns counters describing the queue.
func (q *Queue) GetStatistics() inbound.Statistics {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[linklayer.ServiceKey]uint64, len(q.countByKey))
	for key, n := range q.countByKey {
		counts[key] = n
	}
	return inbound.Statistics{
		Pushed:    q.pushed,
		Delivered: q.delivered,
		Dropped:   q.dropped,
		Pending:   len(q.events),
		Capacity:  q.config.Capacity,
		KeyCounts: counts,
	}
}

// Close wakes every consumer with inbound.ErrBridgeClosed and discards
// queued events.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	q.events = nil
	close(q.done)
	return nil
}

var _ inbound.Bridge = (*Queue)(nil)
