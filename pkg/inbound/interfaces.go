package inbound

import (
	"context"
	"errors"
	"io"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// ErrBridgeClosed is returned to consumers once the bridge is closed
var ErrBridgeClosed = errors.New("inbound bridge closed")

// Sink accepts received packets. Push must not block.
type Sink interface {
	Push(key linklayer.ServiceKey, payload []byte)

	// ResetSequence restarts the sequence of key at 0 for a new helper.
	ResetSequence(key linklayer.ServiceKey)
}

// Bridge is a bounded ordered queue of inbound events
type Bridge interface {
	Sink
	io.Closer

	// Next blocks until an event is available, ctx is done or the bridge closes.
	Next(ctx context.Context) (*Event, error)

	// RunLoop delivers events to fn until ctx is done, fn fails or the bridge
	// closes. It returns the error that ended the loop. An event fn rejects
	// is kept for the next consumer.
	RunLoop(ctx context.Context, fn func(*Event) error) error

	// GetStatistics returns counters describing the bridge.
	GetStatistics() Statistics
}

// Statistics describes the traffic through a bridge
type Statistics struct {
	Pushed    uint64                          // Events accepted from producers
	Delivered uint64                          // Events accepted by consumers
	Dropped   uint64                          // Events discarded by the overflow policy
	Pending   int                             // Events currently queued
	Capacity  int                             // Queue bound
	KeyCounts map[linklayer.ServiceKey]uint64 // Events accepted per key
}
