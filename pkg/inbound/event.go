package inbound

import (
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// Event is one packet received on a dynamic channel.
type Event struct {
	// Key is the service key of the channel the packet arrived on
	Key linklayer.ServiceKey

	// Sequence is the per-key position of this packet, starting at 0
	Sequence uint64

	// Payload is the raw packet (immutable after creation)
	Payload []byte

	// Timestamp is when the packet was taken off the channel
	Timestamp time.Time
}

// NewEvent creates a new Event for key. The payload is copied.
func NewEvent(key linklayer.ServiceKey, payload []byte) *Event {
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return &Event{
		Key:       key,
		Payload:   payloadCopy,
		Timestamp: time.Now().UTC(),
	}
}

// WithSequence returns a new Event with the specified sequence.
// This is used by the bridge when queueing events.
func (e *Event) WithSequence(seq uint64) *Event {
	return &Event{
		Key:       e.Key,
		Sequence:  seq,
		Payload:   e.Payload,
		Timestamp: e.Timestamp,
	}
}
