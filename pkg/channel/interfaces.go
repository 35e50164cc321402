package channel

import (
	"context"
	"io"
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// State is the lifecycle state of a helper
type State int

const (
	StateRegistering State = iota
	StateIdle
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRegistering:
		return "registering"
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Helper owns the lifecycle of the channel for one service key.
// All methods are safe to call from any goroutine except the link layer's
// handler, which must never block.
type Helper interface {
	// Key returns the service key the helper was created for.
	Key() linklayer.ServiceKey

	// Connect opens a channel to peer and waits for the outcome.
	// Returns nil once open, a *ConnectError on refusal, or ErrTimeout.
	Connect(ctx context.Context, peer linklayer.Address) (linklayer.ConnectionResult, error)

	// Send transmits one packet. At most one packet may be outstanding.
	// Returns ErrNotOpen, ErrSendInFlight, ErrPacketTooLarge or ErrTimeout.
	Send(ctx context.Context, payload []byte) error

	// Close closes the open channel. Returns ErrNotOpen if there is none.
	Close() error

	// Destroy closes the channel, unregisters the service and wakes every
	// blocked caller. Idempotent.
	Destroy()

	// Info returns a snapshot of the helper's state.
	Info() Info
}

// Info is a point-in-time view of a helper
type Info struct {
	Key             linklayer.ServiceKey
	State           State
	Remote          linklayer.Address
	MTU             int
	LastResult      linklayer.ConnectionResult
	LastDisconnect  linklayer.DisconnectReason
	HasDisconnected bool
	SendInFlight    bool
	PacketsSent     uint64
	PacketsReceived uint64
	OpenedAt        time.Time
}

// Registry maps service keys to helpers
type Registry interface {
	io.Closer

	// Enable registers key with the channel manager and waits for the result.
	// Returns ErrAlreadyRegistered if key is already enabled.
	Enable(ctx context.Context, key linklayer.ServiceKey) error

	// Disable destroys the helper for key.
	Disable(ctx context.Context, key linklayer.ServiceKey) error

	// Lookup returns the helper for key or ErrNotRegistered.
	Lookup(key linklayer.ServiceKey) (Helper, error)

	// Keys returns the enabled keys in ascending order.
	Keys() []linklayer.ServiceKey

	// Snapshot returns Info for every helper, ordered by key.
	Snapshot() []Info
}
