package linklayer

import "errors"

var (
	// ErrChannelClosed is returned by queue-end operations on a closed channel
	ErrChannelClosed = errors.New("channel closed")
	// ErrEnqueueRegistered is returned when a second enqueue callback is registered
	ErrEnqueueRegistered = errors.New("enqueue callback already registered")
	// ErrDequeueRegistered is returned when a second dequeue callback is registered
	ErrDequeueRegistered = errors.New("dequeue callback already registered")
)

// Handler is a sequential execution context. Posted functions run one at a
// time in the order they were posted.
type Handler interface {
	Post(fn func())
}

// EnqueueCallback is invoked on the handler when the queue has room.
// It returns the packet to transmit, or nil when it has nothing to send.
// A zero-length packet is a non-nil empty slice.
type EnqueueCallback func() []byte

// DequeueCallback is invoked on the handler when a packet is ready to be
// taken with TryDequeue.
type DequeueCallback func()

// QueueEnd is the duplex data port of an open channel.
type QueueEnd interface {
	// RegisterEnqueue installs the outbound callback. Only one may be registered.
	RegisterEnqueue(h Handler, cb EnqueueCallback) error

	// UnregisterEnqueue removes the outbound callback. Safe to call from
	// inside the callback and when nothing is registered.
	UnregisterEnqueue()

	// RegisterDequeue installs the data-ready callback. Only one may be registered.
	RegisterDequeue(h Handler, cb DequeueCallback) error

	// UnregisterDequeue removes the data-ready callback.
	UnregisterDequeue()

	// TryDequeue takes the next inbound packet, if any.
	TryDequeue() ([]byte, bool)
}

// Channel is an established dynamic channel.
type Channel interface {
	// QueueEnd returns the channel's data port.
	QueueEnd() QueueEnd

	// RemoteAddress returns the peer device address.
	RemoteAddress() Address

	// ServiceKey returns the key the channel was opened for.
	ServiceKey() ServiceKey

	// MTU is the largest payload the peer accepts.
	MTU() int

	// RegisterOnClose installs the one-shot close notification.
	RegisterOnClose(h Handler, cb func(reason DisconnectReason))

	// Close requests the channel be closed. The close notification follows
	// asynchronously. Calling Close on a closed channel is a no-op.
	Close()
}

// Service is the handle of a registered service.
type Service interface {
	ServiceKey() ServiceKey

	// Unregister withdraws the service; onDone runs on h when complete.
	Unregister(h Handler, onDone func())
}

// RegistrationCallback reports the result of RegisterService. The service
// is nil unless the result is RegistrationSuccess.
type RegistrationCallback func(result RegistrationResult, svc Service)

// OpenCallback delivers a newly opened channel. The receiver owns it.
type OpenCallback func(ch Channel)

// ConnectFailCallback reports a failed outbound connection.
type ConnectFailCallback func(result ConnectionResult)

// ChannelManager registers services and opens dynamic channels.
type ChannelManager interface {
	// LocalAddress returns the address of the local device.
	LocalAddress() Address

	// RegisterService asks to accept channels for key. onOpen receives every
	// channel opened for the key, whether peer-initiated or not.
	RegisterService(key ServiceKey, h Handler, onComplete RegistrationCallback, onOpen OpenCallback)

	// ConnectChannel starts an outbound connection. Exactly one of onOpen or
	// onFail runs, unless the peer never answers.
	ConnectChannel(peer Address, key ServiceKey, h Handler, onOpen OpenCallback, onFail ConnectFailCallback)
}
