package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// Helper implements channel.Helper for one service key.
//
// Link layer callbacks run on handler and only take mu briefly. Callers
// block on the broadcast channel changed, which is closed and replaced every
// time the state is published, and on done, which closes on Destroy.
type Helper struct {
	key     linklayer.ServiceKey
	manager linklayer.ChannelManager
	handler linklayer.Handler
	sink    inbound.Sink
	config  Config
	logger  *zap.Logger

	mu              sync.Mutex
	state           channel.State
	svc             linklayer.Service
	registered      bool
	regResult       linklayer.RegistrationResult
	cycle           *openCycle
	remote          linklayer.Address
	outcomes        uint64
	lastResult      linklayer.ConnectionResult
	lastDisconnect  linklayer.DisconnectReason
	hasDisconnected bool
	sent            uint64
	received        uint64
	changed         chan struct{}
	done            chan struct{}

	unregistered chan struct{}
	unregOnce    sync.Once
}

// NewHelper creates a helper and starts registering key with manager.
// Use WaitRegistered to learn the outcome.
func NewHelper(key linklayer.ServiceKey, manager linklayer.ChannelManager, handler linklayer.Handler, sink inbound.Sink, config *Config, logger *zap.Logger) (*Helper, error) {
	if manager == nil || handler == nil || sink == nil {
		return nil, errors.New("manager, handler and sink are required")
	}
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid channel config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	configCopy := *config
	configCopy.SetDefaults()

	h := &Helper{
		key:          key,
		manager:      manager,
		handler:      handler,
		sink:         sink,
		config:       configCopy,
		logger:       logger.Named("channel").With(zap.Stringer("key", key)),
		state:        channel.StateRegistering,
		changed:      make(chan struct{}),
		done:         make(chan struct{}),
		unregistered: make(chan struct{}),
	}
	manager.RegisterService(key, handler, h.onRegistered, h.onOpen)
	return h, nil
}

// Key returns the service key
func (h *Helper) Key() linklayer.ServiceKey {
	return h.key
}

// State returns the current lifecycle state
func (h *Helper) State() channel.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// WaitRegistered waits for the registration started by NewHelper.
// A refused registration is reported as *channel.RegistrationError.
func (h *Helper) WaitRegistered(ctx context.Context) error {
	err := h.await(ctx, h.config.RegistrationTimeout, func() bool {
		return h.state != channel.StateRegistering
	})
	if errors.Is(err, channel.ErrHelperClosed) {
		h.mu.Lock()
		registered, result := h.registered, h.regResult
		h.mu.Unlock()
		if registered && result != linklayer.RegistrationSuccess {
			return &channel.RegistrationError{Key: h.key, Result: result}
		}
	}
	if errors.Is(err, channel.ErrTimeout) {
		return fmt.Errorf("registration of %s: %w", h.key, err)
	}
	return err
}

// Connect opens a channel to peer and waits up to the connect timeout.
// A helper that already has an open channel reports success immediately.
// On timeout the state stays Connecting so a late open still lands.
func (h *Helper) Connect(ctx context.Context, peer linklayer.Address) (linklayer.ConnectionResult, error) {
	h.mu.Lock()
	switch h.state {
	case channel.StateClosed:
		h.mu.Unlock()
		return 0, channel.ErrHelperClosed
	case channel.StateRegistering:
		h.mu.Unlock()
		return 0, channel.ErrNotRegistered
	case channel.StateOpen:
		h.mu.Unlock()
		return linklayer.ResultSuccess, nil
	}
	h.state = channel.StateConnecting
	seen := h.outcomes
	h.publishLocked()
	h.mu.Unlock()

	h.logger.Debug("connecting", zap.Stringer("peer", peer))
	h.manager.ConnectChannel(peer, h.key, h.handler, h.onOpen, h.onConnectFail)

	err := h.await(ctx, h.config.ConnectTimeout, func() bool {
		return h.outcomes != seen || h.state == channel.StateOpen
	})
	if err != nil {
		if errors.Is(err, channel.ErrTimeout) {
			h.logger.Warn("connect timed out", zap.Stringer("peer", peer), zap.Duration("timeout", h.config.ConnectTimeout))
		}
		return 0, err
	}

	h.mu.Lock()
	result := h.lastResult
	open := h.state == channel.StateOpen
	h.mu.Unlock()

	if open || result == linklayer.ResultSuccess {
		return linklayer.ResultSuccess, nil
	}
	return result, &channel.ConnectError{Result: result}
}

// Send hands one packet to the link layer and waits for it to be taken.
//
// Without an open channel Send first waits up to the open wait timeout.
// Only one packet may be outstanding per channel; a second Send fails with
// channel.ErrSendInFlight. When the send timeout expires the outcome is
// unknown: the packet stays queued and still counts as in flight until the
// link layer takes it or the channel closes.
func (h *Helper) Send(ctx context.Context, payload []byte) error {
	err := h.await(ctx, h.config.OpenWaitTimeout, func() bool {
		return h.cycle != nil
	})
	if errors.Is(err, channel.ErrTimeout) {
		return channel.ErrNotOpen
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	cycle := h.cycle
	if cycle == nil {
		h.mu.Unlock()
		return channel.ErrNotOpen
	}
	if mtu := cycle.ch.MTU(); len(payload) > mtu {
		h.mu.Unlock()
		return fmt.Errorf("%w: %d bytes, MTU %d", channel.ErrPacketTooLarge, len(payload), mtu)
	}
	if !cycle.slot.tryAcquire() {
		h.mu.Unlock()
		return channel.ErrSendInFlight
	}

	pkt := newPendingPacket(payload)
	queue := cycle.ch.QueueEnd()
	err = queue.RegisterEnqueue(h.handler, func() []byte {
		queue.UnregisterEnqueue()
		cycle.slot.release()
		h.mu.Lock()
		h.sent++
		h.mu.Unlock()
		pkt.complete()
		return pkt.payload
	})
	if err != nil {
		cycle.slot.release()
		h.mu.Unlock()
		if errors.Is(err, linklayer.ErrChannelClosed) {
			return channel.ErrNotOpen
		}
		return fmt.Errorf("register enqueue: %w", err)
	}
	h.mu.Unlock()

	timer := time.NewTimer(h.config.SendTimeout)
	defer timer.Stop()

	select {
	case <-pkt.done:
		return nil
	case <-cycle.lost:
		return channel.ErrNotOpen
	case <-h.done:
		return channel.ErrHelperClosed
	case <-timer.C:
		h.logger.Warn("send timed out, outcome unknown", zap.Int("bytes", len(payload)))
		return channel.ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detaches the open channel and asks the link layer to close it.
// The close notification that follows is ignored.
func (h *Helper) Close() error {
	h.mu.Lock()
	if h.state == channel.StateClosed {
		h.mu.Unlock()
		return channel.ErrHelperClosed
	}
	ch := h.detachLocked()
	h.mu.Unlock()

	if ch == nil {
		return channel.ErrNotOpen
	}
	h.logger.Debug("closing channel", zap.Stringer("remote", ch.RemoteAddress()))
	ch.Close()
	return nil
}

// Destroy closes the channel, unregisters the service and wakes every
// blocked caller with channel.ErrHelperClosed.
func (h *Helper) Destroy() {
	h.mu.Lock()
	if h.state == channel.StateClosed {
		h.mu.Unlock()
		return
	}
	ch := h.detachLocked()
	h.state = channel.StateClosed
	svc := h.svc
	h.svc = nil
	registered := h.registered
	close(h.done)
	h.publishLocked()
	h.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	switch {
	case svc != nil:
		svc.Unregister(h.handler, h.markUnregistered)
	case registered:
		h.markUnregistered()
	}
	h.logger.Debug("helper destroyed")
}

// WaitUnregistered waits until the service registration has been withdrawn
// after Destroy.
func (h *Helper) WaitUnregistered(ctx context.Context) error {
	timer := time.NewTimer(h.config.RegistrationTimeout)
	defer timer.Stop()

	select {
	case <-h.unregistered:
		return nil
	case <-timer.C:
		return fmt.Errorf("unregistration of %s: %w", h.key, channel.ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info returns a snapshot of the helper
func (h *Helper) Info() channel.Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	info := channel.Info{
		Key:             h.key,
		State:           h.state,
		Remote:          h.remote,
		LastResult:      h.lastResult,
		LastDisconnect:  h.lastDisconnect,
		HasDisconnected: h.hasDisconnected,
		PacketsSent:     h.sent,
		PacketsReceived: h.received,
	}
	if h.cycle != nil {
		info.MTU = h.cycle.ch.MTU()
		info.SendInFlight = h.cycle.slot.held()
		info.OpenedAt = h.cycle.openedAt
	}
	return info
}

// await blocks until ready reports true, the timeout expires, ctx is done or
// the helper is destroyed. ready is evaluated with mu held.
func (h *Helper) await(ctx context.Context, timeout time.Duration, ready func() bool) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		h.mu.Lock()
		if h.state == channel.StateClosed {
			h.mu.Unlock()
			return channel.ErrHelperClosed
		}
		if ready() {
			h.mu.Unlock()
			return nil
		}
		changed := h.changed
		h.mu.Unlock()

		select {
		case <-changed:
		case <-h.done:
			return channel.ErrHelperClosed
		case <-timer.C:
			return channel.ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// publishLocked wakes everybody waiting in await
func (h *Helper) publishLocked() {
	close(h.changed)
	h.changed = make(chan struct{})
}

// detachLocked drops the open channel, if any, and returns it.
// A Send blocked on it is woken with channel.ErrNotOpen.
func (h *Helper) detachLocked() linklayer.Channel {
	cycle := h.cycle
	if cycle == nil {
		return nil
	}
	queue := cycle.ch.QueueEnd()
	queue.UnregisterDequeue()
	queue.UnregisterEnqueue()

	h.cycle = nil
	if h.state == channel.StateOpen {
		h.state = channel.StateIdle
	}
	close(cycle.lost)
	h.publishLocked()
	return cycle.ch
}

func (h *Helper) markUnregistered() {
	h.unregOnce.Do(func() { close(h.unregistered) })
}

// onRegistered runs on the handler
func (h *Helper) onRegistered(result linklayer.RegistrationResult, svc linklayer.Service) {
	h.mu.Lock()
	if h.state == channel.StateClosed {
		h.registered = true
		h.regResult = result
		h.mu.Unlock()
		// Destroyed while registering
		if svc != nil {
			svc.Unregister(h.handler, h.markUnregistered)
		} else {
			h.markUnregistered()
		}
		return
	}

	h.registered = true
	h.regResult = result
	if result != linklayer.RegistrationSuccess {
		h.state = channel.StateClosed
		close(h.done)
		h.publishLocked()
		h.mu.Unlock()
		h.markUnregistered()
		h.logger.Warn("registration failed", zap.Stringer("result", result))
		return
	}

	h.svc = svc
	h.state = channel.StateIdle
	h.publishLocked()
	h.mu.Unlock()
	h.logger.Info("service registered")
}

// onOpen runs on the handler for outbound and peer-initiated channels
func (h *Helper) onOpen(ch linklayer.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != channel.StateIdle && h.state != channel.StateConnecting {
		h.logger.Info("rejecting channel", zap.Stringer("state", h.state), zap.Stringer("remote", ch.RemoteAddress()))
		ch.Close()
		return
	}

	cycle := newOpenCycle(ch)
	h.cycle = cycle
	h.state = channel.StateOpen
	h.remote = ch.RemoteAddress()
	h.lastResult = linklayer.ResultSuccess
	h.outcomes++

	if err := ch.QueueEnd().RegisterDequeue(h.handler, func() { h.onIncoming(cycle) }); err != nil {
		h.logger.Warn("failed to register dequeue", zap.Error(err))
	}
	ch.RegisterOnClose(h.handler, func(reason linklayer.DisconnectReason) { h.onClose(cycle, reason) })
	h.publishLocked()

	h.logger.Info("channel open", zap.Stringer("remote", ch.RemoteAddress()), zap.Int("mtu", ch.MTU()))
}

// onConnectFail runs on the handler
func (h *Helper) onConnectFail(result linklayer.ConnectionResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != channel.StateConnecting {
		h.logger.Debug("ignoring connection failure", zap.Stringer("state", h.state), zap.Stringer("result", result))
		return
	}
	h.state = channel.StateIdle
	h.lastResult = result
	h.outcomes++
	h.publishLocked()
	h.logger.Info("connection failed", zap.Stringer("result", result))
}

// onClose runs on the handler. Notifications for a channel already detached
// by Close are stale and ignored.
func (h *Helper) onClose(cycle *openCycle, reason linklayer.DisconnectReason) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cycle != cycle {
		return
	}
	h.lastDisconnect = reason
	h.hasDisconnected = true
	h.detachLocked()
	h.logger.Info("channel closed", zap.Stringer("reason", reason))
}

// onIncoming runs on the handler and moves one packet to the sink
func (h *Helper) onIncoming(cycle *openCycle) {
	pkt, ok := cycle.ch.QueueEnd().TryDequeue()
	if !ok {
		return
	}

	h.mu.Lock()
	if h.cycle != cycle {
		h.mu.Unlock()
		return
	}
	h.received++
	h.mu.Unlock()

	h.sink.Push(h.key, pkt)
}

var _ channel.Helper = (*Helper)(nil)
