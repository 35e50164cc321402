package linklayer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// EchoPeer is a simulated remote device that accepts channels on a set of
// keys and, when echo is enabled, sends every received packet back.
type EchoPeer struct {
	manager *Manager
	loop    *EventLoop
	logger  *zap.Logger
	echo    bool

	mu       sync.Mutex
	channels map[*echoChannel]struct{}
	services []linklayer.Service
	received int
	closed   bool
}

type echoChannel struct {
	peer    *EchoPeer
	ch      linklayer.Channel
	pending [][]byte
	sending bool
}

// NewEchoPeer attaches a peer with the given address to the fabric and
// registers keys on it.
func NewEchoPeer(fabric *Fabric, addr linklayer.Address, keys []linklayer.ServiceKey, echo bool, logger *zap.Logger) (*EchoPeer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := fabric.NewManager(addr)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("peer").With(zap.Stringer("address", addr))
	p := &EchoPeer{
		manager:  m,
		loop:     NewEventLoop("peer-"+addr.String(), logger),
		logger:   logger,
		echo:     echo,
		channels: make(map[*echoChannel]struct{}),
	}

	results := make(chan error, len(keys))
	for _, key := range keys {
		key := key
		m.RegisterService(key, p.loop, func(result linklayer.RegistrationResult, svc linklayer.Service) {
			if result != linklayer.RegistrationSuccess {
				results <- fmt.Errorf("register %s on peer %s: %s", key, addr, result)
				return
			}
			p.mu.Lock()
			p.services = append(p.services, svc)
			p.mu.Unlock()
			results <- nil
		}, p.onOpen)
	}
	for range keys {
		if err := <-results; err != nil {
			p.Close()
			return nil, err
		}
	}

	logger.Info("peer ready", zap.Int("services", len(keys)), zap.Bool("echo", echo))
	return p, nil
}

// Address returns the peer's device address
func (p *EchoPeer) Address() linklayer.Address {
	return p.manager.LocalAddress()
}

// Received returns the number of packets the peer has taken off its channels
func (p *EchoPeer) Received() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received
}

// OpenChannels returns the number of channels currently accepted
func (p *EchoPeer) OpenChannels() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

// CloseChannels closes every accepted channel from the peer's side
func (p *EchoPeer) CloseChannels() {
	p.mu.Lock()
	chans := make([]linklayer.Channel, 0, len(p.channels))
	for ec := range p.channels {
		chans = append(chans, ec.ch)
	}
	p.mu.Unlock()

	for _, ch := range chans {
		ch.Close()
	}
}

// Close unregisters the peer's services, closes its channels and stops its loop
func (p *EchoPeer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	services := p.services
	p.services = nil
	p.mu.Unlock()

	p.CloseChannels()

	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		svc.Unregister(p.loop, wg.Done)
	}
	wg.Wait()
	p.loop.Close()
}

func (p *EchoPeer) onOpen(ch linklayer.Channel) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		ch.Close()
		return
	}
	ec := &echoChannel{peer: p, ch: ch}
	p.channels[ec] = struct{}{}
	p.mu.Unlock()

	p.logger.Debug("channel accepted", zap.Stringer("key", ch.ServiceKey()), zap.Stringer("remote", ch.RemoteAddress()))

	ch.RegisterOnClose(p.loop, func(reason linklayer.DisconnectReason) {
		p.mu.Lock()
		delete(p.channels, ec)
		p.mu.Unlock()
		p.logger.Debug("channel closed", zap.Stringer("key", ch.ServiceKey()), zap.Stringer("reason", reason))
	})
	if err := ch.QueueEnd().RegisterDequeue(p.loop, ec.onIncoming); err != nil {
		p.logger.Warn("failed to register dequeue", zap.Error(err))
	}
}

// onIncoming runs on the peer loop
func (ec *echoChannel) onIncoming() {
	pkt, ok := ec.ch.QueueEnd().TryDequeue()
	if !ok {
		return
	}

	p := ec.peer
	p.mu.Lock()
	p.received++
	p.mu.Unlock()

	if !p.echo {
		return
	}
	ec.pending = append(ec.pending, pkt)
	if ec.sending {
		return
	}
	if err := ec.ch.QueueEnd().RegisterEnqueue(p.loop, ec.onReady); err != nil {
		p.logger.Debug("echo dropped", zap.Error(err))
		ec.pending = nil
		return
	}
	ec.sending = true
}

// onReady runs on the peer loop
func (ec *echoChannel) onReady() []byte {
	if len(ec.pending) == 0 {
		ec.ch.QueueEnd().UnregisterEnqueue()
		ec.sending = false
		return nil
	}
	pkt := ec.pending[0]
	ec.pending[0] = nil
	ec.pending = ec.pending[1:]
	if len(ec.pending) == 0 {
		ec.ch.QueueEnd().UnregisterEnqueue()
		ec.sending = false
	}
	return pkt
}
