package linklayer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// ErrAddressInUse is returned when two managers claim the same address
var ErrAddressInUse = errors.New("address already attached to fabric")

// Fabric connects in-process channel managers. It plays the part of the
// radio and the controllers: connection setup runs on its own event loop and
// results are posted to the handlers the managers' callers supplied.
type Fabric struct {
	config Config
	logger *zap.Logger
	loop   *EventLoop

	mu          sync.Mutex
	managers    map[linklayer.Address]*Manager
	unreachable map[linklayer.Address]bool
	timers      map[*time.Timer]struct{}
	closed      bool
}

// NewFabric creates a fabric with the given configuration
func NewFabric(config *Config, logger *zap.Logger) (*Fabric, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid link layer config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	configCopy := *config
	configCopy.SetDefaults()

	logger = logger.Named("linklayer")
	return &Fabric{
		config:      configCopy,
		logger:      logger,
		loop:        NewEventLoop("fabric", logger),
		managers:    make(map[linklayer.Address]*Manager),
		unreachable: make(map[linklayer.Address]bool),
		timers:      make(map[*time.Timer]struct{}),
	}, nil
}

// Config returns the effective configuration
func (f *Fabric) Config() Config {
	return f.config
}

// NewManager attaches a device with the given address
func (f *Fabric) NewManager(addr linklayer.Address) (*Manager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, errors.New("fabric closed")
	}
	if _, exists := f.managers[addr]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAddressInUse, addr)
	}

	m := &Manager{
		fabric:   f,
		addr:     addr,
		services: make(map[linklayer.ServiceKey]*service),
	}
	f.managers[addr] = m
	return m, nil
}

// Partition makes addr unreachable: connection attempts to it are never
// answered, the way a page to an absent device times out upstream.
func (f *Fabric) Partition(addr linklayer.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreachable[addr] = true
}

// Heal undoes Partition
func (f *Fabric) Heal(addr linklayer.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.unreachable, addr)
}

// Close stops connection processing. Channels already open keep working.
func (f *Fabric) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	for t := range f.timers {
		t.Stop()
	}
	f.timers = nil
	f.mu.Unlock()

	f.loop.Close()
	return nil
}

// schedule runs fn on the fabric loop, after the configured latency if any
func (f *Fabric) schedule(fn func()) {
	if f.config.ConnectLatency <= 0 {
		f.loop.Post(fn)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(f.config.ConnectLatency, func() {
		f.mu.Lock()
		if f.timers != nil {
			delete(f.timers, t)
		}
		f.mu.Unlock()
		f.loop.Post(fn)
	})
	f.timers[t] = struct{}{}
}

// connect runs on the fabric loop
func (f *Fabric) connect(from *Manager, peer linklayer.Address, key linklayer.ServiceKey, h linklayer.Handler, onOpen linklayer.OpenCallback, onFail linklayer.ConnectFailCallback) {
	f.mu.Lock()
	unreachable := f.unreachable[peer]
	remote := f.managers[peer]
	f.mu.Unlock()

	log := f.logger.With(zap.Stringer("from", from.addr), zap.Stringer("peer", peer), zap.Stringer("key", key))

	if unreachable {
		log.Debug("connection request dropped, peer unreachable")
		return
	}
	if remote == nil {
		log.Debug("connection refused, no such device")
		h.Post(func() { onFail(linklayer.ResultNoResourcesAvailable) })
		return
	}

	svc := remote.lookup(key)
	if svc == nil {
		log.Debug("connection refused, service not registered on peer")
		h.Post(func() { onFail(linklayer.ResultPSMNotSupported) })
		return
	}

	local, accepted := newChannelPair(key, from.addr, peer, f.config.MTU, f.config.QueueDepth)
	log.Debug("channel opened")
	h.Post(func() { onOpen(local) })
	svc.handler.Post(func() { svc.onOpen(accepted) })
}

// Manager is an in-process linklayer.ChannelManager for one device address
type Manager struct {
	fabric *Fabric
	addr   linklayer.Address

	mu       sync.Mutex
	services map[linklayer.ServiceKey]*service
}

// LocalAddress returns the address of this device
func (m *Manager) LocalAddress() linklayer.Address {
	return m.addr
}

// RegisterService registers key on this device
func (m *Manager) RegisterService(key linklayer.ServiceKey, h linklayer.Handler, onComplete linklayer.RegistrationCallback, onOpen linklayer.OpenCallback) {
	m.fabric.loop.Post(func() {
		result, svc := m.register(key, h, onOpen)
		m.fabric.logger.Debug("service registration complete",
			zap.Stringer("device", m.addr), zap.Stringer("key", key), zap.Stringer("result", result))
		if onComplete == nil {
			return
		}
		h.Post(func() {
			if svc == nil {
				onComplete(result, nil)
				return
			}
			onComplete(result, svc)
		})
	})
}

// ConnectChannel opens a channel to key on peer
func (m *Manager) ConnectChannel(peer linklayer.Address, key linklayer.ServiceKey, h linklayer.Handler, onOpen linklayer.OpenCallback, onFail linklayer.ConnectFailCallback) {
	m.fabric.schedule(func() {
		m.fabric.connect(m, peer, key, h, onOpen, onFail)
	})
}

// RegisteredKeys returns the keys currently registered on this device
func (m *Manager) RegisteredKeys() []linklayer.ServiceKey {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]linklayer.ServiceKey, 0, len(m.services))
	for k := range m.services {
		keys = append(keys, k)
	}
	return keys
}

func (m *Manager) register(key linklayer.ServiceKey, h linklayer.Handler, onOpen linklayer.OpenCallback) (linklayer.RegistrationResult, *service) {
	if key == 0 || h == nil || onOpen == nil {
		return linklayer.RegistrationFailInvalidService, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[key]; exists {
		return linklayer.RegistrationFailDuplicateService, nil
	}
	svc := &service{manager: m, key: key, handler: h, onOpen: onOpen}
	m.services[key] = svc
	return linklayer.RegistrationSuccess, svc
}

func (m *Manager) lookup(key linklayer.ServiceKey) *service {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.services[key]
}

func (m *Manager) remove(svc *service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.services[svc.key] == svc {
		delete(m.services, svc.key)
	}
}

type service struct {
	manager *Manager
	key     linklayer.ServiceKey
	handler linklayer.Handler
	onOpen  linklayer.OpenCallback
}

func (s *service) ServiceKey() linklayer.ServiceKey {
	return s.key
}

func (s *service) Unregister(h linklayer.Handler, onDone func()) {
	s.manager.fabric.loop.Post(func() {
		s.manager.remove(s)
		if onDone != nil && h != nil {
			h.Post(onDone)
		}
	})
}

var (
	_ linklayer.ChannelManager = (*Manager)(nil)
	_ linklayer.Service        = (*service)(nil)
)
