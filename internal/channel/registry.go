package channel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

// ErrRegistryClosed is returned by Enable after Close
var ErrRegistryClosed = errors.New("registry closed")

// Registry implements channel.Registry. The map lock is never held while
// waiting on a helper.
type Registry struct {
	manager linklayer.ChannelManager
	handler linklayer.Handler
	sink    inbound.Sink
	config  Config
	logger  *zap.Logger

	mu      sync.RWMutex
	helpers map[linklayer.ServiceKey]*Helper
	closed  bool
}

// NewRegistry creates an empty registry. Helpers it creates register with
// manager and receive callbacks on handler; inbound packets go to sink.
func NewRegistry(manager linklayer.ChannelManager, handler linklayer.Handler, sink inbound.Sink, config *Config, logger *zap.Logger) (*Registry, error) {
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

	return &Registry{
		manager: manager,
		handler: handler,
		sink:    sink,
		config:  configCopy,
		logger:  logger,
		helpers: make(map[linklayer.ServiceKey]*Helper),
	}, nil
}

// Enable creates a helper for key and waits for its registration.
// An enabled key is rejected with channel.ErrAlreadyRegistered.
func (r *Registry) Enable(ctx context.Context, key linklayer.ServiceKey) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	if _, exists := r.helpers[key]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", channel.ErrAlreadyRegistered, key)
	}
	h, err := NewHelper(key, r.manager, r.handler, r.sink, &r.config, r.logger)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.helpers[key] = h
	r.mu.Unlock()

	if err := h.WaitRegistered(ctx); err != nil {
		r.remove(key, h)
		h.Destroy()
		r.logger.Warn("enable failed", zap.Stringer("key", key), zap.Error(err))
		return err
	}

	r.logger.Info("service enabled", zap.Stringer("key", key))
	return nil
}

// Disable removes the helper for key, closing its channel and withdrawing the
// service registration.
func (r *Registry) Disable(ctx context.Context, key linklayer.ServiceKey) error {
	r.mu.Lock()
	h, exists := r.helpers[key]
	if exists {
		delete(r.helpers, key)
	}
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", channel.ErrNotRegistered, key)
	}

	h.Destroy()
	if err := h.WaitUnregistered(ctx); err != nil {
		r.logger.Warn("service unregistration not confirmed", zap.Stringer("key", key), zap.Error(err))
	}
	r.sink.ResetSequence(key)
	r.logger.Info("service disabled", zap.Stringer("key", key))
	return nil
}

// Lookup returns the helper for key. Helpers still registering are not
// visible.
func (r *Registry) Lookup(key linklayer.ServiceKey) (channel.Helper, error) {
	h, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *Registry) lookup(key linklayer.ServiceKey) (*Helper, error) {
	r.mu.RLock()
	h, exists := r.helpers[key]
	r.mu.RUnlock()

	if !exists || h.State() == channel.StateRegistering {
		return nil, fmt.Errorf("%w: %s", channel.ErrNotRegistered, key)
	}
	return h, nil
}

// Keys returns the enabled keys in ascending order
func (r *Registry) Keys() []linklayer.ServiceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]linklayer.ServiceKey, 0, len(r.helpers))
	for key, h := range r.helpers {
		if h.State() == channel.StateRegistering {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Snapshot returns Info for every enabled helper, ordered by key
func (r *Registry) Snapshot() []channel.Info {
	r.mu.RLock()
	helpers := make([]*Helper, 0, len(r.helpers))
	for _, h := range r.helpers {
		helpers = append(helpers, h)
	}
	r.mu.RUnlock()

	infos := make([]channel.Info, 0, len(helpers))
	for _, h := range helpers {
		info := h.Info()
		if info.State == channel.StateRegistering {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Len returns the number of helpers, including ones still registering
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.helpers)
}

// Close destroys every helper. Later Enable calls fail with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	helpers := r.helpers
	r.helpers = make(map[linklayer.ServiceKey]*Helper)
	r.mu.Unlock()

	for _, h := range helpers {
		h.Destroy()
	}
	r.logger.Info("registry closed", zap.Int("services", len(helpers)))
	return nil
}

func (r *Registry) remove(key linklayer.ServiceKey, h *Helper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.helpers[key] == h {
		delete(r.helpers, key)
	}
}

var _ channel.Registry = (*Registry)(nil)
