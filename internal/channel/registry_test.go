package channel

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

func (e *testEnv) registry(cfg *Config) *Registry {
	e.t.Helper()
	r, err := NewRegistry(e.host, e.loop, e.queue, cfg, nil)
	if err != nil {
		e.t.Fatalf("Expected no error creating registry, got: %v", err)
	}
	e.t.Cleanup(func() { r.Close() })
	return r
}

func TestRegistry_EnableLookupDisable(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registry(nil)
	ctx := context.Background()

	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}
	h, err := reg.Lookup(testKey)
	if err != nil {
		t.Fatalf("Expected lookup to succeed, got: %v", err)
	}
	if h.Key() != testKey {
		t.Errorf("Expected key %s, got %s", testKey, h.Key())
	}

	if err := reg.Disable(ctx, testKey); err != nil {
		t.Fatalf("Expected disable to succeed, got: %v", err)
	}
	if _, err := reg.Lookup(testKey); !errors.Is(err, channel.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered after disable, got %v", err)
	}
	if err := reg.Disable(ctx, testKey); !errors.Is(err, channel.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered on second disable, got %v", err)
	}

	// The key can be enabled again once withdrawn
	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected re-enable after disable to succeed, got: %v", err)
	}
}

func TestRegistry_EnableTwiceRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registry(nil)
	ctx := context.Background()

	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}
	first, _ := reg.Lookup(testKey)

	if err := reg.Enable(ctx, testKey); !errors.Is(err, channel.ErrAlreadyRegistered) {
		t.Fatalf("Expected ErrAlreadyRegistered, got %v", err)
	}
	second, _ := reg.Lookup(testKey)
	if first != second {
		t.Error("Expected the original helper to survive a rejected enable")
	}
}

func TestRegistry_EnableRefusedByManager(t *testing.T) {
	env := newTestEnv(t, nil)
	other := env.registry(nil)
	reg := env.registry(nil)
	ctx := context.Background()

	if err := other.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}

	err := reg.Enable(ctx, testKey)
	var re *channel.RegistrationError
	if !errors.As(err, &re) || re.Result != linklayer.RegistrationFailDuplicateService {
		t.Fatalf("Expected duplicate service registration error, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Expected failed helper to be removed, %d remain", reg.Len())
	}
}

func TestRegistry_KeysAndSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(true, 0x0080)
	reg := env.registry(nil)
	ctx := context.Background()

	for _, key := range []linklayer.ServiceKey{0x2001, 0x0080, 0x1001} {
		if err := reg.Enable(ctx, key); err != nil {
			t.Fatalf("Expected enable %s to succeed, got: %v", key, err)
		}
	}

	keys := reg.Keys()
	want := []linklayer.ServiceKey{0x0080, 0x1001, 0x2001}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected keys %v, got %v", want, keys)
			break
		}
	}

	h, _ := reg.Lookup(0x0080)
	if _, err := h.Connect(ctx, peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}

	snap := reg.Snapshot()
	if len(snap) != 3 || snap[0].Key != 0x0080 {
		t.Fatalf("Unexpected snapshot %+v", snap)
	}
	if snap[0].State != channel.StateOpen || snap[1].State != channel.StateIdle {
		t.Errorf("Unexpected states %s, %s", snap[0].State, snap[1].State)
	}
}

// TestRegistry_EndToEnd enables a key, connects, sends, receives the echo and
// sees the peer close the channel.
func TestRegistry_EndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	peer := env.echoPeer(true, testKey)
	reg := env.registry(&Config{OpenWaitTimeout: 100 * time.Millisecond})
	ctx := context.Background()

	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}
	h, _ := reg.Lookup(testKey)
	if result, err := h.Connect(ctx, peerAddr); err != nil || result != linklayer.ResultSuccess {
		t.Fatalf("Expected Success, got %s, %v", result, err)
	}
	if err := h.Send(ctx, []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("Expected send to succeed, got: %v", err)
	}

	ev, err := env.queue.Next(ctx)
	if err != nil {
		t.Fatalf("Expected inbound event, got: %v", err)
	}
	if ev.Key != testKey || ev.Sequence != 0 || !bytes.Equal(ev.Payload, []byte{0xDE, 0xAD}) {
		t.Errorf("Unexpected event %+v", ev)
	}

	peer.CloseChannels()
	waitForState(t, h.(*Helper), channel.StateIdle)
	if err := h.Send(ctx, []byte{0x01}); !errors.Is(err, channel.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen after peer close, got %v", err)
	}
}

func TestRegistry_ReenableRestartsSequence(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(true, testKey)
	reg := env.registry(&Config{OpenWaitTimeout: 100 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for round := 0; round < 2; round++ {
		if err := reg.Enable(ctx, testKey); err != nil {
			t.Fatalf("Round %d: expected enable to succeed, got: %v", round, err)
		}
		h, _ := reg.Lookup(testKey)
		if result, err := h.Connect(ctx, peerAddr); err != nil || result != linklayer.ResultSuccess {
			t.Fatalf("Round %d: expected Success, got %s, %v", round, result, err)
		}
		for i := 0; i < 2; i++ {
			if err := h.Send(ctx, []byte{byte(i)}); err != nil {
				t.Fatalf("Round %d: expected send to succeed, got: %v", round, err)
			}
			ev, err := env.queue.Next(ctx)
			if err != nil {
				t.Fatalf("Round %d: expected inbound event, got: %v", round, err)
			}
			if ev.Sequence != uint64(i) {
				t.Errorf("Round %d: expected sequence %d, got %d", round, i, ev.Sequence)
			}
		}
		if err := reg.Disable(ctx, testKey); err != nil {
			t.Fatalf("Round %d: expected disable to succeed, got: %v", round, err)
		}
	}
}

func TestRegistry_DisableCancelsWaiters(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registry(nil)
	ctx := context.Background()

	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}
	h, _ := reg.Lookup(testKey)

	errs := make(chan error, 1)
	go func() { errs <- h.Send(ctx, []byte{1}) }()
	time.Sleep(50 * time.Millisecond)

	if err := reg.Disable(ctx, testKey); err != nil {
		t.Fatalf("Expected disable to succeed, got: %v", err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, channel.ErrHelperClosed) {
			t.Errorf("Expected ErrHelperClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected blocked send to be cancelled by disable")
	}
}

func TestRegistry_ConcurrentEnable(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registry(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Enable(context.Background(), testKey); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, channel.ErrAlreadyRegistered) {
				t.Errorf("Unexpected enable error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("Expected exactly one enable to succeed, got %d", succeeded)
	}
}

func TestRegistry_Close(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := env.registry(nil)
	ctx := context.Background()

	if err := reg.Enable(ctx, testKey); err != nil {
		t.Fatalf("Expected enable to succeed, got: %v", err)
	}
	h, _ := reg.Lookup(testKey)

	if err := reg.Close(); err != nil {
		t.Fatalf("Expected close to succeed, got: %v", err)
	}
	if _, err := h.Connect(ctx, peerAddr); !errors.Is(err, channel.ErrHelperClosed) {
		t.Errorf("Expected ErrHelperClosed after registry close, got %v", err)
	}
	if err := reg.Enable(ctx, testKey); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("Expected ErrRegistryClosed, got %v", err)
	}
	if len(reg.Keys()) != 0 {
		t.Error("Expected no keys after close")
	}
}
