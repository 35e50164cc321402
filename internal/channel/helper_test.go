package channel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rmacdonaldsmith/dynchan-go/internal/inbound"
	sim "github.com/rmacdonaldsmith/dynchan-go/internal/linklayer"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

var (
	hostAddr = linklayer.MustParseAddress("C0:FF:EE:00:00:01")
	peerAddr = linklayer.MustParseAddress("C0:FF:EE:00:00:02")
)

const testKey linklayer.ServiceKey = 0x1001

// testEnv is a host device on an in-process fabric
type testEnv struct {
	t      *testing.T
	fabric *sim.Fabric
	host   *sim.Manager
	loop   *sim.EventLoop
	queue  *inbound.Queue
}

func newTestEnv(t *testing.T, cfg *sim.Config) *testEnv {
	t.Helper()
	f, err := sim.NewFabric(cfg, nil)
	if err != nil {
		t.Fatalf("Expected no error creating fabric, got: %v", err)
	}
	host, err := f.NewManager(hostAddr)
	if err != nil {
		t.Fatalf("Expected no error attaching host, got: %v", err)
	}
	q, err := inbound.NewQueue(nil, nil)
	if err != nil {
		t.Fatalf("Expected no error creating queue, got: %v", err)
	}
	loop := sim.NewEventLoop("host", nil)

	t.Cleanup(func() {
		q.Close()
		loop.Close()
		f.Close()
	})
	return &testEnv{t: t, fabric: f, host: host, loop: loop, queue: q}
}

func (e *testEnv) echoPeer(echo bool, keys ...linklayer.ServiceKey) *sim.EchoPeer {
	e.t.Helper()
	p, err := sim.NewEchoPeer(e.fabric, peerAddr, keys, echo, nil)
	if err != nil {
		e.t.Fatalf("Expected no error creating peer, got: %v", err)
	}
	e.t.Cleanup(p.Close)
	return p
}

// silentPeer accepts channels on key and never reads from them
func (e *testEnv) silentPeer(key linklayer.ServiceKey) (*sim.Manager, *sim.EventLoop, <-chan linklayer.Channel) {
	e.t.Helper()
	m, err := e.fabric.NewManager(peerAddr)
	if err != nil {
		e.t.Fatalf("Expected no error attaching peer, got: %v", err)
	}
	loop := sim.NewEventLoop("peer", nil)
	e.t.Cleanup(loop.Close)

	accepted := make(chan linklayer.Channel, 4)
	done := make(chan linklayer.RegistrationResult, 1)
	m.RegisterService(key, loop,
		func(r linklayer.RegistrationResult, _ linklayer.Service) { done <- r },
		func(ch linklayer.Channel) { accepted <- ch })
	if r := <-done; r != linklayer.RegistrationSuccess {
		e.t.Fatalf("Expected peer registration success, got %s", r)
	}
	return m, loop, accepted
}

func (e *testEnv) helper(key linklayer.ServiceKey, cfg *Config) *Helper {
	e.t.Helper()
	h, err := NewHelper(key, e.host, e.loop, e.queue, cfg, nil)
	if err != nil {
		e.t.Fatalf("Expected no error creating helper, got: %v", err)
	}
	e.t.Cleanup(h.Destroy)
	if err := h.WaitRegistered(context.Background()); err != nil {
		e.t.Fatalf("Expected registration to succeed, got: %v", err)
	}
	return h
}

func (e *testEnv) nextEvent() []byte {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := e.queue.Next(ctx)
	if err != nil {
		e.t.Fatalf("Expected inbound event, got: %v", err)
	}
	return ev.Payload
}

func waitForState(t *testing.T, h *Helper, want channel.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected state %s, got %s", want, h.State())
}

func TestHelper_ConnectSendEcho(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(true, testKey)
	h := env.helper(testKey, nil)

	if h.State() != channel.StateIdle {
		t.Fatalf("Expected idle after registration, got %s", h.State())
	}

	result, err := h.Connect(context.Background(), peerAddr)
	if err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	if result != linklayer.ResultSuccess {
		t.Errorf("Expected Success, got %s", result)
	}

	info := h.Info()
	if info.State != channel.StateOpen || info.Remote != peerAddr || info.MTU != sim.DefaultMTU {
		t.Errorf("Unexpected info after connect: %+v", info)
	}

	if err := h.Send(context.Background(), []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("Expected send to succeed, got: %v", err)
	}
	if got := env.nextEvent(); !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Errorf("Expected echo DEAD, got %x", got)
	}

	// Connecting again while open is a no-op success
	if result, err := h.Connect(context.Background(), peerAddr); err != nil || result != linklayer.ResultSuccess {
		t.Errorf("Expected success on open helper, got %s, %v", result, err)
	}
}

func TestHelper_ConnectRefused(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(false, 0x2001)
	h := env.helper(testKey, nil)

	result, err := h.Connect(context.Background(), peerAddr)
	var ce *channel.ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ConnectError, got %v", err)
	}
	if ce.Result != linklayer.ResultPSMNotSupported || result != linklayer.ResultPSMNotSupported {
		t.Errorf("Expected PSMNotSupported, got %s / %s", ce.Result, result)
	}
	if h.State() != channel.StateIdle {
		t.Errorf("Expected idle after refusal, got %s", h.State())
	}
	if h.Info().LastResult != linklayer.ResultPSMNotSupported {
		t.Errorf("Expected last result recorded, got %s", h.Info().LastResult)
	}
}

// TestHelper_ConnectReturnsOnOpen verifies Connect wakes as soon as the
// channel opens instead of sleeping out its deadline
func TestHelper_ConnectReturnsOnOpen(t *testing.T) {
	env := newTestEnv(t, &sim.Config{ConnectLatency: 50 * time.Millisecond})
	env.echoPeer(false, testKey)
	h := env.helper(testKey, nil)

	start := time.Now()
	result, err := h.Connect(context.Background(), peerAddr)
	elapsed := time.Since(start)
	if err != nil || result != linklayer.ResultSuccess {
		t.Fatalf("Expected Success, got %s, %v", result, err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Expected connect to wait for the link layer latency, returned after %v", elapsed)
	}
	if elapsed >= DefaultConnectTimeout/2 {
		t.Errorf("Expected connect to return well before %v, took %v", DefaultConnectTimeout, elapsed)
	}
	if h.State() != channel.StateOpen {
		t.Errorf("Expected open after connect, got %s", h.State())
	}
}

func TestHelper_ConnectTimeoutThenLateOpen(t *testing.T) {
	env := newTestEnv(t, &sim.Config{ConnectLatency: 300 * time.Millisecond})
	env.echoPeer(false, testKey)
	h := env.helper(testKey, &Config{ConnectTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := h.Connect(context.Background(), peerAddr)
	if !errors.Is(err, channel.ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected connect to wait the full timeout, returned after %v", elapsed)
	}
	if h.State() != channel.StateConnecting {
		t.Errorf("Expected state to stay connecting, got %s", h.State())
	}

	waitForState(t, h, channel.StateOpen)
}

func TestHelper_ConnectUnreachablePeer(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(false, testKey)
	env.fabric.Partition(peerAddr)
	h := env.helper(testKey, &Config{ConnectTimeout: 100 * time.Millisecond})

	if _, err := h.Connect(context.Background(), peerAddr); !errors.Is(err, channel.ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
}

func TestHelper_SendBeforeOpenWaits(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.helper(testKey, nil)

	start := time.Now()
	err := h.Send(context.Background(), []byte{0x01})
	elapsed := time.Since(start)

	if !errors.Is(err, channel.ErrNotOpen) {
		t.Fatalf("Expected ErrNotOpen, got %v", err)
	}
	if elapsed < DefaultOpenWaitTimeout {
		t.Errorf("Expected send to wait at least %v, returned after %v", DefaultOpenWaitTimeout, elapsed)
	}
}

func TestHelper_SendUnblocksWhenChannelOpens(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(true, testKey)
	h := env.helper(testKey, nil)

	errs := make(chan error, 1)
	start := time.Now()
	go func() {
		errs <- h.Send(context.Background(), []byte{0x42})
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("Expected blocked send to succeed, got: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected blocked send to finish")
	}
	if elapsed := time.Since(start); elapsed >= DefaultOpenWaitTimeout {
		t.Errorf("Expected send to return before the open wait expired, took %v", elapsed)
	}
	if got := env.nextEvent(); !bytes.Equal(got, []byte{0x42}) {
		t.Errorf("Expected echo 42, got %x", got)
	}
}

func TestHelper_SendOrdering(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(true, testKey)
	h := env.helper(testKey, nil)

	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}

	packets := [][]byte{[]byte("A"), []byte("B"), []byte("C")}
	for _, p := range packets {
		if err := h.Send(context.Background(), p); err != nil {
			t.Fatalf("Expected send %s to succeed, got: %v", p, err)
		}
	}
	for _, want := range packets {
		if got := env.nextEvent(); !bytes.Equal(got, want) {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}

	if sent := h.Info().PacketsSent; sent != 3 {
		t.Errorf("Expected 3 packets sent, got %d", sent)
	}
}

func TestHelper_SendInFlightAndLateCompletion(t *testing.T) {
	env := newTestEnv(t, &sim.Config{QueueDepth: 1})
	_, _, accepted := env.silentPeer(testKey)
	h := env.helper(testKey, &Config{SendTimeout: 100 * time.Millisecond})

	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	remote := <-accepted

	// The first packet fills the peer's buffer
	if err := h.Send(context.Background(), []byte{1}); err != nil {
		t.Fatalf("Expected first send to succeed, got: %v", err)
	}

	// The second cannot be taken, so its outcome is unknown
	if err := h.Send(context.Background(), []byte{2}); !errors.Is(err, channel.ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if !h.Info().SendInFlight {
		t.Error("Expected slot to stay held after timeout")
	}

	// Still outstanding, so the next one fails fast
	start := time.Now()
	if err := h.Send(context.Background(), []byte{3}); !errors.Is(err, channel.ErrSendInFlight) {
		t.Fatalf("Expected ErrSendInFlight, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Expected busy send to fail fast, took %v", elapsed)
	}

	// Draining the peer lets the late packet through and frees the slot
	if pkt, ok := remote.QueueEnd().TryDequeue(); !ok || pkt[0] != 1 {
		t.Fatalf("Expected packet 1 at the peer, got %v %v", pkt, ok)
	}
	deadline := time.Now().Add(2 * time.Second)
	for h.Info().SendInFlight && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.Info().SendInFlight {
		t.Fatal("Expected late completion to free the slot")
	}
	if pkt, ok := remote.QueueEnd().TryDequeue(); !ok || pkt[0] != 2 {
		t.Errorf("Expected late packet 2 at the peer, got %v %v", pkt, ok)
	}
}

func TestHelper_SendTooLarge(t *testing.T) {
	env := newTestEnv(t, &sim.Config{MTU: 4})
	env.echoPeer(false, testKey)
	h := env.helper(testKey, nil)

	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	if err := h.Send(context.Background(), []byte{1, 2, 3, 4, 5}); !errors.Is(err, channel.ErrPacketTooLarge) {
		t.Fatalf("Expected ErrPacketTooLarge, got %v", err)
	}
	if err := h.Send(context.Background(), []byte{1, 2, 3, 4}); err != nil {
		t.Errorf("Expected MTU-sized send to succeed, got: %v", err)
	}
}

func TestHelper_CloseThenSend(t *testing.T) {
	env := newTestEnv(t, nil)
	peer := env.echoPeer(false, testKey)
	h := env.helper(testKey, &Config{OpenWaitTimeout: 100 * time.Millisecond})

	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Expected close to succeed, got: %v", err)
	}
	if h.State() != channel.StateIdle {
		t.Errorf("Expected idle after close, got %s", h.State())
	}
	if err := h.Close(); !errors.Is(err, channel.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen on second close, got %v", err)
	}
	if err := h.Send(context.Background(), []byte{1}); !errors.Is(err, channel.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen after close, got %v", err)
	}

	// The stale close notification must not disturb a new channel
	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected reconnect to succeed, got: %v", err)
	}
	if err := env.loop.Sync(context.Background()); err != nil {
		t.Fatalf("Expected loop sync, got: %v", err)
	}
	if h.State() != channel.StateOpen {
		t.Errorf("Expected reconnected channel to stay open, got %s", h.State())
	}
	deadline := time.Now().Add(2 * time.Second)
	for peer.OpenChannels() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := peer.OpenChannels(); n != 1 {
		t.Errorf("Expected peer to hold 1 channel, got %d", n)
	}
}

func TestHelper_PeerClosesChannel(t *testing.T) {
	env := newTestEnv(t, nil)
	peer := env.echoPeer(true, testKey)
	h := env.helper(testKey, &Config{OpenWaitTimeout: 100 * time.Millisecond})

	if _, err := h.Connect(context.Background(), peerAddr); err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	if err := h.Send(context.Background(), []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("Expected send to succeed, got: %v", err)
	}
	if got := env.nextEvent(); !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Errorf("Expected echo DEAD, got %x", got)
	}

	peer.CloseChannels()
	waitForState(t, h, channel.StateIdle)

	info := h.Info()
	if !info.HasDisconnected || info.LastDisconnect != linklayer.RemoteUserTerminated {
		t.Errorf("Expected RemoteUserTerminated, got %+v", info)
	}
	if err := h.Send(context.Background(), []byte{1}); !errors.Is(err, channel.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen after peer close, got %v", err)
	}
	if err := h.Close(); !errors.Is(err, channel.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen closing a closed channel, got %v", err)
	}
}

func TestHelper_PeerInitiatedOpen(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.helper(testKey, nil)
	remote, loop, _ := env.silentPeer(0x2001)

	opened := make(chan linklayer.Channel, 2)
	connect := func() {
		remote.ConnectChannel(hostAddr, testKey, loop,
			func(ch linklayer.Channel) { opened <- ch },
			func(r linklayer.ConnectionResult) { t.Errorf("Unexpected connect failure %s", r) })
	}

	connect()
	first := <-opened
	waitForState(t, h, channel.StateOpen)
	if h.Info().Remote != peerAddr {
		t.Errorf("Expected remote %s, got %s", peerAddr, h.Info().Remote)
	}

	// A second channel is refused while one is open
	reasons := make(chan linklayer.DisconnectReason, 1)
	connect()
	second := <-opened
	second.RegisterOnClose(loop, func(r linklayer.DisconnectReason) { reasons <- r })
	select {
	case r := <-reasons:
		if r != linklayer.RemoteUserTerminated {
			t.Errorf("Expected RemoteUserTerminated, got %s", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected second channel to be closed by the helper")
	}

	// The first channel still carries data
	if err := first.QueueEnd().RegisterEnqueue(loop, func() []byte {
		first.QueueEnd().UnregisterEnqueue()
		return []byte{0x77}
	}); err != nil {
		t.Fatalf("Expected enqueue registration, got: %v", err)
	}
	if got := env.nextEvent(); !bytes.Equal(got, []byte{0x77}) {
		t.Errorf("Expected 77, got %x", got)
	}
}

func TestHelper_DestroyWakesWaiters(t *testing.T) {
	env := newTestEnv(t, nil)
	env.echoPeer(false, testKey)
	env.fabric.Partition(peerAddr)
	h := env.helper(testKey, nil)

	sendErr := make(chan error, 1)
	connectErr := make(chan error, 1)
	go func() { sendErr <- h.Send(context.Background(), []byte{1}) }()
	go func() {
		_, err := h.Connect(context.Background(), peerAddr)
		connectErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	h.Destroy()

	for name, ch := range map[string]chan error{"send": sendErr, "connect": connectErr} {
		select {
		case err := <-ch:
			if !errors.Is(err, channel.ErrHelperClosed) {
				t.Errorf("Expected %s to fail with ErrHelperClosed, got %v", name, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("Expected %s to be woken by destroy", name)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected waiters to wake promptly, took %v", elapsed)
	}

	if err := h.Close(); !errors.Is(err, channel.ErrHelperClosed) {
		t.Errorf("Expected ErrHelperClosed after destroy, got %v", err)
	}
	if err := h.WaitUnregistered(context.Background()); err != nil {
		t.Errorf("Expected unregistration to complete, got: %v", err)
	}
	h.Destroy()
}

func TestHelper_SendHonoursContext(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.helper(testKey, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := h.Send(ctx, []byte{1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context deadline, got %v", err)
	}
}

func TestHelper_RegistrationRefused(t *testing.T) {
	env := newTestEnv(t, nil)

	h, err := NewHelper(0, env.host, env.loop, env.queue, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error creating helper, got: %v", err)
	}
	err = h.WaitRegistered(context.Background())

	var re *channel.RegistrationError
	if !errors.As(err, &re) {
		t.Fatalf("Expected RegistrationError, got %v", err)
	}
	if re.Result != linklayer.RegistrationFailInvalidService {
		t.Errorf("Expected InvalidService, got %s", re.Result)
	}
	if h.State() != channel.StateClosed {
		t.Errorf("Expected closed helper, got %s", h.State())
	}
}

func TestNewHelper_RequiresCollaborators(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := NewHelper(testKey, nil, env.loop, env.queue, nil, nil); err == nil {
		t.Error("Expected error without a manager")
	}
	if _, err := NewHelper(testKey, env.host, env.loop, env.queue, &Config{SendTimeout: -1}, nil); err == nil {
		t.Error("Expected error for negative timeout")
	}
}
