package grpcapi

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	ichannel "github.com/rmacdonaldsmith/dynchan-go/internal/channel"
	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	iinbound "github.com/rmacdonaldsmith/dynchan-go/internal/inbound"
	sim "github.com/rmacdonaldsmith/dynchan-go/internal/linklayer"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/client"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

const (
	bufSize  = 1 << 20
	peerAddr = "C0:FF:EE:00:00:02"
)

type testServer struct {
	client *client.Client
	peer   *sim.EchoPeer
}

func newTestServer(t *testing.T, linkCfg *sim.Config, chanCfg *ichannel.Config, peerKeys ...linklayer.ServiceKey) *testServer {
	t.Helper()

	fabric, err := sim.NewFabric(linkCfg, nil)
	require.NoError(t, err)
	host, err := fabric.NewManager(linklayer.MustParseAddress("C0:FF:EE:00:00:01"))
	require.NoError(t, err)
	peer, err := sim.NewEchoPeer(fabric, linklayer.MustParseAddress(peerAddr), peerKeys, true, nil)
	require.NoError(t, err)

	loop := sim.NewEventLoop("host", nil)
	queue, err := iinbound.NewQueue(nil, nil)
	require.NoError(t, err)
	reg, err := ichannel.NewRegistry(host, loop, queue, chanCfg, nil)
	require.NoError(t, err)
	svc, err := facade.NewService(facade.Options{Registry: reg, Bridge: queue})
	require.NoError(t, err)

	srv := New(svc, nil)
	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()

	c, err := client.Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		srv.Close()
		reg.Close()
		queue.Close()
		peer.Close()
		loop.Close()
		fabric.Close()
	})
	return &testServer{client: c, peer: peer}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestServer_EndToEnd(t *testing.T) {
	ts := newTestServer(t, nil, nil, 0x1001)
	ctx := testContext(t)

	require.NoError(t, ts.client.SetDynamicChannel(ctx, 0x1001, true))

	result, err := ts.client.OpenDynamicChannel(ctx, 0x1001, peerAddr, "random")
	require.NoError(t, err)
	assert.Equal(t, uint32(linklayer.ResultSuccess), result)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	packets, errs := ts.client.FetchL2capData(streamCtx)

	require.NoError(t, ts.client.SendDynamicChannelPacket(ctx, 0x1001, []byte{0xDE, 0xAD}))

	select {
	case pkt := <-packets:
		require.NotNil(t, pkt)
		assert.Equal(t, uint32(0x1001), pkt.Psm)
		assert.Equal(t, []byte{0xDE, 0xAD}, pkt.Payload)
		assert.Equal(t, uint64(0), pkt.Sequence)
		require.NotNil(t, pkt.GetTimestamp())
		assert.False(t, pkt.GetTimestamp().AsTime().IsZero())
	case err := <-errs:
		t.Fatalf("Expected packet, got stream error: %v", err)
	case <-ctx.Done():
		t.Fatal("Expected packet before deadline")
	}

	services, err := ts.client.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "open", services[0].State)
	assert.Equal(t, peerAddr, services[0].PeerAddress)
	assert.Equal(t, uint64(1), services[0].PacketsReceived)

	// The peer hangs up; further sends report the channel as not open
	ts.peer.CloseChannels()
	require.Eventually(t, func() bool {
		services, err := ts.client.ListServices(ctx)
		return err == nil && len(services) == 1 && services[0].State == "idle"
	}, 2*time.Second, 10*time.Millisecond)

	err = ts.client.SendDynamicChannelPacket(ctx, 0x1001, []byte{0x01})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Channel not open", status.Convert(err).Message())

	require.NoError(t, ts.client.SetDynamicChannel(ctx, 0x1001, false))
}

func TestServer_StatusMapping(t *testing.T) {
	ts := newTestServer(t, nil, &ichannel.Config{OpenWaitTimeout: 50 * time.Millisecond}, 0x2001)
	ctx := testContext(t)
	require.NoError(t, ts.client.SetDynamicChannel(ctx, 0x1001, true))

	err := ts.client.SendDynamicChannelPacket(ctx, 0x3001, []byte{1})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Psm not registered", status.Convert(err).Message())

	err = ts.client.CloseDynamicChannel(ctx, 0x1001)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Channel not open", status.Convert(err).Message())

	err = ts.client.SetDynamicChannel(ctx, 0x1001, true)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	err = ts.client.SetDynamicChannel(ctx, 0, true)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = ts.client.OpenDynamicChannel(ctx, 0x1001, "nonsense", "random")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = ts.client.OpenDynamicChannel(ctx, 0x1001, peerAddr, "bogus")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	// A refused connection is reported in the response, not as an RPC error
	result, err := ts.client.OpenDynamicChannel(ctx, 0x1001, peerAddr, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(linklayer.ResultPSMNotSupported), result)
}

func TestServer_ConnectTimeout(t *testing.T) {
	ts := newTestServer(t, &sim.Config{ConnectLatency: time.Second}, &ichannel.Config{ConnectTimeout: 50 * time.Millisecond}, 0x1001)
	ctx := testContext(t)
	require.NoError(t, ts.client.SetDynamicChannel(ctx, 0x1001, true))

	_, err := ts.client.OpenDynamicChannel(ctx, 0x1001, peerAddr, "random")
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestServiceInfoFrom(t *testing.T) {
	info := ServiceInfoFrom(channel.Info{
		Key:          0x1001,
		State:        channel.StateOpen,
		Remote:       linklayer.MustParseAddress(peerAddr),
		MTU:          23,
		SendInFlight: true,
		OpenedAt:     time.Unix(1700000000, 0),
	})
	assert.Equal(t, uint32(0x1001), info.Psm)
	assert.Equal(t, "open", info.State)
	assert.Equal(t, peerAddr, info.PeerAddress)
	assert.Equal(t, uint32(23), info.Mtu)
	assert.True(t, info.SendInFlight)
	assert.Equal(t, int64(1700000000), info.GetOpenedAt().GetSeconds())

	idle := ServiceInfoFrom(channel.Info{Key: 0x1001, State: channel.StateIdle})
	assert.Empty(t, idle.PeerAddress)
	assert.Nil(t, idle.GetOpenedAt())
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{channel.ErrNotRegistered, codes.FailedPrecondition},
		{channel.ErrNotOpen, codes.FailedPrecondition},
		{channel.ErrTimeout, codes.DeadlineExceeded},
		{channel.ErrAlreadyRegistered, codes.AlreadyExists},
		{channel.ErrSendInFlight, codes.ResourceExhausted},
		{channel.ErrPacketTooLarge, codes.InvalidArgument},
		{&channel.RegistrationError{Key: 1, Result: linklayer.RegistrationFailInvalidService}, codes.Aborted},
		{inbound.ErrBridgeClosed, codes.Unavailable},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(toStatus(tt.err)), "toStatus(%v)", tt.err)
	}
}
