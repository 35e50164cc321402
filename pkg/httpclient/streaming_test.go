package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamConfig_SetDefaults(t *testing.T) {
	config := StreamConfig{}
	config.SetDefaults()

	assert.Equal(t, 100, config.BufferSize)
	assert.Equal(t, 2*time.Second, config.ReconnectDelay)
	assert.Equal(t, 0, config.MaxReconnectAttempts)

	config = StreamConfig{BufferSize: 5, ReconnectDelay: time.Second}
	config.SetDefaults()
	assert.Equal(t, 5, config.BufferSize)
	assert.Equal(t, time.Second, config.ReconnectDelay)
}

func TestStream_ReceivesEchoedPackets(t *testing.T) {
	url := newAPIServer(t, 0x1001)
	c := newAuthedClient(t, url, "admin")
	ctx := context.Background()

	_, err := c.EnableService(ctx, "0x1001")
	require.NoError(t, err)
	resp, err := c.Connect(ctx, "0x1001", peerAddr, "")
	require.NoError(t, err)
	require.True(t, resp.Connected)

	stream, err := c.Stream(ctx, StreamConfig{ReconnectDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, c.SendPacket(ctx, "0x1001", []byte("one")))
	require.NoError(t, c.SendPacket(ctx, "0x1001", []byte("two")))

	for _, want := range []string{"one", "two"} {
		select {
		case pkt := <-stream.Packets():
			assert.Equal(t, "0x1001", pkt.Key)
			assert.Equal(t, want, string(pkt.Payload))
			assert.True(t, strings.HasPrefix(pkt.ID, "0x1001-"), "Expected key-prefixed ID, got %s", pkt.ID)
		case err := <-stream.Errors():
			t.Fatalf("Expected packet %q, got error %v", want, err)
		case <-time.After(5 * time.Second):
			t.Fatalf("Expected packet %q before deadline", want)
		}
	}
}

func TestStream_ParsesAndReconnects(t *testing.T) {
	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packets/stream", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		n := connections.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": connected\n\n")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprintf(w, "data: {\"id\":\"0x0080-%d\",\"key\":\"0x0080\",\"sequence\":%d,\"payload\":\"aGk=\"}\n\n", n, n)
		if n == 1 {
			fmt.Fprint(w, "event: error\ndata: \"queue closed\"\n\n")
		}
	}))
	defer server.Close()

	c, err := NewClient(Config{ServerURL: server.URL})
	require.NoError(t, err)
	c.SetToken("token")

	stream, err := c.Stream(context.Background(), StreamConfig{ReconnectDelay: 10 * time.Millisecond, MaxReconnectAttempts: 1})
	require.NoError(t, err)

	var got []PacketMessage
	var errs []error
	for pkt := range stream.Packets() {
		got = append(got, pkt)
	}
	<-stream.Done()
	for err := range stream.Errors() {
		errs = append(errs, err)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "0x0080-1", got[0].ID)
	assert.Equal(t, uint64(2), got[1].Sequence)
	assert.Equal(t, []byte("hi"), got[1].Payload)
	assert.Equal(t, int32(2), connections.Load())

	var sawParse, sawClosed, sawMax bool
	for _, err := range errs {
		msg := err.Error()
		sawParse = sawParse || strings.Contains(msg, "failed to parse packet")
		sawClosed = sawClosed || strings.Contains(msg, "queue closed")
		sawMax = sawMax || strings.Contains(msg, "max reconnect attempts")
	}
	assert.True(t, sawParse, "Expected a parse error, got %v", errs)
	assert.True(t, sawClosed, "Expected the server error event, got %v", errs)
	assert.True(t, sawMax, "Expected max reconnect error, got %v", errs)
}

func TestStream_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	c, err := NewClient(Config{ServerURL: server.URL})
	require.NoError(t, err)
	c.SetToken("expired")

	stream, err := c.Stream(context.Background(), StreamConfig{ReconnectDelay: time.Millisecond, MaxReconnectAttempts: 1})
	require.NoError(t, err)

	select {
	case err := <-stream.Errors():
		assert.Contains(t, err.Error(), "status 401")
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a status error")
	}
	require.NoError(t, stream.Close())
}
