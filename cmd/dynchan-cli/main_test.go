package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/dynchan-go/internal/config"
	"github.com/rmacdonaldsmith/dynchan-go/internal/node"
)

const peerAddr = "C0:FF:EE:00:00:02"

type daemon struct {
	httpURL  string
	grpcAddr string
}

// startDaemon runs a node with both control surfaces and one echo peer
// offering 0x1001
func startDaemon(t *testing.T) daemon {
	t.Helper()

	cfg := config.Default()
	cfg.NodeID = "cli-test"
	cfg.HTTP.Enabled = true
	cfg.HTTP.SecretKey = "cli-test-secret"
	cfg.Peers = []config.PeerConfig{{Address: peerAddr, Services: []string{"0x1001"}, Echo: true}}

	n, err := node.New(cfg, nil)
	require.NoError(t, err)

	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Serve(ctx, grpcLis, httpLis) }()

	t.Cleanup(func() {
		cancel()
		<-done
		n.Close()
	})
	return daemon{httpURL: "http://" + httpLis.Addr().String(), grpcAddr: grpcLis.Addr().String()}
}

func (d daemon) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", d.httpURL, "--grpc", d.grpcAddr, "--timeout", "5s"}, args...))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	closeBackend()
	return out.String(), err
}

func (d daemon) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := d.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_HTTPLifecycle(t *testing.T) {
	d := startDaemon(t)

	out := d.mustRun(t, "health")
	assert.Contains(t, out, "Server is healthy!")
	assert.Contains(t, out, "Node ID: cli-test")

	out = d.mustRun(t, "--client-id", "admin", "services", "enable", "4097")
	assert.Contains(t, out, "Service 0x1001 enabled")

	out = d.mustRun(t, "--client-id", "admin", "connect", "0x1001", peerAddr)
	assert.Contains(t, out, "Channel 0x1001 open to "+peerAddr)

	out = d.mustRun(t, "--client-id", "admin", "services", "list")
	assert.Contains(t, out, "0x1001")
	assert.Contains(t, out, peerAddr)
	assert.Contains(t, out, "1 service(s)")

	out = d.mustRun(t, "--client-id", "admin", "send", "0x1001", "--text", "hi")
	assert.Contains(t, out, "Sent 2 byte(s) on 0x1001")

	out = d.mustRun(t, "--client-id", "admin", "stream", "--count", "1")
	assert.Contains(t, out, "Key: 0x1001")
	assert.Contains(t, out, `Text: "hi"`)
	assert.Contains(t, out, "Received 1 packet(s)")

	d.mustRun(t, "--client-id", "admin", "close", "0x1001")

	_, err := d.run(t, "--client-id", "admin", "send", "0x1001", "--hex", "0102")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Channel not open")

	d.mustRun(t, "--client-id", "admin", "services", "disable", "0x1001")
	out = d.mustRun(t, "--client-id", "admin", "services", "list")
	assert.Contains(t, out, "No services enabled")
}

func TestCLI_GRPCLifecycle(t *testing.T) {
	d := startDaemon(t)
	grpc := []string{"--transport", "grpc"}

	d.mustRun(t, append(grpc, "services", "enable", "0x1001")...)
	d.mustRun(t, append(grpc, "connect", "0x1001", peerAddr, "--address-type", "random")...)
	d.mustRun(t, append(grpc, "send", "0x1001", "--hex", "de:ad:be:ef")...)

	out := d.mustRun(t, append(grpc, "stream", "--count", "1")...)
	assert.Contains(t, out, "Hex: deadbeef")

	out = d.mustRun(t, append(grpc, "services", "list")...)
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "1 service(s)")

	// Refused connects exit non-zero with the link layer's reason
	d.mustRun(t, append(grpc, "services", "enable", "0x2002")...)
	_, err := d.run(t, append(grpc, "connect", "0x2002", peerAddr)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PSMNotSupported")
}

func TestCLI_Errors(t *testing.T) {
	d := startDaemon(t)

	_, err := d.run(t, "services", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")

	_, err = d.run(t, "auth")
	assert.Error(t, err, "Expected auth to require --client-id")

	out := d.mustRun(t, "--client-id", "admin", "auth")
	assert.Contains(t, out, "Authentication successful!")

	_, err = d.run(t, "--transport", "carrier-pigeon", "services", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")

	_, err = d.run(t, "--client-id", "operator", "services", "enable", "0x1001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = d.run(t, "--client-id", "admin", "services", "enable", "0x10000")
	assert.Error(t, err)

	_, err = d.run(t, "--client-id", "admin", "stream", "--count", "-1")
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		text    string
		want    []byte
		wantErr bool
	}{
		{name: "hex", hex: "0a0b", want: []byte{0x0a, 0x0b}},
		{name: "hex with separators", hex: "0a:0b 0c", want: []byte{0x0a, 0x0b, 0x0c}},
		{name: "text", text: "hello", want: []byte("hello")},
		{name: "both", hex: "00", text: "x", wantErr: true},
		{name: "neither", wantErr: true},
		{name: "bad hex", hex: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePayload(tt.hex, tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
