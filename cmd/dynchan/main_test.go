package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
node_id: cmd-test
address: "C0:00:00:00:00:0A"
services: ["0x1001"]
grpc:
  listen: "127.0.0.1:0"
log:
  level: debug
  format: json
  outputs: ["%s"]
peers:
  - address: "C0:00:00:00:00:0B"
    services: ["0x1001"]
    echo: true
`

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "dynchan.log")
	path := filepath.Join(dir, "dynchan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testConfigYAML, logPath)), 0o600))
	return path, logPath
}

func execute(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "dynchan v0.1.0\n", out)
}

func TestCheckConfig(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := execute(context.Background(), "--config", path, "--check-config", "--http-listen", "127.0.0.1:0", "--node-id", "override")
	// HTTP enabled without a secret is rejected
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Empty(t, out)

	out, err = execute(context.Background(), "--config", path, "--check-config", "--node-id", "override")
	require.NoError(t, err)
	assert.Contains(t, out, "Node ID: override")
	assert.Contains(t, out, "HTTP: disabled")
	assert.Contains(t, out, "Peers: 1")
	assert.Contains(t, out, "C0:00:00:00:00:0B services=[0x1001] echo=true")
}

func TestBadOverrides(t *testing.T) {
	path, _ := writeConfig(t)

	_, err := execute(context.Background(), "--config", path, "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(context.Background(), "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(context.Background(), "unexpected-arg")
	assert.Error(t, err)
}

func TestRunUntilCancelled(t *testing.T) {
	path, logPath := writeConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "--config", path)
		done <- err
	}()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && bytes.Contains(data, []byte("node running"))
	}, 5*time.Second, 20*time.Millisecond)

	// Editing the file changes the log level without a restart
	edited := bytes.Replace([]byte(fmt.Sprintf(testConfigYAML, logPath)), []byte("level: debug"), []byte("level: error"), 1)
	require.NoError(t, os.WriteFile(path, edited, 0o600))
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && bytes.Contains(data, []byte("log level changed"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Expected the daemon to stop after cancel")
	}

	// "stopped" is logged at info, below the reloaded level
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"msg":"stopped"`)
}
