package metric

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/seqmatch/health"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func waitForServer(t *testing.T, url string) *http.Response {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			return resp
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become reachable", url)
	return nil
}

func TestServerStartRequiresRegistry(t *testing.T) {
	srv := NewServer(freePort(t), "/metrics", nil)
	assert.Error(t, srv.Start())
}

func TestServerStopUnblocksStart(t *testing.T) {
	port := freePort(t)
	srv := NewServer(port, "/metrics", NewMetricsRegistry())

	started := make(chan error, 1)
	go func() { started <- srv.Start() }()

	resp := waitForServer(t, fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// A second Start while serving must fail fast, not block.
	assert.Error(t, srv.Start())

	require.NoError(t, srv.Stop())

	select {
	case err := <-started:
		assert.NoError(t, err, "Start should return cleanly after Stop")
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestServerHealthEndpointReflectsMonitor(t *testing.T) {
	port := freePort(t)
	srv := NewServer(port, "/metrics", NewMetricsRegistry())

	monitor := health.NewMonitor()
	srv.SetHealthMonitor(monitor)
	t.Cleanup(func() { _ = srv.Stop() })
	go func() { _ = srv.Start() }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)

	// No components reported yet: plain OK.
	resp := waitForServer(t, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	monitor.UpdateUnhealthy("processor", "nats connection lost")
	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var status health.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	_ = resp.Body.Close()
	assert.Equal(t, "seqmatch", status.Component)
	assert.True(t, status.IsUnhealthy())
	require.Len(t, status.SubStatuses, 1)
	assert.Equal(t, "processor", status.SubStatuses[0].Component)

	monitor.UpdateHealthy("processor", "operating normally")
	resp, err = http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	_ = resp.Body.Close()
	assert.True(t, status.IsHealthy())
}
