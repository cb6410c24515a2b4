package windowmatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/seqmatch/match"
	"github.com/c360/seqmatch/pattern"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1, // Random port
		NoLog:  true,
		NoSigs: true,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func startProcessor(t *testing.T, m *match.Matcher[string]) (*Processor, *nats.Conn) {
	t.Helper()
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	p, err := NewProcessor(DefaultConfig(), m, nc)
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(2 * time.Second) })

	return p, nc
}

func collectEvents(t *testing.T, nc *nats.Conn, subject string) <-chan MatchEvent {
	t.Helper()
	events := make(chan MatchEvent, 16)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev MatchEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			t.Errorf("decode match event: %v", err)
			return
		}
		events <- ev
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })
	return events
}

func waitEvent(t *testing.T, events <-chan MatchEvent) MatchEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for match event")
		return MatchEvent{}
	}
}

func TestProcessorEmitsMatchEvents(t *testing.T) {
	m, err := match.New[string](16)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("login-burst",
		pattern.Value("fail").Times(3, 3).Capture("attempts"),
	)))

	p, nc := startProcessor(t, m)
	events := collectEvents(t, nc, p.cfg.OutputSubject)

	for _, item := range []string{"ok", "fail", "fail", "fail"} {
		require.NoError(t, nc.Publish(p.cfg.InputSubject, []byte(item)))
	}
	require.NoError(t, nc.Flush())

	ev := waitEvent(t, events)
	assert.Equal(t, "login-burst", ev.Pattern)
	assert.Equal(t, int64(1), ev.Start)
	assert.Equal(t, int64(4), ev.End)
	assert.Equal(t, []string{"fail", "fail", "fail"}, ev.Items)
	assert.Equal(t, []string{"fail", "fail", "fail"}, ev.Captures["attempts"])
	assert.NotEmpty(t, ev.ID)
	assert.NotZero(t, ev.Timestamp)
	assert.False(t, ev.Extracted)
}

func TestProcessorExtractedValue(t *testing.T) {
	m, err := match.New[string](16)
	require.NoError(t, err)
	m.RegisterExtractor(1, func(st *match.MatchState[string]) (match.Action, error) {
		return match.Extract("blocked:" + st.Item), nil
	})
	require.NoError(t, m.AddPattern(pattern.New("sweep",
		pattern.Value("scan").Extractor(1),
	)))

	p, nc := startProcessor(t, m)
	events := collectEvents(t, nc, p.cfg.OutputSubject)

	require.NoError(t, nc.Publish(p.cfg.InputSubject, []byte("scan")))
	require.NoError(t, nc.Flush())

	ev := waitEvent(t, events)
	assert.Equal(t, "sweep", ev.Pattern)
	assert.True(t, ev.Extracted)
	assert.Equal(t, "blocked:scan", ev.Value)
}

func TestProcessorCountsItems(t *testing.T) {
	m, err := match.New[string](8)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("pair",
		pattern.Value("a"), pattern.Value("b"),
	)))

	p, nc := startProcessor(t, m)
	events := collectEvents(t, nc, p.cfg.OutputSubject)

	for _, item := range []string{"a", "b", "c"} {
		require.NoError(t, nc.Publish(p.cfg.InputSubject, []byte(item)))
	}
	require.NoError(t, nc.Flush())
	waitEvent(t, events)

	assert.Eventually(t, func() bool {
		return p.ItemsProcessed() == 3 && p.MatchesEmitted() == 1
	}, 5*time.Second, 10*time.Millisecond)

	status := p.Health()
	assert.True(t, status.IsHealthy())
	require.NotNil(t, status.Metrics)
	assert.Equal(t, int64(3), status.Metrics.ItemsProcessed)
	assert.Equal(t, int64(1), status.Metrics.MatchesAccepted)
}

func TestProcessorStopIsClean(t *testing.T) {
	m, err := match.New[string](8)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("single", pattern.Value("x"))))

	p, _ := startProcessor(t, m)
	require.NoError(t, p.Stop(2*time.Second))
	assert.True(t, p.Health().IsUnhealthy())

	// Stop is idempotent.
	require.NoError(t, p.Stop(2*time.Second))
}
