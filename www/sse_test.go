package www

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/engine"
)

func TestEventHub_BroadcastReachesClients(t *testing.T) {
	hub := NewEventHub()
	hub.Start()
	defer hub.Stop()

	a, b := hub.AddClient(), hub.AddClient()
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast("metrics", `{"x":1}`)
	for _, ch := range []chan SSEEvent{a, b} {
		select {
		case evt := <-ch:
			assert.Equal(t, "metrics", evt.Event)
			assert.Equal(t, `{"x":1}`, evt.Data)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	hub.RemoveClient(a)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestSSE_RefreshStreamsMetrics(t *testing.T) {
	srv, eng := testServer(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Headers are flushed only after the client is registered.
	require.NoError(t, eng.Refresh(ctx))

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var event, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
		if event == "metrics" && data != "" {
			break
		}
		if line == "" {
			event, data = "", ""
		}
	}
	require.Equal(t, "metrics", event)
	assert.Contains(t, data, `"kpis"`)
	assert.Contains(t, data, `"Orders Completed"`)
}

func TestEngineListeners_DetachStopsBroadcasts(t *testing.T) {
	_, eng := testServer(t, false)
	hub := NewEventHub()
	hub.Start()
	defer hub.Stop()
	ch := hub.AddClient()

	detach := hub.SetupEngineListeners(eng)
	eng.Events.Emit(engine.ShiftClearedEvent{Reason: "test"})
	select {
	case evt := <-ch:
		assert.Equal(t, "shift-update", evt.Event)
		assert.Contains(t, evt.Data, `"reason":"test"`)
	case <-time.After(time.Second):
		t.Fatal("shift update not delivered")
	}

	detach()
	eng.Events.Emit(engine.ShiftClearedEvent{Reason: "after"})
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event after detach: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}
