package www

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/engine"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
)

type SSEEvent struct {
	Event string
	Data  string
}

type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan SSEEvent]struct{}
	broadcast chan SSEEvent
	stopOnce  sync.Once
	stopChan  chan struct{}
	keepalive time.Duration
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[chan SSEEvent]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
		keepalive: 30 * time.Second,
	}
}

func (h *EventHub) Start() {
	go h.run()
}

func (h *EventHub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

func (h *EventHub) run() {
	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.fanOut(evt)
		case <-keepalive.C:
			h.fanOut(SSEEvent{Event: "keepalive", Data: "ping"})
		}
	}
}

// fanOut delivers evt to every client, dropping it for clients whose
// buffer is full.
func (h *EventHub) fanOut(evt SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *EventHub) Broadcast(event, data string) {
	select {
	case h.broadcast <- SSEEvent{Event: event, Data: data}:
	default:
	}
}

// BroadcastJSON marshals v and broadcasts it under event.
func (h *EventHub) BroadcastJSON(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.Warnf("sse: marshal %s: %v", event, err)
		return
	}
	h.Broadcast(event, string(data))
}

func (h *EventHub) AddClient() chan SSEEvent {
	ch := make(chan SSEEvent, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) RemoveClient(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type metricsMessage struct {
	BuiltAt  time.Time        `json:"built_at"`
	KPIs     []metrics.KPI    `json:"kpis"`
	RealTime metrics.RealTime `json:"realtime"`
}

type shiftMessage struct {
	Type       string    `json:"type"`
	ShiftStart time.Time `json:"shift_start,omitempty"`
	ShiftEnd   time.Time `json:"shift_end,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Remote     bool      `json:"remote"`
}

// SetupEngineListeners wires engine events to SSE broadcasts and returns a
// function that detaches them.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) func() {
	ids := []engine.SubscriberID{
		engine.On(eng.Events, func(ev engine.SnapshotRebuiltEvent) {
			h.BroadcastJSON("metrics", metricsMessage{BuiltAt: ev.BuiltAt, KPIs: ev.KPIs, RealTime: ev.RealTime})
		}),
		engine.On(eng.Events, func(ev engine.ShiftPopulatedEvent) {
			h.BroadcastJSON("shift-update", shiftMessage{Type: "populated", ShiftStart: ev.ShiftStart, ShiftEnd: ev.ShiftEnd, Remote: ev.Remote})
		}),
		engine.On(eng.Events, func(ev engine.ShiftClearedEvent) {
			h.BroadcastJSON("shift-update", shiftMessage{Type: "cleared", Reason: ev.Reason, Remote: ev.Remote})
		}),
		engine.On(eng.Events, func(ev engine.ConnectionEvent) {
			state := "disconnected"
			if ev.Connected {
				state = "connected"
			}
			h.BroadcastJSON("system-status", map[string]string{"messaging": state})
		}),
	}
	return func() { eng.Events.Unsubscribe(ids...) }
}

// SSEHandler serves the SSE endpoint.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.AddClient()
	defer h.RemoveClient(ch)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				logrus.Debugf("sse: write error: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
