package www

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
)

type healthResponse struct {
	Status    string          `json:"status"`
	Databases map[string]bool `json:"databases"`
	Data      map[string]int  `json:"data"`
	Error     string          `json:"error,omitempty"`
}

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Databases: map[string]bool{"sql": true},
		Data:      map[string]int{},
	}
	live := h.engine.Live()
	if err := live.PingContext(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Databases["sql"] = false
		resp.Error = err.Error()
		h.jsonErrorBody(w, http.StatusInternalServerError, resp)
		return
	}
	if enabled, err := live.MirrorStatus(ctx); enabled {
		resp.Databases["redis"] = err == nil
	}
	if mc := h.engine.MsgClient(); mc != nil {
		resp.Databases["messaging"] = mc.IsConnected()
	}

	counts, err := live.Counts(ctx)
	if err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		h.jsonErrorBody(w, http.StatusInternalServerError, resp)
		return
	}
	for _, c := range counts {
		resp.Data[c.Table] = c.Rows
	}
	mirrored, err := live.MirrorCounts(ctx)
	if err != nil {
		resp.Databases["redis"] = false
	}
	for stream, n := range mirrored {
		resp.Data["redis:"+stream] = n
	}
	if h.eventHub != nil {
		resp.Data["sse_clients"] = h.eventHub.ClientCount()
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Builder().Snapshot(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, snap)
}

func (h *Handlers) apiMetrics(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.engine.Builder().KPIs(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, kpis)
}

func (h *Handlers) apiRealTime(w http.ResponseWriter, r *http.Request) {
	rt, err := h.engine.Builder().RealTime(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rt)
}

func (h *Handlers) apiListRobots(w http.ResponseWriter, r *http.Request) {
	robots, err := h.engine.DB().Robots(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orEmpty(robots))
}

func (h *Handlers) apiListPickers(w http.ResponseWriter, r *http.Request) {
	pickers, err := h.engine.DB().Pickers(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orEmpty(pickers))
}

func (h *Handlers) apiListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.engine.DB().Carts(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orEmpty(carts))
}

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.DB().Orders(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	h.jsonOK(w, orEmpty(orders))
}

func (h *Handlers) apiOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.DB().OrdersByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orEmpty(orders))
}

// --- windowed series ---

func (h *Handlers) apiRobotTelemetry(w http.ResponseWriter, r *http.Request) {
	id, rangeName, since, every, ok := h.windowParams(w, r)
	if !ok {
		return
	}
	series, err := h.engine.Live().RobotTelemetrySince(r.Context(), id, since)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	points := metrics.RobotWindow(series, id, rangeName, h.engine.Now())
	h.jsonOK(w, orEmpty(metrics.Downsample(points, every)))
}

func (h *Handlers) apiPickerActivity(w http.ResponseWriter, r *http.Request) {
	id, rangeName, since, every, ok := h.windowParams(w, r)
	if !ok {
		return
	}
	series, err := h.engine.Live().PickerActivitySince(r.Context(), id, since)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	points := metrics.PickerWindow(series, id, rangeName, h.engine.Now())
	h.jsonOK(w, orEmpty(metrics.Downsample(points, every)))
}

func (h *Handlers) apiCartMovement(w http.ResponseWriter, r *http.Request) {
	id, rangeName, since, every, ok := h.windowParams(w, r)
	if !ok {
		return
	}
	series, err := h.engine.Live().CartMovementSince(r.Context(), id, since)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	points := metrics.CartWindow(series, id, rangeName, h.engine.Now())
	h.jsonOK(w, orEmpty(metrics.Downsample(points, every)))
}

// windowParams reads the entity id, timeRange and every parameters shared
// by the series endpoints. It writes a 400 and returns ok=false when every
// is malformed.
func (h *Handlers) windowParams(w http.ResponseWriter, r *http.Request) (id, rangeName string, since time.Time, every time.Duration, ok bool) {
	id = chi.URLParam(r, "id")
	rangeName = r.URL.Query().Get("timeRange")
	since = h.engine.Now().Add(-metrics.ParseRange(rangeName))
	every, err := queryDuration(r, "every")
	if err != nil || every < 0 {
		h.jsonError(w, "invalid every: "+r.URL.Query().Get("every"), http.StatusBadRequest)
		return "", "", time.Time{}, 0, false
	}
	return id, rangeName, since, every, true
}

// orEmpty keeps empty results encoding as [] rather than null.
func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
