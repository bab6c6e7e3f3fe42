package www

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/engine"
)

type Handlers struct {
	engine   *engine.Engine
	eventHub *EventHub
}

// NewRouter builds the API router and returns it with a stop function that
// detaches the SSE hub from the engine and shuts it down.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	detach := hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		eventHub: hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealth)
		r.Get("/dashboard", h.apiDashboard)
		r.Get("/metrics", h.apiMetrics)
		r.Get("/realtime", h.apiRealTime)

		r.Get("/robots", h.apiListRobots)
		r.Get("/robots/{id}", h.apiRobot)
		r.Get("/robots/{id}/telemetry", h.apiRobotTelemetry)
		r.Get("/pickers", h.apiListPickers)
		r.Get("/pickers/{id}", h.apiPicker)
		r.Get("/pickers/{id}/activity", h.apiPickerActivity)
		r.Get("/carts", h.apiListCarts)
		r.Get("/carts/{id}", h.apiCart)
		r.Get("/carts/{id}/movement", h.apiCartMovement)
		r.Get("/orders", h.apiListOrders)
		r.Get("/orders/{status}", h.apiOrdersByStatus)
		r.Get("/orders/id/{id}", h.apiOrder)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.jsonErrorBody(w, http.StatusNotFound, map[string]string{
			"error": "Endpoint not found",
			"path":  r.URL.Path,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r, func() {
		detach()
		hub.Stop()
	}
}

// accessLog writes one debug line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"req":      middleware.GetReqID(r.Context()),
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start),
		}).Debugf("www: %s %s", r.Method, r.URL.Path)
	})
}
