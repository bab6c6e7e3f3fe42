package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/config"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/livestate"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/messaging"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/protocol"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/snapshot"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/store"
)

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	Live       *livestate.Manager
	MsgClient  *messaging.Client // nil when messaging is disabled
	Clock      func() time.Time
	LogFunc    LogFunc
}

type Engine struct {
	cfg          *config.Config
	configPath   string
	live         *livestate.Manager
	msgClient    *messaging.Client
	publisher    *messaging.Publisher
	builder      *snapshot.Builder
	clock        func() time.Time
	Events       *EventBus
	logFn        LogFunc
	stopOnce     sync.Once
	stopChan     chan struct{}
	msgConnected bool
}

// New builds an engine over c.Live. Nothing runs until Start.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = logrus.Infof
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		live:       c.Live,
		msgClient:  c.MsgClient,
		clock:      clock,
		Events:     NewEventBus(clock),
		logFn:      logFn,
		stopChan:   make(chan struct{}),
	}
	e.builder = snapshot.NewBuilder(c.Live, snapshot.Options{
		TTL:      c.AppConfig.Cache.TTL,
		Lookback: c.AppConfig.Cache.Lookback,
		Clock:    clock,
		Window:   e.window,
	})
	if c.MsgClient != nil {
		topics := messaging.TopicsFor(c.AppConfig.Messaging.TopicPrefix)
		e.publisher = messaging.NewPublisher(c.MsgClient, topics, c.AppConfig.Messaging.ClientID)
	}
	return e
}

// Start wires event handlers, subscribes to the telemetry feed and starts
// the background refresh loop.
func (e *Engine) Start() error {
	e.wireEventHandlers()

	if e.msgClient != nil {
		if err := e.startConsumer(); err != nil {
			return fmt.Errorf("start feed consumer: %w", err)
		}
	}
	e.checkConnectionStatus()

	go e.loop()

	e.logFn("engine: started")
	return nil
}

// Stop ends the background loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB                   { return e.live.DB }
func (e *Engine) Live() *livestate.Manager        { return e.live }
func (e *Engine) AppConfig() *config.Config       { return e.cfg }
func (e *Engine) ConfigPath() string              { return e.configPath }
func (e *Engine) Builder() *snapshot.Builder      { return e.builder }
func (e *Engine) MsgClient() *messaging.Client    { return e.msgClient }
func (e *Engine) Publisher() *messaging.Publisher { return e.publisher }
func (e *Engine) Now() time.Time                  { return e.clock() }

// window resolves the configured shift for the snapshot header. A broken
// shift section falls back to the last shift-length span ending now.
func (e *Engine) window(now time.Time) (time.Time, time.Time) {
	start, end, err := e.cfg.Shift.Window(now)
	if err != nil {
		e.logFn("engine: shift window: %v", err)
		return now.Add(-e.cfg.Shift.Duration), now
	}
	return start, end
}

// Generate builds the configured shift with the given seed without
// persisting it.
func (e *Engine) Generate(seed int64) (*shift.Data, error) {
	gc, err := e.cfg.Shift.GeneratorConfig(e.clock())
	if err != nil {
		return nil, err
	}
	g, err := shift.NewGenerator(gc, seed)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// Populate generates the configured shift, persists it and rebuilds the
// live mirror. With publish set the shift is also sent over the feed.
func (e *Engine) Populate(ctx context.Context, seed int64, publish bool) (*shift.Data, error) {
	d, err := e.Generate(seed)
	if err != nil {
		return nil, fmt.Errorf("generate shift: %w", err)
	}
	if err := e.live.InsertShift(ctx, d); err != nil {
		return nil, fmt.Errorf("populate: %w", err)
	}
	if err := e.live.SyncRedisFromSQL(ctx); err != nil {
		e.logFn("engine: redis sync after populate: %v", err)
	}
	if publish {
		if e.publisher == nil {
			return d, fmt.Errorf("publish requested but messaging is disabled")
		}
		if _, err := e.publisher.PublishShift(d, seed); err != nil {
			return d, err
		}
	}

	e.Events.Emit(ShiftPopulatedEvent{
		ShiftStart: d.ShiftStart,
		ShiftEnd:   d.ShiftEnd,
		Seed:       seed,
		Samples:    len(d.RobotTelemetry) + len(d.PickerActivity) + len(d.OrderEvents) + len(d.CartMovement),
	})
	return d, nil
}

// Cleanup empties every table and the live mirror.
func (e *Engine) Cleanup(ctx context.Context, reason string) error {
	if err := e.live.Cleanup(ctx); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if err := e.live.Flush(ctx); err != nil {
		e.logFn("engine: flush redis: %v", err)
	}
	if e.publisher != nil {
		if err := e.publisher.PublishCleared(reason); err != nil {
			e.logFn("engine: publish cleared: %v", err)
		}
	}
	e.Events.Emit(ShiftClearedEvent{Reason: reason})
	return nil
}

// Refresh rebuilds the cached snapshot now and announces the result.
func (e *Engine) Refresh(ctx context.Context) error {
	snap, kpis, err := e.builder.Refresh(ctx)
	if err != nil {
		e.Events.Emit(SnapshotFailedEvent{Error: err.Error()})
		return err
	}
	rt, err := e.builder.RealTime(ctx)
	if err != nil {
		return err
	}
	e.Events.Emit(SnapshotRebuiltEvent{
		BuiltAt:  snap.CurrentTime,
		KPIs:     kpis,
		RealTime: rt,
	})
	return nil
}

func (e *Engine) startConsumer() error {
	h := messaging.NewFeedHandler(e.live)
	h.OnIngest = func(stream string, n int) {
		e.Events.Emit(TelemetryIngestedEvent{Stream: stream, Samples: n})
	}
	h.OnShift = func(p *protocol.ShiftPopulated) {
		e.Events.Emit(ShiftPopulatedEvent{
			ShiftStart: p.ShiftStart,
			ShiftEnd:   p.ShiftEnd,
			Seed:       p.Seed,
			Samples:    p.Samples,
			Remote:     true,
		})
	}
	h.OnCleared = func(p *protocol.ShiftCleared) {
		e.Events.Emit(ShiftClearedEvent{Reason: p.Reason, Remote: true})
	}
	topics := messaging.TopicsFor(e.cfg.Messaging.TopicPrefix)
	return messaging.NewConsumer(e.msgClient, topics, h).Start()
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient == nil {
		return
	}
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(ConnectionEvent{Connected: true, Detail: "messaging connected"})
		}
	} else if e.msgConnected {
		e.msgConnected = false
		e.Events.Emit(ConnectionEvent{Detail: "messaging disconnected"})
	}
}

// loop refreshes the snapshot on the configured interval and polls the
// messaging connection.
func (e *Engine) loop() {
	health := time.NewTicker(30 * time.Second)
	defer health.Stop()

	var refresh <-chan time.Time
	if iv := e.cfg.Cache.RefreshInterval; iv > 0 {
		t := time.NewTicker(iv)
		defer t.Stop()
		refresh = t.C
	}

	for {
		select {
		case <-e.stopChan:
			return
		case <-refresh:
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := e.Refresh(ctx); err != nil {
				e.logFn("engine: refresh: %v", err)
			}
			cancel()
		case <-health.C:
			e.checkConnectionStatus()
		}
	}
}

const refreshTimeout = 20 * time.Second
