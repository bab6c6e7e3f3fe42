package snapshot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// DefaultLookback bounds how far back the latest-state queries reach.
const DefaultLookback = 24 * time.Hour

// Cache keys.
const (
	KeyDashboard = "dashboard"
	KeyMetrics   = "metrics"
	KeyRealTime  = "realtime"
)

// Snapshot is every static entity plus the latest sample per entity of each
// stream, stamped with the shift window and build time.
type Snapshot struct {
	Robots  []shift.Robot  `json:"robots"`
	Pickers []shift.Picker `json:"pickers"`
	Carts   []shift.Cart   `json:"carts"`
	Orders  []shift.Order  `json:"orders"`

	RobotTelemetry []shift.RobotTelemetry `json:"robot_telemetry"`
	PickerActivity []shift.PickerActivity `json:"picker_activity"`
	OrderEvents    []shift.OrderEvent     `json:"order_events"`
	CartMovement   []shift.CartMovement   `json:"cart_movement"`

	ShiftStart  time.Time `json:"shift_start"`
	ShiftEnd    time.Time `json:"shift_end"`
	CurrentTime time.Time `json:"current_time"`
}

// Series is the snapshot's input to the KPI aggregator.
func (s *Snapshot) Series() metrics.Series {
	return metrics.Series{
		RobotTelemetry: s.RobotTelemetry,
		PickerActivity: s.PickerActivity,
		OrderEvents:    s.OrderEvents,
		CartMovement:   s.CartMovement,
	}
}

// Roster indexes the snapshot's static entities for resolving the ids
// carried in samples.
func (s *Snapshot) Roster() *shift.Roster {
	return shift.NewRoster(s.Robots, s.Pickers, s.Carts, s.Orders)
}

// WindowFunc resolves the shift window that contains now.
type WindowFunc func(now time.Time) (start, end time.Time)

type Options struct {
	TTL      time.Duration
	Lookback time.Duration
	Clock    func() time.Time
	Window   WindowFunc
}

// Builder fans a snapshot build out over a Source and caches the snapshot
// and the artifacts derived from it.
type Builder struct {
	src      Source
	lookback time.Duration
	clock    func() time.Time
	window   WindowFunc

	snapshots *Cache[*Snapshot]
	kpis      *Cache[derived[[]metrics.KPI]]
	realtime  *Cache[derived[metrics.RealTime]]
}

// derived is an artifact computed from one snapshot. It is only served
// while that snapshot is the cached one.
type derived[T any] struct {
	from  *Snapshot
	value T
}

// NewBuilder returns a builder over src. Zero options fall back to
// DefaultTTL, DefaultLookback and time.Now.
func NewBuilder(src Source, opts Options) *Builder {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Window == nil {
		opts.Window = func(now time.Time) (time.Time, time.Time) { return now, now }
	}
	return &Builder{
		src:       src,
		lookback:  opts.Lookback,
		clock:     opts.Clock,
		window:    opts.Window,
		snapshots: NewCache[*Snapshot](opts.TTL, opts.Clock),
		kpis:      NewCache[derived[[]metrics.KPI]](opts.TTL, opts.Clock),
		realtime:  NewCache[derived[metrics.RealTime]](opts.TTL, opts.Clock),
	}
}

// Build fetches the four entity lists and the four latest-state series in
// parallel. Nothing is returned unless all eight succeed; the first failure
// cancels the rest.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	now := b.clock()
	since := now.Add(-b.lookback)
	snap := &Snapshot{CurrentTime: now}
	snap.ShiftStart, snap.ShiftEnd = b.window(now)

	g, ctx := errgroup.WithContext(ctx)
	fetch := func(what string, f func() error) {
		g.Go(func() error {
			if err := f(); err != nil {
				return fmt.Errorf("fetch %s: %w", what, err)
			}
			return nil
		})
	}
	fetch("robots", func() (err error) { snap.Robots, err = b.src.Robots(ctx); return })
	fetch("pickers", func() (err error) { snap.Pickers, err = b.src.Pickers(ctx); return })
	fetch("carts", func() (err error) { snap.Carts, err = b.src.Carts(ctx); return })
	fetch("orders", func() (err error) { snap.Orders, err = b.src.Orders(ctx); return })
	fetch("robot telemetry", func() (err error) {
		snap.RobotTelemetry, err = b.src.LatestRobotTelemetry(ctx, since)
		return
	})
	fetch("picker activity", func() (err error) {
		snap.PickerActivity, err = b.src.LatestPickerActivity(ctx, since)
		return
	})
	fetch("order events", func() (err error) {
		snap.OrderEvents, err = b.src.LatestOrderEvents(ctx, since)
		return
	})
	fetch("cart movement", func() (err error) {
		snap.CartMovement, err = b.src.LatestCartMovement(ctx, since)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}

// Snapshot returns the cached snapshot, building it when stale.
func (b *Builder) Snapshot(ctx context.Context) (*Snapshot, error) {
	return b.snapshots.Get(ctx, KeyDashboard, b.Build)
}

// KPIs returns the ten dashboard KPIs of the current snapshot.
func (b *Builder) KPIs(ctx context.Context) ([]metrics.KPI, error) {
	return derive(ctx, b, b.kpis, KeyMetrics, func(s *Snapshot) []metrics.KPI {
		return metrics.ComputeKPIs(s.Series())
	})
}

// RealTime returns the live counters of the current snapshot.
func (b *Builder) RealTime(ctx context.Context) (metrics.RealTime, error) {
	return derive(ctx, b, b.realtime, KeyRealTime, func(s *Snapshot) metrics.RealTime {
		return metrics.ComputeRealTime(s.Series())
	})
}

// derive serves the cached artifact for key when it was computed from the
// current snapshot and recomputes it otherwise.
func derive[T any](ctx context.Context, b *Builder, c *Cache[derived[T]], key string, compute func(*Snapshot) T) (T, error) {
	snap, err := b.Snapshot(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	build := func(context.Context) (derived[T], error) {
		return derived[T]{from: snap, value: compute(snap)}, nil
	}
	d, err := c.Get(ctx, key, build)
	if err == nil && d.from != snap {
		c.Invalidate(key)
		d, err = c.Get(ctx, key, build)
	}
	return d.value, err
}

// Invalidate drops every cached artifact so the next read rebuilds.
func (b *Builder) Invalidate() {
	b.snapshots.Invalidate()
	b.kpis.Invalidate()
	b.realtime.Invalidate()
}

// Refresh rebuilds the snapshot immediately and returns the KPIs computed
// from it.
func (b *Builder) Refresh(ctx context.Context) (*Snapshot, []metrics.KPI, error) {
	b.Invalidate()
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	kpis, err := b.KPIs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap, kpis, nil
}

// Now is the builder's clock.
func (b *Builder) Now() time.Time { return b.clock() }
