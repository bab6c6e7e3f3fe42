package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// GeneratedSource serves a generated shift from memory. It implements
// Source and SeriesSource and never fails.
type GeneratedSource struct {
	data   *shift.Data
	orders []shift.Order
}

func NewGeneratedSource(d *shift.Data) *GeneratedSource {
	orders := append([]shift.Order(nil), d.Orders...)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return &GeneratedSource{data: d, orders: orders}
}

// Window reports the generated shift's bounds for any now.
func (g *GeneratedSource) Window(time.Time) (time.Time, time.Time) {
	return g.data.ShiftStart, g.data.ShiftEnd
}

func (g *GeneratedSource) Robots(context.Context) ([]shift.Robot, error) { return g.data.Robots, nil }
func (g *GeneratedSource) Pickers(context.Context) ([]shift.Picker, error) {
	return g.data.Pickers, nil
}
func (g *GeneratedSource) Carts(context.Context) ([]shift.Cart, error)   { return g.data.Carts, nil }
func (g *GeneratedSource) Orders(context.Context) ([]shift.Order, error) { return g.orders, nil }

func (g *GeneratedSource) LatestRobotTelemetry(_ context.Context, since time.Time) ([]shift.RobotTelemetry, error) {
	return metrics.Latest(after(g.data.RobotTelemetry, since)), nil
}

func (g *GeneratedSource) LatestPickerActivity(_ context.Context, since time.Time) ([]shift.PickerActivity, error) {
	return metrics.Latest(after(g.data.PickerActivity, since)), nil
}

func (g *GeneratedSource) LatestOrderEvents(_ context.Context, since time.Time) ([]shift.OrderEvent, error) {
	return metrics.Latest(after(g.data.OrderEvents, since)), nil
}

func (g *GeneratedSource) LatestCartMovement(_ context.Context, since time.Time) ([]shift.CartMovement, error) {
	return metrics.Latest(after(g.data.CartMovement, since)), nil
}

func (g *GeneratedSource) RobotTelemetrySince(_ context.Context, id string, since time.Time) ([]shift.RobotTelemetry, error) {
	return forEntity(g.data.RobotTelemetry, id, since), nil
}

func (g *GeneratedSource) PickerActivitySince(_ context.Context, id string, since time.Time) ([]shift.PickerActivity, error) {
	return forEntity(g.data.PickerActivity, id, since), nil
}

func (g *GeneratedSource) CartMovementSince(_ context.Context, id string, since time.Time) ([]shift.CartMovement, error) {
	return forEntity(g.data.CartMovement, id, since), nil
}

func after[S metrics.Sample](series []S, since time.Time) []S {
	out := make([]S, 0, len(series))
	for _, s := range series {
		if !s.At().Before(since) {
			out = append(out, s)
		}
	}
	return out
}

func forEntity[S metrics.Sample](series []S, id string, since time.Time) []S {
	out := make([]S, 0)
	for _, s := range series {
		if s.EntityID() == id && !s.At().Before(since) {
			out = append(out, s)
		}
	}
	return out
}
