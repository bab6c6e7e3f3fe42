package snapshot

import (
	"context"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// Source is the storage side of a snapshot build. Entity lists are ordered by
// id ascending, except orders which are newest first. The Latest* methods
// return the most recent sample per entity among samples at or after since.
type Source interface {
	Robots(ctx context.Context) ([]shift.Robot, error)
	Pickers(ctx context.Context) ([]shift.Picker, error)
	Carts(ctx context.Context) ([]shift.Cart, error)
	Orders(ctx context.Context) ([]shift.Order, error)

	LatestRobotTelemetry(ctx context.Context, since time.Time) ([]shift.RobotTelemetry, error)
	LatestPickerActivity(ctx context.Context, since time.Time) ([]shift.PickerActivity, error)
	LatestOrderEvents(ctx context.Context, since time.Time) ([]shift.OrderEvent, error)
	LatestCartMovement(ctx context.Context, since time.Time) ([]shift.CartMovement, error)
}

// SeriesSource serves the full history of one entity for charting.
type SeriesSource interface {
	RobotTelemetrySince(ctx context.Context, robotID string, since time.Time) ([]shift.RobotTelemetry, error)
	PickerActivitySince(ctx context.Context, pickerID string, since time.Time) ([]shift.PickerActivity, error)
	CartMovementSince(ctx context.Context, cartID string, since time.Time) ([]shift.CartMovement, error)
}
