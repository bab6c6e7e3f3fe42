package store

import (
	"context"
	"fmt"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// InsertShift writes a generated shift in one transaction: the roster is
// upserted, the four series are appended and each order's status is set from
// its latest event.
func (db *DB) InsertShift(ctx context.Context, d *shift.Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert shift begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range d.Robots {
		if err := db.upsertRobot(ctx, tx, r); err != nil {
			return err
		}
	}
	for _, p := range d.Pickers {
		if err := db.upsertPicker(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, c := range d.Carts {
		if err := db.upsertCart(ctx, tx, c); err != nil {
			return err
		}
	}

	last := make(map[string]shift.OrderEvent, len(d.Orders))
	for _, e := range d.OrderEvents {
		last[e.OrderID] = e
	}
	for _, o := range d.Orders {
		if e, ok := last[o.ID]; ok {
			o.Status = e.Status
			o.AssignedPicker = e.AssignedPicker
			o.UpdatedAt = e.Time
		}
		if err := db.upsertOrder(ctx, tx, o); err != nil {
			return err
		}
	}

	if err := appendSeries(ctx, db, tx, robotTelemetryTable, d.RobotTelemetry); err != nil {
		return err
	}
	if err := appendSeries(ctx, db, tx, pickerActivityTable, d.PickerActivity); err != nil {
		return err
	}
	if err := appendSeries(ctx, db, tx, orderEventsTable, d.OrderEvents); err != nil {
		return err
	}
	if err := appendSeries(ctx, db, tx, cartMovementTable, d.CartMovement); err != nil {
		return err
	}
	return tx.Commit()
}
