package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// seriesTable describes one time-series table: its entity column, the
// columns written per sample, the unique key a sample is stored under, and
// how to bind and scan them.
type seriesTable[S metrics.Sample] struct {
	name     string
	entity   string
	key      []string
	cols     []string
	bind     func(d Dialect, s S) []any
	scanInto func(row scanner) (S, error)
}

func (t seriesTable[S]) selectCols(alias string) string {
	cols := make([]string, len(t.cols))
	for i, c := range t.cols {
		cols[i] = alias + c
	}
	return strings.Join(cols, ", ")
}

// insertSQL upserts on the table key, so a sample that arrives twice (once
// from a local populate, again over the feed) is stored once and the later
// write wins.
func (t seriesTable[S]) insertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.cols)), ", ")
	var set []string
	for _, c := range t.cols {
		if !slices.Contains(t.key, c) {
			set = append(set, c+" = excluded."+c)
		}
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s`,
		t.name, strings.Join(t.cols, ", "), marks, strings.Join(t.key, ", "), strings.Join(set, ", "))
}

var robotTelemetryTable = seriesTable[shift.RobotTelemetry]{
	name:   "robot_telemetry",
	entity: "robot_id",
	key:    []string{"robot_id", "time"},
	cols:   []string{"time", "robot_id", "status", "location", "battery_level", "tasks_completed", "total_distance", "assigned_cart"},
	bind: func(d Dialect, s shift.RobotTelemetry) []any {
		return []any{d.Time(s.Time), s.RobotID, s.Status, s.Location, s.Battery, s.TasksCompleted, s.TotalDistance, s.AssignedCart}
	},
	scanInto: func(row scanner) (shift.RobotTelemetry, error) {
		var s shift.RobotTelemetry
		var at any
		err := row.Scan(&at, &s.RobotID, &s.Status, &s.Location, &s.Battery, &s.TasksCompleted, &s.TotalDistance, &s.AssignedCart)
		s.Time = parseTime(at)
		return s, err
	},
}

var pickerActivityTable = seriesTable[shift.PickerActivity]{
	name:   "picker_activity",
	entity: "picker_id",
	key:    []string{"picker_id", "time"},
	cols:   []string{"time", "picker_id", "status", "location", "picks_per_hour", "total_picks", "accuracy", "assigned_carts", "break_duration"},
	bind: func(d Dialect, s shift.PickerActivity) []any {
		return []any{d.Time(s.Time), s.PickerID, s.Status, s.Location, s.PicksPerHour, s.TotalPicks, s.Accuracy, s.AssignedCarts, nullInt(s.BreakDuration)}
	},
	scanInto: func(row scanner) (shift.PickerActivity, error) {
		var s shift.PickerActivity
		var at any
		var brk sql.NullInt64
		err := row.Scan(&at, &s.PickerID, &s.Status, &s.Location, &s.PicksPerHour, &s.TotalPicks, &s.Accuracy, &s.AssignedCarts, &brk)
		s.Time = parseTime(at)
		s.BreakDuration = intPtr(brk)
		return s, err
	},
}

var orderEventsTable = seriesTable[shift.OrderEvent]{
	name:   "order_events",
	entity: "order_id",
	key:    []string{"order_id", "event_type"},
	cols:   []string{"time", "order_id", "priority", "status", "assigned_picker", "item_count", "estimated_time", "actual_time", "event_type"},
	bind: func(d Dialect, s shift.OrderEvent) []any {
		return []any{d.Time(s.Time), s.OrderID, s.Priority, s.Status, s.AssignedPicker, s.ItemCount, s.EstimatedMinutes, nullInt(s.ActualMinutes), s.EventType}
	},
	scanInto: func(row scanner) (shift.OrderEvent, error) {
		var s shift.OrderEvent
		var at any
		var actual sql.NullInt64
		err := row.Scan(&at, &s.OrderID, &s.Priority, &s.Status, &s.AssignedPicker, &s.ItemCount, &s.EstimatedMinutes, &actual, &s.EventType)
		s.Time = parseTime(at)
		s.ActualMinutes = intPtr(actual)
		return s, err
	},
}

var cartMovementTable = seriesTable[shift.CartMovement]{
	name:   "cart_movement",
	entity: "cart_id",
	key:    []string{"cart_id", "time"},
	cols:   []string{"time", "cart_id", "status", "location", "assigned_picker", "assigned_robot", "items_in_cart", "capacity_utilization"},
	bind: func(d Dialect, s shift.CartMovement) []any {
		return []any{d.Time(s.Time), s.CartID, s.Status, s.Location, s.AssignedPicker, s.AssignedRobot, s.ItemsInCart, s.CapacityUtilization}
	},
	scanInto: func(row scanner) (shift.CartMovement, error) {
		var s shift.CartMovement
		var at any
		err := row.Scan(&at, &s.CartID, &s.Status, &s.Location, &s.AssignedPicker, &s.AssignedRobot, &s.ItemsInCart, &s.CapacityUtilization)
		s.Time = parseTime(at)
		return s, err
	},
}

// appendSeries inserts samples with one prepared statement inside tx.
func appendSeries[S metrics.Sample](ctx context.Context, db *DB, tx *sql.Tx, t seriesTable[S], samples []S) error {
	if len(samples) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, db.Q(t.insertSQL()))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", t.name, err)
	}
	defer stmt.Close()
	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, t.bind(db.dialect, s)...); err != nil {
			return fmt.Errorf("insert %s %s: %w", t.name, s.EntityID(), err)
		}
	}
	return nil
}

func insertSeries[S metrics.Sample](ctx context.Context, db *DB, t seriesTable[S], samples []S) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s insert: %w", t.name, err)
	}
	defer tx.Rollback()
	if err := appendSeries(ctx, db, tx, t, samples); err != nil {
		return err
	}
	return tx.Commit()
}

// latestSince returns the newest sample per entity among samples at or after
// since. Order events sharing an order's newest timestamp resolve to the last
// one inserted.
func latestSince[S metrics.Sample](ctx context.Context, db *DB, t seriesTable[S], since time.Time) ([]S, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s s
		JOIN (SELECT %s AS entity, MAX(time) AS newest FROM %s WHERE time >= ? GROUP BY %s) m
		ON s.%s = m.entity AND s.time = m.newest
		ORDER BY s.%s, s.id`,
		t.selectCols("s."), t.name, t.entity, t.name, t.entity, t.entity, t.entity)
	rows, err := queryAll(ctx, db, q, t.scanInto, db.dialect.Time(since))
	if err != nil {
		return nil, fmt.Errorf("latest %s: %w", t.name, err)
	}
	return metrics.Latest(rows), nil
}

func entitySince[S metrics.Sample](ctx context.Context, db *DB, t seriesTable[S], id string, since time.Time) ([]S, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND time >= ? ORDER BY time, id`,
		t.selectCols(""), t.name, t.entity)
	rows, err := queryAll(ctx, db, q, t.scanInto, id, db.dialect.Time(since))
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", t.name, id, err)
	}
	return rows, nil
}

// InsertRobotTelemetry stores samples in one transaction. A sample whose
// robot and time are already stored replaces the stored row.
func (db *DB) InsertRobotTelemetry(ctx context.Context, samples []shift.RobotTelemetry) error {
	return insertSeries(ctx, db, robotTelemetryTable, samples)
}

func (db *DB) InsertPickerActivity(ctx context.Context, samples []shift.PickerActivity) error {
	return insertSeries(ctx, db, pickerActivityTable, samples)
}

// InsertOrderEvents stores events keyed by order and event type.
func (db *DB) InsertOrderEvents(ctx context.Context, samples []shift.OrderEvent) error {
	return insertSeries(ctx, db, orderEventsTable, samples)
}

func (db *DB) InsertCartMovement(ctx context.Context, samples []shift.CartMovement) error {
	return insertSeries(ctx, db, cartMovementTable, samples)
}

// LatestRobotTelemetry returns the newest sample per robot at or after since.
func (db *DB) LatestRobotTelemetry(ctx context.Context, since time.Time) ([]shift.RobotTelemetry, error) {
	return latestSince(ctx, db, robotTelemetryTable, since)
}

func (db *DB) LatestPickerActivity(ctx context.Context, since time.Time) ([]shift.PickerActivity, error) {
	return latestSince(ctx, db, pickerActivityTable, since)
}

func (db *DB) LatestOrderEvents(ctx context.Context, since time.Time) ([]shift.OrderEvent, error) {
	return latestSince(ctx, db, orderEventsTable, since)
}

func (db *DB) LatestCartMovement(ctx context.Context, since time.Time) ([]shift.CartMovement, error) {
	return latestSince(ctx, db, cartMovementTable, since)
}

// RobotTelemetrySince returns one robot's samples at or after since,
// oldest first.
func (db *DB) RobotTelemetrySince(ctx context.Context, robotID string, since time.Time) ([]shift.RobotTelemetry, error) {
	return entitySince(ctx, db, robotTelemetryTable, robotID, since)
}

func (db *DB) PickerActivitySince(ctx context.Context, pickerID string, since time.Time) ([]shift.PickerActivity, error) {
	return entitySince(ctx, db, pickerActivityTable, pickerID, since)
}

func (db *DB) CartMovementSince(ctx context.Context, cartID string, since time.Time) ([]shift.CartMovement, error) {
	return entitySince(ctx, db, cartMovementTable, cartID, since)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
