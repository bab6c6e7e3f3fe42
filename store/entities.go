package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

type scanner interface{ Scan(...any) error }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const robotSelectCols = `id, name, max_battery, max_capacity, maintenance_schedule, created_at, updated_at`

func scanRobot(row scanner) (shift.Robot, error) {
	var r shift.Robot
	var createdAt, updatedAt any
	err := row.Scan(&r.ID, &r.Name, &r.MaxBattery, &r.MaxCapacity, &r.MaintenanceSchedule, &createdAt, &updatedAt)
	if err != nil {
		return r, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func (db *DB) upsertRobot(ctx context.Context, ex execer, r shift.Robot) error {
	_, err := ex.ExecContext(ctx, db.Q(`INSERT INTO robots (id, name, max_battery, max_capacity, maintenance_schedule, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name=excluded.name, max_battery=excluded.max_battery, max_capacity=excluded.max_capacity,
			maintenance_schedule=excluded.maintenance_schedule, updated_at=excluded.updated_at`),
		r.ID, r.Name, r.MaxBattery, r.MaxCapacity, r.MaintenanceSchedule, db.dialect.Time(r.CreatedAt), db.dialect.Time(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert robot %s: %w", r.ID, err)
	}
	return nil
}

// Robots lists every robot by id.
func (db *DB) Robots(ctx context.Context) ([]shift.Robot, error) {
	return queryAll(ctx, db, fmt.Sprintf(`SELECT %s FROM robots ORDER BY id`, robotSelectCols), scanRobot)
}

// Robot loads one robot, or ErrNotFound.
func (db *DB) Robot(ctx context.Context, id string) (shift.Robot, error) {
	row := db.QueryRowContext(ctx, db.Q(fmt.Sprintf(`SELECT %s FROM robots WHERE id=?`, robotSelectCols)), id)
	return notFound(scanRobot(row))
}

const pickerSelectCols = `id, name, shift_schedule, max_carts_per_picker, created_at, updated_at`

func scanPicker(row scanner) (shift.Picker, error) {
	var p shift.Picker
	var createdAt, updatedAt any
	err := row.Scan(&p.ID, &p.Name, &p.ShiftSchedule, &p.MaxCartsPerPicker, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (db *DB) upsertPicker(ctx context.Context, ex execer, p shift.Picker) error {
	_, err := ex.ExecContext(ctx, db.Q(`INSERT INTO pickers (id, name, shift_schedule, max_carts_per_picker, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name=excluded.name, shift_schedule=excluded.shift_schedule,
			max_carts_per_picker=excluded.max_carts_per_picker, updated_at=excluded.updated_at`),
		p.ID, p.Name, p.ShiftSchedule, p.MaxCartsPerPicker, db.dialect.Time(p.CreatedAt), db.dialect.Time(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert picker %s: %w", p.ID, err)
	}
	return nil
}

// Pickers lists every picker by id.
func (db *DB) Pickers(ctx context.Context) ([]shift.Picker, error) {
	return queryAll(ctx, db, fmt.Sprintf(`SELECT %s FROM pickers ORDER BY id`, pickerSelectCols), scanPicker)
}

// Picker loads one picker, or ErrNotFound.
func (db *DB) Picker(ctx context.Context, id string) (shift.Picker, error) {
	row := db.QueryRowContext(ctx, db.Q(fmt.Sprintf(`SELECT %s FROM pickers WHERE id=?`, pickerSelectCols)), id)
	return notFound(scanPicker(row))
}

const cartSelectCols = `id, max_capacity, status, created_at, updated_at`

func scanCart(row scanner) (shift.Cart, error) {
	var c shift.Cart
	var createdAt, updatedAt any
	if err := row.Scan(&c.ID, &c.MaxCapacity, &c.Status, &createdAt, &updatedAt); err != nil {
		return c, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

func (db *DB) upsertCart(ctx context.Context, ex execer, c shift.Cart) error {
	_, err := ex.ExecContext(ctx, db.Q(`INSERT INTO carts (id, max_capacity, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET max_capacity=excluded.max_capacity, status=excluded.status, updated_at=excluded.updated_at`),
		c.ID, c.MaxCapacity, c.Status, db.dialect.Time(c.CreatedAt), db.dialect.Time(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert cart %s: %w", c.ID, err)
	}
	return nil
}

// Carts lists every cart by id.
func (db *DB) Carts(ctx context.Context) ([]shift.Cart, error) {
	return queryAll(ctx, db, fmt.Sprintf(`SELECT %s FROM carts ORDER BY id`, cartSelectCols), scanCart)
}

// Cart loads one cart, or ErrNotFound.
func (db *DB) Cart(ctx context.Context, id string) (shift.Cart, error) {
	row := db.QueryRowContext(ctx, db.Q(fmt.Sprintf(`SELECT %s FROM carts WHERE id=?`, cartSelectCols)), id)
	return notFound(scanCart(row))
}

const orderSelectCols = `id, priority, status, items, estimated_time, assigned_picker, created_at, updated_at`

func scanOrder(row scanner) (shift.Order, error) {
	var o shift.Order
	var items []byte
	var createdAt, updatedAt any
	err := row.Scan(&o.ID, &o.Priority, &o.Status, &items, &o.EstimatedMinutes, &o.AssignedPicker, &createdAt, &updatedAt)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	return o, nil
}

func (db *DB) upsertOrder(ctx context.Context, ex execer, o shift.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order %s items: %w", o.ID, err)
	}
	_, err = ex.ExecContext(ctx, db.Q(`INSERT INTO orders (id, priority, status, items, estimated_time, assigned_picker, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET priority=excluded.priority, status=excluded.status, items=excluded.items,
			estimated_time=excluded.estimated_time, assigned_picker=excluded.assigned_picker, updated_at=excluded.updated_at`),
		o.ID, o.Priority, o.Status, string(items), o.EstimatedMinutes, o.AssignedPicker, db.dialect.Time(o.CreatedAt), db.dialect.Time(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", o.ID, err)
	}
	return nil
}

// Orders lists every order, newest first.
func (db *DB) Orders(ctx context.Context) ([]shift.Order, error) {
	return queryAll(ctx, db, fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC, id`, orderSelectCols), scanOrder)
}

// OrdersByStatus lists orders in one status, newest first. An unknown
// status yields an empty list.
func (db *DB) OrdersByStatus(ctx context.Context, status string) ([]shift.Order, error) {
	return queryAll(ctx, db, fmt.Sprintf(`SELECT %s FROM orders WHERE status=? ORDER BY created_at DESC, id`, orderSelectCols), scanOrder, status)
}

// Order loads one order with its items, or ErrNotFound.
func (db *DB) Order(ctx context.Context, id string) (shift.Order, error) {
	row := db.QueryRowContext(ctx, db.Q(fmt.Sprintf(`SELECT %s FROM orders WHERE id=?`, orderSelectCols)), id)
	return notFound(scanOrder(row))
}

// SetOrderStatus records the latest lifecycle state of an order.
func (db *DB) SetOrderStatus(ctx context.Context, e shift.OrderEvent) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE orders SET status=?, assigned_picker=?, updated_at=? WHERE id=?`),
		e.Status, e.AssignedPicker, db.dialect.Time(e.Time), e.OrderID)
	if err != nil {
		return fmt.Errorf("set order %s status: %w", e.OrderID, err)
	}
	return nil
}

func queryAll[T any](ctx context.Context, db *DB, query string, scan func(scanner) (T, error), args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func notFound[T any](v T, err error) (T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}
