package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS robots (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    max_battery          INTEGER NOT NULL DEFAULT 100,
    max_capacity         INTEGER NOT NULL DEFAULT 50,
    maintenance_schedule TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pickers (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    shift_schedule       TEXT NOT NULL DEFAULT '',
    max_carts_per_picker INTEGER NOT NULL DEFAULT 2,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS carts (
    id           TEXT PRIMARY KEY,
    max_capacity INTEGER NOT NULL DEFAULT 50,
    status       TEXT NOT NULL DEFAULT 'active',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id              TEXT PRIMARY KEY,
    priority        TEXT NOT NULL DEFAULT 'medium',
    status          TEXT NOT NULL DEFAULT 'pending',
    items           TEXT NOT NULL DEFAULT '[]',
    estimated_time  INTEGER NOT NULL DEFAULT 0,
    assigned_picker TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);

CREATE TABLE IF NOT EXISTS robot_telemetry (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    time            TEXT NOT NULL,
    robot_id        TEXT NOT NULL,
    status          TEXT NOT NULL,
    location        TEXT NOT NULL DEFAULT '',
    battery_level   REAL NOT NULL DEFAULT 0,
    tasks_completed INTEGER NOT NULL DEFAULT 0,
    total_distance  INTEGER NOT NULL DEFAULT 0,
    assigned_cart   TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_robot_telemetry_sample ON robot_telemetry(robot_id, time);
CREATE INDEX IF NOT EXISTS idx_robot_telemetry_time ON robot_telemetry(time);

CREATE TABLE IF NOT EXISTS picker_activity (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    time           TEXT NOT NULL,
    picker_id      TEXT NOT NULL,
    status         TEXT NOT NULL,
    location       TEXT NOT NULL DEFAULT '',
    picks_per_hour INTEGER NOT NULL DEFAULT 0,
    total_picks    INTEGER NOT NULL DEFAULT 0,
    accuracy       REAL NOT NULL DEFAULT 0,
    assigned_carts TEXT NOT NULL DEFAULT '',
    break_duration INTEGER
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_picker_activity_sample ON picker_activity(picker_id, time);
CREATE INDEX IF NOT EXISTS idx_picker_activity_time ON picker_activity(time);

CREATE TABLE IF NOT EXISTS order_events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    time            TEXT NOT NULL,
    order_id        TEXT NOT NULL,
    priority        TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL,
    assigned_picker TEXT NOT NULL DEFAULT '',
    item_count      INTEGER NOT NULL DEFAULT 0,
    estimated_time  INTEGER NOT NULL DEFAULT 0,
    actual_time     INTEGER,
    event_type      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_events_entity ON order_events(order_id, time);
CREATE UNIQUE INDEX IF NOT EXISTS idx_order_events_sample ON order_events(order_id, event_type);
CREATE INDEX IF NOT EXISTS idx_order_events_time ON order_events(time);

CREATE TABLE IF NOT EXISTS cart_movement (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    time                 TEXT NOT NULL,
    cart_id              TEXT NOT NULL,
    status               TEXT NOT NULL,
    location             TEXT NOT NULL DEFAULT '',
    assigned_picker      TEXT NOT NULL DEFAULT '',
    assigned_robot       TEXT NOT NULL DEFAULT '',
    items_in_cart        INTEGER NOT NULL DEFAULT 0,
    capacity_utilization INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_movement_sample ON cart_movement(cart_id, time);
CREATE INDEX IF NOT EXISTS idx_cart_movement_time ON cart_movement(time);
`
