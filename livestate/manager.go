// Package livestate serves the latest sample per entity, mirrored in Redis
// in front of the SQL store.
package livestate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/store"
)

// Manager provides write-through live state: SQL first, then Redis. Reads
// prefer Redis and fall back to SQL when Redis is disabled, failing or
// empty. A nil RedisStore runs SQL only.
type Manager struct {
	*store.DB
	redis *RedisStore
}

// NewManager returns a manager over db, mirrored in redis when non-nil.
func NewManager(db *store.DB, redis *RedisStore) *Manager {
	return &Manager{DB: db, redis: redis}
}

// RecordRobotTelemetry appends samples to SQL and updates the mirror.
func (m *Manager) RecordRobotTelemetry(ctx context.Context, samples []shift.RobotTelemetry) error {
	if err := m.DB.InsertRobotTelemetry(ctx, samples); err != nil {
		return err
	}
	mirror(ctx, m.redis, StreamRobotTelemetry, samples)
	return nil
}

func (m *Manager) RecordPickerActivity(ctx context.Context, samples []shift.PickerActivity) error {
	if err := m.DB.InsertPickerActivity(ctx, samples); err != nil {
		return err
	}
	mirror(ctx, m.redis, StreamPickerActivity, samples)
	return nil
}

// RecordOrderEvents also moves each order's stored status to its newest event.
func (m *Manager) RecordOrderEvents(ctx context.Context, samples []shift.OrderEvent) error {
	if err := m.DB.InsertOrderEvents(ctx, samples); err != nil {
		return err
	}
	for _, e := range metrics.Latest(samples) {
		if err := m.DB.SetOrderStatus(ctx, e); err != nil {
			return err
		}
	}
	mirror(ctx, m.redis, StreamOrderEvents, samples)
	return nil
}

func (m *Manager) RecordCartMovement(ctx context.Context, samples []shift.CartMovement) error {
	if err := m.DB.InsertCartMovement(ctx, samples); err != nil {
		return err
	}
	mirror(ctx, m.redis, StreamCartMovement, samples)
	return nil
}

func (m *Manager) LatestRobotTelemetry(ctx context.Context, since time.Time) ([]shift.RobotTelemetry, error) {
	return latest(ctx, m.redis, StreamRobotTelemetry, since, m.DB.LatestRobotTelemetry)
}

func (m *Manager) LatestPickerActivity(ctx context.Context, since time.Time) ([]shift.PickerActivity, error) {
	return latest(ctx, m.redis, StreamPickerActivity, since, m.DB.LatestPickerActivity)
}

func (m *Manager) LatestOrderEvents(ctx context.Context, since time.Time) ([]shift.OrderEvent, error) {
	return latest(ctx, m.redis, StreamOrderEvents, since, m.DB.LatestOrderEvents)
}

func (m *Manager) LatestCartMovement(ctx context.Context, since time.Time) ([]shift.CartMovement, error) {
	return latest(ctx, m.redis, StreamCartMovement, since, m.DB.LatestCartMovement)
}

// SyncRedisFromSQL rebuilds the mirror from SQL. Called on startup.
func (m *Manager) SyncRedisFromSQL(ctx context.Context) error {
	if m.redis == nil {
		return nil
	}
	if err := m.redis.FlushAll(ctx); err != nil {
		return err
	}
	var zero time.Time
	robots, err := m.DB.LatestRobotTelemetry(ctx, zero)
	if err != nil {
		return err
	}
	pickers, err := m.DB.LatestPickerActivity(ctx, zero)
	if err != nil {
		return err
	}
	events, err := m.DB.LatestOrderEvents(ctx, zero)
	if err != nil {
		return err
	}
	carts, err := m.DB.LatestCartMovement(ctx, zero)
	if err != nil {
		return err
	}
	if _, err := Put(ctx, m.redis, StreamRobotTelemetry, robots); err != nil {
		return err
	}
	if _, err := Put(ctx, m.redis, StreamPickerActivity, pickers); err != nil {
		return err
	}
	if _, err := Put(ctx, m.redis, StreamOrderEvents, events); err != nil {
		return err
	}
	if _, err := Put(ctx, m.redis, StreamCartMovement, carts); err != nil {
		return err
	}
	logrus.Infof("livestate: synced %d robots, %d pickers, %d orders, %d carts to redis",
		len(robots), len(pickers), len(events), len(carts))
	return nil
}

// Flush clears the mirror, for use after the SQL tables are emptied.
func (m *Manager) Flush(ctx context.Context) error {
	if m.redis == nil {
		return nil
	}
	return m.redis.FlushAll(ctx)
}

// MirrorStatus reports whether the Redis mirror is configured and, if so,
// whether it answers.
func (m *Manager) MirrorStatus(ctx context.Context) (enabled bool, err error) {
	if m.redis == nil {
		return false, nil
	}
	return true, m.redis.Ping(ctx)
}

// MirrorCounts reports how many entities each stream holds in the mirror.
// It returns nil when the mirror is disabled.
func (m *Manager) MirrorCounts(ctx context.Context) (map[string]int, error) {
	if m.redis == nil {
		return nil, nil
	}
	out := make(map[string]int, len(streams))
	for _, s := range streams {
		n, err := m.redis.Count(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", s, err)
		}
		out[s] = n
	}
	return out, nil
}

func mirror[S metrics.Sample](ctx context.Context, r *RedisStore, stream string, samples []S) {
	if r == nil {
		return
	}
	if _, err := Put(ctx, r, stream, metrics.Latest(samples)); err != nil {
		logrus.Warnf("livestate: mirror %s: %v", stream, err)
	}
}

func latest[S metrics.Sample](ctx context.Context, r *RedisStore, stream string, since time.Time,
	fallback func(context.Context, time.Time) ([]S, error)) ([]S, error) {
	if r != nil {
		all, err := All[S](ctx, r, stream)
		switch {
		case err != nil:
			logrus.Warnf("livestate: read %s from redis: %v", stream, err)
		case len(all) > 0:
			return ordered(all, since), nil
		}
	}
	return fallback(ctx, since)
}

// ordered drops samples older than since and sorts the rest by entity id.
func ordered[S metrics.Sample](samples []S, since time.Time) []S {
	out := make([]S, 0, len(samples))
	for _, s := range samples {
		if !s.At().Before(since) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}
