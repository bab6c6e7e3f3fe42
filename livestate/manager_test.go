package livestate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/config"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/snapshot"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/store"
)

var (
	_ snapshot.Source       = (*Manager)(nil)
	_ snapshot.SeriesSource = (*Manager)(nil)
)

var t0 = time.Date(2025, 9, 7, 8, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestPut_NewerWins(t *testing.T) {
	r, _ := testRedis(t)
	ctx := context.Background()

	n, err := Put(ctx, r, StreamRobotTelemetry, []shift.RobotTelemetry{
		{RobotID: "AMR-001", Time: t0.Add(10 * time.Minute), Battery: 70},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Older sample is ignored.
	n, err = Put(ctx, r, StreamRobotTelemetry, []shift.RobotTelemetry{
		{RobotID: "AMR-001", Time: t0, Battery: 90},
	})
	require.NoError(t, err)
	assert.Zero(t, n)

	// Same timestamp replaces.
	n, err = Put(ctx, r, StreamRobotTelemetry, []shift.RobotTelemetry{
		{RobotID: "AMR-001", Time: t0.Add(10 * time.Minute), Battery: 65},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := All[shift.RobotTelemetry](ctx, r, StreamRobotTelemetry)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 65.0, all[0].Battery)
	assert.True(t, all[0].Time.Equal(t0.Add(10*time.Minute)))
}

func TestManager_WriteThroughAndRead(t *testing.T) {
	db := testDB(t)
	r, _ := testRedis(t)
	m := NewManager(db, r)
	ctx := context.Background()

	samples := []shift.PickerActivity{
		{PickerID: "PICKER-02", Time: t0, Status: shift.PickerActive, TotalPicks: 60},
		{PickerID: "PICKER-01", Time: t0, Status: shift.PickerActive, TotalPicks: 50},
		{PickerID: "PICKER-01", Time: t0.Add(5 * time.Minute), Status: shift.PickerActive, TotalPicks: 51},
	}
	require.NoError(t, m.RecordPickerActivity(ctx, samples))

	n, err := r.Count(ctx, StreamPickerActivity)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := m.LatestPickerActivity(ctx, t0.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PICKER-01", got[0].PickerID)
	assert.Equal(t, 51, got[0].TotalPicks)

	// The since cutoff applies to mirrored samples too.
	got, err = m.LatestPickerActivity(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PICKER-01", got[0].PickerID)

	history, err := m.PickerActivitySince(ctx, "PICKER-01", t0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestManager_FallsBackToSQL(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	samples := []shift.CartMovement{{CartID: "CART-001", Time: t0, Status: shift.CartIdle}}

	// No Redis configured.
	m := NewManager(db, nil)
	require.NoError(t, m.RecordCartMovement(ctx, samples))
	got, err := m.LatestCartMovement(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Redis configured but down.
	r, mr := testRedis(t)
	mr.Close()
	m = NewManager(db, r)
	got, err = m.LatestCartMovement(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestManager_OrderEventsUpdateStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g, err := shift.NewGenerator(shift.DefaultConfig(t0), 1)
	require.NoError(t, err)
	d := g.Generate()
	d.OrderEvents = nil
	require.NoError(t, db.InsertShift(ctx, d))

	m := NewManager(db, nil)
	id := d.Orders[0].ID
	require.NoError(t, m.RecordOrderEvents(ctx, []shift.OrderEvent{
		{OrderID: id, Time: t0.Add(time.Hour), Status: shift.OrderPicking, AssignedPicker: "PICKER-04", EventType: shift.EventAssigned},
		{OrderID: id, Time: t0.Add(2 * time.Hour), Status: shift.OrderPacked, AssignedPicker: "PICKER-04", EventType: shift.EventCompleted},
	}))

	o, err := db.Order(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, shift.OrderPacked, o.Status)
	assert.Equal(t, "PICKER-04", o.AssignedPicker)
}

func TestManager_SyncRedisFromSQL(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g, err := shift.NewGenerator(shift.DefaultConfig(t0), 9)
	require.NoError(t, err)
	require.NoError(t, db.InsertShift(ctx, g.Generate()))

	r, _ := testRedis(t)
	m := NewManager(db, r)
	require.NoError(t, m.SyncRedisFromSQL(ctx))

	for stream, want := range map[string]int{
		StreamRobotTelemetry: 8,
		StreamPickerActivity: 8,
		StreamCartMovement:   20,
		StreamOrderEvents:    200,
	} {
		n, err := r.Count(ctx, stream)
		require.NoError(t, err)
		assert.Equal(t, want, n, stream)
	}

	fromRedis, err := m.LatestRobotTelemetry(ctx, t0)
	require.NoError(t, err)
	fromSQL, err := db.LatestRobotTelemetry(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, fromSQL, fromRedis)

	counts, err := m.MirrorCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, counts[StreamOrderEvents])

	require.NoError(t, m.Flush(ctx))
	n, _ := r.Count(ctx, StreamRobotTelemetry)
	assert.Zero(t, n)

	counts, err = NewManager(db, nil).MirrorCounts(ctx)
	require.NoError(t, err)
	assert.Nil(t, counts)
}

func TestManager_MirrorStatus(t *testing.T) {
	ctx := context.Background()

	enabled, err := NewManager(nil, nil).MirrorStatus(ctx)
	assert.False(t, enabled)
	assert.NoError(t, err)

	mr := miniredis.RunT(t)
	rs := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	enabled, err = NewManager(nil, rs).MirrorStatus(ctx)
	assert.True(t, enabled)
	assert.NoError(t, err)

	mr.Close()
	_, err = NewManager(nil, rs).MirrorStatus(ctx)
	assert.Error(t, err)
}
