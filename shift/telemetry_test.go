package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotTelemetry_OneSamplePerRobotPerTick(t *testing.T) {
	g := newTestGenerator(t, 42)
	robots := g.Robots()
	samples := g.RobotTelemetry(robots, g.Carts())

	// 6h at 5 minutes, both ends inclusive: 73 ticks.
	require.Len(t, samples, 8*73)

	type key struct {
		id string
		at time.Time
	}
	seen := make(map[key]bool, len(samples))
	last := map[string]time.Time{}
	for _, s := range samples {
		k := key{s.RobotID, s.Time}
		assert.False(t, seen[k], "duplicate sample %v", k)
		seen[k] = true
		if prev, ok := last[s.RobotID]; ok {
			assert.True(t, s.Time.After(prev), "stream for %s not increasing", s.RobotID)
		}
		last[s.RobotID] = s.Time
	}
	assert.Equal(t, testStart, samples[0].Time)
	assert.Equal(t, testStart.Add(6*time.Hour), samples[len(samples)-1].Time)
}

func TestRobotTelemetry_DeterministicFields(t *testing.T) {
	g := newTestGenerator(t, 1)
	samples := g.RobotTelemetry(g.Robots(), g.Carts())

	// AMR-003 (index 2) two hours in.
	at := testStart.Add(2 * time.Hour)
	for _, s := range samples {
		if s.RobotID != "AMR-003" || !s.Time.Equal(at) {
			continue
		}
		assert.InDelta(t, 89.0-16.0, s.Battery, 1e-9)
		assert.Equal(t, 14+6, s.TasksCompleted)
		assert.Equal(t, 1400+1000, s.TotalDistance)
		return
	}
	t.Fatal("sample not found")
}

func TestRobotTelemetry_StatusAndCartAssignment(t *testing.T) {
	g := newTestGenerator(t, 5)
	for _, s := range g.RobotTelemetry(g.Robots(), g.Carts()) {
		assert.Contains(t, []string{RobotActive, RobotMaintenance, RobotCharging, RobotIdle}, s.Status)
		if s.Status == RobotActive {
			assert.NotEmpty(t, s.AssignedCart)
		} else {
			assert.Empty(t, s.AssignedCart)
		}
	}
}

func TestBatteryLevel_Bounds(t *testing.T) {
	// Draining: non-increasing, floored at 0.
	prev := BatteryLevel(0, 0, false)
	for h := 0.25; h <= 15; h += 0.25 {
		cur := BatteryLevel(0, h, false)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
	assert.Equal(t, 0.0, BatteryLevel(0, 15, false))

	// Charging: non-decreasing, capped at 100.
	prev = BatteryLevel(0, 0, true)
	for h := 0.25; h <= 10; h += 0.25 {
		cur := BatteryLevel(0, h, true)
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, 100.0)
		prev = cur
	}
	assert.Equal(t, 100.0, BatteryLevel(0, 10, true))
}

func TestRobotTelemetry_LongShiftCharges(t *testing.T) {
	cfg := DefaultConfig(testStart)
	cfg.End = testStart.Add(12 * time.Hour)
	cfg.Robots = 1
	g, err := NewGenerator(cfg, 1)
	require.NoError(t, err)

	var charging []RobotTelemetry
	for _, s := range g.RobotTelemetry(g.Robots(), g.Carts()) {
		if s.Status == RobotCharging {
			charging = append(charging, s)
		}
	}
	// AMR-001 drains below 20% after 65/8 = 8.125h.
	require.NotEmpty(t, charging)
	assert.False(t, charging[0].Time.Before(testStart.Add(8*time.Hour+7*time.Minute)))
	for i := 1; i < len(charging); i++ {
		assert.GreaterOrEqual(t, charging[i].Battery, charging[i-1].Battery)
		assert.LessOrEqual(t, charging[i].Battery, 100.0)
	}
}

func TestPickerActivity_BreakWindow(t *testing.T) {
	g := newTestGenerator(t, 11)
	cfg := g.Config()
	samples := g.PickerActivity(g.Pickers(), g.Carts())
	require.Len(t, samples, 8*73)

	for _, s := range samples {
		inBreak := !s.Time.Before(cfg.BreakStart) && !s.Time.After(cfg.BreakEnd)
		if inBreak {
			assert.Equal(t, PickerBreak, s.Status)
			assert.Zero(t, s.PicksPerHour)
			require.NotNil(t, s.BreakDuration)
			assert.Equal(t, int(s.Time.Sub(cfg.BreakStart)/time.Minute), *s.BreakDuration)
		} else {
			assert.Equal(t, PickerActive, s.Status)
			assert.Positive(t, s.PicksPerHour)
			assert.Nil(t, s.BreakDuration)
		}
		assert.LessOrEqual(t, s.Accuracy, 100.0)
		assert.GreaterOrEqual(t, s.Accuracy, 93.0)
	}
}

func TestPickerActivity_Formulas(t *testing.T) {
	g := newTestGenerator(t, 2)
	samples := g.PickerActivity(g.Pickers(), g.Carts())

	find := func(id string, at time.Time) PickerActivity {
		for _, s := range samples {
			if s.PickerID == id && s.Time.Equal(at) {
				return s
			}
		}
		t.Fatalf("no sample for %s at %s", id, at)
		return PickerActivity{}
	}

	// PICKER-02 (index 1), one hour in: fatigue 0.9.
	s := find("PICKER-02", testStart.Add(time.Hour))
	assert.Equal(t, 94, s.PicksPerHour) // floor(105 * 0.9)
	assert.Equal(t, 80, s.TotalPicks)   // 60 + 1h*20
	assert.InDelta(t, 98.2*0.98, s.Accuracy, 1e-9)

	// Fatigue floor of 0.7 after three hours.
	s = find("PICKER-01", testStart.Add(3*time.Hour+15*time.Minute))
	assert.Equal(t, 70, s.PicksPerHour)

	// The whole break is deducted as soon as it starts.
	s = find("PICKER-01", testStart.Add(3*time.Hour+30*time.Minute))
	assert.Equal(t, PickerBreak, s.Status)
	assert.Equal(t, 50+50, s.TotalPicks)

	s = find("PICKER-01", testStart.Add(4*time.Hour))
	assert.Equal(t, 50+60, s.TotalPicks)
	assert.Equal(t, 30, *s.BreakDuration)

	s = find("PICKER-01", testStart.Add(6*time.Hour))
	assert.Equal(t, 50+100, s.TotalPicks)
}

func TestPickerActivity_TotalPicksDropsOnceAtBreak(t *testing.T) {
	g := newTestGenerator(t, 4)
	breakStart := g.Config().BreakStart
	last := map[string]PickerActivity{}
	for _, s := range g.PickerActivity(g.Pickers(), g.Carts()) {
		prev, ok := last[s.PickerID]
		last[s.PickerID] = s
		if !ok {
			continue
		}
		if prev.Time.Before(breakStart) && !s.Time.Before(breakStart) {
			assert.Less(t, s.TotalPicks, prev.TotalPicks, "%s at break start", s.PickerID)
			continue
		}
		assert.GreaterOrEqual(t, s.TotalPicks, prev.TotalPicks, "%s at %s", s.PickerID, s.Time)
	}
}

func TestCartMovement_TickCountAndShape(t *testing.T) {
	g := newTestGenerator(t, 8)
	samples := g.CartMovement(g.Carts(), g.Pickers(), g.Robots())

	// 6h at 10 minutes: 37 ticks.
	require.Len(t, samples, 20*37)

	picking := 0
	for _, s := range samples {
		switch s.Status {
		case CartPicking:
			picking++
			assert.NotEmpty(t, s.Location)
			assert.NotEmpty(t, s.AssignedPicker)
			assert.NotEmpty(t, s.AssignedRobot)
			assert.GreaterOrEqual(t, s.ItemsInCart, 1)
			assert.LessOrEqual(t, s.ItemsInCart, 20)
			assert.GreaterOrEqual(t, s.CapacityUtilization, 20)
			assert.Less(t, s.CapacityUtilization, 100)
		case CartIdle:
			assert.Empty(t, s.Location)
			assert.Empty(t, s.AssignedPicker)
			assert.Empty(t, s.AssignedRobot)
			assert.Zero(t, s.ItemsInCart)
			assert.Zero(t, s.CapacityUtilization)
		default:
			t.Fatalf("unexpected status %q", s.Status)
		}
	}
	ratio := float64(picking) / float64(len(samples))
	assert.InDelta(t, 0.6, ratio, 0.1)
}

func TestTicks_EndOffGrid(t *testing.T) {
	cfg := DefaultConfig(testStart)
	cfg.End = testStart.Add(12 * time.Minute)
	ticks := cfg.Ticks(5 * time.Minute)
	assert.Equal(t, []time.Time{testStart, testStart.Add(5 * time.Minute), testStart.Add(10 * time.Minute)}, ticks)
}
