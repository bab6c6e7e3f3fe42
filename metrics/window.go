package metrics

import (
	"sort"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// Named chart ranges.
const (
	Range1h  = "1h"
	Range24h = "24h"
	Range7d  = "7d"
	Range30d = "30d"
)

var ranges = map[string]time.Duration{
	Range1h:  time.Hour,
	Range24h: 24 * time.Hour,
	Range7d:  7 * 24 * time.Hour,
	Range30d: 30 * 24 * time.Hour,
}

// ParseRange maps a named range to its duration. Unknown or empty names
// fall back to 24h.
func ParseRange(name string) time.Duration {
	if d, ok := ranges[name]; ok {
		return d
	}
	return ranges[Range24h]
}

type RobotPoint struct {
	Time    time.Time `json:"time"`
	Battery float64   `json:"battery_level"`
	Tasks   float64   `json:"tasks_completed"`
}

type PickerPoint struct {
	Time         time.Time `json:"time"`
	PicksPerHour float64   `json:"picks_per_hour"`
	Accuracy     float64   `json:"accuracy"`
}

type CartPoint struct {
	Time                time.Time `json:"time"`
	ItemsInCart         float64   `json:"items_in_cart"`
	CapacityUtilization float64   `json:"capacity_utilization"`
}

// RobotWindow returns the battery and task history of one robot within
// rangeName of now, oldest first.
func RobotWindow(series []shift.RobotTelemetry, robotID, rangeName string, now time.Time) []RobotPoint {
	return window(series, robotID, rangeName, now, func(s shift.RobotTelemetry) RobotPoint {
		return RobotPoint{Time: s.Time, Battery: s.Battery, Tasks: float64(s.TasksCompleted)}
	})
}

func PickerWindow(series []shift.PickerActivity, pickerID, rangeName string, now time.Time) []PickerPoint {
	return window(series, pickerID, rangeName, now, func(s shift.PickerActivity) PickerPoint {
		return PickerPoint{Time: s.Time, PicksPerHour: float64(s.PicksPerHour), Accuracy: s.Accuracy}
	})
}

func CartWindow(series []shift.CartMovement, cartID, rangeName string, now time.Time) []CartPoint {
	return window(series, cartID, rangeName, now, func(s shift.CartMovement) CartPoint {
		return CartPoint{Time: s.Time, ItemsInCart: float64(s.ItemsInCart), CapacityUtilization: float64(s.CapacityUtilization)}
	})
}

func window[S Sample, P any](series []S, id, rangeName string, now time.Time, project func(S) P) []P {
	cutoff := now.Add(-ParseRange(rangeName))
	kept := make([]S, 0)
	for _, s := range series {
		if s.EntityID() == id && !s.At().Before(cutoff) {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].At().Before(kept[j].At()) })

	out := make([]P, len(kept))
	for i, s := range kept {
		out[i] = project(s)
	}
	return out
}

// Point is implemented by the chart point types so they can be downsampled.
type Point[P any] interface {
	At() time.Time
	fields() []float64
	with(t time.Time, v []float64) P
}

func (p RobotPoint) At() time.Time      { return p.Time }
func (p RobotPoint) fields() []float64  { return []float64{p.Battery, p.Tasks} }
func (p PickerPoint) At() time.Time     { return p.Time }
func (p PickerPoint) fields() []float64 { return []float64{p.PicksPerHour, p.Accuracy} }
func (p CartPoint) At() time.Time       { return p.Time }
func (p CartPoint) fields() []float64   { return []float64{p.ItemsInCart, p.CapacityUtilization} }

func (RobotPoint) with(t time.Time, v []float64) RobotPoint {
	return RobotPoint{Time: t, Battery: v[0], Tasks: v[1]}
}

func (PickerPoint) with(t time.Time, v []float64) PickerPoint {
	return PickerPoint{Time: t, PicksPerHour: v[0], Accuracy: v[1]}
}

func (CartPoint) with(t time.Time, v []float64) CartPoint {
	return CartPoint{Time: t, ItemsInCart: v[0], CapacityUtilization: v[1]}
}

// Downsample averages time-ordered points into every-wide buckets aligned to
// the epoch. Each output point is stamped with its bucket start. A
// non-positive every returns points unchanged.
func Downsample[P Point[P]](points []P, every time.Duration) []P {
	if every <= 0 || len(points) == 0 {
		return points
	}
	out := make([]P, 0)
	var (
		bucket time.Time
		sums   []float64
		n      int
	)
	flush := func() {
		if n == 0 {
			return
		}
		for i := range sums {
			sums[i] /= float64(n)
		}
		var zero P
		out = append(out, zero.with(bucket, sums))
	}
	for _, p := range points {
		b := p.At().Truncate(every)
		if n == 0 || !b.Equal(bucket) {
			flush()
			bucket, sums, n = b, make([]float64, len(p.fields())), 0
		}
		for i, v := range p.fields() {
			sums[i] += v
		}
		n++
	}
	flush()
	return out
}
