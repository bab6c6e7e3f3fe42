package protocol

import (
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// RobotTelemetryBatch carries up to MaxBatch robot samples.
type RobotTelemetryBatch struct {
	Samples []shift.RobotTelemetry `json:"samples"`
}

type PickerActivityBatch struct {
	Samples []shift.PickerActivity `json:"samples"`
}

type OrderEventBatch struct {
	Samples []shift.OrderEvent `json:"samples"`
}

type CartMovementBatch struct {
	Samples []shift.CartMovement `json:"samples"`
}

// ShiftPopulated is sent once a generated shift has been persisted and all
// of its telemetry published.
type ShiftPopulated struct {
	ShiftStart time.Time `json:"shift_start"`
	ShiftEnd   time.Time `json:"shift_end"`
	Seed       int64     `json:"seed"`
	Robots     int       `json:"robots"`
	Pickers    int       `json:"pickers"`
	Carts      int       `json:"carts"`
	Orders     int       `json:"orders"`
	Samples    int       `json:"samples"`
}

// ShiftCleared is sent after the store has been emptied.
type ShiftCleared struct {
	Reason string `json:"reason,omitempty"`
}

// Batches splits samples into chunks of at most size, preserving order.
func Batches[T any](samples []T, size int) [][]T {
	if size <= 0 {
		size = MaxBatch
	}
	out := make([][]T, 0, (len(samples)+size-1)/size)
	for len(samples) > 0 {
		n := min(size, len(samples))
		out = append(out, samples[:n:n])
		samples = samples[n:]
	}
	return out
}
