package shift

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned (wrapped) when a generator configuration
// cannot produce a shift.
var ErrInvalidConfig = errors.New("invalid shift configuration")

// Config describes one shift window and the roster generated for it.
type Config struct {
	Start time.Time
	End   time.Time

	// Picker break window, inclusive of both ends.
	BreakStart time.Time
	BreakEnd   time.Time

	Robots  int
	Pickers int
	Carts   int
	Orders  int

	RobotInterval  time.Duration
	PickerInterval time.Duration
	CartInterval   time.Duration
}

// DefaultConfig returns the standard 6-hour morning shift starting at start:
// 8 robots, 8 pickers, 20 carts, 200 orders, break 3h30m into the shift.
func DefaultConfig(start time.Time) Config {
	breakStart := start.Add(3*time.Hour + 30*time.Minute)
	return Config{
		Start:          start,
		End:            start.Add(6 * time.Hour),
		BreakStart:     breakStart,
		BreakEnd:       breakStart.Add(time.Hour),
		Robots:         8,
		Pickers:        8,
		Carts:          20,
		Orders:         200,
		RobotInterval:  5 * time.Minute,
		PickerInterval: 5 * time.Minute,
		CartInterval:   10 * time.Minute,
	}
}

// Validate reports the first problem with c, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	if !c.End.After(c.Start) {
		return fmt.Errorf("%w: shift end %s is not after start %s", ErrInvalidConfig, c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	for _, iv := range []struct {
		name string
		d    time.Duration
	}{
		{"robot", c.RobotInterval},
		{"picker", c.PickerInterval},
		{"cart", c.CartInterval},
	} {
		if iv.d <= 0 {
			return fmt.Errorf("%w: %s tick interval must be positive, got %s", ErrInvalidConfig, iv.name, iv.d)
		}
	}
	for _, n := range []struct {
		name  string
		count int
	}{
		{"robots", c.Robots},
		{"pickers", c.Pickers},
		{"carts", c.Carts},
		{"orders", c.Orders},
	} {
		if n.count <= 0 {
			return fmt.Errorf("%w: %s count must be positive, got %d", ErrInvalidConfig, n.name, n.count)
		}
	}
	if c.BreakEnd.Before(c.BreakStart) {
		return fmt.Errorf("%w: break ends before it starts", ErrInvalidConfig)
	}
	if c.BreakStart.Before(c.Start) || c.BreakEnd.After(c.End) {
		return fmt.Errorf("%w: break window must lie inside the shift", ErrInvalidConfig)
	}
	return nil
}

// Duration is the length of the shift window.
func (c Config) Duration() time.Duration { return c.End.Sub(c.Start) }

// Ticks returns every grid point in [Start, End] at the given interval,
// including both endpoints when End falls on the grid.
func (c Config) Ticks(interval time.Duration) []time.Time {
	var ticks []time.Time
	for t := c.Start; !t.After(c.End); t = t.Add(interval) {
		ticks = append(ticks, t)
	}
	return ticks
}
