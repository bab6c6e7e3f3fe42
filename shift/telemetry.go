package shift

import (
	"math"
	"strings"
	"time"
)

const (
	chargeThreshold  = 20.0
	maintenanceOdds  = 0.05
	cartInUseOdds    = 0.6
	chargeStartLevel = 20.0
	chargeRatePerH   = 15.0
	drainRatePerH    = 8.0
)

// RobotTelemetry emits one sample per robot per tick. Battery, tasks and
// distance depend only on the robot's roster position and the time into the
// shift; status flips and cart assignment are drawn from the robots stream.
func (g *Generator) RobotTelemetry(robots []Robot, carts []Cart) []RobotTelemetry {
	r := g.rng.For(StreamRobots)
	ticks := g.cfg.Ticks(g.cfg.RobotInterval)
	out := make([]RobotTelemetry, 0, len(ticks)*len(robots))
	for _, now := range ticks {
		h := g.elapsedHours(now)
		for i, robot := range robots {
			charging := drainedBattery(i, h) < chargeThreshold
			battery := BatteryLevel(i, h, charging)

			status := RobotActive
			switch {
			case charging:
				status = RobotCharging
			case battery < chargeThreshold:
				status = RobotIdle
			case r.Float64() < maintenanceOdds:
				status = RobotMaintenance
			}

			s := RobotTelemetry{
				Time:           now,
				RobotID:        robot.ID,
				Status:         status,
				Location:       location(r),
				Battery:        battery,
				TasksCompleted: int(math.Floor(float64(10+2*i) + h*3)),
				TotalDistance:  int(math.Floor(float64(1000+200*i) + h*500)),
			}
			if status == RobotActive && len(carts) > 0 {
				s.AssignedCart = carts[r.Intn(len(carts))].ID
			}
			out = append(out, s)
		}
	}
	return out
}

// BatteryLevel is the battery percentage of the robot at roster index i,
// h hours into the shift.
func BatteryLevel(i int, h float64, charging bool) float64 {
	if charging {
		return math.Min(100, chargeStartLevel+h*chargeRatePerH)
	}
	return drainedBattery(i, h)
}

func drainedBattery(i int, h float64) float64 {
	return math.Max(0, float64(85+2*i)-h*drainRatePerH)
}

// PickerActivity emits one sample per picker per tick. Everyone breaks
// together during the configured break window.
func (g *Generator) PickerActivity(pickers []Picker, carts []Cart) []PickerActivity {
	r := g.rng.For(StreamPickers)
	ticks := g.cfg.Ticks(g.cfg.PickerInterval)
	out := make([]PickerActivity, 0, len(ticks)*len(pickers))
	for _, now := range ticks {
		h := g.elapsedHours(now)
		onBreak := g.OnBreak(now)
		for i, picker := range pickers {
			s := PickerActivity{
				Time:          now,
				PickerID:      picker.ID,
				Status:        PickerActive,
				Location:      location(r),
				TotalPicks:    int(math.Floor(float64(50+10*i) + g.activeHours(now)*20)),
				Accuracy:      math.Min(100, (98+0.2*float64(i))*math.Max(0.95, 1-h*0.02)),
				AssignedCarts: assignedCarts(r, carts),
			}
			if onBreak {
				s.Status = PickerBreak
				mins := int(now.Sub(g.cfg.BreakStart) / time.Minute)
				s.BreakDuration = &mins
			} else {
				s.PicksPerHour = int(math.Floor(float64(100+5*i) * math.Max(0.7, 1-h*0.1)))
			}
			out = append(out, s)
		}
	}
	return out
}

// OnBreak reports whether t falls inside the picker break window.
func (g *Generator) OnBreak(t time.Time) bool {
	return !t.Before(g.cfg.BreakStart) && !t.After(g.cfg.BreakEnd)
}

// activeHours is elapsed time with the whole break deducted from the moment
// it starts, floored at zero.
func (g *Generator) activeHours(t time.Time) float64 {
	h := g.elapsedHours(t)
	if !t.Before(g.cfg.BreakStart) {
		h -= g.cfg.BreakEnd.Sub(g.cfg.BreakStart).Hours()
	}
	return math.Max(0, h)
}

func assignedCarts(r Rand, carts []Cart) string {
	if len(carts) == 0 {
		return ""
	}
	n := r.Intn(2) + 1
	ids := make([]string, n)
	for i := range ids {
		ids[i] = carts[r.Intn(len(carts))].ID
	}
	return strings.Join(ids, ",")
}

// CartMovement emits one sample per cart per (coarser) cart tick. Each tick
// independently decides whether the cart is in use.
func (g *Generator) CartMovement(carts []Cart, pickers []Picker, robots []Robot) []CartMovement {
	r := g.rng.For(StreamCarts)
	ticks := g.cfg.Ticks(g.cfg.CartInterval)
	out := make([]CartMovement, 0, len(ticks)*len(carts))
	for _, now := range ticks {
		for _, cart := range carts {
			s := CartMovement{Time: now, CartID: cart.ID, Status: CartIdle}
			if r.Float64() < cartInUseOdds {
				s.Status = CartPicking
				s.Location = location(r)
				if len(pickers) > 0 {
					s.AssignedPicker = pickers[r.Intn(len(pickers))].ID
				}
				if len(robots) > 0 {
					s.AssignedRobot = robots[r.Intn(len(robots))].ID
				}
				s.ItemsInCart = r.Intn(20) + 1
				s.CapacityUtilization = r.Intn(80) + 20
			}
			out = append(out, s)
		}
	}
	return out
}

func (g *Generator) elapsedHours(t time.Time) float64 {
	return t.Sub(g.cfg.Start).Hours()
}
