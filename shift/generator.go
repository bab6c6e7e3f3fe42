package shift

import (
	"fmt"
	"time"
)

// rosterEpoch stamps the static records; robots and carts predate any shift.
var rosterEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator produces the roster and synthetic series for one shift.
// A Generator is single-use per run and not safe for concurrent use.
type Generator struct {
	cfg Config
	rng *PartitionedRNG
}

// NewGenerator validates cfg and returns a generator seeded with seed.
func NewGenerator(cfg Config, seed int64) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rng: NewPartitionedRNG(seed)}, nil
}

// Config returns the validated configuration the generator was built with.
func (g *Generator) Config() Config { return g.cfg }

// Generate builds the full shift: roster first, then the four series.
func (g *Generator) Generate() *Data {
	robots := g.Robots()
	pickers := g.Pickers()
	carts := g.Carts()
	orders := g.Orders()

	return &Data{
		Robots:         robots,
		Pickers:        pickers,
		Carts:          carts,
		Orders:         orders,
		RobotTelemetry: g.RobotTelemetry(robots, carts),
		PickerActivity: g.PickerActivity(pickers, carts),
		OrderEvents:    OrderEvents(orders, pickers, g.cfg.End, g.rng.For(StreamOrders)),
		CartMovement:   g.CartMovement(carts, pickers, robots),
		ShiftStart:     g.cfg.Start,
		ShiftEnd:       g.cfg.End,
	}
}

// RobotID, PickerID, CartID and OrderID format the 1-based ids used across
// every stream, e.g. AMR-001, PICKER-01, CART-001 and ORD-0001.
func RobotID(n int) string  { return fmt.Sprintf("AMR-%03d", n) }
func PickerID(n int) string { return fmt.Sprintf("PICKER-%02d", n) }
func CartID(n int) string   { return fmt.Sprintf("CART-%03d", n) }
func OrderID(n int) string  { return fmt.Sprintf("ORD-%04d", n) }
func itemID(n int) string   { return fmt.Sprintf("ITEM-%03d", n) }

// Robots returns the configured fleet. Robot records are static and draw
// nothing from the RNG.
func (g *Generator) Robots() []Robot {
	robots := make([]Robot, g.cfg.Robots)
	for i := range robots {
		robots[i] = Robot{
			ID:                  RobotID(i + 1),
			Name:                fmt.Sprintf("Robot %d", i+1),
			MaxBattery:          100,
			MaxCapacity:         50,
			MaintenanceSchedule: "weekly",
			CreatedAt:           rosterEpoch,
			UpdatedAt:           rosterEpoch,
		}
	}
	return robots
}

// Pickers returns the morning-shift pickers, named Picker A, Picker B, ...
func (g *Generator) Pickers() []Picker {
	pickers := make([]Picker, g.cfg.Pickers)
	for i := range pickers {
		pickers[i] = Picker{
			ID:                PickerID(i + 1),
			Name:              "Picker " + pickerLetter(i),
			ShiftSchedule:     "morning",
			MaxCartsPerPicker: 2,
			CreatedAt:         rosterEpoch,
			UpdatedAt:         rosterEpoch,
		}
	}
	return pickers
}

// pickerLetter names pickers A..Z, then AA, AB, ...
func pickerLetter(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

// Carts returns the cart pool, all in the active state.
func (g *Generator) Carts() []Cart {
	carts := make([]Cart, g.cfg.Carts)
	for i := range carts {
		carts[i] = Cart{
			ID:          CartID(i + 1),
			MaxCapacity: 50,
			Status:      CartActive,
			CreatedAt:   rosterEpoch,
			UpdatedAt:   rosterEpoch,
		}
	}
	return carts
}

// Orders generates the order book with creation times spread uniformly
// over the shift.
func (g *Generator) Orders() []Order {
	r := g.rng.For(StreamRoster)
	span := g.cfg.Duration()
	orders := make([]Order, g.cfg.Orders)
	for i := range orders {
		itemCount := r.Intn(8) + 1
		priority := drawPriority(r)
		items := make([]OrderItem, itemCount)
		for j := range items {
			items[j] = OrderItem{
				ID:       itemID(j + 1),
				Name:     fmt.Sprintf("Item %d", j+1),
				Quantity: r.Intn(3) + 1,
				Location: location(r),
			}
		}
		created := g.cfg.Start.Add(time.Duration(r.Float64() * float64(span)))
		orders[i] = Order{
			ID:               OrderID(i + 1),
			Priority:         priority,
			Status:           OrderPending,
			Items:            items,
			EstimatedMinutes: itemCount*2 + r.Intn(10),
			CreatedAt:        created,
			UpdatedAt:        created,
		}
	}
	return orders
}

func drawPriority(r Rand) string {
	p := r.Float64()
	switch {
	case p < 0.2:
		return PriorityHigh
	case p < 0.7:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// location draws a pick face code such as A12-R3-B.
func location(r Rand) string {
	aisle := r.Intn(30) + 1
	rack := r.Intn(4) + 1
	side := "A"
	if r.Float64() >= 0.5 {
		side = "B"
	}
	return fmt.Sprintf("A%d-R%d-%s", aisle, rack, side)
}
