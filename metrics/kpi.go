package metrics

import (
	"math"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// KPI trends. These are fixed per metric; no historical baseline exists to
// compare against.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// KPI categories.
const (
	CategoryProductivity = "productivity"
	CategoryEfficiency   = "efficiency"
	CategoryQuality      = "quality"
	CategoryUtilization  = "utilization"
)

// KPI names, in dashboard order.
const (
	KPIOrdersCompleted   = "Orders Completed"
	KPITotalPicks        = "Total Picks"
	KPIPickAccuracy      = "Pick Accuracy"
	KPIPicksPerHour      = "Picks Per Hour"
	KPIRobotUtilization  = "Robot Utilization"
	KPIPickerUtilization = "Picker Utilization"
	KPIFulfillmentRate   = "Order Fulfillment Rate"
	KPIAverageBattery    = "Average Battery Level"
	KPIActiveRobots      = "Active Robots"
	KPICartsInUse        = "Carts in Use"
)

type KPI struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Trend    string  `json:"trend"`
	Category string  `json:"category"`
}

// Series is the input to the aggregator. Robot, picker and cart streams are
// normally already reduced to latest state; OrderEvents may be the full
// stream, since completed orders are counted across every event while
// pending orders are counted on the latest event per order.
type Series struct {
	RobotTelemetry []shift.RobotTelemetry `json:"robot_telemetry"`
	PickerActivity []shift.PickerActivity `json:"picker_activity"`
	OrderEvents    []shift.OrderEvent     `json:"order_events"`
	CartMovement   []shift.CartMovement   `json:"cart_movement"`
}

// ComputeKPIs returns the ten dashboard KPIs in fixed order. Empty inputs
// produce zeros.
func ComputeKPIs(s Series) []KPI {
	completed := CompletedOrders(s.OrderEvents)
	pending := PendingOrders(s.OrderEvents)

	return []KPI{
		{KPIOrdersCompleted, float64(completed), "orders", TrendUp, CategoryProductivity},
		{KPITotalPicks, float64(TotalPicks(s.PickerActivity)), "picks", TrendUp, CategoryProductivity},
		{KPIPickAccuracy, round1(meanOf(s.PickerActivity, func(p shift.PickerActivity) float64 { return p.Accuracy })), "%", TrendStable, CategoryQuality},
		{KPIPicksPerHour, math.Round(meanOf(s.PickerActivity, func(p shift.PickerActivity) float64 { return float64(p.PicksPerHour) })), "picks/hr", TrendUp, CategoryEfficiency},
		{KPIRobotUtilization, round1(percent(ActiveRobots(s.RobotTelemetry), len(s.RobotTelemetry))), "%", TrendStable, CategoryUtilization},
		{KPIPickerUtilization, round1(percent(ActivePickers(s.PickerActivity), len(s.PickerActivity))), "%", TrendUp, CategoryUtilization},
		{KPIFulfillmentRate, round1(percent(completed, completed+pending)), "%", TrendUp, CategoryEfficiency},
		{KPIAverageBattery, math.Round(meanOf(s.RobotTelemetry, func(r shift.RobotTelemetry) float64 { return r.Battery })), "%", TrendStable, CategoryUtilization},
		{KPIActiveRobots, float64(ActiveRobots(s.RobotTelemetry)), "robots", TrendStable, CategoryUtilization},
		{KPICartsInUse, float64(CartsInUse(s.CartMovement)), "carts", TrendUp, CategoryUtilization},
	}
}

// RealTime is the compact counts object polled by the dashboard header.
type RealTime struct {
	ActiveRobots    int `json:"activeRobots"`
	ActivePickers   int `json:"activePickers"`
	CartsInUse      int `json:"cartsInUse"`
	CompletedOrders int `json:"completedOrders"`
	PendingOrders   int `json:"pendingOrders"`
	PickersOnBreak  int `json:"pickersOnBreak"`
}

func ComputeRealTime(s Series) RealTime {
	return RealTime{
		ActiveRobots:    ActiveRobots(s.RobotTelemetry),
		ActivePickers:   ActivePickers(s.PickerActivity),
		CartsInUse:      CartsInUse(s.CartMovement),
		CompletedOrders: CompletedOrders(s.OrderEvents),
		PendingOrders:   PendingOrders(s.OrderEvents),
		PickersOnBreak:  PickersOnBreak(s.PickerActivity),
	}
}

// CompletedOrders counts distinct order ids with a completed event.
func CompletedOrders(events []shift.OrderEvent) int {
	done := make(map[string]struct{})
	for _, e := range events {
		if e.EventType == shift.EventCompleted {
			done[e.OrderID] = struct{}{}
		}
	}
	return len(done)
}

// PendingOrders counts orders whose latest event is still pending.
func PendingOrders(events []shift.OrderEvent) int {
	n := 0
	for _, e := range Latest(events) {
		if e.Status == shift.OrderPending {
			n++
		}
	}
	return n
}

func TotalPicks(activity []shift.PickerActivity) int {
	total := 0
	for _, a := range activity {
		total += a.TotalPicks
	}
	return total
}

func ActiveRobots(telemetry []shift.RobotTelemetry) int {
	return countWhere(telemetry, func(r shift.RobotTelemetry) bool { return r.Status == shift.RobotActive })
}

func ActivePickers(activity []shift.PickerActivity) int {
	return countWhere(activity, func(p shift.PickerActivity) bool { return p.Status == shift.PickerActive })
}

func PickersOnBreak(activity []shift.PickerActivity) int {
	return countWhere(activity, func(p shift.PickerActivity) bool { return p.Status == shift.PickerBreak })
}

func CartsInUse(movement []shift.CartMovement) int {
	return countWhere(movement, func(c shift.CartMovement) bool { return c.Status == shift.CartPicking })
}

func countWhere[T any](xs []T, pred func(T) bool) int {
	n := 0
	for _, x := range xs {
		if pred(x) {
			n++
		}
	}
	return n
}

func meanOf[T any](xs []T, f func(T) float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += f(x)
	}
	return sum / float64(len(xs))
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
