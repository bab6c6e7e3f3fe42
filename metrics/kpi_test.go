package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

func kpiByName(t *testing.T, kpis []KPI, name string) KPI {
	t.Helper()
	for _, k := range kpis {
		if k.Name == name {
			return k
		}
	}
	t.Fatalf("kpi %q missing", name)
	return KPI{}
}

func TestComputeKPIs_EmptyInputIsZero(t *testing.T) {
	kpis := ComputeKPIs(Series{})
	require.Len(t, kpis, 10)
	for _, k := range kpis {
		assert.Zero(t, k.Value, k.Name)
	}
	assert.Equal(t, []string{
		KPIOrdersCompleted, KPITotalPicks, KPIPickAccuracy, KPIPicksPerHour, KPIRobotUtilization,
		KPIPickerUtilization, KPIFulfillmentRate, KPIAverageBattery, KPIActiveRobots, KPICartsInUse,
	}, names(kpis))
}

func names(kpis []KPI) []string {
	out := make([]string, len(kpis))
	for i, k := range kpis {
		out[i] = k.Name
	}
	return out
}

func TestComputeKPIs_FulfillmentRate(t *testing.T) {
	var events []shift.OrderEvent
	for _, id := range []string{"ORD-0001", "ORD-0002", "ORD-0003"} {
		events = append(events,
			shift.OrderEvent{OrderID: id, Time: t0, Status: shift.OrderPending, EventType: shift.EventCreated},
			shift.OrderEvent{OrderID: id, Time: t0.Add(time.Hour), Status: shift.OrderPacked, EventType: shift.EventCompleted},
		)
	}
	for _, id := range []string{"ORD-0004", "ORD-0005"} {
		events = append(events, shift.OrderEvent{OrderID: id, Time: t0, Status: shift.OrderPending, EventType: shift.EventCreated})
	}
	// Assigned but not finished: neither completed nor pending.
	events = append(events,
		shift.OrderEvent{OrderID: "ORD-0006", Time: t0, Status: shift.OrderPending, EventType: shift.EventCreated},
		shift.OrderEvent{OrderID: "ORD-0006", Time: t0.Add(time.Minute), Status: shift.OrderPicking, EventType: shift.EventAssigned},
	)

	kpis := ComputeKPIs(Series{OrderEvents: events})
	assert.Equal(t, 3.0, kpiByName(t, kpis, KPIOrdersCompleted).Value)
	assert.Equal(t, 60.0, kpiByName(t, kpis, KPIFulfillmentRate).Value)

	rt := ComputeRealTime(Series{OrderEvents: events})
	assert.Equal(t, 3, rt.CompletedOrders)
	assert.Equal(t, 2, rt.PendingOrders)
}

func TestComputeKPIs_PickerAndRobotAggregates(t *testing.T) {
	s := Series{
		PickerActivity: []shift.PickerActivity{
			{PickerID: "PICKER-01", Status: shift.PickerActive, TotalPicks: 100, PicksPerHour: 90, Accuracy: 98.26},
			{PickerID: "PICKER-02", Status: shift.PickerBreak, TotalPicks: 50, PicksPerHour: 0, Accuracy: 97.0},
			{PickerID: "PICKER-03", Status: shift.PickerActive, TotalPicks: 25, PicksPerHour: 71, Accuracy: 99.0},
		},
		RobotTelemetry: []shift.RobotTelemetry{
			{RobotID: "AMR-001", Status: shift.RobotActive, Battery: 80.4},
			{RobotID: "AMR-002", Status: shift.RobotCharging, Battery: 35},
			{RobotID: "AMR-003", Status: shift.RobotIdle, Battery: 10},
		},
		CartMovement: []shift.CartMovement{
			{CartID: "CART-001", Status: shift.CartPicking},
			{CartID: "CART-002", Status: shift.CartIdle},
			{CartID: "CART-003", Status: shift.CartPicking},
		},
	}
	kpis := ComputeKPIs(s)

	assert.Equal(t, 175.0, kpiByName(t, kpis, KPITotalPicks).Value)
	assert.Equal(t, 98.1, kpiByName(t, kpis, KPIPickAccuracy).Value) // 294.26/3 = 98.0867
	assert.Equal(t, 54.0, kpiByName(t, kpis, KPIPicksPerHour).Value) // 161/3 = 53.67
	assert.Equal(t, 33.3, kpiByName(t, kpis, KPIRobotUtilization).Value)
	assert.Equal(t, 66.7, kpiByName(t, kpis, KPIPickerUtilization).Value)
	assert.Equal(t, 42.0, kpiByName(t, kpis, KPIAverageBattery).Value) // 125.4/3 = 41.8
	assert.Equal(t, 1.0, kpiByName(t, kpis, KPIActiveRobots).Value)
	assert.Equal(t, 2.0, kpiByName(t, kpis, KPICartsInUse).Value)

	acc := kpiByName(t, kpis, KPIPickAccuracy)
	assert.Equal(t, "%", acc.Unit)
	assert.Equal(t, TrendStable, acc.Trend)
	assert.Equal(t, CategoryQuality, acc.Category)

	rt := ComputeRealTime(s)
	assert.Equal(t, RealTime{ActiveRobots: 1, ActivePickers: 2, CartsInUse: 2, PickersOnBreak: 1}, rt)
}

func TestComputeKPIs_GeneratedShift(t *testing.T) {
	g, err := shift.NewGenerator(shift.DefaultConfig(t0), 42)
	require.NoError(t, err)
	d := g.Generate()

	s := Series{
		RobotTelemetry: Latest(d.RobotTelemetry),
		PickerActivity: Latest(d.PickerActivity),
		OrderEvents:    d.OrderEvents,
		CartMovement:   Latest(d.CartMovement),
	}
	kpis := ComputeKPIs(s)
	require.Len(t, kpis, 10)

	assert.Len(t, s.RobotTelemetry, 8)
	assert.Len(t, s.PickerActivity, 8)
	assert.Len(t, s.CartMovement, 20)
	assert.Equal(t, 100.0, kpiByName(t, kpis, KPIPickerUtilization).Value, "shift end is after the break")
	assert.GreaterOrEqual(t, kpiByName(t, kpis, KPIFulfillmentRate).Value, 0.0)
	assert.LessOrEqual(t, kpiByName(t, kpis, KPIFulfillmentRate).Value, 100.0)
	assert.Equal(t, ComputeKPIs(s), kpis)
}
