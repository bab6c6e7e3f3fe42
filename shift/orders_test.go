package shift

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so a test can force each branch.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		panic("scriptedRand: out of floats")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		panic("scriptedRand: out of ints")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

var testPickers = []Picker{{ID: "PICKER-01"}, {ID: "PICKER-02"}}

func TestOrderEvents_CompletedWithinShift(t *testing.T) {
	shiftEnd := testStart.Add(360 * time.Minute)
	order := Order{ID: "ORD-0001", Priority: PriorityHigh, EstimatedMinutes: 20, CreatedAt: testStart,
		Items: []OrderItem{{ID: "ITEM-001"}, {ID: "ITEM-002"}}}

	r := &scriptedRand{
		// processed, assign offset, start offset (10 of 30 min), complete, jitter
		floats: []float64{0.1, 0, 1.0 / 3, 0.2, 0},
		ints:   []int{1},
	}
	events := OrderEvents([]Order{order}, testPickers, shiftEnd, r)
	require.Len(t, events, 4)

	want := []string{EventCreated, EventAssigned, EventStarted, EventCompleted}
	for i, e := range events {
		assert.Equal(t, want[i], e.EventType)
		assert.Equal(t, "ORD-0001", e.OrderID)
		assert.Equal(t, 2, e.ItemCount)
		assert.Equal(t, 20, e.EstimatedMinutes)
	}
	assert.Equal(t, OrderPending, events[0].Status)
	assert.Empty(t, events[0].AssignedPicker)
	assert.Equal(t, "PICKER-02", events[1].AssignedPicker)
	assert.Equal(t, OrderPicking, events[2].Status)
	assert.WithinDuration(t, testStart.Add(10*time.Minute), events[2].Time, time.Millisecond)

	done := events[3]
	assert.Equal(t, OrderPacked, done.Status)
	require.NotNil(t, done.ActualMinutes)
	assert.Equal(t, 20, *done.ActualMinutes)
	assert.Equal(t, events[2].Time.Add(20*time.Minute), done.Time)
}

func TestOrderEvents_CompletionPastShiftEndDropped(t *testing.T) {
	shiftEnd := testStart.Add(360 * time.Minute)
	order := Order{ID: "ORD-0002", EstimatedMinutes: 20, CreatedAt: testStart.Add(340 * time.Minute)}

	r := &scriptedRand{
		floats: []float64{0.1, 0, 0.5, 0.1, 0},
		ints:   []int{0},
	}
	events := OrderEvents([]Order{order}, testPickers, shiftEnd, r)
	require.Len(t, events, 3)
	assert.Equal(t, EventStarted, events[2].EventType)
	assert.Nil(t, events[2].ActualMinutes)
}

func TestOrderEvents_CompletionAtShiftEndKept(t *testing.T) {
	shiftEnd := testStart.Add(360 * time.Minute)
	order := Order{ID: "ORD-0003", EstimatedMinutes: 20, CreatedAt: testStart.Add(340 * time.Minute)}

	r := &scriptedRand{floats: []float64{0.1, 0, 0, 0.1, 0}, ints: []int{0}}
	events := OrderEvents([]Order{order}, testPickers, shiftEnd, r)
	require.Len(t, events, 4)
	assert.Equal(t, shiftEnd, events[3].Time)
}

func TestOrderEvents_Branches(t *testing.T) {
	shiftEnd := testStart.Add(6 * time.Hour)
	order := Order{ID: "ORD-0004", EstimatedMinutes: 10, CreatedAt: testStart}

	// Not processed: only the created event, no further draws.
	r := &scriptedRand{floats: []float64{0.7}}
	events := OrderEvents([]Order{order}, testPickers, shiftEnd, r)
	require.Len(t, events, 1)
	assert.Equal(t, EventCreated, events[0].EventType)

	// Processed but not completed.
	r = &scriptedRand{floats: []float64{0.69, 0.5, 0.5, 0.6}, ints: []int{0}}
	events = OrderEvents([]Order{order}, testPickers, shiftEnd, r)
	require.Len(t, events, 3)
	assert.Empty(t, r.floats, "jitter must not be drawn for incomplete orders")
}

func TestOrderEvents_GloballySortedAndCausal(t *testing.T) {
	g := newTestGenerator(t, 21)
	orders := g.Orders()
	events := OrderEvents(orders, g.Pickers(), g.Config().End, g.rng.For(StreamOrders))

	assert.True(t, sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	}))

	created := map[string]int{}
	byOrder := map[string][]OrderEvent{}
	for _, e := range events {
		byOrder[e.OrderID] = append(byOrder[e.OrderID], e)
		if e.EventType == EventCreated {
			created[e.OrderID]++
		}
	}
	require.Len(t, created, len(orders))

	order := map[string]int{EventCreated: 0, EventAssigned: 1, EventStarted: 2, EventCompleted: 3}
	for id, evs := range byOrder {
		assert.Equal(t, 1, created[id])
		for i, e := range evs {
			assert.Equal(t, i, order[e.EventType], "order %s event %d out of sequence", id, i)
			assert.False(t, e.Time.After(g.Config().End.Add(2*time.Hour+30*time.Minute)))
			if e.EventType == EventCompleted {
				assert.False(t, e.Time.After(g.Config().End))
				require.NotNil(t, e.ActualMinutes)
				assert.GreaterOrEqual(t, *e.ActualMinutes, e.EstimatedMinutes)
			}
		}
	}
}
