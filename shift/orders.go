package shift

import (
	"sort"
	"time"
)

const (
	processedOdds   = 0.7
	completionOdds  = 0.6
	assignWindow    = 2 * time.Hour
	startWindow     = 30 * time.Minute
	completionSlack = 30 * time.Minute
)

// OrderEvents walks every order through created → assigned → started →
// completed. Every order gets a created event; about 70% are assigned and
// started; about 60% of those complete, but only when the completion time
// lands at or before shiftEnd. Orders cut off by the shift end keep their
// started event as their last state.
//
// The result is sorted by time across all orders. Draws per order, in order:
// processed?, picker, assign offset, start offset, complete?, jitter.
func OrderEvents(orders []Order, pickers []Picker, shiftEnd time.Time, r Rand) []OrderEvent {
	events := make([]OrderEvent, 0, len(orders)*3)
	for _, o := range orders {
		base := OrderEvent{
			OrderID:          o.ID,
			Priority:         o.Priority,
			ItemCount:        len(o.Items),
			EstimatedMinutes: o.EstimatedMinutes,
		}

		created := base
		created.Time = o.CreatedAt
		created.Status = OrderPending
		created.EventType = EventCreated
		events = append(events, created)

		if r.Float64() >= processedOdds || len(pickers) == 0 {
			continue
		}
		base.AssignedPicker = pickers[r.Intn(len(pickers))].ID
		base.Status = OrderPicking

		assignedAt := o.CreatedAt.Add(fraction(r, assignWindow))
		assigned := base
		assigned.Time = assignedAt
		assigned.EventType = EventAssigned
		events = append(events, assigned)

		startedAt := assignedAt.Add(fraction(r, startWindow))
		started := base
		started.Time = startedAt
		started.EventType = EventStarted
		events = append(events, started)

		if r.Float64() >= completionOdds {
			continue
		}
		completedAt := startedAt.
			Add(time.Duration(o.EstimatedMinutes) * time.Minute).
			Add(fraction(r, completionSlack))
		if completedAt.After(shiftEnd) {
			continue
		}
		actual := int(completedAt.Sub(startedAt) / time.Minute)
		completed := base
		completed.Time = completedAt
		completed.Status = OrderPacked
		completed.EventType = EventCompleted
		completed.ActualMinutes = &actual
		events = append(events, completed)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events
}

// fraction draws a duration uniformly from [0, d).
func fraction(r Rand, d time.Duration) time.Duration {
	return time.Duration(r.Float64() * float64(d))
}
