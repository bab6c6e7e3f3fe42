// Package metrics reduces shift time series into latest state per entity,
// the dashboard KPIs, real-time counts and per-entity chart windows.
package metrics

import "time"

// Sample is any timestamped value keyed by an entity id.
type Sample interface {
	EntityID() string
	At() time.Time
}

// LatestBy returns one sample per key: the one with the greatest timestamp.
// When two samples for a key share that timestamp the one seen last wins.
// Output follows the order in which each key first appears.
func LatestBy[T any](samples []T, key func(T) string, at func(T) time.Time) []T {
	if len(samples) == 0 {
		return nil
	}
	index := make(map[string]int)
	out := make([]T, 0)
	for _, s := range samples {
		k := key(s)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, s)
			continue
		}
		if !at(s).Before(at(out[i])) {
			out[i] = s
		}
	}
	return out
}

// Latest is LatestBy keyed on the sample's own entity id and time.
func Latest[S Sample](samples []S) []S {
	return LatestBy(samples,
		func(s S) string { return s.EntityID() },
		func(s S) time.Time { return s.At() })
}
