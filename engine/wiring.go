package engine

import "github.com/sirupsen/logrus"

func (e *Engine) wireEventHandlers() {
	e.Events.Subscribe(func(evt Event) {
		logrus.Debugf("engine: event %s at %s", evt.Type, evt.Timestamp.Format("15:04:05"))
	})

	// New data, or none at all, makes every cached artifact wrong at once
	e.Events.SubscribeTypes(func(Event) {
		e.builder.Invalidate()
	}, EventShiftPopulated, EventShiftCleared, EventTelemetryIngested)

	On(e.Events, func(ev ShiftPopulatedEvent) {
		e.logFn("engine: shift %s-%s populated (seed %d, %d samples, remote=%v)",
			ev.ShiftStart.Format("15:04"), ev.ShiftEnd.Format("15:04"), ev.Seed, ev.Samples, ev.Remote)
	})

	On(e.Events, func(ev ShiftClearedEvent) {
		e.logFn("engine: shift cleared (%s, remote=%v)", ev.Reason, ev.Remote)
	})

	On(e.Events, func(ev TelemetryIngestedEvent) {
		logrus.Debugf("engine: ingested %d %s samples", ev.Samples, ev.Stream)
	})

	On(e.Events, func(ev SnapshotFailedEvent) {
		e.logFn("engine: snapshot rebuild failed: %s", ev.Error)
	})

	On(e.Events, func(ev ConnectionEvent) {
		e.logFn("engine: %s", ev.Detail)
	})
}
