package engine

import (
	"fmt"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
)

type EventType int

const (
	EventSnapshotRebuilt EventType = iota + 1
	EventSnapshotFailed
	EventTelemetryIngested
	EventShiftPopulated
	EventShiftCleared
	EventMessagingConnected
	EventMessagingDisconnected
)

var eventNames = map[EventType]string{
	EventSnapshotRebuilt:       "snapshot-rebuilt",
	EventSnapshotFailed:        "snapshot-failed",
	EventTelemetryIngested:     "telemetry-ingested",
	EventShiftPopulated:        "shift-populated",
	EventShiftCleared:          "shift-cleared",
	EventMessagingConnected:    "messaging-connected",
	EventMessagingDisconnected: "messaging-disconnected",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// --- Event payloads ---

type SnapshotRebuiltEvent struct {
	BuiltAt  time.Time
	KPIs     []metrics.KPI
	RealTime metrics.RealTime
}

type SnapshotFailedEvent struct {
	Error string
}

type TelemetryIngestedEvent struct {
	Stream  string
	Samples int
}

type ShiftPopulatedEvent struct {
	ShiftStart time.Time
	ShiftEnd   time.Time
	Seed       int64
	Samples    int
	Remote     bool
}

type ShiftClearedEvent struct {
	Reason string
	Remote bool
}

// ConnectionEvent reports a change in the messaging connection.
type ConnectionEvent struct {
	Connected bool
	Detail    string
}

func (SnapshotRebuiltEvent) EventType() EventType   { return EventSnapshotRebuilt }
func (SnapshotFailedEvent) EventType() EventType    { return EventSnapshotFailed }
func (TelemetryIngestedEvent) EventType() EventType { return EventTelemetryIngested }
func (ShiftPopulatedEvent) EventType() EventType    { return EventShiftPopulated }
func (ShiftClearedEvent) EventType() EventType      { return EventShiftCleared }

func (e ConnectionEvent) EventType() EventType {
	if e.Connected {
		return EventMessagingConnected
	}
	return EventMessagingDisconnected
}
