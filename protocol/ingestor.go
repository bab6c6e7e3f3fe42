package protocol

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// FilterFunc returns true if the message should be processed.
type FilterFunc func(hdr *RawHeader) bool

// MessageHandler defines callbacks for all feed message types.
// Embed NoOpHandler and override only the methods you need.
type MessageHandler interface {
	HandleRobotTelemetry(env *Envelope, p *RobotTelemetryBatch)
	HandlePickerActivity(env *Envelope, p *PickerActivityBatch)
	HandleOrderEvents(env *Envelope, p *OrderEventBatch)
	HandleCartMovement(env *Envelope, p *CartMovementBatch)

	HandleShiftPopulated(env *Envelope, p *ShiftPopulated)
	HandleShiftCleared(env *Envelope, p *ShiftCleared)
}

// Ingestor performs two-phase decode and dispatches to a MessageHandler.
type Ingestor struct {
	handler MessageHandler
	filter  FilterFunc
}

// NewIngestor creates an ingestor with the given handler and filter.
func NewIngestor(handler MessageHandler, filter FilterFunc) *Ingestor {
	return &Ingestor{
		handler: handler,
		filter:  filter,
	}
}

// HandleRaw is the entry point for raw message bytes from the messaging layer.
func (ing *Ingestor) HandleRaw(data []byte) {
	// Phase 1: decode routing header only
	var hdr RawHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		logrus.Warnf("protocol: header decode error: %v", err)
		return
	}

	if IsExpiredHeader(&hdr) {
		logrus.Debugf("protocol: dropping expired message %s (type=%s)", hdr.ID, hdr.Type)
		return
	}
	if hdr.Version > Version {
		logrus.Warnf("protocol: dropping message %s with unsupported version %d", hdr.ID, hdr.Version)
		return
	}
	if ing.filter != nil && !ing.filter(&hdr) {
		return
	}

	// Phase 2: full envelope decode
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logrus.Warnf("protocol: envelope decode error: %v", err)
		return
	}

	switch env.Type {
	case TypeRobotTelemetry:
		decodeAndCall(ing.handler.HandleRobotTelemetry, &env)
	case TypePickerActivity:
		decodeAndCall(ing.handler.HandlePickerActivity, &env)
	case TypeOrderEvents:
		decodeAndCall(ing.handler.HandleOrderEvents, &env)
	case TypeCartMovement:
		decodeAndCall(ing.handler.HandleCartMovement, &env)
	case TypeShiftPopulated:
		decodeAndCall(ing.handler.HandleShiftPopulated, &env)
	case TypeShiftCleared:
		decodeAndCall(ing.handler.HandleShiftCleared, &env)
	default:
		logrus.Warnf("protocol: unknown message type: %s", env.Type)
	}
}

// decodeAndCall unmarshals the payload and calls the handler method.
func decodeAndCall[T any](fn func(*Envelope, *T), env *Envelope) {
	var p T
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		logrus.Warnf("protocol: payload decode error for %s: %v", env.Type, err)
		return
	}
	fn(env, &p)
}
