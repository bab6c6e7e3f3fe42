package protocol

// NoOpHandler implements MessageHandler with no-op methods.
// Embed this and override only the methods you need.
type NoOpHandler struct{}

func (NoOpHandler) HandleRobotTelemetry(*Envelope, *RobotTelemetryBatch) {}
func (NoOpHandler) HandlePickerActivity(*Envelope, *PickerActivityBatch) {}
func (NoOpHandler) HandleOrderEvents(*Envelope, *OrderEventBatch)        {}
func (NoOpHandler) HandleCartMovement(*Envelope, *CartMovementBatch)     {}
func (NoOpHandler) HandleShiftPopulated(*Envelope, *ShiftPopulated)      {}
func (NoOpHandler) HandleShiftCleared(*Envelope, *ShiftCleared)          {}

// Compile-time check that NoOpHandler implements MessageHandler.
var _ MessageHandler = NoOpHandler{}
