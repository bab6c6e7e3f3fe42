package protocol

// Message type constants for the telemetry feed.
const (
	// Simulator -> Dashboard (one topic per stream)
	TypeRobotTelemetry = "telemetry.robot"
	TypePickerActivity = "telemetry.picker"
	TypeOrderEvents    = "telemetry.order"
	TypeCartMovement   = "telemetry.cart"

	// Simulator -> Dashboard (control topic)
	TypeShiftPopulated = "shift.populated"
	TypeShiftCleared   = "shift.cleared"
)

// Roles for Address.Role.
const (
	RoleSimulator = "simulator"
	RoleDashboard = "dashboard"
)

// Protocol version.
const Version = 1

// MaxBatch caps the number of samples carried by one telemetry envelope.
const MaxBatch = 200
