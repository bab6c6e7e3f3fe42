package shift

import "time"

// Robot statuses reported in telemetry.
const (
	RobotActive      = "active"
	RobotCharging    = "charging"
	RobotMaintenance = "maintenance"
	RobotIdle        = "idle"
)

// Picker statuses reported in activity samples.
const (
	PickerActive = "active"
	PickerBreak  = "break"
	PickerIdle   = "idle"
)

// Cart statuses. CartActive, CartMaintenance and CartRetired describe the
// static record; the movement stream uses CartPicking, CartIdle and
// CartMaintenance.
const (
	CartActive      = "active"
	CartMaintenance = "maintenance"
	CartRetired     = "retired"
	CartPicking     = "picking"
	CartIdle        = "idle"
)

// Order priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Order statuses.
const (
	OrderPending = "pending"
	OrderPicking = "picking"
	OrderPacked  = "packed"
)

// Order lifecycle event types.
const (
	EventCreated   = "created"
	EventAssigned  = "assigned"
	EventStarted   = "started"
	EventCompleted = "completed"
)

type Robot struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	MaxBattery          int       `json:"max_battery"`
	MaxCapacity         int       `json:"max_capacity"`
	MaintenanceSchedule string    `json:"maintenance_schedule"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Picker struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ShiftSchedule     string    `json:"shift_schedule"`
	MaxCartsPerPicker int       `json:"max_carts_per_picker"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Cart struct {
	ID          string    `json:"id"`
	MaxCapacity int       `json:"max_capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
}

type Order struct {
	ID               string      `json:"id"`
	Priority         string      `json:"priority"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	AssignedPicker   string      `json:"assigned_picker,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// RobotTelemetry is one robot sample on the time grid.
type RobotTelemetry struct {
	Time           time.Time `json:"time"`
	RobotID        string    `json:"robot_id"`
	Status         string    `json:"status"`
	Location       string    `json:"location"`
	Battery        float64   `json:"battery"`
	TasksCompleted int       `json:"tasks_completed"`
	TotalDistance  int       `json:"total_distance"`
	AssignedCart   string    `json:"assigned_cart,omitempty"`
}

func (s RobotTelemetry) EntityID() string { return s.RobotID }
func (s RobotTelemetry) At() time.Time    { return s.Time }

// PickerActivity is one picker sample on the time grid.
type PickerActivity struct {
	Time          time.Time `json:"time"`
	PickerID      string    `json:"picker_id"`
	Status        string    `json:"status"`
	Location      string    `json:"location"`
	PicksPerHour  int       `json:"picks_per_hour"`
	TotalPicks    int       `json:"total_picks"`
	Accuracy      float64   `json:"accuracy"`
	AssignedCarts string    `json:"assigned_carts"`
	BreakDuration *int      `json:"break_duration,omitempty"`
}

func (s PickerActivity) EntityID() string { return s.PickerID }
func (s PickerActivity) At() time.Time    { return s.Time }

// OrderEvent is one step of an order's lifecycle.
type OrderEvent struct {
	Time             time.Time `json:"time"`
	OrderID          string    `json:"order_id"`
	Priority         string    `json:"priority"`
	Status           string    `json:"status"`
	AssignedPicker   string    `json:"assigned_picker,omitempty"`
	ItemCount        int       `json:"item_count"`
	EstimatedMinutes int       `json:"estimated_time"`
	ActualMinutes    *int      `json:"actual_time,omitempty"`
	EventType        string    `json:"event_type"`
}

func (s OrderEvent) EntityID() string { return s.OrderID }
func (s OrderEvent) At() time.Time    { return s.Time }

// CartMovement is one cart sample on the time grid.
type CartMovement struct {
	Time                time.Time `json:"time"`
	CartID              string    `json:"cart_id"`
	Status              string    `json:"status"`
	Location            string    `json:"location"`
	AssignedPicker      string    `json:"assigned_picker,omitempty"`
	AssignedRobot       string    `json:"assigned_robot,omitempty"`
	ItemsInCart         int       `json:"items_in_cart"`
	CapacityUtilization int       `json:"capacity_utilization"`
}

func (s CartMovement) EntityID() string { return s.CartID }
func (s CartMovement) At() time.Time    { return s.Time }

// Data is everything one generation run produces.
type Data struct {
	Robots  []Robot  `json:"robots"`
	Pickers []Picker `json:"pickers"`
	Carts   []Cart   `json:"carts"`
	Orders  []Order  `json:"orders"`

	RobotTelemetry []RobotTelemetry `json:"robot_telemetry"`
	PickerActivity []PickerActivity `json:"picker_activity"`
	OrderEvents    []OrderEvent     `json:"order_events"`
	CartMovement   []CartMovement   `json:"cart_movement"`

	ShiftStart time.Time `json:"shift_start"`
	ShiftEnd   time.Time `json:"shift_end"`
}
