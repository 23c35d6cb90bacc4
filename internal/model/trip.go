package model

// TripStatus is a trip's position in the Requested -> Dispatched ->
// PickedUp -> DroppedOff lifecycle, or the terminal Walkaway outcome.
type TripStatus int

const (
	Requested TripStatus = iota
	Dispatched
	PickedUp
	DroppedOff
	Walkaway
)

func (s TripStatus) String() string {
	switch s {
	case Requested:
		return "Requested"
	case Dispatched:
		return "Dispatched"
	case PickedUp:
		return "PickedUp"
	case DroppedOff:
		return "DroppedOff"
	case Walkaway:
		return "Walkaway"
	default:
		return "Unknown"
	}
}

// Trip is an append-only record of a passenger's journey. A trip's ID
// equals its index in the driver's trip vector at creation time; waypoints
// reference trips by this ID, never by pointer.
type Trip struct {
	ID            int        `yaml:"id"`
	Origin        Position   `yaml:"origin"`
	Destination   Position   `yaml:"destination"`
	Status        TripStatus `yaml:"-"`
	RequestTimeMs int64      `yaml:"request_time_ms"`
	MaxPickupMs   int64      `yaml:"max_pickup_time_ms"`
	PickupTimeMs  int64      `yaml:"pickup_time_ms"`
	DropoffTimeMs int64      `yaml:"dropoff_time_ms"`
}

// MarshalYAML emits the status as its string name, matching the datalog's
// terminal trip listing (spec §6.4).
func (t Trip) MarshalYAML() (interface{}, error) {
	type alias struct {
		ID            int     `yaml:"id"`
		Origin        Position `yaml:"origin"`
		Destination   Position `yaml:"destination"`
		Status        string  `yaml:"status"`
		RequestTimeMs int64   `yaml:"request_time_ms"`
		MaxPickupMs   int64   `yaml:"max_pickup_time_ms"`
		PickupTimeMs  int64   `yaml:"pickup_time_ms"`
		DropoffTimeMs int64   `yaml:"dropoff_time_ms"`
	}
	return alias{
		ID:            t.ID,
		Origin:        t.Origin,
		Destination:   t.Destination,
		Status:        t.Status.String(),
		RequestTimeMs: t.RequestTimeMs,
		MaxPickupMs:   t.MaxPickupMs,
		PickupTimeMs:  t.PickupTimeMs,
		DropoffTimeMs: t.DropoffTimeMs,
	}, nil
}

// InMainWindow reports whether the trip's request falls in the
// measurement window [mainStartMs, mainEndMs) — only such trips contribute
// to the final report (spec §4.4, §8 scenario 6).
func (t Trip) InMainWindow(mainStartMs, mainEndMs int64) bool {
	return t.RequestTimeMs >= mainStartMs && t.RequestTimeMs < mainEndMs
}

// Request is the demand source's raw output, promoted to a Trip by the
// driver once accepted.
type Request struct {
	Origin        Position
	Destination   Position
	RequestTimeMs int64
}
