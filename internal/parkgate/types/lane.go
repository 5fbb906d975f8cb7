package types

import "time"

// Direction is the physical flow a lane serves.
type Direction string

const (
	Entry Direction = "entry"
	Exit  Direction = "exit"
)

// Action is the outcome of one decision cycle on a lane.
type Action string

const (
	// ActionNone: nothing decided this cycle (out of range, or consensus
	// still accumulating).
	ActionNone Action = "none"

	// ActionAdmitted: entry granted, session recorded, gate cycled.
	ActionAdmitted Action = "admitted"

	// ActionSuppressed: a trusted plate was reached but no action was
	// taken (cooldown, or an unpaid session already exists).
	ActionSuppressed Action = "suppressed"

	// ActionExited: exit settled, record closed, gate cycled.
	ActionExited Action = "exited"

	// ActionDenied: exit refused over an outstanding balance; alert
	// raised and alarm fired.
	ActionDenied Action = "denied"
)

// Snapshot is the immutable result of one lane cycle, published for the
// presentation layer and the operator API.  The core keeps no other
// externally visible state.
type Snapshot struct {
	Lane     Direction `json:"lane"`
	Time     time.Time `json:"time"`
	Distance float64   `json:"distance_cm"`
	InRange  bool      `json:"in_range"`
	Plate    string    `json:"plate,omitempty"`
	Action   Action    `json:"action"`
	Reason   string    `json:"reason,omitempty"`
}
