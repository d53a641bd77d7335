package blind

import "time"

// State represents the position category of a blind.
type State string

// State constants.
const (
	StateOpen    State = "open"
	StateClosed  State = "closed"
	StatePartial State = "partial"
)

// AllStates returns all valid state values.
func AllStates() []State {
	return []State{StateOpen, StateClosed, StatePartial}
}

// Opening level bounds. 0 is fully closed, 100 is fully open.
const (
	LevelClosed = 0
	LevelOpen   = 100
)

// Blind represents a single networked window blind.
//
// The synchronization controller owns the authoritative in-memory copy at
// runtime; copies persisted in the remote store and the local cache are not
// authoritative while the controller holds a fresher value.
type Blind struct {
	// Identity
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`

	// Position
	State        State `json:"state"`
	OpeningLevel int   `json:"openingLevel"`

	// Ambient readings (optional, reported by the device)
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`

	// Connectivity
	Connected bool `json:"connected"`

	// UpdatedAt is the time of the last merge, assigned locally.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Copy returns an independent copy of the Blind.
// Pointer fields are cloned so modifications to the copy do not leak
// back into the controller's collection.
func (b *Blind) Copy() *Blind {
	if b == nil {
		return nil
	}

	cpy := *b
	if b.Temperature != nil {
		t := *b.Temperature
		cpy.Temperature = &t
	}
	if b.Humidity != nil {
		h := *b.Humidity
		cpy.Humidity = &h
	}
	return &cpy
}

// Normalize re-establishes the state/level invariant after a merge:
// closed forces level 0, open with level 0 is promoted to fully open,
// and when only a level is known the state is derived from it.
func (b *Blind) Normalize() {
	switch b.State {
	case StateClosed:
		b.OpeningLevel = LevelClosed
	case StateOpen:
		if b.OpeningLevel <= LevelClosed {
			b.OpeningLevel = LevelOpen
		}
	case StatePartial:
		if b.OpeningLevel <= LevelClosed {
			b.State = StateClosed
		} else if b.OpeningLevel >= LevelOpen {
			b.State = StateOpen
		}
	default:
		// No state reported yet; derive one from the level.
		b.State = stateForLevel(b.OpeningLevel)
	}
}

// stateForLevel maps an opening level onto the state enum.
func stateForLevel(level int) State {
	switch {
	case level <= LevelClosed:
		return StateClosed
	case level >= LevelOpen:
		return StateOpen
	default:
		return StatePartial
	}
}

// Schedule is a timed action attached to a blind.
//
// Schedules are created, edited and deleted only through the remote store
// and mirrored into the local cache on success. The synchronization layer
// applies no merge logic beyond collection replacement.
type Schedule struct {
	ID         string    `json:"id"`
	BlindID    string    `json:"blindId"`
	TriggerAt  string    `json:"triggerAt"`  // "HH:MM" wall-clock trigger
	Recurrence string    `json:"recurrence"` // e.g. "daily", "weekdays", cron-style
	Action     Action    `json:"action"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Action is the target a schedule applies when it fires.
type Action struct {
	State        State `json:"state,omitempty"`
	OpeningLevel *int  `json:"openingLevel,omitempty"`
}
