package blind

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusPatch is a field-level update for a Blind.
//
// Nil pointer fields are absent and leave the corresponding Blind field
// untouched; present fields overwrite. Both inbound telemetry and the
// optimistic command path express their changes as a StatusPatch so the
// two flows share one merge rule.
type StatusPatch struct {
	// BlindID identifies the target when the patch arrives on the shared
	// status topic. Device-scoped topics carry the ID in the topic itself.
	BlindID string `json:"deviceId,omitempty"`

	State        *State   `json:"state,omitempty"`
	OpeningLevel *int     `json:"openingLevel,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	Connected    *bool    `json:"connected,omitempty"`
}

// IsEmpty reports whether the patch carries no status fields at all.
func (p StatusPatch) IsEmpty() bool {
	return p.State == nil && p.OpeningLevel == nil &&
		p.Temperature == nil && p.Humidity == nil && p.Connected == nil
}

// DecodeStatusPatch parses an inbound status payload.
//
// Returns ErrMalformedPayload if the payload is not a JSON object or
// decodes to an object with no usable status fields and no device ID.
func DecodeStatusPatch(raw []byte) (StatusPatch, error) {
	var p StatusPatch
	if err := json.Unmarshal(raw, &p); err != nil {
		return StatusPatch{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.IsEmpty() && p.BlindID == "" {
		return StatusPatch{}, fmt.Errorf("%w: no usable fields", ErrMalformedPayload)
	}
	if p.State != nil {
		if err := validateState(*p.State); err != nil {
			return StatusPatch{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}
	if p.OpeningLevel != nil {
		if err := validateLevel(*p.OpeningLevel); err != nil {
			return StatusPatch{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}
	return p, nil
}

// Apply merges the patch into the blind: present fields overwrite, absent
// fields are left alone. The blind's UpdatedAt is always set to now (the
// merge time), never to anything carried in the payload, and the
// state/level invariant is re-established afterwards.
func (b *Blind) Apply(p StatusPatch, now time.Time) {
	if p.State != nil {
		b.State = *p.State
		// A state change without an explicit level derives the level,
		// otherwise a stale level could contradict the new state.
		if p.OpeningLevel == nil {
			switch *p.State {
			case StateOpen:
				b.OpeningLevel = LevelOpen
			case StateClosed:
				b.OpeningLevel = LevelClosed
			case StatePartial:
				// Keep the current level for partial.
			}
		}
	}
	if p.OpeningLevel != nil {
		b.OpeningLevel = *p.OpeningLevel
		if p.State == nil {
			b.State = stateForLevel(*p.OpeningLevel)
		}
	}
	if p.Temperature != nil {
		t := *p.Temperature
		b.Temperature = &t
	}
	if p.Humidity != nil {
		h := *p.Humidity
		b.Humidity = &h
	}
	if p.Connected != nil {
		b.Connected = *p.Connected
	}

	b.Normalize()
	b.UpdatedAt = now
}

// Command is a user-issued control request for a blind.
//
// Either State or OpeningLevel (or both) may be given; Target derives the
// full field set the device should reach.
type Command struct {
	State        *State `json:"state,omitempty"`
	OpeningLevel *int   `json:"openingLevel,omitempty"`
}

// Target computes the complete target field set for the command:
// a requested "open" without a level means fully open, "closed" means
// fully closed, and a bare level derives its state.
func (c Command) Target() (StatusPatch, error) {
	if c.State == nil && c.OpeningLevel == nil {
		return StatusPatch{}, fmt.Errorf("%w: command carries no target", ErrInvalidBlind)
	}

	p := StatusPatch{State: c.State, OpeningLevel: c.OpeningLevel}

	if c.State != nil {
		if err := validateState(*c.State); err != nil {
			return StatusPatch{}, err
		}
		if c.OpeningLevel == nil {
			switch *c.State {
			case StateOpen:
				lvl := LevelOpen
				p.OpeningLevel = &lvl
			case StateClosed:
				lvl := LevelClosed
				p.OpeningLevel = &lvl
			case StatePartial:
				// Level intentionally left unchanged; the merge keeps the
				// current position.
			}
		}
	}
	if c.OpeningLevel != nil {
		if err := validateLevel(*c.OpeningLevel); err != nil {
			return StatusPatch{}, err
		}
		if c.State == nil {
			st := stateForLevel(*c.OpeningLevel)
			p.State = &st
		}
	}

	return p, nil
}

// CommandAction is the action discriminator on the control topic.
type CommandAction string

// Control topic actions.
const (
	ActionChangeStatus CommandAction = "changeStatus"
	ActionUpdate       CommandAction = "update"
	ActionDelete       CommandAction = "delete"
)

// CommandMessage is the outbound wire format for the control topic.
type CommandMessage struct {
	Action       CommandAction `json:"action"`
	State        *State        `json:"state,omitempty"`
	OpeningLevel *int          `json:"openingLevel,omitempty"`
	Name         *string       `json:"name,omitempty"`
	Location     *string       `json:"location,omitempty"`
}
