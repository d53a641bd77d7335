package blind

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxNameLength bounds blind names to keep UI layouts and topic payloads sane.
const maxNameLength = 100

// Validate checks a Blind for structural errors.
//
// Returns a wrapped sentinel error (ErrInvalidName, ErrInvalidState,
// ErrInvalidLevel) describing the first failure, or nil if valid.
func Validate(b *Blind) error {
	if b.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBlind)
	}
	if err := validateName(b.Name); err != nil {
		return err
	}
	if b.State != "" {
		if err := validateState(b.State); err != nil {
			return err
		}
	}
	return validateLevel(b.OpeningLevel)
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

func validateState(s State) error {
	switch s {
	case StateOpen, StateClosed, StatePartial:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

func validateLevel(level int) error {
	if level < LevelClosed || level > LevelOpen {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return nil
}

// GenerateID creates a new UUID for a blind.
func GenerateID() string {
	return uuid.New().String()
}
