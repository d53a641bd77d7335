package blind

import "errors"

// Domain errors for the blind package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, blind.ErrBlindNotFound) {
//	    // handle not found case
//	}
var (
	// ErrBlindNotFound is returned when a blind ID does not exist.
	ErrBlindNotFound = errors.New("blind: not found")

	// ErrBlindExists is returned when creating a blind with an ID that already exists.
	ErrBlindExists = errors.New("blind: already exists")

	// ErrInvalidBlind is returned when blind validation fails.
	ErrInvalidBlind = errors.New("blind: invalid")

	// ErrInvalidState is returned when a state value is not recognised.
	ErrInvalidState = errors.New("blind: invalid state")

	// ErrInvalidLevel is returned when an opening level is outside 0-100.
	ErrInvalidLevel = errors.New("blind: invalid opening level")

	// ErrInvalidName is returned when a blind name is empty or too long.
	ErrInvalidName = errors.New("blind: invalid name")

	// ErrMalformedPayload is returned when an inbound message cannot be
	// decoded into any usable field set. Callers log and drop it; it is
	// never propagated past the merge path.
	ErrMalformedPayload = errors.New("blind: malformed payload")

	// ErrScheduleNotFound is returned when a schedule ID does not exist.
	ErrScheduleNotFound = errors.New("blind: schedule not found")
)
