// Package blind defines the domain model for networked window blinds.
//
// It holds the types shared by every layer of the service:
//
//   - Blind: a single controllable blind with its live status fields
//   - StatusPatch: a field-level update applied to a Blind (inbound
//     telemetry and optimistic command targets use the same merge rule)
//   - Command: a user-issued control request before target derivation
//   - Schedule: a timed action attached to a blind, treated as
//     pass-through data by the synchronization layer
//
// # State invariant
//
// A blind's state and opening level are kept consistent by Apply and
// Normalize: state "open" implies a level above zero, state "closed"
// implies level zero. Every merge re-establishes this invariant, so a
// payload carrying only one of the two fields never leaves the record
// contradictory.
//
// # Merge semantics
//
// Merges are field-level unions: only fields present in a StatusPatch
// overwrite the corresponding Blind fields. The UpdatedAt timestamp is
// always assigned by the caller at merge time; timestamps carried in
// payloads are not trusted for ordering.
package blind
