// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

// Validation rejections (empty names, undersized rosters, blank rounds,
// unaffordable penalties) are silent no-ops in the state machine, and
// migration failures degrade to a logged "no migration occurred"; neither
// materializes as an error value, so no codes exist for them.
const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodePlayerIndexInvalid marks a roster index that does not parse.
	CodePlayerIndexInvalid Code = "PLAYER_INDEX_INVALID"

	// CodeGameNotFound marks a lookup for a record that is not stored.
	CodeGameNotFound Code = "GAME_NOT_FOUND"

	// CodeStorageFailure marks a durable-store write or read that failed.
	CodeStorageFailure Code = "STORAGE_FAILURE"
)
