// Package storage defines the persistence interface for the score tracker.
//
// It abstracts the game collection, the current-game pointer, and the legacy
// single-game slot consumed by the one-time migration. Implementations live
// in subpackages (bbolt for the default key/value backend, sqlite for the
// SQL-backed alternative).
//
// Implementations return ErrNotFound for missing records; callers decide
// whether a miss is an error or a default.
package storage
