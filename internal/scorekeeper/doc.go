// Package scorekeeper owns the score-tracking session lifecycle.
//
// Repository handles durable game records: construction, upserts, listing by
// recency, deletion, the current-game pointer, and the one-time migration of
// the legacy single-game slot. It never lets a storage failure escape; every
// call degrades to a safe default and logs.
//
// Keeper is the session state machine. It owns the active game value, applies
// roster and round mutations under the game's invariants, persists after
// every change, and notifies a View of what needs re-rendering. Validation
// failures are silent no-ops; the host decides how to message them.
package scorekeeper
