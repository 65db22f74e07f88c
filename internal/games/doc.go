// Package games models the score-tracking domain.
//
// A Game is one played match: its roster, per-round score history, and
// lifecycle flags. The package also owns the fixed tables the tracker is
// configured with — shortcut names and penalty ("bak") thresholds — and the
// scoreboard derivation used by every view of a running game.
//
// The package holds no persistence or transport concerns; stores and the
// session state machine build on these types.
package games
