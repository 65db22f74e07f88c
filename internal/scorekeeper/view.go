package scorekeeper

import "github.com/louisbranch/bakscore/internal/games"

// Screen identifies which surface the host should be presenting.
type Screen string

const (
	// ScreenList shows stored games to resume or delete.
	ScreenList Screen = "list"
	// ScreenSetup shows roster assembly before a game starts.
	ScreenSetup Screen = "setup"
	// ScreenActive shows the round form and standings of a running game.
	ScreenActive Screen = "active"
)

// View receives render notifications after every mutating operation. The
// keeper never inspects host rendering state; this interface is its only way
// to reach a UI.
type View interface {
	// RosterChanged fires when players join or leave.
	RosterChanged(players []games.Player)
	// StartEligibilityChanged fires when the roster crosses the minimum size.
	StartEligibilityChanged(enabled bool)
	// RoundAdvanced fires when a round submission moves the counter.
	RoundAdvanced(round int)
	// ScoreboardChanged fires whenever standings may have shifted.
	ScoreboardChanged(board games.Scoreboard)
	// ScreenTransition fires when the keeper moves between surfaces.
	ScreenTransition(screen Screen)
}

// NopView discards every notification. Hosts that poll keeper state instead
// of reacting to callbacks can use it directly.
type NopView struct{}

func (NopView) RosterChanged([]games.Player)       {}
func (NopView) StartEligibilityChanged(bool)       {}
func (NopView) RoundAdvanced(int)                  {}
func (NopView) ScoreboardChanged(games.Scoreboard) {}
func (NopView) ScreenTransition(Screen)            {}
