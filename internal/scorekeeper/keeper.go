package scorekeeper

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/louisbranch/bakscore/internal/games"
)

// minPlayers is the roster size required before a game can start.
const minPlayers = 2

// Keeper is the session state machine. It owns the active game value and is
// the single writer of its persisted record.
//
// All mutation happens through keeper operations on one logical thread; the
// keeper itself takes no locks. Invalid operations (empty or duplicate names,
// an undersized roster, an all-blank round, an unaffordable penalty) change
// nothing and raise no error.
type Keeper struct {
	repo   *Repository
	view   View
	game   games.Game
	screen Screen
}

// NewKeeper creates a keeper over the repository. A nil view is replaced by
// NopView.
func NewKeeper(repo *Repository, view View) *Keeper {
	if view == nil {
		view = NopView{}
	}
	return &Keeper{
		repo:   repo,
		view:   view,
		game:   blankGame(),
		screen: ScreenList,
	}
}

func blankGame() games.Game {
	return games.Game{CurrentRound: 1, CurrentRoundInputs: map[string]string{}}
}

// Init runs the startup sequence: migrate any legacy record, then resume the
// current game when one is running, falling back to the game list.
func (k *Keeper) Init(ctx context.Context) {
	k.repo.MigrateLegacyGame(ctx)

	if game, ok := k.repo.CurrentGame(ctx); ok && game.GameStarted {
		k.Restore(game)
		return
	}
	k.ShowGameList()
}

// Screen returns the surface the keeper currently presents.
func (k *Keeper) Screen() Screen {
	return k.screen
}

// Game returns a detached copy of the active game. The copy shares no
// backing storage with the keeper's live state, so callers may read it after
// the keeper has moved on to other mutations.
func (k *Keeper) Game() games.Game {
	return k.game.Clone()
}

// Scoreboard derives the standings of the active game.
func (k *Keeper) Scoreboard() games.Scoreboard {
	return games.NewScoreboard(k.game.Players)
}

// StartEligible reports whether the roster is large enough to start.
func (k *Keeper) StartEligible() bool {
	return len(k.game.Players) >= minPlayers
}

// GamesList returns stored games, most recently touched first.
func (k *Keeper) GamesList(ctx context.Context) []games.Game {
	return k.repo.ListGames(ctx)
}

// ShowGameList moves to the stored-games surface. The active game keeps its
// record and pointer so it can be resumed.
func (k *Keeper) ShowGameList() {
	k.screen = ScreenList
	k.view.ScreenTransition(ScreenList)
}

// NewSetup discards the in-memory roster and opens a blank setup surface.
func (k *Keeper) NewSetup() {
	k.game = blankGame()
	k.screen = ScreenSetup
	k.view.ScreenTransition(ScreenSetup)
	k.view.RosterChanged(k.game.Players)
	k.view.StartEligibilityChanged(false)
}

// AddPlayer adds a player to the setup roster. Input is trimmed and run
// through shortcut expansion; empty or duplicate names change nothing.
func (k *Keeper) AddPlayer(ctx context.Context, rawName string) {
	if k.game.GameStarted {
		return
	}
	name := games.ResolveName(rawName)
	if name == "" {
		return
	}
	if games.FindPlayer(k.game.Players, name) >= 0 {
		return
	}

	k.game.Players = append(k.game.Players, games.Player{Name: name})
	k.persist(ctx)
	k.view.RosterChanged(k.game.Players)
	k.view.StartEligibilityChanged(k.StartEligible())
}

// RemovePlayer drops the roster entry at index. Out-of-range indexes and
// started games change nothing.
func (k *Keeper) RemovePlayer(ctx context.Context, index int) {
	if k.game.GameStarted {
		return
	}
	if index < 0 || index >= len(k.game.Players) {
		return
	}

	k.game.Players = append(k.game.Players[:index], k.game.Players[index+1:]...)
	k.persist(ctx)
	k.view.RosterChanged(k.game.Players)
	k.view.StartEligibilityChanged(k.StartEligible())
}

// AddMidGamePlayer joins a player into a running game. The newcomer is
// backfilled with a zero score for every completed round so all round
// histories stay the same length.
func (k *Keeper) AddMidGamePlayer(ctx context.Context, rawName string) {
	if !k.game.GameStarted {
		return
	}
	name := games.ResolveName(rawName)
	if name == "" {
		return
	}
	if games.FindPlayer(k.game.Players, name) >= 0 {
		return
	}

	player := games.Player{Name: name}
	for i := 1; i < k.game.CurrentRound; i++ {
		player.RoundScores = append(player.RoundScores, 0)
	}

	k.game.Players = append(k.game.Players, player)
	k.persist(ctx)
	k.view.RosterChanged(k.game.Players)
	k.view.ScoreboardChanged(k.Scoreboard())
}

// StartGame transitions setup into an active game: it allocates and persists
// the record, sets it current, and opens the round form. Fewer than two
// players is a no-op.
func (k *Keeper) StartGame(ctx context.Context) {
	if k.game.GameStarted || len(k.game.Players) < minPlayers {
		return
	}

	game, err := k.repo.CreateGame(k.game.Players, "")
	if err != nil {
		log.Printf("start game: %v", err)
		return
	}
	game.GameStarted = true

	if !k.repo.SaveGame(ctx, &game) {
		return
	}
	k.repo.SetCurrentGameID(ctx, game.ID)

	k.game = game
	k.screen = ScreenActive
	k.view.ScreenTransition(ScreenActive)
	k.view.RoundAdvanced(k.game.CurrentRound)
	k.view.ScoreboardChanged(k.Scoreboard())
}

// UpdatePendingInput records a player's typed-but-unsubmitted score and
// persists immediately so a reload does not lose it.
func (k *Keeper) UpdatePendingInput(ctx context.Context, playerName, rawValue string) {
	if !k.game.GameStarted {
		return
	}
	if games.FindPlayer(k.game.Players, playerName) < 0 {
		return
	}
	if k.game.CurrentRoundInputs == nil {
		k.game.CurrentRoundInputs = map[string]string{}
	}
	k.game.CurrentRoundInputs[playerName] = rawValue
	k.persist(ctx)
}

// SubmitRound closes the current round: every player's pending input is
// coerced to a number (blank or unparsable becomes 0), appended to their
// history, and added to their total. A round where every input is blank is
// rejected outright.
func (k *Keeper) SubmitRound(ctx context.Context) {
	if !k.game.GameStarted {
		return
	}

	hasInput := false
	for _, player := range k.game.Players {
		if strings.TrimSpace(k.game.CurrentRoundInputs[player.Name]) != "" {
			hasInput = true
			break
		}
	}
	if !hasInput {
		return
	}

	for i := range k.game.Players {
		player := &k.game.Players[i]
		score := parseScore(k.game.CurrentRoundInputs[player.Name])
		player.RoundScores = append(player.RoundScores, score)
		player.TotalScore += score
	}

	k.game.CurrentRound++
	k.game.CurrentRoundInputs = map[string]string{}
	k.persist(ctx)
	k.view.RoundAdvanced(k.game.CurrentRound)
	k.view.ScoreboardChanged(k.Scoreboard())
}

// ApplyPenalty deducts points from a player's total without touching their
// round history. Unknown players and totals below the deduction change
// nothing.
func (k *Keeper) ApplyPenalty(ctx context.Context, playerName string, points float64) {
	if !k.game.GameStarted || points <= 0 {
		return
	}
	index := games.FindPlayer(k.game.Players, playerName)
	if index < 0 {
		return
	}
	if k.game.Players[index].TotalScore < points {
		return
	}

	k.game.Players[index].TotalScore -= points
	k.persist(ctx)
	k.view.ScoreboardChanged(k.Scoreboard())
}

// ResumeGame loads a stored game, sets it current, and restores it. A
// missing id redirects to the game list.
func (k *Keeper) ResumeGame(ctx context.Context, gameID string) {
	game, ok := k.repo.LoadGame(ctx, gameID)
	if !ok {
		log.Printf("resume game %s: not found", gameID)
		k.ShowGameList()
		return
	}
	k.repo.SetCurrentGameID(ctx, gameID)
	k.Restore(game)
}

// Restore rehydrates the keeper from a persisted record and re-renders the
// surface the record's lifecycle implies.
func (k *Keeper) Restore(game games.Game) {
	if game.CurrentRound < 1 {
		game.CurrentRound = 1
	}
	if game.CurrentRoundInputs == nil {
		game.CurrentRoundInputs = map[string]string{}
	}
	k.game = game

	if game.GameStarted && len(game.Players) > 0 {
		k.screen = ScreenActive
		k.view.ScreenTransition(ScreenActive)
		k.view.RoundAdvanced(game.CurrentRound)
		k.view.ScoreboardChanged(k.Scoreboard())
		return
	}

	k.screen = ScreenSetup
	k.view.ScreenTransition(ScreenSetup)
	k.view.RosterChanged(k.game.Players)
	k.view.StartEligibilityChanged(k.StartEligible())
}

// DeleteGame removes a stored game. Deleting the active game resets the
// keeper to a blank state; the repository clears the current pointer.
func (k *Keeper) DeleteGame(ctx context.Context, gameID string) bool {
	if !k.repo.DeleteGame(ctx, gameID) {
		return false
	}
	if k.game.ID == gameID {
		k.game = blankGame()
	}
	return true
}

// persist writes the active game through the repository. Before a record
// exists (setup roster prior to start) there is nothing to write.
func (k *Keeper) persist(ctx context.Context) {
	if k.game.ID == "" {
		return
	}
	k.repo.SaveGame(ctx, &k.game)
}

// parseScore coerces raw round input: blank or unparsable text scores zero.
func parseScore(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return score
}
