package games

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Player is one roster entry in a game.
//
// TotalScore normally equals the sum of RoundScores. Penalties are the
// exception: they deduct from TotalScore without a RoundScores entry, so the
// two diverge once a penalty has been applied. That divergence is intentional;
// the round history is an accumulation log, not a ledger of deductions.
type Player struct {
	Name        string    `json:"name"`
	TotalScore  float64   `json:"totalScore"`
	RoundScores []float64 `json:"roundScores"`
}

// Game is one tracked match. Field serialization mirrors the records written
// by earlier releases so stored games keep round-tripping.
type Game struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	LastModified time.Time
	Players      []Player
	CurrentRound int
	GameStarted  bool
	IsCompleted  bool
	// CurrentRoundInputs holds raw, not-yet-submitted score text keyed by
	// player name, so typed input survives a reload.
	CurrentRoundInputs map[string]string
}

// gameJSON is the wire/storage shape of Game. Timestamps are epoch
// milliseconds, matching the legacy records.
type gameJSON struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	CreatedAt          int64             `json:"createdAt"`
	LastModified       int64             `json:"lastModified"`
	Players            []Player          `json:"players"`
	CurrentRound       int               `json:"currentRound"`
	GameStarted        bool              `json:"gameStarted"`
	IsCompleted        bool              `json:"isCompleted"`
	CurrentRoundInputs map[string]string `json:"currentRoundInputs"`
}

// MarshalJSON encodes the game with millisecond timestamps.
func (g Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameJSON{
		ID:                 g.ID,
		Name:               g.Name,
		CreatedAt:          g.CreatedAt.UTC().UnixMilli(),
		LastModified:       g.LastModified.UTC().UnixMilli(),
		Players:            g.Players,
		CurrentRound:       g.CurrentRound,
		GameStarted:        g.GameStarted,
		IsCompleted:        g.IsCompleted,
		CurrentRoundInputs: g.CurrentRoundInputs,
	})
}

// UnmarshalJSON decodes a stored game, tolerating records written before the
// multi-game collection existed (missing rounds default to 1).
func (g *Game) UnmarshalJSON(data []byte) error {
	var raw gameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal game: %w", err)
	}
	g.ID = raw.ID
	g.Name = raw.Name
	g.CreatedAt = time.UnixMilli(raw.CreatedAt).UTC()
	g.LastModified = time.UnixMilli(raw.LastModified).UTC()
	g.Players = raw.Players
	g.CurrentRound = raw.CurrentRound
	if g.CurrentRound < 1 {
		g.CurrentRound = 1
	}
	g.GameStarted = raw.GameStarted
	g.IsCompleted = raw.IsCompleted
	g.CurrentRoundInputs = raw.CurrentRoundInputs
	return nil
}

// Clone returns a deep copy. Mutating the clone's roster, round history, or
// pending inputs never touches the receiver's backing storage.
func (g Game) Clone() Game {
	out := g
	if g.Players != nil {
		out.Players = make([]Player, len(g.Players))
		for i, p := range g.Players {
			out.Players[i] = p
			if p.RoundScores != nil {
				out.Players[i].RoundScores = append([]float64(nil), p.RoundScores...)
			}
		}
	}
	if g.CurrentRoundInputs != nil {
		out.CurrentRoundInputs = make(map[string]string, len(g.CurrentRoundInputs))
		for name, value := range g.CurrentRoundInputs {
			out.CurrentRoundInputs[name] = value
		}
	}
	return out
}

// maxNamedPlayers caps how many roster names appear in a derived game name.
const maxNamedPlayers = 3

// DeriveName builds a display label from the roster: the first three player
// names comma-joined, with a "+N more" suffix when the roster is longer.
func DeriveName(players []Player) string {
	if len(players) == 0 {
		return "New Game"
	}
	names := make([]string, 0, maxNamedPlayers)
	for _, p := range players {
		if len(names) == maxNamedPlayers {
			break
		}
		names = append(names, p.Name)
	}
	joined := strings.Join(names, ", ")
	if extra := len(players) - maxNamedPlayers; extra > 0 {
		return fmt.Sprintf("%s +%d more", joined, extra)
	}
	return joined
}

// FindPlayer returns the index of the player with the exact given name, or -1.
func FindPlayer(players []Player, name string) int {
	for i, p := range players {
		if p.Name == name {
			return i
		}
	}
	return -1
}
