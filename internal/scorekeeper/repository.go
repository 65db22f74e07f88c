package scorekeeper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/louisbranch/bakscore/internal/games"
	"github.com/louisbranch/bakscore/internal/platform/id"
	"github.com/louisbranch/bakscore/internal/storage"
)

// migratedGameName labels the record produced by the legacy migration.
const migratedGameName = "Migrated Game"

// Repository manages durable game records on top of a storage.GameStore.
//
// No storage failure escapes: reads degrade to empty values and writes report
// success as a boolean, so callers never crash on a corrupt or unavailable
// store.
type Repository struct {
	store storage.GameStore
	now   func() time.Time
	newID func() (string, error)
}

// NewRepository creates a repository over the given store.
func NewRepository(store storage.GameStore) *Repository {
	return &Repository{store: store, now: time.Now, newID: id.NewID}
}

// CreateGame builds a fresh game record from a roster. The record is not
// persisted; callers decide when it first hits the store.
//
// The display name is derived from the roster unless customName is non-empty.
func (r *Repository) CreateGame(players []games.Player, customName string) (games.Game, error) {
	gameID, err := r.newID()
	if err != nil {
		return games.Game{}, fmt.Errorf("allocate game id: %w", err)
	}

	name := customName
	if name == "" {
		name = games.DeriveName(players)
	}

	now := r.now().UTC()
	roster := make([]games.Player, len(players))
	copy(roster, players)

	return games.Game{
		ID:                 gameID,
		Name:               name,
		CreatedAt:          now,
		LastModified:       now,
		Players:            roster,
		CurrentRound:       1,
		GameStarted:        false,
		IsCompleted:        false,
		CurrentRoundInputs: map[string]string{},
	}, nil
}

// SaveGame stamps the modification time and upserts the record. It reports
// false, leaving the store at its last successful write, when persistence
// fails.
func (r *Repository) SaveGame(ctx context.Context, game *games.Game) bool {
	if game == nil || game.ID == "" {
		log.Printf("save game: record has no id")
		return false
	}
	stamped := *game
	stamped.LastModified = r.now().UTC()
	if err := r.store.PutGame(ctx, stamped); err != nil {
		log.Printf("save game %s: %v", game.ID, err)
		return false
	}
	// The in-memory record takes the new timestamp only once it is durable.
	game.LastModified = stamped.LastModified
	return true
}

// LoadGame fetches a record by id. The boolean is false when the record is
// missing or unreadable.
func (r *Repository) LoadGame(ctx context.Context, gameID string) (games.Game, bool) {
	game, err := r.store.GetGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load game %s: %v", gameID, err)
		}
		return games.Game{}, false
	}
	return game, true
}

// ListGames returns every stored game, most recently touched first. An
// unreadable store yields an empty list, never an error.
func (r *Repository) ListGames(ctx context.Context) []games.Game {
	listed, err := r.store.ListGames(ctx)
	if err != nil {
		log.Printf("list games: %v", err)
		return []games.Game{}
	}
	sort.SliceStable(listed, func(i, j int) bool {
		return listed[i].LastModified.After(listed[j].LastModified)
	})
	return listed
}

// DeleteGame removes a record, clearing the current-game pointer when it
// referenced the deleted id.
func (r *Repository) DeleteGame(ctx context.Context, gameID string) bool {
	current := r.CurrentGameID(ctx)
	if err := r.store.DeleteGame(ctx, gameID); err != nil {
		log.Printf("delete game %s: %v", gameID, err)
		return false
	}
	if current == gameID {
		if err := r.store.ClearCurrentGameID(ctx); err != nil {
			log.Printf("clear current game pointer: %v", err)
		}
	}
	return true
}

// SetCurrentGameID persists the pointer to the game to resume on next load.
func (r *Repository) SetCurrentGameID(ctx context.Context, gameID string) {
	if err := r.store.SetCurrentGameID(ctx, gameID); err != nil {
		log.Printf("set current game %s: %v", gameID, err)
	}
}

// CurrentGameID returns the persisted pointer, or "" when unset.
func (r *Repository) CurrentGameID(ctx context.Context) string {
	gameID, err := r.store.CurrentGameID(ctx)
	if err != nil {
		log.Printf("current game id: %v", err)
		return ""
	}
	return gameID
}

// ClearCurrentGameID removes the pointer.
func (r *Repository) ClearCurrentGameID(ctx context.Context) {
	if err := r.store.ClearCurrentGameID(ctx); err != nil {
		log.Printf("clear current game id: %v", err)
	}
}

// CurrentGame loads the game the pointer references. The boolean is false
// when no pointer is set or the record is gone.
func (r *Repository) CurrentGame(ctx context.Context) (games.Game, bool) {
	gameID := r.CurrentGameID(ctx)
	if gameID == "" {
		return games.Game{}, false
	}
	return r.LoadGame(ctx, gameID)
}

// MigrateLegacyGame converts the pre-collection single-game record into a
// collection entry, sets it current, and clears the legacy slot.
//
// The legacy slot is deleted only after the new record is confirmed
// persisted, so a crash mid-migration never loses data; the worst case is a
// second migration on next start. With no legacy record present the call is
// a no-op returning false, which makes the migration idempotent.
func (r *Repository) MigrateLegacyGame(ctx context.Context) bool {
	legacy, err := r.store.LegacyGame(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("read legacy game: %v", err)
		}
		return false
	}

	migrated, err := r.CreateGame(legacy.Players, migratedGameName)
	if err != nil {
		log.Printf("migrate legacy game: %v", err)
		return false
	}
	migrated.CurrentRound = legacy.CurrentRound
	if migrated.CurrentRound < 1 {
		migrated.CurrentRound = 1
	}
	migrated.GameStarted = legacy.GameStarted
	if legacy.CurrentRoundInputs != nil {
		migrated.CurrentRoundInputs = legacy.CurrentRoundInputs
	}

	if !r.SaveGame(ctx, &migrated) {
		// Legacy record stays put so a later start can retry.
		return false
	}
	r.SetCurrentGameID(ctx, migrated.ID)

	if err := r.store.DeleteLegacyGame(ctx); err != nil {
		log.Printf("delete legacy game slot: %v", err)
	}
	log.Printf("migrated legacy game into %s", migrated.ID)
	return true
}
