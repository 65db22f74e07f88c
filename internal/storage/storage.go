package storage

import (
	"context"

	"github.com/louisbranch/bakscore/internal/games"
	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing. Callers use this to
// differentiate a legitimate "no such game" state from data corruption.
var ErrNotFound = apperrors.New(apperrors.CodeGameNotFound, "record not found")

// GameStore persists the game collection, the current-game pointer, and the
// legacy single-game slot left behind by the pre-collection format.
type GameStore interface {
	// PutGame upserts a game record keyed by its id.
	PutGame(ctx context.Context, game games.Game) error
	// GetGame fetches a game by id, returning ErrNotFound when absent.
	GetGame(ctx context.Context, id string) (games.Game, error)
	// DeleteGame removes a game record. Deleting an absent id is not an error.
	DeleteGame(ctx context.Context, id string) error
	// ListGames returns every stored game in no particular order.
	ListGames(ctx context.Context) ([]games.Game, error)

	// SetCurrentGameID persists the pointer to the game to resume next load.
	SetCurrentGameID(ctx context.Context, id string) error
	// CurrentGameID returns the pointer, or "" when unset.
	CurrentGameID(ctx context.Context) (string, error)
	// ClearCurrentGameID removes the pointer.
	ClearCurrentGameID(ctx context.Context) error

	// LegacyGame reads the pre-collection single-game record, returning
	// ErrNotFound when the slot is empty.
	LegacyGame(ctx context.Context) (games.Game, error)
	// DeleteLegacyGame clears the legacy slot.
	DeleteLegacyGame(ctx context.Context) error

	// Close releases the underlying database.
	Close() error
}
