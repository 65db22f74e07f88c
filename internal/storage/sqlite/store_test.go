package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/bakscore/internal/games"
	"github.com/louisbranch/bakscore/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bakscore.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGameStorePutGet(t *testing.T) {
	store := openTestStore(t)

	now := time.Date(2026, 2, 1, 20, 30, 0, 0, time.UTC)
	game := games.Game{
		ID:           "game-123",
		Name:         "Alice, Bob",
		CreatedAt:    now,
		LastModified: now,
		Players: []games.Player{
			{Name: "Alice", TotalScore: 12, RoundScores: []float64{10, 2}},
			{Name: "Bob", TotalScore: 7, RoundScores: []float64{5, 2}},
		},
		CurrentRound: 3,
		GameStarted:  true,
	}

	if err := store.PutGame(context.Background(), game); err != nil {
		t.Fatalf("put game: %v", err)
	}

	loaded, err := store.GetGame(context.Background(), "game-123")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loaded.Name != game.Name || loaded.CurrentRound != 3 || !loaded.GameStarted {
		t.Fatalf("unexpected record: %+v", loaded)
	}
	if len(loaded.Players) != 2 || loaded.Players[1].TotalScore != 7 {
		t.Fatalf("unexpected players: %+v", loaded.Players)
	}
}

func TestGameStorePutReplacesExisting(t *testing.T) {
	store := openTestStore(t)

	game := games.Game{ID: "game-1", Name: "before"}
	if err := store.PutGame(context.Background(), game); err != nil {
		t.Fatalf("put game: %v", err)
	}
	game.Name = "after"
	if err := store.PutGame(context.Background(), game); err != nil {
		t.Fatalf("replace game: %v", err)
	}

	listed, err := store.ListGames(context.Background())
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected upsert to keep one record, got %d", len(listed))
	}
	if listed[0].Name != "after" {
		t.Fatalf("expected replacement, got %q", listed[0].Name)
	}
}

func TestGameStoreGetNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetGame(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGameStoreDelete(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutGame(context.Background(), games.Game{ID: "game-1"}); err != nil {
		t.Fatalf("put game: %v", err)
	}
	if err := store.DeleteGame(context.Background(), "game-1"); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	if _, err := store.GetGame(context.Background(), "game-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCurrentGamePointer(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetCurrentGameID(context.Background(), "game-9"); err != nil {
		t.Fatalf("set current game: %v", err)
	}
	id, err := store.CurrentGameID(context.Background())
	if err != nil {
		t.Fatalf("current game id: %v", err)
	}
	if id != "game-9" {
		t.Fatalf("expected game-9, got %q", id)
	}

	if err := store.ClearCurrentGameID(context.Background()); err != nil {
		t.Fatalf("clear current game: %v", err)
	}
	id, err = store.CurrentGameID(context.Background())
	if err != nil {
		t.Fatalf("current game id: %v", err)
	}
	if id != "" {
		t.Fatalf("expected cleared pointer, got %q", id)
	}
}

func TestLegacyGameSlot(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LegacyGame(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for empty slot, got %v", err)
	}

	legacy := games.Game{Players: []games.Player{{Name: "Alice"}}, CurrentRound: 2}
	if err := store.PutLegacyGame(context.Background(), legacy); err != nil {
		t.Fatalf("put legacy game: %v", err)
	}
	loaded, err := store.LegacyGame(context.Background())
	if err != nil {
		t.Fatalf("legacy game: %v", err)
	}
	if loaded.CurrentRound != 2 {
		t.Fatalf("unexpected legacy record: %+v", loaded)
	}

	if err := store.DeleteLegacyGame(context.Background()); err != nil {
		t.Fatalf("delete legacy game: %v", err)
	}
	if _, err := store.LegacyGame(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error")
	}
}
