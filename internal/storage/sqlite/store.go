// Package sqlite provides the SQLite-backed game store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/bakscore/internal/games"
	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
	"github.com/louisbranch/bakscore/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/bakscore/internal/storage"
	"github.com/louisbranch/bakscore/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

const (
	currentGameKey = "current-game-id"
	legacyGameKey  = "game-state"
)

// Store provides a SQLite-backed game store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path and applies embedded
// migrations before handing the store to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutGame upserts a game record.
func (s *Store) PutGame(ctx context.Context, game games.Game) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO games (id, payload, last_modified) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, last_modified = excluded.last_modified
`, game.ID, string(payload), game.LastModified.UTC().UnixMilli())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "upsert game", err)
	}
	return nil
}

// GetGame fetches a game record by ID.
func (s *Store) GetGame(ctx context.Context, id string) (games.Game, error) {
	if err := s.ready(ctx); err != nil {
		return games.Game{}, err
	}
	if strings.TrimSpace(id) == "" {
		return games.Game{}, fmt.Errorf("game id is required")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT payload FROM games WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return games.Game{}, storage.ErrNotFound
	}
	if err != nil {
		return games.Game{}, fmt.Errorf("query game: %w", err)
	}

	var game games.Game
	if err := json.Unmarshal([]byte(payload), &game); err != nil {
		return games.Game{}, fmt.Errorf("unmarshal game: %w", err)
	}
	return game, nil
}

// DeleteGame removes a game record. Missing ids are not an error.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("game id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

// ListGames returns every stored game. Rows whose payload no longer parses
// are skipped rather than failing the whole listing.
func (s *Store) ListGames(ctx context.Context) ([]games.Game, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT payload FROM games ORDER BY last_modified DESC")
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []games.Game
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		var game games.Game
		if err := json.Unmarshal([]byte(payload), &game); err != nil {
			continue
		}
		out = append(out, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return out, nil
}

// SetCurrentGameID persists the current-game pointer.
func (s *Store) SetCurrentGameID(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("game id is required")
	}
	return s.putMeta(ctx, currentGameKey, id)
}

// CurrentGameID returns the current-game pointer, or "" when unset.
func (s *Store) CurrentGameID(ctx context.Context) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	value, err := s.getMeta(ctx, currentGameKey)
	if err != nil {
		return "", err
	}
	return value, nil
}

// ClearCurrentGameID removes the current-game pointer.
func (s *Store) ClearCurrentGameID(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.deleteMeta(ctx, currentGameKey)
}

// LegacyGame reads the single-game record from the pre-collection format.
func (s *Store) LegacyGame(ctx context.Context) (games.Game, error) {
	if err := s.ready(ctx); err != nil {
		return games.Game{}, err
	}

	payload, err := s.getMeta(ctx, legacyGameKey)
	if err != nil {
		return games.Game{}, err
	}
	if payload == "" {
		return games.Game{}, storage.ErrNotFound
	}

	var game games.Game
	if err := json.Unmarshal([]byte(payload), &game); err != nil {
		return games.Game{}, fmt.Errorf("unmarshal legacy game: %w", err)
	}
	return game, nil
}

// DeleteLegacyGame clears the legacy single-game slot.
func (s *Store) DeleteLegacyGame(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.deleteMeta(ctx, legacyGameKey)
}

// PutLegacyGame writes the legacy slot. It exists for migration tests and
// import tooling; the application itself only ever reads and deletes it.
func (s *Store) PutLegacyGame(ctx context.Context, game games.Game) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal legacy game: %w", err)
	}
	return s.putMeta(ctx, legacyGameKey, string(payload))
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) putMeta(ctx context.Context, key, value string) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value
`, key, value)
	if err != nil {
		return fmt.Errorf("upsert meta %s: %w", key, err)
	}
	return nil
}

func (s *Store) getMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query meta %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) deleteMeta(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete meta %s: %w", key, err)
	}
	return nil
}
