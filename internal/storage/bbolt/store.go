// Package bbolt provides the BoltDB-backed game store.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/bakscore/internal/games"
	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
	"github.com/louisbranch/bakscore/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	gamesBucket = "games"
	metaBucket  = "meta"

	// Meta keys keep the names the browser releases used in localStorage so
	// exported data stays recognizable.
	currentGameKey = "current-game-id"
	legacyGameKey  = "game-state"
)

// Store provides a BoltDB-backed game store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutGame persists a game record.
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

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.Put([]byte(game.ID), payload)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "put game", err)
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

	var game games.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &game); err != nil {
			return fmt.Errorf("unmarshal game: %w", err)
		}
		return nil
	})
	if err != nil {
		return games.Game{}, err
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

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.Delete([]byte(id))
	})
}

// ListGames returns every stored game. Records that no longer parse are
// skipped rather than failing the whole listing; the store tolerates being
// corrupted out from under the process.
func (s *Store) ListGames(ctx context.Context) ([]games.Game, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var out []games.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var game games.Game
			if err := json.Unmarshal(payload, &game); err != nil {
				return nil
			}
			out = append(out, game)
			return nil
		})
	})
	if err != nil {
		return nil, err
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
	return s.putMeta(currentGameKey, []byte(id))
}

// CurrentGameID returns the current-game pointer, or "" when unset.
func (s *Store) CurrentGameID(ctx context.Context) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}

	var id string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		if payload := bucket.Get([]byte(currentGameKey)); payload != nil {
			id = string(payload)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ClearCurrentGameID removes the current-game pointer.
func (s *Store) ClearCurrentGameID(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.deleteMeta(currentGameKey)
}

// LegacyGame reads the single-game record from the pre-collection format.
func (s *Store) LegacyGame(ctx context.Context) (games.Game, error) {
	if err := s.ready(ctx); err != nil {
		return games.Game{}, err
	}

	var game games.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		payload := bucket.Get([]byte(legacyGameKey))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &game); err != nil {
			return fmt.Errorf("unmarshal legacy game: %w", err)
		}
		return nil
	})
	if err != nil {
		return games.Game{}, err
	}
	return game, nil
}

// DeleteLegacyGame clears the legacy single-game slot.
func (s *Store) DeleteLegacyGame(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.deleteMeta(legacyGameKey)
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
	return s.putMeta(legacyGameKey, payload)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) putMeta(key string, payload []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		return bucket.Put([]byte(key), payload)
	})
}

func (s *Store) deleteMeta(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{gamesBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
