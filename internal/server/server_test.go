package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
	"github.com/louisbranch/bakscore/internal/scorekeeper"
	"github.com/louisbranch/bakscore/internal/storage/bbolt"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	store, err := bbolt.Open(filepath.Join(t.TempDir(), "bakscore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	keeper := scorekeeper.NewKeeper(scorekeeper.NewRepository(store), nil)
	keeper.Init(context.Background())

	srv := New(keeper)
	return srv, srv.Handler()
}

// testState mirrors the stateResponse wire shape.
type testState struct {
	Screen string `json:"screen"`
	Game   struct {
		ID           string            `json:"id"`
		Name         string            `json:"name"`
		CurrentRound int               `json:"currentRound"`
		GameStarted  bool              `json:"gameStarted"`
		Inputs       map[string]string `json:"currentRoundInputs"`
		Players      []struct {
			Name        string    `json:"name"`
			TotalScore  float64   `json:"totalScore"`
			RoundScores []float64 `json:"roundScores"`
		} `json:"players"`
	} `json:"game"`
	Scoreboard struct {
		Rows []struct {
			Rank       int     `json:"rank"`
			Name       string  `json:"name"`
			TotalScore float64 `json:"totalScore"`
			Leader     bool    `json:"leader"`
		} `json:"rows"`
	} `json:"scoreboard"`
	StartEligible bool `json:"startEligible"`
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, testState) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var state testState
	if rec.Code == http.StatusOK && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") &&
		!bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("[")) {
		if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, state
}

func startGameOverHTTP(t *testing.T, handler http.Handler, names ...string) testState {
	t.Helper()
	doJSON(t, handler, http.MethodPost, "/api/setup", nil)
	for _, name := range names {
		doJSON(t, handler, http.MethodPost, "/api/players", map[string]string{"name": name})
	}
	_, state := doJSON(t, handler, http.MethodPost, "/api/start", nil)
	return state
}

func TestStateStartsOnGameList(t *testing.T) {
	_, handler := newTestServer(t)

	rec, state := doJSON(t, handler, http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if state.Screen != "list" {
		t.Fatalf("screen = %q, want list", state.Screen)
	}
}

func TestSetupAndStartFlow(t *testing.T) {
	_, handler := newTestServer(t)

	_, state := doJSON(t, handler, http.MethodPost, "/api/setup", nil)
	if state.Screen != "setup" {
		t.Fatalf("screen = %q, want setup", state.Screen)
	}
	if state.StartEligible {
		t.Fatal("empty roster should not be start eligible")
	}

	_, state = doJSON(t, handler, http.MethodPost, "/api/players", map[string]string{"name": "Alice"})
	if state.StartEligible {
		t.Fatal("one player should not be start eligible")
	}

	// Shortcut tokens expand server-side.
	_, state = doJSON(t, handler, http.MethodPost, "/api/players", map[string]string{"name": "timo"})
	if got := state.Game.Players[1].Name; got != "Slobbie" {
		t.Fatalf("player name = %q, want Slobbie", got)
	}
	if !state.StartEligible {
		t.Fatal("two players should be start eligible")
	}

	_, state = doJSON(t, handler, http.MethodPost, "/api/start", nil)
	if state.Screen != "active" {
		t.Fatalf("screen = %q, want active", state.Screen)
	}
	if state.Game.ID == "" {
		t.Fatal("started game should have an id")
	}
	if state.Game.Name != "Alice, Slobbie" {
		t.Fatalf("game name = %q, want Alice, Slobbie", state.Game.Name)
	}
}

func TestRemovePlayer(t *testing.T) {
	_, handler := newTestServer(t)

	doJSON(t, handler, http.MethodPost, "/api/setup", nil)
	doJSON(t, handler, http.MethodPost, "/api/players", map[string]string{"name": "Alice"})
	doJSON(t, handler, http.MethodPost, "/api/players", map[string]string{"name": "Bob"})

	_, state := doJSON(t, handler, http.MethodDelete, "/api/players/0", nil)
	if len(state.Game.Players) != 1 || state.Game.Players[0].Name != "Bob" {
		t.Fatalf("players after removal = %+v, want only Bob", state.Game.Players)
	}

	rec, _ := doJSON(t, handler, http.MethodDelete, "/api/players/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != string(apperrors.CodePlayerIndexInvalid) {
		t.Fatalf("error code = %q, want %q", body.Code, apperrors.CodePlayerIndexInvalid)
	}
}

func TestRoundSubmission(t *testing.T) {
	_, handler := newTestServer(t)
	startGameOverHTTP(t, handler, "Alice", "Bob")

	doJSON(t, handler, http.MethodPut, "/api/inputs", map[string]string{"name": "Alice", "value": "12.5"})
	doJSON(t, handler, http.MethodPut, "/api/inputs", map[string]string{"name": "Bob", "value": "8"})

	_, state := doJSON(t, handler, http.MethodPost, "/api/round", nil)
	if state.Game.CurrentRound != 2 {
		t.Fatalf("round = %d, want 2", state.Game.CurrentRound)
	}
	if len(state.Game.Inputs) != 0 {
		t.Fatalf("pending inputs should be cleared, got %v", state.Game.Inputs)
	}
	top := state.Scoreboard.Rows[0]
	if top.Name != "Alice" || top.TotalScore != 12.5 || !top.Leader {
		t.Fatalf("top row = %+v, want Alice at 12.5 as leader", top)
	}
}

func TestAllBlankRoundRejected(t *testing.T) {
	_, handler := newTestServer(t)
	startGameOverHTTP(t, handler, "Alice", "Bob")

	_, state := doJSON(t, handler, http.MethodPost, "/api/round", nil)
	if state.Game.CurrentRound != 1 {
		t.Fatalf("round = %d, want 1 after blank submission", state.Game.CurrentRound)
	}
}

func TestPenalty(t *testing.T) {
	_, handler := newTestServer(t)
	startGameOverHTTP(t, handler, "Alice", "Bob")

	doJSON(t, handler, http.MethodPut, "/api/inputs", map[string]string{"name": "Alice", "value": "60"})
	doJSON(t, handler, http.MethodPost, "/api/round", nil)

	_, state := doJSON(t, handler, http.MethodPost, "/api/penalty", map[string]any{"name": "Alice", "points": 25.0})
	if got := state.Game.Players[0].TotalScore; got != 35 {
		t.Fatalf("total after penalty = %v, want 35", got)
	}

	// Insufficient totals leave the score unchanged.
	_, state = doJSON(t, handler, http.MethodPost, "/api/penalty", map[string]any{"name": "Bob", "points": 25.0})
	if got := state.Game.Players[1].TotalScore; got != 0 {
		t.Fatalf("total after rejected penalty = %v, want 0", got)
	}
}

func TestMidGameJoin(t *testing.T) {
	_, handler := newTestServer(t)
	startGameOverHTTP(t, handler, "Alice", "Bob")

	doJSON(t, handler, http.MethodPut, "/api/inputs", map[string]string{"name": "Alice", "value": "10"})
	doJSON(t, handler, http.MethodPost, "/api/round", nil)

	_, state := doJSON(t, handler, http.MethodPost, "/api/players/midgame", map[string]string{"name": "Cara"})
	if len(state.Game.Players) != 3 {
		t.Fatalf("players = %d, want 3", len(state.Game.Players))
	}
	joined := state.Game.Players[2]
	if len(joined.RoundScores) != 1 || joined.RoundScores[0] != 0 {
		t.Fatalf("joined rounds = %v, want one backfilled zero", joined.RoundScores)
	}
}

func TestGameListResumeAndDelete(t *testing.T) {
	_, handler := newTestServer(t)
	state := startGameOverHTTP(t, handler, "Alice", "Bob")
	gameID := state.Game.ID

	_, state = doJSON(t, handler, http.MethodPost, "/api/list", nil)
	if state.Screen != "list" {
		t.Fatalf("screen = %q, want list", state.Screen)
	}

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/games", nil)
	var list []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode games list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("stored games = %d, want 1", len(list))
	}

	_, state = doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/resume", nil)
	if state.Screen != "active" || state.Game.ID != gameID {
		t.Fatalf("resume landed on %q game %q, want active %q", state.Screen, state.Game.ID, gameID)
	}

	rec, state = doJSON(t, handler, http.MethodDelete, "/api/games/"+gameID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusOK)
	}
	if state.Game.ID != "" {
		t.Fatal("deleting the active game should reset it")
	}

	// Deletes are idempotent: an already-gone id is still a success.
	rec, _ = doJSON(t, handler, http.MethodDelete, "/api/games/"+gameID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second delete status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestShortcutsEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/shortcuts", nil)
	var shortcuts []struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &shortcuts); err != nil {
		t.Fatalf("decode shortcuts: %v", err)
	}
	if len(shortcuts) != 10 {
		t.Fatalf("shortcuts = %d, want 10", len(shortcuts))
	}
	if shortcuts[0].Token != "max" || shortcuts[0].Name != "Max" {
		t.Fatalf("first shortcut = %+v, want max/Max", shortcuts[0])
	}
}

func TestPenaltyRulesEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/penalty-rules", nil)
	var rules []struct {
		Threshold float64 `json:"threshold"`
		Points    float64 `json:"points"`
		Label     string  `json:"label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rules); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}
	if rules[0].Threshold <= rules[1].Threshold {
		t.Fatal("rules should be ordered highest threshold first")
	}
}

func TestConcurrentStateReadsDuringInputWrites(t *testing.T) {
	_, handler := newTestServer(t)
	startGameOverHTTP(t, handler, "Alice", "Bob")

	// State snapshots are encoded outside the server mutex, so they must not
	// share storage with the keeper's live game. Interleave reads with
	// pending-input writes to the same map.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("state read status = %d", rec.Code)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				body := strings.NewReader(`{"name":"Alice","value":"12"}`)
				req := httptest.NewRequest(http.MethodPut, "/api/inputs", body)
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("input write status = %d", rec.Code)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMalformedBodyRejected(t *testing.T) {
	_, handler := newTestServer(t)
	doJSON(t, handler, http.MethodPost, "/api/setup", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/players", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
