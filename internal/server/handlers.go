package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/louisbranch/bakscore/internal/games"
	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
)

// registerAPIRoutes wires the JSON API. Every mutating route answers with the
// refreshed state so the client updates in a single round trip.
func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc(http.MethodGet+" /api/state", s.handleState)
	mux.HandleFunc(http.MethodGet+" /api/games", s.handleListGames)
	mux.HandleFunc(http.MethodPost+" /api/games/{id}/resume", s.handleResumeGame)
	mux.HandleFunc(http.MethodDelete+" /api/games/{id}", s.handleDeleteGame)
	mux.HandleFunc(http.MethodPost+" /api/setup", s.handleNewSetup)
	mux.HandleFunc(http.MethodPost+" /api/list", s.handleShowGameList)
	mux.HandleFunc(http.MethodPost+" /api/players", s.handleAddPlayer)
	mux.HandleFunc(http.MethodDelete+" /api/players/{index}", s.handleRemovePlayer)
	mux.HandleFunc(http.MethodPost+" /api/players/midgame", s.handleAddMidGamePlayer)
	mux.HandleFunc(http.MethodPost+" /api/start", s.handleStartGame)
	mux.HandleFunc(http.MethodPost+" /api/round", s.handleSubmitRound)
	mux.HandleFunc(http.MethodPut+" /api/inputs", s.handleUpdateInput)
	mux.HandleFunc(http.MethodPost+" /api/penalty", s.handleApplyPenalty)
	mux.HandleFunc(http.MethodGet+" /api/shortcuts", s.handleShortcuts)
	mux.HandleFunc(http.MethodGet+" /api/penalty-rules", s.handlePenaltyRules)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.keeper.GamesList(r.Context())
	s.mu.Unlock()
	if list == nil {
		list = []games.Game{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleResumeGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	s.keeper.ResumeGame(r.Context(), id)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	deleted := s.keeper.DeleteGame(r.Context(), id)
	state := s.renderState()
	s.mu.Unlock()
	if !deleted {
		writeError(w, apperrors.New(apperrors.CodeStorageFailure, "delete failed"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleNewSetup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.keeper.NewSetup()
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleShowGameList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.keeper.ShowGameList()
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.keeper.AddPlayer(r.Context(), req.Name)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodePlayerIndexInvalid, "invalid player index"))
		return
	}
	s.mu.Lock()
	s.keeper.RemovePlayer(r.Context(), index)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAddMidGamePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.keeper.AddMidGamePlayer(r.Context(), req.Name)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.keeper.StartGame(r.Context())
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.keeper.SubmitRound(r.Context())
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleUpdateInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.keeper.UpdatePendingInput(r.Context(), req.Name, req.Value)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleApplyPenalty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string  `json:"name"`
		Points float64 `json:"points"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.keeper.ApplyPenalty(r.Context(), req.Name, req.Points)
	state := s.renderState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, games.Shortcuts())
}

func (s *Server) handlePenaltyRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, games.PenaltyRules())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps a domain error to an HTTP status and a code-bearing body.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeUnknown
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	writeJSON(w, statusForCode(code), errorResponse{Error: err.Error(), Code: code})
}

func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodePlayerIndexInvalid:
		return http.StatusBadRequest
	case apperrors.CodeGameNotFound:
		return http.StatusNotFound
	case apperrors.CodeStorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
