package server

import (
	"github.com/louisbranch/bakscore/internal/games"
	apperrors "github.com/louisbranch/bakscore/internal/platform/errors"
	"github.com/louisbranch/bakscore/internal/scorekeeper"
)

// stateResponse is the render model the app polls after every action. It
// carries everything a screen needs so the client never derives game state.
type stateResponse struct {
	Screen        scorekeeper.Screen `json:"screen"`
	Game          games.Game         `json:"game"`
	Scoreboard    games.Scoreboard   `json:"scoreboard"`
	StartEligible bool               `json:"startEligible"`
}

// renderState snapshots the keeper. Callers must hold the server mutex.
func (s *Server) renderState() stateResponse {
	return stateResponse{
		Screen:        s.keeper.Screen(),
		Game:          s.keeper.Game(),
		Scoreboard:    s.keeper.Scoreboard(),
		StartEligible: s.keeper.StartEligible(),
	}
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}
