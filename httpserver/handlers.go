package httpserver

import (
	"net/http"
	"strconv"

	"guesser/game"
	"guesser/models"
	"guesser/service"
)

type modesResponse struct {
	Modes   []game.ModeDefinition `json:"modes"`
	Default string                `json:"default"`
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modesResponse{Modes: s.games.Modes(), Default: game.DefaultModeID})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	owner, sessionID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req startRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.games.Start(r.Context(), sessionID, owner, req.Mode)
	s.respondAction(w, r, res, err)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	owner, sessionID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req guessRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.games.Guess(r.Context(), sessionID, owner, string(req.Guess))
	s.respondAction(w, r, res, err)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	owner, sessionID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	res, err := s.games.Hint(r.Context(), sessionID, owner)
	s.respondAction(w, r, res, err)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	owner, sessionID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	res, err := s.games.Current(r.Context(), sessionID, owner)
	s.respondAction(w, r, res, err)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	query := historyQuery{Limit: service.DefaultHistoryLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, NewUserError(http.StatusBadRequest, "invalid_limit", "limit must be a whole number.", "limit "+strconv.Quote(raw)))
			return
		}
		query.Limit = limit
	}
	if err := validateRequest(query); err != nil {
		writeError(w, r, err)
		return
	}

	history, err := s.games.History(r.Context(), owner, query.Limit)
	if err != nil {
		writeError(w, r, NewSystemError(err, "failed to load history"))
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) respondAction(w http.ResponseWriter, r *http.Request, res *service.ActionResult, err error) {
	if err != nil {
		writeError(w, r, NewSystemError(err, "game action failed"))
		return
	}
	writeJSON(w, statusForCode(res.Code), res)
}

// statusForCode maps action result codes to HTTP statuses. Every code still carries the session view.
func statusForCode(code string) int {
	switch code {
	case service.CodeInvalidGuess, service.CodeGuessOutOfRange:
		return http.StatusUnprocessableEntity
	case service.CodeHintLimit:
		return http.StatusTooManyRequests
	case service.CodeNoActiveGame, service.CodeGameOver:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func requestIdentity(w http.ResponseWriter, r *http.Request) (models.Owner, string, bool) {
	owner, ok := OwnerFrom(r.Context())
	sessionID, sok := SessionIDFrom(r.Context())
	if !ok || !sok {
		writeError(w, r, NewSystemError(nil, "identity middleware did not run"))
		return models.Owner{}, "", false
	}
	return owner, sessionID, true
}
