package service

import (
	"context"
	"errors"
	"fmt"

	"guesser/events"
	"guesser/game"
	"guesser/models"
	"guesser/sessionstore"

	log "github.com/sirupsen/logrus"
)

// Result codes reported alongside the session view
const (
	CodeInvalidGuess    = "invalid_guess"
	CodeGuessOutOfRange = "guess_out_of_range"
	CodeHintLimit       = "hint_limit"
	CodeNoActiveGame    = "no_active_game"
	CodeGameOver        = "game_over"
	CodeResultNotSaved  = "result_not_saved"
	CodeNoHintAvailable = "no_hint_available"
)

// History page bounds
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

const (
	msgGameStarted    = "New game started! Guess a number between 1 and %d. You have %d attempts."
	msgNoActiveGame   = "No active game. Start a new game to play."
	msgResultNotSaved = "Your result could not be saved yet and will be retried."
)

// ActionResult is the outcome of one player action
type ActionResult struct {
	Session   *game.View     `json:"session,omitempty"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	Hint      string         `json:"hint,omitempty"`
	Direction game.Direction `json:"direction,omitempty"`
}

// EventEmitter dispatches events to in-process subscribers
type EventEmitter interface {
	Emit(ctx context.Context, event events.Event)
}

type gameService struct {
	engine     *game.Engine
	store      SessionStore
	uowFactory UnitOfWorkFactory
	emitter    EventEmitter
	metrics    GameMetrics
	locks      *sessionLocks
}

// NewGameService creates the player-facing game service.
// metrics may be nil.
func NewGameService(engine *game.Engine, store SessionStore, uowFactory UnitOfWorkFactory, emitter EventEmitter, metrics GameMetrics) GameService {
	return &gameService{
		engine:     engine,
		store:      store,
		uowFactory: uowFactory,
		emitter:    emitter,
		metrics:    metrics,
		locks:      newSessionLocks(),
	}
}

// Modes lists the selectable game modes
func (s *gameService) Modes() []game.ModeDefinition {
	return s.engine.Catalog().Modes()
}

// Start replaces any current game with a fresh one in the requested mode
func (s *gameService) Start(ctx context.Context, sessionID string, owner models.Owner, modeID string) (*ActionResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	// A finished game with an unsaved result gets one more chance before it is replaced
	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.ResultPending {
		if _, err := s.retryPending(ctx, sessionID, *current, owner); err != nil {
			log.WithFields(log.Fields{
				"gameID": current.GameID,
				"error":  err,
			}).Warn("Discarding game with unsaved result")
		}
	}

	session := s.engine.Start(modeID)
	if err := s.store.Put(ctx, sessionID, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.emit(ctx, events.GameStartedEvent{
		GameID:      session.GameID,
		Owner:       owner,
		Mode:        session.Mode,
		MaxNumber:   session.MaxNumber,
		MaxAttempts: session.MaxAttempts,
		StartedAt:   session.StartedAt,
	})
	if s.metrics != nil {
		s.metrics.RecordGameStarted(ctx, session.Mode)
	}

	log.WithFields(log.Fields{
		"gameID": session.GameID,
		"mode":   session.Mode,
		"owner":  owner.String(),
	}).Info("Game started")

	return result(session, fmt.Sprintf(msgGameStarted, session.MaxNumber, session.MaxAttempts), ""), nil
}

// Guess submits one guess for the current game
func (s *gameService) Guess(ctx context.Context, sessionID string, owner models.Owner, raw string) (*ActionResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &ActionResult{Message: msgNoActiveGame, Code: CodeNoActiveGame}, nil
	}
	if current.ResultPending {
		if next, err := s.retryPending(ctx, sessionID, *current, owner); err == nil {
			current = &next
		}
	}

	next, fb, err := s.engine.SubmitGuess(ctx, *current, raw, owner)
	switch {
	case errors.Is(err, game.ErrInvalidGuess):
		return result(*current, fb.Message, CodeInvalidGuess), nil
	case errors.Is(err, game.ErrGuessOutOfRange):
		return result(*current, fb.Message, CodeGuessOutOfRange), nil
	case errors.Is(err, game.ErrGameOver):
		return result(*current, fb.Message, CodeGameOver), nil
	case err != nil && !game.IsStorageError(err):
		return nil, err
	}

	if putErr := s.store.Put(ctx, sessionID, next); putErr != nil {
		return nil, fmt.Errorf("failed to save session: %w", putErr)
	}

	if next.Status.IsTerminal() && s.metrics != nil {
		s.metrics.RecordGameFinished(ctx, next.Mode, next.Status == game.StatusWon)
	}

	if err != nil {
		res := result(next, fb.Message+" "+msgResultNotSaved, CodeResultNotSaved)
		return res, nil
	}

	res := result(next, fb.Message, "")
	res.Direction = fb.Direction
	return res, nil
}

// Hint requests a hint for the current game
func (s *gameService) Hint(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &ActionResult{Message: msgNoActiveGame, Code: CodeNoActiveGame}, nil
	}

	next, fb, err := s.engine.RequestHint(*current)
	switch {
	case errors.Is(err, game.ErrGameOver):
		return result(*current, fb.Message, CodeGameOver), nil
	case errors.Is(err, game.ErrHintLimit):
		return result(*current, fb.Message, CodeHintLimit), nil
	case err != nil:
		return nil, err
	}

	// Nothing charged and nothing delivered leaves the stored session as it was
	if fb.Hint == "" && fb.HintCost == 0 {
		return result(*current, fb.Message, CodeNoHintAvailable), nil
	}

	if err := s.store.Put(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.emit(ctx, events.HintGrantedEvent{
		GameID:    next.GameID,
		Owner:     owner,
		Mode:      next.Mode,
		Cost:      fb.HintCost,
		UsedHints: next.UsedHints,
		Delivered: fb.Hint != "",
	})
	if s.metrics != nil {
		s.metrics.RecordHintGranted(ctx, next.Mode)
	}

	code := ""
	if fb.Hint == "" {
		code = CodeNoHintAvailable
	}
	res := result(next, fb.Message, code)
	res.Hint = fb.Hint
	return res, nil
}

// Current returns the current game, retrying a pending result record first
func (s *gameService) Current(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &ActionResult{Message: msgNoActiveGame, Code: CodeNoActiveGame}, nil
	}

	if current.ResultPending {
		next, err := s.retryPending(ctx, sessionID, *current, owner)
		if err != nil {
			return result(*current, msgResultNotSaved, CodeResultNotSaved), nil
		}
		current = &next
	}

	return result(*current, "", ""), nil
}

// History returns the owner's recent results and lifetime stats
func (s *gameService) History(ctx context.Context, owner models.Owner, limit int) (*models.PlayerHistory, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.GameResultRepository()
	results, err := repo.ListByOwner(ctx, owner, limit)
	if err != nil {
		return nil, err
	}
	stats, err := repo.StatsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.PlayerHistory{Owner: owner, Results: results, Stats: stats}, nil
}

// load fetches a session; a shape the store cannot read is dropped and treated as absent
func (s *gameService) load(ctx context.Context, sessionID string) (*game.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, sessionstore.ErrUnrecognizedSession) {
		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"error":     err,
		}).Warn("Dropping unrecognized session")
		if delErr := s.store.Delete(ctx, sessionID); delErr != nil {
			return nil, fmt.Errorf("failed to delete unrecognized session: %w", delErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// retryPending re-attempts an unsaved result and stores the cleared session on success
func (s *gameService) retryPending(ctx context.Context, sessionID string, session game.Session, owner models.Owner) (game.Session, error) {
	next, err := s.engine.RetryRecord(ctx, session, owner)
	if err != nil {
		return session, err
	}
	if err := s.store.Put(ctx, sessionID, next); err != nil {
		return session, fmt.Errorf("failed to save session: %w", err)
	}
	log.WithField("gameID", next.GameID).Info("Pending game result recorded")
	return next, nil
}

func (s *gameService) emit(ctx context.Context, event events.Event) {
	if s.emitter != nil {
		// Subscribers outlive the request
		s.emitter.Emit(context.WithoutCancel(ctx), event)
	}
}

func result(session game.Session, message, code string) *ActionResult {
	view := session.View()
	return &ActionResult{Session: &view, Message: message, Code: code}
}
