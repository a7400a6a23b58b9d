package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"guesser/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Recorder persists the result of a finished game
type Recorder interface {
	Record(ctx context.Context, session Session, won bool, owner models.Owner) error
}

// HintPolicy decides whether a hint request that finds no new fact is still charged
type HintPolicy int

const (
	// ChargeOnDelivery charges only when a hint text is actually delivered
	ChargeOnDelivery HintPolicy = iota
	// ChargeAlways charges and counts the hint even when the catalog is exhausted
	ChargeAlways
)

// Direction tells the player where the secret lies relative to their guess
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// Feedback is the human-readable outcome of an engine operation
type Feedback struct {
	Message   string
	Direction Direction
	Hint      string
	HintCost  int
}

// Player-facing messages
const (
	msgInvalidGuess    = "Please enter a valid number."
	msgGuessOutOfRange = "Your guess must be between 1 and %d."
	msgTooLow          = "Too low! Try higher."
	msgTooHigh         = "Too high! Try lower."
	msgWon             = "Correct! The number was %d."
	msgLost            = "Out of attempts. The number was %d."
	msgGameOver        = "The game is over. Start a new game to keep playing."
	msgHintLimit       = "You have reached the limit of 2 hints per turn"
	msgHintGranted     = "Hint used! -%d points"
	msgNoHint          = "No hint available."
	msgNoHintCharged   = "No hint available. -%d points"
)

const defaultRecordTimeout = 5 * time.Second

// Engine applies game actions to sessions. It holds no per-game state and is safe for concurrent use
// as long as its Random and Recorder are.
type Engine struct {
	catalog       *Catalog
	hints         *HintGenerator
	recorder      Recorder
	rng           Random
	policy        HintPolicy
	recordTimeout time.Duration
	now           func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRandom sets the source used to draw secrets
func WithRandom(rng Random) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithHintGenerator replaces the default hint generator
func WithHintGenerator(g *HintGenerator) EngineOption {
	return func(e *Engine) { e.hints = g }
}

// WithHintPolicy sets how exhausted hint requests are charged
func WithHintPolicy(p HintPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithRecordTimeout bounds the time spent recording a finished game
func WithRecordTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.recordTimeout = d
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over the catalog that reports finished games to recorder
func NewEngine(catalog *Catalog, recorder Recorder, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:       catalog,
		recorder:      recorder,
		rng:           DefaultRandom(),
		policy:        ChargeOnDelivery,
		recordTimeout: defaultRecordTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hints == nil {
		e.hints = NewHintGenerator(e.rng)
	}
	return e
}

// Catalog returns the mode catalog the engine resolves against
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Start creates a fresh game in the resolved mode
func (e *Engine) Start(modeID string) Session {
	mode := e.catalog.Resolve(modeID)
	return Session{
		GameID:          uuid.New().String(),
		Mode:            mode.ID,
		Secret:          e.rng.IntN(mode.MaxNumber) + 1,
		MaxNumber:       mode.MaxNumber,
		MaxAttempts:     mode.MaxAttempts,
		AttemptsLeft:    mode.MaxAttempts,
		PerTurnPenalty:  mode.PerTurnPenalty,
		HintBasePenalty: mode.HintBasePenalty,
		Score:           StartingScore,
		Hints:           []string{},
		Guesses:         []int{},
		Status:          StatusPlaying,
		StartedAt:       e.now(),
	}
}

// SubmitGuess applies one guess. Every accepted guess uses an attempt and ends the hint turn;
// misses also deduct the per-turn penalty. Input errors return the session unchanged.
// On the transition to won or lost the result is recorded exactly once; a recording failure is
// returned as a *StorageError alongside the terminal session.
func (e *Engine) SubmitGuess(ctx context.Context, s Session, raw string, owner models.Owner) (Session, Feedback, error) {
	if s.Status.IsTerminal() {
		return s, Feedback{Message: msgGameOver}, ErrGameOver
	}

	guess, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return s, Feedback{Message: msgInvalidGuess}, ErrInvalidGuess
	}
	if guess < 1 || guess > s.MaxNumber {
		return s, Feedback{Message: fmt.Sprintf(msgGuessOutOfRange, s.MaxNumber)}, ErrGuessOutOfRange
	}

	next := s.clone()
	next.AttemptsLeft = max(0, next.AttemptsLeft-1)
	next.AttemptsUsed++
	// The turn penalty is the price of a miss; the winning guess costs nothing
	if guess != next.Secret {
		next.Score = clampScore(next.Score - next.PerTurnPenalty)
	}
	next.HintsInTurn = 0
	next.Guesses = append(next.Guesses, guess)

	var fb Feedback
	switch {
	case guess == next.Secret:
		next.Status = StatusWon
		fb.Message = fmt.Sprintf(msgWon, next.Secret)
	case next.AttemptsLeft == 0:
		next.Status = StatusLost
		fb.Message = fmt.Sprintf(msgLost, next.Secret)
	case guess < next.Secret:
		fb.Direction = DirectionHigher
		fb.Message = msgTooLow
	default:
		fb.Direction = DirectionLower
		fb.Message = msgTooHigh
	}

	if !next.Status.IsTerminal() {
		return next, fb, nil
	}

	finishedAt := e.now()
	next.FinishedAt = &finishedAt
	if err := e.record(ctx, next, owner); err != nil {
		next.ResultPending = true
		return next, fb, err
	}
	return next, fb, nil
}

// RequestHint charges the escalating hint penalty and delivers a fact not yet given this game
func (e *Engine) RequestHint(s Session) (Session, Feedback, error) {
	if s.Status.IsTerminal() {
		return s, Feedback{Message: msgGameOver}, ErrGameOver
	}
	if s.HintsInTurn >= HintsPerTurn {
		return s, Feedback{Message: msgHintLimit}, ErrHintLimit
	}

	cost := s.NextHintCost()
	text, ok := e.hints.Next(s.Secret, s.Guesses, s.Hints)
	if !ok && e.policy == ChargeOnDelivery {
		return s, Feedback{Message: msgNoHint}, nil
	}

	next := s.clone()
	next.Score = clampScore(next.Score - cost)
	next.UsedHints++
	next.HintsInTurn++

	if !ok {
		return next, Feedback{Message: fmt.Sprintf(msgNoHintCharged, cost), HintCost: cost}, nil
	}
	next.Hints = append(next.Hints, text)
	return next, Feedback{Message: fmt.Sprintf(msgHintGranted, cost), Hint: text, HintCost: cost}, nil
}

// RetryRecord re-attempts recording a finished game whose earlier record failed
func (e *Engine) RetryRecord(ctx context.Context, s Session, owner models.Owner) (Session, error) {
	if !s.ResultPending || !s.Status.IsTerminal() {
		return s, nil
	}
	if err := e.record(ctx, s, owner); err != nil {
		return s, err
	}
	next := s.clone()
	next.ResultPending = false
	return next, nil
}

func (e *Engine) record(ctx context.Context, s Session, owner models.Owner) error {
	ctx, cancel := context.WithTimeout(ctx, e.recordTimeout)
	defer cancel()

	won := s.Status == StatusWon
	if err := e.recorder.Record(ctx, s, won, owner); err != nil {
		log.WithFields(log.Fields{
			"gameID": s.GameID,
			"owner":  owner.String(),
			"won":    won,
			"error":  err,
		}).Error("Failed to record game result")
		return &StorageError{GameID: s.GameID, Err: err}
	}
	return nil
}
