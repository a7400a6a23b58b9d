package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guesser/game"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// CurrentVersion is the envelope version written by Encode
const CurrentVersion = 2

// ErrUnrecognizedSession is returned for stored data that cannot become a valid session
var ErrUnrecognizedSession = errors.New("unrecognized session")

var jsonAPI = sonic.Config{
	EscapeHTML:       false,
	CompactMarshaler: true,
	NoNullSliceOrMap: true,
}.Froze()

type envelope struct {
	Version int             `json:"version"`
	Session json.RawMessage `json:"session"`
}

// legacySession is the version 1 shape, written before penalties were stored per game
type legacySession struct {
	Mode         string      `json:"mode"`
	Secret       int         `json:"secret"`
	MaxNumber    int         `json:"max_number"`
	MaxAttempts  int         `json:"max_attempts"`
	AttemptsLeft int         `json:"attempts_left"`
	Score        int         `json:"score"`
	UsedHints    int         `json:"used_hints"`
	HintsInTurn  int         `json:"hints_in_turn"`
	Hints        []string    `json:"hints"`
	Guesses      []int       `json:"guesses"`
	Status       game.Status `json:"status"`
	StartedAt    time.Time   `json:"started_at"`
}

// Codec converts sessions to and from the versioned envelope
type Codec struct {
	catalog *game.Catalog
}

// NewCodec creates a codec. The catalog supplies penalties when upgrading legacy sessions.
func NewCodec(catalog *game.Catalog) *Codec {
	return &Codec{catalog: catalog}
}

// Encode wraps a session in the current envelope
func (c *Codec) Encode(session game.Session) ([]byte, error) {
	body, err := jsonAPI.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	data, err := jsonAPI.Marshal(envelope{Version: CurrentVersion, Session: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session envelope: %w", err)
	}
	return data, nil
}

// Decode reads an envelope, upgrading version 1. Anything else, or a session that fails
// validation, yields ErrUnrecognizedSession.
func (c *Codec) Decode(data []byte) (*game.Session, error) {
	var env envelope
	if err := jsonAPI.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedSession, err)
	}
	if len(env.Session) == 0 {
		return nil, fmt.Errorf("%w: missing session body", ErrUnrecognizedSession)
	}

	var session game.Session
	switch env.Version {
	case CurrentVersion:
		if err := jsonAPI.Unmarshal(env.Session, &session); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedSession, err)
		}
	case 1:
		var legacy legacySession
		if err := jsonAPI.Unmarshal(env.Session, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedSession, err)
		}
		session = c.upgrade(legacy)
	default:
		return nil, fmt.Errorf("%w: version %d", ErrUnrecognizedSession, env.Version)
	}

	if session.Hints == nil {
		session.Hints = []string{}
	}
	if session.Guesses == nil {
		session.Guesses = []int{}
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedSession, err)
	}
	return &session, nil
}

func (c *Codec) upgrade(legacy legacySession) game.Session {
	mode := c.catalog.Resolve(legacy.Mode)
	session := game.Session{
		GameID:          uuid.New().String(),
		Mode:            mode.ID,
		Secret:          legacy.Secret,
		MaxNumber:       legacy.MaxNumber,
		MaxAttempts:     legacy.MaxAttempts,
		AttemptsLeft:    legacy.AttemptsLeft,
		AttemptsUsed:    legacy.MaxAttempts - legacy.AttemptsLeft,
		PerTurnPenalty:  mode.PerTurnPenalty,
		HintBasePenalty: mode.HintBasePenalty,
		Score:           min(legacy.Score, game.MaxScore),
		UsedHints:       legacy.UsedHints,
		HintsInTurn:     legacy.HintsInTurn,
		Hints:           legacy.Hints,
		Guesses:         legacy.Guesses,
		Status:          legacy.Status,
		StartedAt:       legacy.StartedAt,
	}
	if session.Status == "" {
		session.Status = game.StatusPlaying
	}
	return session
}
