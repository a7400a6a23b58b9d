package game

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// IsTerminal reports whether no further guesses or hints are accepted
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

func (s Status) valid() bool {
	return s == StatusPlaying || s.IsTerminal()
}

// Scoring limits
const (
	StartingScore = 10000
	MaxScore      = 10000
	HintsPerTurn  = 2
)

// Session is the complete state of one game. It is passed and returned by value;
// engine operations never modify the session they are given.
type Session struct {
	GameID          string     `json:"game_id"`
	Mode            string     `json:"mode"`
	Secret          int        `json:"secret"`
	MaxNumber       int        `json:"max_number"`
	MaxAttempts     int        `json:"max_attempts"`
	AttemptsLeft    int        `json:"attempts_left"`
	AttemptsUsed    int        `json:"attempts_used"`
	PerTurnPenalty  int        `json:"per_turn_penalty"`
	HintBasePenalty int        `json:"hint_base_penalty"`
	Score           int        `json:"score"`
	UsedHints       int        `json:"used_hints"`
	HintsInTurn     int        `json:"hints_in_turn"`
	Hints           []string   `json:"hints"`
	Guesses         []int      `json:"guesses"`
	Status          Status     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	ResultPending   bool       `json:"result_pending,omitempty"`
}

// NextHintCost is the penalty the next granted hint would charge
func (s Session) NextHintCost() int {
	return s.HintBasePenalty * (s.UsedHints + 1)
}

// HintsRemainingThisTurn is how many more hints may be requested before the next guess
func (s Session) HintsRemainingThisTurn() int {
	if s.Status.IsTerminal() || s.HintsInTurn >= HintsPerTurn {
		return 0
	}
	return HintsPerTurn - s.HintsInTurn
}

// LastGuess returns the most recent guess, if any
func (s Session) LastGuess() (int, bool) {
	if len(s.Guesses) == 0 {
		return 0, false
	}
	return s.Guesses[len(s.Guesses)-1], true
}

// Validate checks the structural invariants of a session
func (s Session) Validate() error {
	switch {
	case s.GameID == "":
		return fmt.Errorf("session has no game ID")
	case !s.Status.valid():
		return fmt.Errorf("unknown status %q", s.Status)
	case s.MaxNumber < 1:
		return fmt.Errorf("max number %d is below 1", s.MaxNumber)
	case s.MaxAttempts < 1:
		return fmt.Errorf("max attempts %d is below 1", s.MaxAttempts)
	case s.Secret < 1 || s.Secret > s.MaxNumber:
		return fmt.Errorf("secret is outside [1, %d]", s.MaxNumber)
	case s.AttemptsLeft < 0 || s.AttemptsUsed < 0:
		return fmt.Errorf("attempt counters cannot be negative")
	case s.AttemptsLeft+s.AttemptsUsed != s.MaxAttempts:
		return fmt.Errorf("attempts left %d + used %d != max %d", s.AttemptsLeft, s.AttemptsUsed, s.MaxAttempts)
	case s.Status == StatusPlaying && s.AttemptsLeft == 0:
		return fmt.Errorf("game is playing with no attempts left")
	case s.Score < 0 || s.Score > MaxScore:
		return fmt.Errorf("score %d is outside [0, %d]", s.Score, MaxScore)
	case s.PerTurnPenalty < 0 || s.HintBasePenalty < 0:
		return fmt.Errorf("penalties cannot be negative")
	case s.UsedHints < 0 || s.HintsInTurn < 0 || s.HintsInTurn > HintsPerTurn:
		return fmt.Errorf("hint counters are out of bounds")
	case len(s.Guesses) != s.AttemptsUsed:
		return fmt.Errorf("recorded %d guesses for %d attempts", len(s.Guesses), s.AttemptsUsed)
	}
	return nil
}

func (s Session) clone() Session {
	c := s
	c.Hints = make([]string, len(s.Hints))
	copy(c.Hints, s.Hints)
	c.Guesses = make([]int, len(s.Guesses))
	copy(c.Guesses, s.Guesses)
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return c
}

// View is the caller-facing projection of a session. The secret is only revealed once the game is over.
type View struct {
	GameID         string   `json:"game_id"`
	Mode           string   `json:"mode"`
	MaxNumber      int      `json:"max_number"`
	MaxAttempts    int      `json:"max_attempts"`
	AttemptsLeft   int      `json:"attempts_left"`
	AttemptsUsed   int      `json:"attempts_used"`
	Score          int      `json:"score"`
	UsedHints      int      `json:"used_hints"`
	HintsRemaining int      `json:"hints_remaining"`
	NextHintCost   int      `json:"next_hint_cost"`
	Hints          []string `json:"hints"`
	Guesses        []int    `json:"guesses"`
	Status         Status   `json:"status"`
	Secret         *int     `json:"secret,omitempty"`
	ResultPending  bool     `json:"result_pending,omitempty"`
}

// View builds the caller-facing projection
func (s Session) View() View {
	v := View{
		GameID:         s.GameID,
		Mode:           s.Mode,
		MaxNumber:      s.MaxNumber,
		MaxAttempts:    s.MaxAttempts,
		AttemptsLeft:   s.AttemptsLeft,
		AttemptsUsed:   s.AttemptsUsed,
		Score:          s.Score,
		UsedHints:      s.UsedHints,
		HintsRemaining: s.HintsRemainingThisTurn(),
		NextHintCost:   s.NextHintCost(),
		Hints:          append([]string{}, s.Hints...),
		Guesses:        append([]int{}, s.Guesses...),
		Status:         s.Status,
		ResultPending:  s.ResultPending,
	}
	if s.Status.IsTerminal() {
		secret := s.Secret
		v.Secret = &secret
	}
	return v
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
