package game

import (
	"errors"
	"fmt"
)

// Input and state errors returned by the engine. None of them mutate the session.
var (
	ErrInvalidGuess    = errors.New("guess is not a valid number")
	ErrGuessOutOfRange = errors.New("guess is out of range")
	ErrHintLimit       = errors.New("hint limit reached for this turn")
	ErrNoActiveGame    = errors.New("no active game")
	ErrGameOver        = errors.New("game is already over")
)

// StorageError reports that a finished game could not be recorded.
// The game outcome stands regardless.
type StorageError struct {
	GameID string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to record result for game %s: %v", e.GameID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
