package testutil

import (
	"time"

	"guesser/models"

	"github.com/google/uuid"
)

// CreateTestGameResult creates a finished-game record for the given owner
func CreateTestGameResult(owner models.Owner, won bool, score int) *models.GameResult {
	result := &models.GameResult{
		GameID:       uuid.NewString(),
		Mode:         "easy",
		Secret:       42,
		AttemptsUsed: 3,
		MaxAttempts:  10,
		UsedHints:    1,
		Score:        score,
		Won:          won,
		PlayedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	if !won {
		result.AttemptsUsed = result.MaxAttempts
	}
	result.SetOwner(owner)
	return result
}

// CreateTestGameResultAt creates a record played at a specific time
func CreateTestGameResultAt(owner models.Owner, score int, playedAt time.Time) *models.GameResult {
	result := CreateTestGameResult(owner, true, score)
	result.PlayedAt = playedAt.UTC().Truncate(time.Microsecond)
	return result
}
