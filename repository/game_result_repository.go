package repository

import (
	"context"
	"errors"
	"fmt"

	"guesser/database"
	"guesser/models"

	"github.com/jackc/pgx/v5"
)

// GameResultRepository implements the GameResultRepository interface
type GameResultRepository struct {
	q queryable
}

// NewGameResultRepository creates a new game result repository
func NewGameResultRepository(db *database.DB) *GameResultRepository {
	return &GameResultRepository{q: db.Pool}
}

// newGameResultRepositoryWithTx creates a new game result repository with a transaction
func newGameResultRepositoryWithTx(tx queryable) *GameResultRepository {
	return &GameResultRepository{q: tx}
}

const gameResultColumns = `id, game_id, user_id, guest_name, mode, secret, attempts_used, max_attempts, used_hints, score, won, played_at`

// ownerClause returns the WHERE predicate and argument selecting an owner's rows
func ownerClause(owner models.Owner) (string, any) {
	if owner.IsGuest() {
		return "guest_name = $1", owner.GuestName
	}
	return "user_id = $1", owner.UserID
}

// Create inserts a result. Recording the same game twice is a no-op that returns false.
func (r *GameResultRepository) Create(ctx context.Context, result *models.GameResult) (bool, error) {
	if err := result.Owner().Validate(); err != nil {
		return false, fmt.Errorf("invalid result owner: %w", err)
	}

	query := `
		INSERT INTO game_results (game_id, user_id, guest_name, mode, secret, attempts_used, max_attempts, used_hints, score, won, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO NOTHING
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		result.GameID,
		result.UserID,
		result.GuestName,
		result.Mode,
		result.Secret,
		result.AttemptsUsed,
		result.MaxAttempts,
		result.UsedHints,
		result.Score,
		result.Won,
		result.PlayedAt,
	).Scan(&result.ID)

	// DO NOTHING returns no row for an existing game
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create game result for game %s: %w", result.GameID, err)
	}

	return true, nil
}

// GetByGameID retrieves the result recorded for a game
func (r *GameResultRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error) {
	query := `SELECT ` + gameResultColumns + ` FROM game_results WHERE game_id = $1`

	result, err := scanGameResult(r.q.QueryRow(ctx, query, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game result for game %s: %w", gameID, err)
	}
	return result, nil
}

// ListByOwner returns the owner's most recent results, newest first
func (r *GameResultRepository) ListByOwner(ctx context.Context, owner models.Owner, limit int) ([]*models.GameResult, error) {
	where, arg := ownerClause(owner)
	query := `
		SELECT ` + gameResultColumns + `
		FROM game_results
		WHERE ` + where + `
		ORDER BY played_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results for %s: %w", owner, err)
	}
	defer rows.Close()

	results := make([]*models.GameResult, 0)
	for rows.Next() {
		result, err := scanGameResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game results: %w", err)
	}

	return results, nil
}

// StatsByOwner aggregates every result the owner has recorded
func (r *GameResultRepository) StatsByOwner(ctx context.Context, owner models.Owner) (*models.PlayerStats, error) {
	where, arg := ownerClause(owner)
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE won),
			COALESCE(MAX(score), 0),
			COALESCE(AVG(score), 0)::float8
		FROM game_results
		WHERE ` + where

	var stats models.PlayerStats
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&stats.TotalGames,
		&stats.Wins,
		&stats.BestScore,
		&stats.AverageScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for %s: %w", owner, err)
	}
	stats.Losses = stats.TotalGames - stats.Wins

	return &stats, nil
}

func scanGameResult(row pgx.Row) (*models.GameResult, error) {
	var result models.GameResult
	err := row.Scan(
		&result.ID,
		&result.GameID,
		&result.UserID,
		&result.GuestName,
		&result.Mode,
		&result.Secret,
		&result.AttemptsUsed,
		&result.MaxAttempts,
		&result.UsedHints,
		&result.Score,
		&result.Won,
		&result.PlayedAt,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
