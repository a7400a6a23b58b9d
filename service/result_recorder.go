package service

import (
	"context"
	"fmt"
	"time"

	"guesser/events"
	"guesser/game"
	"guesser/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const defaultRetryInterval = 100 * time.Millisecond

// ResultRecorder writes finished games to the database. It implements game.Recorder.
type ResultRecorder struct {
	uowFactory    UnitOfWorkFactory
	retries       uint64
	retryInterval time.Duration
	metrics       GameMetrics
}

// NewResultRecorder creates a recorder that retries failed writes up to retries times
func NewResultRecorder(uowFactory UnitOfWorkFactory, retries uint64, metrics GameMetrics) *ResultRecorder {
	return &ResultRecorder{
		uowFactory:    uowFactory,
		retries:       retries,
		retryInterval: defaultRetryInterval,
		metrics:       metrics,
	}
}

// Record persists the result and queues a GameFinishedEvent for after commit.
// Writes are idempotent on the game ID, so a retried record never duplicates a result.
func (r *ResultRecorder) Record(ctx context.Context, session game.Session, won bool, owner models.Owner) error {
	if !session.Status.IsTerminal() {
		return fmt.Errorf("cannot record game %s in status %s", session.GameID, session.Status)
	}
	if won != (session.Status == game.StatusWon) {
		return fmt.Errorf("won=%t disagrees with status %s for game %s", won, session.Status, session.GameID)
	}
	if err := owner.Validate(); err != nil {
		return fmt.Errorf("invalid owner for game %s: %w", session.GameID, err)
	}

	result := newGameResult(session, won, owner)

	attempt := 0
	operation := func() error {
		attempt++
		err := r.recordOnce(ctx, result, session, owner)
		if err != nil {
			log.WithFields(log.Fields{
				"gameID":  session.GameID,
				"attempt": attempt,
				"error":   err,
			}).Warn("Game result write failed")
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.retryInterval
	policy.MaxElapsedTime = 0 // bounded by retries and ctx

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, r.retries), ctx)); err != nil {
		if r.metrics != nil {
			r.metrics.RecordResultFailure(ctx)
		}
		return fmt.Errorf("failed to record game result after %d attempts: %w", attempt, err)
	}
	return nil
}

func (r *ResultRecorder) recordOnce(ctx context.Context, result models.GameResult, session game.Session, owner models.Owner) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	created, err := uow.GameResultRepository().Create(ctx, &result)
	if err != nil {
		return err
	}

	// A previous attempt already committed this game and announced it
	if created {
		uow.EventBus().Publish(events.GameFinishedEvent{
			GameID:       result.GameID,
			Owner:        owner,
			Mode:         result.Mode,
			Secret:       result.Secret,
			Won:          result.Won,
			Score:        result.Score,
			AttemptsUsed: result.AttemptsUsed,
			MaxAttempts:  result.MaxAttempts,
			UsedHints:    result.UsedHints,
			PlayedAt:     result.PlayedAt,
		})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":  result.GameID,
		"owner":   owner.String(),
		"won":     result.Won,
		"score":   result.Score,
		"created": created,
	}).Info("Game result recorded")
	return nil
}

func newGameResult(session game.Session, won bool, owner models.Owner) models.GameResult {
	playedAt := time.Now().UTC()
	if session.FinishedAt != nil {
		playedAt = session.FinishedAt.UTC()
	}

	result := models.GameResult{
		GameID:       session.GameID,
		Mode:         session.Mode,
		Secret:       session.Secret,
		AttemptsUsed: session.AttemptsUsed,
		MaxAttempts:  session.MaxAttempts,
		UsedHints:    session.UsedHints,
		Score:        session.Score,
		Won:          won,
		PlayedAt:     playedAt,
	}
	result.SetOwner(owner)
	return result
}
