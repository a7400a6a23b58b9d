package service

import (
	"context"

	"guesser/events"
	"guesser/game"
	"guesser/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// GameResultRepository defines the interface for finished game records
type GameResultRepository interface {
	// Create inserts a result; false means a result for the same game already exists
	Create(ctx context.Context, result *models.GameResult) (bool, error)

	// ListByOwner returns the owner's most recent results, newest first
	ListByOwner(ctx context.Context, owner models.Owner, limit int) ([]*models.GameResult, error)

	// StatsByOwner aggregates every result the owner has recorded
	StatsByOwner(ctx context.Context, owner models.Owner) (*models.PlayerStats, error)
}

// EventPublisher queues events for delivery after commit
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	GameResultRepository() GameResultRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// SessionStore persists in-progress sessions between requests
type SessionStore interface {
	Get(ctx context.Context, id string) (*game.Session, error)
	Put(ctx context.Context, id string, session game.Session) error
	Delete(ctx context.Context, id string) error
}

// GameMetrics receives game lifecycle measurements
type GameMetrics interface {
	RecordGameStarted(ctx context.Context, mode string)
	RecordHintGranted(ctx context.Context, mode string)
	RecordGameFinished(ctx context.Context, mode string, won bool)
	RecordResultFailure(ctx context.Context)
}

// GameService exposes the player actions
type GameService interface {
	Start(ctx context.Context, sessionID string, owner models.Owner, modeID string) (*ActionResult, error)
	Guess(ctx context.Context, sessionID string, owner models.Owner, raw string) (*ActionResult, error)
	Hint(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error)
	Current(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error)
	History(ctx context.Context, owner models.Owner, limit int) (*models.PlayerHistory, error)
	Modes() []game.ModeDefinition
}
