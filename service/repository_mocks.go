package service

import (
	"context"

	"guesser/events"
	"guesser/game"
	"guesser/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockGameResultRepository is a mock implementation of GameResultRepository
type MockGameResultRepository struct {
	mock.Mock
}

func (m *MockGameResultRepository) Create(ctx context.Context, result *models.GameResult) (bool, error) {
	args := m.Called(ctx, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameResultRepository) ListByOwner(ctx context.Context, owner models.Owner, limit int) ([]*models.GameResult, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) StatsByOwner(ctx context.Context, owner models.Owner) (*models.PlayerStats, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerStats), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	userRepo       UserRepository
	gameResultRepo GameResultRepository
	eventBus       EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, gameResultRepo GameResultRepository, eventBus EventPublisher) {
	m.userRepo = userRepo
	m.gameResultRepo = gameResultRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) GameResultRepository() GameResultRepository {
	return m.gameResultRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*game.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*game.Session), args.Error(1)
}

func (m *MockSessionStore) Put(ctx context.Context, id string, session game.Session) error {
	args := m.Called(ctx, id, session)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGameMetrics is a mock implementation of GameMetrics
type MockGameMetrics struct {
	mock.Mock
}

func (m *MockGameMetrics) RecordGameStarted(ctx context.Context, mode string) {
	m.Called(ctx, mode)
}

func (m *MockGameMetrics) RecordHintGranted(ctx context.Context, mode string) {
	m.Called(ctx, mode)
}

func (m *MockGameMetrics) RecordGameFinished(ctx context.Context, mode string, won bool) {
	m.Called(ctx, mode, won)
}

func (m *MockGameMetrics) RecordResultFailure(ctx context.Context) {
	m.Called(ctx)
}

// MockGameService is a mock implementation of GameService
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) Start(ctx context.Context, sessionID string, owner models.Owner, modeID string) (*ActionResult, error) {
	args := m.Called(ctx, sessionID, owner, modeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActionResult), args.Error(1)
}

func (m *MockGameService) Guess(ctx context.Context, sessionID string, owner models.Owner, raw string) (*ActionResult, error) {
	args := m.Called(ctx, sessionID, owner, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActionResult), args.Error(1)
}

func (m *MockGameService) Hint(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error) {
	args := m.Called(ctx, sessionID, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActionResult), args.Error(1)
}

func (m *MockGameService) Current(ctx context.Context, sessionID string, owner models.Owner) (*ActionResult, error) {
	args := m.Called(ctx, sessionID, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActionResult), args.Error(1)
}

func (m *MockGameService) History(ctx context.Context, owner models.Owner, limit int) (*models.PlayerHistory, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerHistory), args.Error(1)
}

func (m *MockGameService) Modes() []game.ModeDefinition {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]game.ModeDefinition)
}
