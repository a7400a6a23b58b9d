package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"guesser/config"
	"guesser/database"
	"guesser/events"
	"guesser/game"
	"guesser/httpserver"
	"guesser/infrastructure"
	"guesser/infrastructure/observability"
	"guesser/notify"
	"guesser/repository"
	"guesser/service"
	"guesser/sessionstore"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// ConfigureLogging applies the log level and format for the environment
func ConfigureLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting guesser...")

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Database
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Mode catalog
	catalog := game.DefaultCatalog()
	if cfg.ModesFile != "" {
		catalog, err = game.LoadCatalog(cfg.ModesFile)
		if err != nil {
			return fmt.Errorf("failed to load modes: %w", err)
		}
		log.WithField("file", cfg.ModesFile).Info("Loaded mode catalog")
	}

	// Event bus and subscribers
	eventBus := events.NewBus()

	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureGameEventStream(); err != nil {
			_ = natsClient.Close()
			return fmt.Errorf("failed to ensure game event stream: %w", err)
		}
		infrastructure.NewGameEventForwarder(natsClient, metrics).Register(eventBus)
		log.Info("Forwarding game events to NATS")
	}

	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		session, err := notify.NewDiscordSession(cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("failed to create Discord session: %w", err)
		}
		notify.NewDiscordAnnouncer(session, cfg.DiscordChannelID).Register(eventBus)
		log.WithField("channelID", cfg.DiscordChannelID).Info("Announcing results to Discord")
	}

	// Sessions
	codec := sessionstore.NewCodec(catalog)
	var store service.SessionStore
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = sessionstore.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = sessionstore.NewRedisStore(redisClient, codec, cfg.SessionTTL)
		log.WithField("addr", cfg.RedisAddr).Info("Storing sessions in Redis")
	} else {
		store = sessionstore.NewMemoryStore(codec, cfg.SessionTTL)
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	// Game
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	recorder := service.NewResultRecorder(uowFactory, cfg.RecordRetries, metrics)

	policy := game.ChargeOnDelivery
	if cfg.HintChargeAlways {
		policy = game.ChargeAlways
	}
	engine := game.NewEngine(catalog, recorder,
		game.WithHintPolicy(policy),
		game.WithRecordTimeout(cfg.RecordTimeout),
	)
	games := service.NewGameService(engine, store, uowFactory, eventBus, metrics)

	// HTTP
	identity := httpserver.NewIdentity(cfg.JWTSecret, repository.NewUserRepository(db), cfg.SecureCookies, cfg.SessionTTL)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpserver.New(games, identity, metrics).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Error closing Redis client")
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
