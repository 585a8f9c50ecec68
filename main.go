package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"timely/internal/app"
	"timely/internal/config"
	"timely/internal/database"
	"timely/internal/logging"
	"timely/internal/ratelimit"
	"timely/internal/repositories"
	"timely/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// --- Repositories ---
	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer repos.Close()
	logger.Info("repositories ready", zap.String("driver", cfg.DatabaseDriver))

	deps := app.Deps{
		Config:      cfg,
		UserRepo:    repos.Users,
		SessionRepo: repos.Sessions,
		Logger:      logger,
	}

	// --- Rate limit storage (optional) ---
	if cfg.RedisURL != "" {
		client, err := ratelimit.Connect(cfg.RedisURL)
		if err != nil {
			return err
		}
		storage := ratelimit.NewRedisStorage(client, "")
		defer storage.Close()
		deps.LimiterStorage = storage
		logger.Info("rate limits stored in redis")
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.DefaultConfig(cfg.RabbitMQURL), logger)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		deps.Events = mqClient
	}

	a := app.New(deps)

	if mqClient != nil {
		if err := mqClient.ConsumeCompletions(a.SessionHandler.HandleCompletionMessage); err != nil {
			logger.Error("failed to start completion consumer", zap.Error(err))
		}
	}

	return serve(a.Fiber, cfg.AppPort, logger)
}

// serve listens until SIGINT or SIGTERM, then shuts the app down.
func serve(f *fiber.App, port string, logger *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", port))
		listenErr <- f.Listen(port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := f.Shutdown(); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

// repositorySet bundles the repositories and releases their resources.
type repositorySet struct {
	Users    repositories.UserRepository
	Sessions repositories.SessionRepository
	close    func() error
}

func (r *repositorySet) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// openRepositories returns GORM repositories for sqlite and postgres and
// in-memory ones for the "memory" driver.
func openRepositories(cfg *config.Config) (*repositorySet, error) {
	if cfg.DatabaseDriver == "memory" {
		return &repositorySet{
			Users:    repositories.NewMockUserRepository(),
			Sessions: repositories.NewMockSessionRepository(),
		}, nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	return &repositorySet{
		Users:    repositories.NewGORMUserRepository(db),
		Sessions: repositories.NewGORMSessionRepository(db),
		close:    sqlDB.Close,
	}, nil
}
