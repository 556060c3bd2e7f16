package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/riteshubale-01/Vortexa-2.0/internal/analytics"
	"github.com/riteshubale-01/Vortexa-2.0/internal/app"
	"github.com/riteshubale-01/Vortexa-2.0/internal/auth"
	"github.com/riteshubale-01/Vortexa-2.0/internal/broadcast"
	"github.com/riteshubale-01/Vortexa-2.0/internal/config"
	"github.com/riteshubale-01/Vortexa-2.0/internal/database"
	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	"github.com/riteshubale-01/Vortexa-2.0/internal/ingest"
	"github.com/riteshubale-01/Vortexa-2.0/internal/logging"
	"github.com/riteshubale-01/Vortexa-2.0/internal/moderation"
	"github.com/riteshubale-01/Vortexa-2.0/internal/redis"
	"github.com/riteshubale-01/Vortexa-2.0/internal/sentiment"
	"github.com/riteshubale-01/Vortexa-2.0/internal/server"
	"github.com/riteshubale-01/Vortexa-2.0/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupClassifier(cfg *config.Config) domain.Classifier {
	fallback := sentiment.NewHeuristicClassifier()
	if cfg.OpenAIAPIKey == "" {
		slog.Info("No OpenAI API key configured, using heuristic classifier only")
		return fallback
	}

	slog.Info("Using OpenAI classifier with heuristic fallback", "model", cfg.OpenAIModel)
	return sentiment.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout, fallback)
}

func setupModerator(cfg *config.Config) moderation.Moderator {
	if !cfg.ModerationEnabled {
		return moderation.AllowAll{}
	}
	slog.Info("Content moderation enabled", "model", cfg.OpenAIModel)
	return moderation.NewOpenAIModerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
}

func runGracefulShutdown(srv *server.Server, hub *broadcast.Hub, ingestor *ingest.Ingestor, sub *redis.Subscription) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if ingestor != nil {
			ingestor.Stop()
		}
		if sub != nil {
			sub.Close()
		}
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

	pool := setupDB(cfg)
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
	}

	postRepo := database.NewPostRepo(pool)
	userRepo := database.NewUserRepo(pool)
	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenLifetime, clock)

	classifier := setupClassifier(cfg)
	moderator := setupModerator(cfg)
	hub := broadcast.NewHub(clock, cfg.MaxClients)

	var publisher app.EventPublisher
	var pubsub *redis.PubSub
	if redisClient != nil {
		pubsub = redis.NewPubSub(redisClient)
		publisher = pubsub
	}

	appSvc := app.NewService(postRepo, userRepo, classifier, moderator, authSvc,
		hub, publisher, analytics.NewAggregator(), clock)

	// Replay events published by peer instances (and this one) into the
	// local hub.
	var subscription *redis.Subscription
	if pubsub != nil {
		subscription = pubsub.SubscribeEvents(context.Background())
		go func() {
			for payload := range subscription.Ch {
				appSvc.ReplayEvent(payload)
			}
		}()
	}

	var ingestor *ingest.Ingestor
	if cfg.IngestEnabled {
		ingestor = ingest.NewIngestor(cfg.IngestFeedURL, appSvc)
		if err := ingestor.Start(cfg.IngestSchedule); err != nil {
			slog.Error("Failed to start trending ingestor", "error", err)
			os.Exit(1)
		}
	}

	srv := server.NewServer(cfg, appSvc, authSvc, hub, pool, redisHealth(redisClient))

	done := runGracefulShutdown(srv, hub, ingestor, subscription)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

// redisHealth avoids handing the server a typed-nil interface when Redis
// is not configured.
func redisHealth(client *redis.Client) interface{ Ping(context.Context) error } {
	if client == nil {
		return nil
	}
	return client
}
