package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/api"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/config"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/database"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := observability.New(cfg.Metrics)

	logger, err := observability.NewLogger(cfg.Logging, metrics)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.CreateSchema(); err != nil {
		logger.Fatal("Failed to create database schema", err)
	}

	if err := seedSuperAdmin(context.Background(), db, cfg); err != nil {
		logger.Fatal("Failed to seed super admin", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiting falls back to per-process limits",
				observability.Field{Key: "error", Value: err.Error()}.ToZapField())
			redisClient = nil
		}
	}

	router := api.NewRouter(cfg, logger, metrics, db, redisClient)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down server")
		db.Close()
		os.Exit(0)
	}()

	if err := router.Run(); err != nil {
		logger.Fatal("Failed to start server", err)
	}
}

// seedSuperAdmin creates the initial super admin account when no admin
// exists yet. The credentials come from the environment and are ignored on
// every subsequent boot.
func seedSuperAdmin(ctx context.Context, db *database.DB, cfg *config.Config) error {
	if cfg.Seed.SuperAdminEmail == "" || cfg.Seed.SuperAdminPassword == "" {
		return nil
	}

	users := data.NewUserRepository()
	count, err := users.CountAdmins(ctx, db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Name:     cfg.Seed.SuperAdminName,
		Email:    cfg.Seed.SuperAdminEmail,
		Password: cfg.Seed.SuperAdminPassword,
		IsAdmin:  true,
	}
	return users.Insert(ctx, db, admin)
}
