package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-social/internal/auth"
	"go-social/internal/chat"
	"go-social/internal/config"
	"go-social/internal/db"
	"go-social/internal/feed"
	"go-social/internal/friendship"
	myMiddleware "go-social/internal/middleware"
	"go-social/internal/post"
	"go-social/internal/server"
	"go-social/internal/user"
	"go-social/internal/voting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config & Flags
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	addr := flag.String("addr", cfg.Addr, "http service address")
	flag.Parse()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database (Platform Layer)
	database, err := db.NewDatabase(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sugar.Info("connected to PostgreSQL")

	if err := database.AutoMigrate(ctx); err != nil {
		database.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	sugar.Info("database schema initialized")

	// 3. Connect to Redis (Platform Layer)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		database.Close()
		return fmt.Errorf("connect to redis: %w", err)
	}
	sugar.Info("connected to Redis")

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, auth.NewRedisRevoker(redisClient))

	// 4. Features
	userService := user.NewService(user.NewRepository(database.Pool), tokens)
	votingEngine := voting.NewEngine(voting.NewRepository(database.Pool))

	chatRepo := chat.NewRepository(database.Pool)
	registry := chat.NewRegistry(sugar)
	pipeline := chat.NewPipeline(registry, chatRepo, sugar)

	handlers := server.Handlers{
		User:       user.NewHandler(userService, sugar, cfg.CookieSecure, cfg.MaxUploadBytes),
		Post:       post.NewHandler(post.NewService(post.NewRepository(database.Pool)), sugar, cfg.MaxUploadBytes),
		Voting:     voting.NewHandler(votingEngine, sugar),
		Friendship: friendship.NewHandler(friendship.NewService(friendship.NewRepository(database.Pool)), sugar),
		Chat:       chat.NewHandler(chat.NewService(chatRepo), pipeline, cfg.AllowedOrigins, sugar, cfg.MaxUploadBytes),
		Feed:       feed.NewHandler(feed.NewAggregator(feed.NewRepository(database.Pool), votingEngine), sugar),
	}

	authMiddleware := myMiddleware.NewAuthMiddleware(tokens, sugar)

	// 5. Serve until SIGINT/SIGTERM
	srv := server.New(*addr, server.NewRouter(handlers, authMiddleware.Handle, logger), sugar,
		registry.Shutdown,
		database.Close,
		func() {
			if err := redisClient.Close(); err != nil {
				sugar.Warnw("closing redis", "error", err)
			}
		},
	)
	return srv.Run(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
