package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-chat/api"
	"daily-chat/auth"
	"daily-chat/hub"
	"daily-chat/internal"
	"daily-chat/moderation"
	"daily-chat/ratelimit"
	"daily-chat/repositories"
	"daily-chat/runtime/workers"
	"daily-chat/search"
	"daily-chat/services"
	"daily-chat/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes every component and owns the server lifecycle, so that
// defers (database close, index close) execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	replacement, err := internal.CharacterRune(config.CensorReplacement)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 2. Storage (BadgerDB) & Search (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.Open(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Repositories
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	settingsRepository := repositories.NewSettingsRepository(db, repositories.Topic{
		Title: config.DailyTopic,
		Rules: config.DailyRules,
	})

	if config.AdminEmail != "" && config.AdminPassword != "" {
		hash, err := auth.HashPassword(config.AdminPassword)
		if err != nil {
			return fmt.Errorf("admin bootstrap failed: %w", err)
		}
		admin, err := userRepository.EnsureAdmin(config.AdminEmail, config.AdminUsername, hash)
		if err != nil {
			return fmt.Errorf("admin bootstrap failed: %w", err)
		}
		log.Info("Admin account ready", "email", admin.Email)
	}

	// 4. Chat core
	moderator, err := moderation.NewModerator(moderation.DefaultWords(), replacement)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}
	limiter := ratelimit.NewLimiter(config.MaxMessagesPerMinute, time.Minute, nil)
	registry := hub.NewRegistry()
	broadcaster := hub.NewBroadcaster(registry, log, nil)

	chatService := services.NewChatService(
		log, messageRepository, limiter, moderator, broadcaster, index, nil,
	)
	issuer := auth.NewIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, issuer)

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewDailyResetWorker(log, messageRepository, index, broadcaster, config.ResetPollInterval, nil),
		workers.NewHeartbeatWorker(log, messageRepository, registry, config.HeartbeatInterval),
		workers.NewSweepWorker(log, limiter, config.SweepInterval, config.SweepMaxIdle),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sup.Run(ctx)

	// 6. HTTP & WebSocket surface
	wsHandler := ws.NewHandler(registry, chatService, log, ws.Config{
		MaxConnections:   config.MaxConnections,
		SendBufferSize:   config.SendBufferSize,
		WriteWait:        config.WriteTimeout,
		ReplayGraceDelay: config.ReplayGraceDelay,
	})
	server := api.NewServer(
		log, chatService, authService,
		messageRepository, userRepository, settingsRepository,
		registry, index, issuer, wsHandler,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(config.Host, config.Port); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for a signal or a server error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
