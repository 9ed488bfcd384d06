package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"denti-chat/auth"
	"denti-chat/infrastructure/httpapi"
	"denti-chat/infrastructure/ws"
	"denti-chat/internal"
	"denti-chat/moderation"
	"denti-chat/names"
	"denti-chat/observability"
	"denti-chat/realtime"
	"denti-chat/repositories"
	"denti-chat/search"
	"denti-chat/services"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "denti-chat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the server lifecycle. Keeping
// the logic out of main ensures defers execute before the process exits.
func run() (int, error) {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := newLogger(config.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open badger: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		_ = blugeWriter.Close()
	}()

	// Wiring
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	connectionRepository := repositories.NewConnectionRepository(db, logger)
	conversationRepository := repositories.NewConversationRepository(db, logger)
	messageRepository := repositories.NewMessageRepository(db, logger)
	profileRepository := repositories.NewProfileRepository(db)

	resolver, err := names.NewResolver(profileRepository, config.NameCacheSize, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("name resolver init failed: %w", err)
	}

	censor, err := moderation.NewCensor(config.CensoredWordList(), charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
	}

	hub := realtime.NewHub()
	dispatcher := realtime.NewDispatcher(hub, logger, metrics)
	messageIndex := search.NewMessageIndex(blugeWriter, logger)

	chatService := services.NewChatService(
		connectionRepository, conversationRepository, messageRepository,
		resolver, dispatcher, messageIndex, censor, metrics, logger)
	bridgeService := services.NewBridgeService(
		connectionRepository, conversationRepository, messageRepository,
		resolver, dispatcher, messageIndex, metrics, logger)

	verifier := auth.NewVerifier([]byte(config.JWTSecret))
	router := ws.NewRouter(chatService, dispatcher, logger)
	wsServer := ws.NewServer(ws.Config{
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		PingInterval:   config.PingInterval,
		MaxMessageSize: config.MaxMessageSize,
	}, verifier, chatService, hub, router, metrics, logger)
	apiServer := httpapi.NewServer(bridgeService, logger)

	// HTTP host
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/ws", wsServer.HandleWebSocket)
	apiServer.RegisterRoutes(e, registry)

	errChan := make(chan error, 1)
	go func() {
		address := fmt.Sprintf(":%d", config.Port)
		logger.Info("Starting denti-chat server", "address", address, "at", time.Now().UTC())
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}
