// AI Partner - personal dashboard command/sync server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jaeyunk/partner/internal/agent"
	"github.com/jaeyunk/partner/internal/api"
	"github.com/jaeyunk/partner/internal/config"
	"github.com/jaeyunk/partner/internal/dispatch"
	"github.com/jaeyunk/partner/internal/middleware"
	"github.com/jaeyunk/partner/internal/notify"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
	"github.com/jaeyunk/partner/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	gateway, err := store.NewFileStore(cfg.DataDir, cfg.SaveQueueSize)
	if err != nil {
		slog.Error("Failed to initialize domain store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := gateway.Close(); closeErr != nil {
			slog.Error("Failed to close domain store", "error", closeErr)
		}
	}()

	chatStore, err := store.NewChatStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize chat history database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := chatStore.Close(); closeErr != nil {
			slog.Error("Failed to close chat history database", "error", closeErr)
		}
	}()

	if err := chatStore.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Chat history database connected")

	// Hydrate state once from the gateway.
	appState := state.New(gateway)
	if err := appState.Hydrate(context.Background()); err != nil {
		slog.Error("Failed to hydrate domain state", "error", err)
		os.Exit(1)
	}
	slog.Info("Domain state hydrated", "domains", len(store.Domains))

	hub := ws.NewHub()
	appState.SetOnChange(hub.DomainUpdated)

	dispatcher := dispatch.New(appState, gateway)

	// Model service is optional: without an API key chat degrades to a
	// fixed notice, everything else keeps working.
	var agentSvc *agent.Service
	if cfg.GeminiAPIKey != "" {
		model, err := agent.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("Failed to initialize Gemini client, AI features disabled", "error", err)
		} else {
			agentSvc = agent.NewService(model, appState)
			slog.Info("Gemini client initialized", "model", cfg.GeminiModel)
		}
	}
	if agentSvc == nil {
		slog.Info("AI features disabled (GEMINI_API_KEY not set or client failed)")
	}

	// Initialize handlers.
	chatHandler := api.NewChatHandler(appState, agentSvc, dispatcher, chatStore)
	healthHandler := api.NewHealthHandler(chatStore)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)

	// WebSocket event stream.
	r.Get("/ws", hub.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket clients hold the connection open
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background workers: remote-update pump and notification scan.
	go appState.RunUpdatePump(ctx)

	scheduler := notify.NewScheduler(appState, hub, cfg.ScanInterval)
	scheduler.Start(ctx)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
