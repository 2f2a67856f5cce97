package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/bookfinder-be/internal/api"
	"github.com/isdelr/bookfinder-be/internal/api/respond"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/config"
	"github.com/isdelr/bookfinder-be/internal/logger"
	"github.com/isdelr/bookfinder-be/internal/monitoring"
	"github.com/isdelr/bookfinder-be/internal/services"
	"github.com/isdelr/bookfinder-be/internal/storage"
	"github.com/isdelr/bookfinder-be/internal/storage/postgres"
	"github.com/isdelr/bookfinder-be/internal/storage/sqlite"
	"github.com/isdelr/bookfinder-be/internal/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())
	if envErr != nil {
		log.Debug().Msg("No .env file found; relying on existing environment")
	}

	ctx := context.Background()

	// Set up storage
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize database")
	}
	defer store.Close()

	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize password hasher")
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	// Set up WebSocket Hub
	hub := websocket.NewHub()

	// Set up services
	eventService := services.NewEventService(store, time.Now)
	authService, err := services.NewAuthService(store, hasher, tokens, eventService, time.Now)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}
	bookService := services.NewBookService(store, eventService, hub, time.Now)

	// Set up the background scheduler
	scheduler, err := monitoring.NewScheduler(eventService, cfg.MaintenanceCron, cfg.EventRetention, time.Now)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:            hub,
		Guard:          auth.NewGuard(tokens, time.Now, respond.AuthError),
		AuthService:    authService,
		BookService:    bookService,
		EventService:   eventService,
		AllowedOrigins: cfg.CORSOrigins,
		SecureCookies:  cfg.IsProduction(),
		StartedAt:      time.Now(),
		Now:            time.Now,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		scheduler.Run()
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.DatabaseDriver).Msg("BookFinder backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server exiting")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseDriver == "postgres" {
		return postgres.Open(ctx, cfg.DatabaseURL)
	}
	return sqlite.Open(ctx, cfg.DatabasePath)
}
