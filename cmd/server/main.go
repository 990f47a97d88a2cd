package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"fingenius/internal/config"
	"fingenius/internal/handlers/backup"
	"fingenius/internal/handlers/dashboard"
	"fingenius/internal/handlers/explorer"
	"fingenius/internal/handlers/insights"
	"fingenius/internal/handlers/whatif"
	apphttp "fingenius/internal/http"
	"fingenius/internal/logger"
	"fingenius/internal/services/advisor"
	"fingenius/internal/services/dataloader"
	"fingenius/internal/services/storage"
	"fingenius/internal/version"
)

// passwordEnv unlocks an encrypted data directory at startup
const passwordEnv = "FINGENIUS_PASSWORD"

const shutdownTimeout = 30 * time.Second

var (
	cfg      *config.Config
	store    *storage.Storage
	profiles storage.ProfileStore
	loader   *dataloader.DataLoader
	adv      *advisor.Advisor

	// closeProfiles releases the profile store; a no-op for memory and file stores
	closeProfiles = func() error { return nil }
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.SetGlobal(logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Debug}))

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("version", version.Get().String()).
		Str("addr", cfg.ListenAddr).
		Str("data_dir", cfg.DataDirectory).
		Str("store", cfg.StoreBackend).
		Msg("Starting fingenius")

	if err := SetupDependencies(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up dependencies")
	}
	defer func() {
		if err := closeProfiles(); err != nil {
			log.Warn().Err(err).Msg("Error closing profile store")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("Server stopped")
}

// SetupDependencies opens storage and builds the services the handlers use
func SetupDependencies(c *config.Config) error {
	cfg = c

	var err error
	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("open data directory: %w", err)
	}
	if store.IsEncrypted() {
		password := os.Getenv(passwordEnv)
		if password == "" {
			log.Warn().Msgf("Data directory is encrypted; set %s to unlock it", passwordEnv)
		} else if err := store.Unlock(password); err != nil {
			return fmt.Errorf("unlock data directory: %w", err)
		} else {
			log.Info().Msg("Data directory unlocked")
		}
	}

	profiles, err = openProfileStore(cfg, store)
	if err != nil {
		return err
	}

	opts := dataloader.Options{SeedPath: cfg.SeedDataset}
	if cfg.KeepUploads {
		opts.UploadsDir = cfg.UploadsDirectory
	}
	loader = dataloader.New(profiles, store, opts)

	adv = advisor.New(advisor.NewGeminiClient(cfg.GeminiAPIKey, cfg.TextModel), cfg.AdvisorTimeout)
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; /ask and /dashboard/analytics will fail")
	}

	dashboard.Initialize(loader)
	insights.Initialize(loader, adv)
	explorer.Initialize(loader, cfg)
	backup.Initialize(store)

	return nil
}

func openProfileStore(c *config.Config, files *storage.Storage) (storage.ProfileStore, error) {
	switch c.StoreBackend {
	case config.StoreFile:
		fs, err := storage.NewFileStore(files, c.ProfilesDirectory)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StoreSQLite:
		db, err := storage.NewSQLiteStore(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		closeProfiles = db.Close
		return db, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

// SetupRouter creates the router with every route registered
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log.Logger))
	r.Use(middleware.Recoverer)
	r.Use(apphttp.CORS)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/health", http.StatusTemporaryRedirect)
	})

	backup.RegisterRoutes(r)
	dashboard.RegisterRoutes(r)
	insights.RegisterRoutes(r)
	whatif.RegisterRoutes(r)
	explorer.RegisterRoutes(r)

	return r
}
