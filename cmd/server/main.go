package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/evalocal/vendor-import/internal/config"
	"github.com/evalocal/vendor-import/internal/db"
	"github.com/evalocal/vendor-import/internal/geocode"
	"github.com/evalocal/vendor-import/internal/importer"
	"github.com/evalocal/vendor-import/internal/logging"
	"github.com/evalocal/vendor-import/internal/store"
	"github.com/evalocal/vendor-import/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"geocoder_pause", cfg.Geocoder.Pause,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if err := db.RunMigrations(ctx, pool, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Stores
	jobs := store.NewImportJobStore(pool)
	providers := store.NewProviderStore(pool)
	users := store.NewUserStore(pool)
	categories := store.NewCategoryStore(pool)
	cities := store.NewCityStore(pool)
	cultureTags := store.NewCultureTagStore(pool)
	postcodes := store.NewPostcodeCacheStore(pool)
	audit := store.NewAuditStore(pool)

	// Geocoding: external client behind the postcode cache, paced to the
	// upstream rate policy.
	client := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	geocoder := geocode.NewCachedGeocoder(postcodes, client)
	pacer := geocode.NewPacer(cfg.Geocoder.Pause)

	// Import pipeline
	log := slog.Default()
	providerImp := importer.NewProviderImporter(providers, users, geocoder, pacer, log)
	taxonomies := importer.NewTaxonomyImporters(categories, cities, cultureTags)
	dispatcher := importer.NewDispatcher(jobs, providerImp, taxonomies, importer.Options{
		MaxBatchRows:     cfg.Import.MaxBatchRows,
		ResultSampleSize: cfg.Import.ResultSampleSize,
		MaxErrorRecords:  cfg.Import.MaxErrorRecords,
	}, log)

	server := web.NewServer(cfg, log, dispatcher, jobs, audit, users, pool)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
