package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/hltb"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/igdb"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/jsonfile"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/rawg"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/sheet"
	sqliteadapter "github.com/ericfisherdev/retrotracker/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/twitch"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/upstream"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driving/discord"
	httphandler "github.com/ericfisherdev/retrotracker/internal/adapter/driving/http"
	"github.com/ericfisherdev/retrotracker/internal/application"
	"github.com/ericfisherdev/retrotracker/internal/config"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// igdbService names the IGDB token in the token store.
const igdbService = "igdb"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"store", cfg.Store,
		"cache_ttl", cfg.CacheTTL,
		"igdb", cfg.HasIGDBCredentials(),
		"rawg", cfg.HasRAWGKey(),
		"sheet", cfg.SheetURL != "",
	)

	// 2. One process per database.
	lock, err := acquireInstanceLock(cfg.DBPath + ".lock")
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Error("error releasing instance lock", "error", err)
		}
	}()

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	logger.Info("database ready", "path", db.Path(), "schema_version", version)

	// 5. Metadata cache and token persistence.
	cacheStore, tokenStore := selectStores(cfg, db, logger)

	cache := application.NewMetadataCache(cacheStore, cfg.CacheTTL, logger)
	if err := cache.Init(ctx); err != nil {
		return fmt.Errorf("init metadata cache: %w", err)
	}

	// 6. Metadata sources. Sources without credentials are left out.
	resolver := application.NewResolver(logger, buildSources(cfg, cache, tokenStore, logger)...)

	// 7. Game use-cases.
	catalog := sheet.New(upstream.NewClient(upstream.Options{Timeout: cfg.HTTPTimeout}), cfg.SheetURL, logger)
	games := application.NewGameService(
		sqliteadapter.NewGameRepo(db),
		sqliteadapter.NewProgressRepo(db),
		catalog,
		resolver,
		logger,
	)

	// 8. Driving adapters: ops HTTP API and Discord bot.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(httphandler.NewHandler(resolver, games, logger), logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * cfg.HTTPTimeout,
		IdleTimeout:       120 * time.Second,
	}
	bot := discord.NewBot(games, resolver, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return bot.Run(gctx, cfg.DiscordToken)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	logger.Info("retrotracker started", "listen_addr", cfg.ListenAddr)

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// selectStores returns the cache and token backends chosen by configuration.
func selectStores(cfg *config.Config, db *sqliteadapter.DB, logger *slog.Logger) (driven.CacheStore, driven.TokenStore) {
	if cfg.Store == config.StoreJSONFile {
		return jsonfile.NewCacheFile(cfg.CacheFile, logger),
			jsonfile.NewTokenFile(cfg.TokenFile, igdbService, logger)
	}
	return sqliteadapter.NewCacheRepo(db), sqliteadapter.NewTokenRepo(db, cfg.SecretKey)
}

// buildSources wires every metadata source whose credentials are configured,
// in resolver order.
func buildSources(cfg *config.Config, cache *application.MetadataCache, tokens driven.TokenStore, logger *slog.Logger) []application.Fetcher {
	var sources []application.Fetcher

	if cfg.HasIGDBCredentials() {
		issuer := twitch.NewIssuer(
			upstream.NewClient(upstream.Options{Timeout: cfg.HTTPTimeout}),
			cfg.TwitchTokenURL, cfg.IGDBClientID, cfg.IGDBClientSecret,
		)
		tokenSvc := application.NewTokenService(igdbService, tokens, issuer, logger)
		client := igdb.NewClient(
			upstream.NewClient(upstream.Options{BaseURL: cfg.IGDBBaseURL, Timeout: cfg.HTTPTimeout}),
			cfg.IGDBClientID, tokenSvc,
		)
		sources = append(sources, application.NewCachedSource(client, cache, logger))
	} else {
		logger.Warn("IGDB credentials not configured, source disabled")
	}

	sources = append(sources, application.NewCachedSource(
		hltb.NewClient(upstream.NewClient(upstream.Options{BaseURL: cfg.HLTBBaseURL, Timeout: cfg.HTTPTimeout}), cfg.HLTBBaseURL),
		cache, logger,
	))

	if cfg.HasRAWGKey() {
		client := rawg.NewClient(
			upstream.NewClient(upstream.Options{BaseURL: cfg.RAWGBaseURL, Timeout: cfg.HTTPTimeout}),
			cfg.RAWGKey,
		)
		sources = append(sources, application.NewCachedSource(client, cache, logger))
	} else {
		logger.Warn("RAWG key not configured, source disabled")
	}

	return sources
}
