package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"mangaverse/internal/auth"
	"mangaverse/internal/cache"
	"mangaverse/internal/collection"
	"mangaverse/internal/config"
	"mangaverse/internal/logger"
	"mangaverse/internal/manga"
	"mangaverse/internal/platform/jikan"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load(true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Production: cfg.IsProduction()})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	store, err := cache.OpenStore(cfg.CacheURL)
	if err != nil {
		return err
	}
	respCache, err := newCache(store, cfg, log)
	if err != nil {
		return err
	}
	defer respCache.Close()

	upstream := jikan.NewClient(jikan.Config{
		BaseURL:       cfg.Jikan.BaseURL,
		MaxConcurrent: cfg.Jikan.MaxConcurrent,
		Spacing:       cfg.Jikan.Spacing,
		Timeout:       cfg.Jikan.Timeout,
	}, log)
	defer upstream.Close()

	mangaService := manga.NewService(upstream, respCache, log)
	collectionService := collection.NewService(collection.NewPostgresRepo(dbPool, cfg.DBTimeout), mangaService, log)

	deps := serverDeps{
		cfg:        cfg,
		log:        log,
		manga:      manga.NewHTTPHandler(mangaService),
		collection: collection.NewHTTPHandler(collectionService),
		verifier:   auth.NewVerifier(cfg.JWTSecret),
		db:         dbPool,
		cache:      respCache,
	}
	handler, limiter := newRouter(deps)
	go limiter.Run(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Cold fan-outs wait on the upstream gate, so writes get more room.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.String("cache", redactURL(cfg.CacheURL)))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", redactURL(dsn), err)
	}
	log.Info("database connection OK")
	return pool, nil
}

// redactURL hides the userinfo part of a connection URL.
func redactURL(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

// newCache wraps store with the configured codec and prefix. The store is
// closed when the cache cannot be built.
func newCache(store cache.Store, cfg config.Config, log *zap.Logger) (*cache.Cache, error) {
	codec, err := cache.CodecByName(cfg.CacheCodec)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	c, err := cache.New(cache.Options{Store: store, Codec: codec, Prefix: cfg.CachePrefix, Logger: log})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}
