// Command cachectl runs out-of-band maintenance on the response cache.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mangaverse/internal/cache"
	"mangaverse/internal/config"
	"mangaverse/internal/logger"
	"mangaverse/internal/manga"
	"mangaverse/internal/platform/jikan"
)

func main() {
	var (
		command = flag.String("command", "flush", "Maintenance command: flush, warm")
		timeout = flag.Duration("timeout", 5*time.Minute, "Overall deadline")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load(false)
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *command, cfg, log); err != nil {
		log.Fatal("cachectl failed", zap.String("command", *command), zap.Error(err))
	}
}

// ErrLocalStore is returned when CACHE_URL selects the in-process store,
// which no other process can see.
var ErrLocalStore = errors.New("cachectl needs a shared cache store: set CACHE_URL to a redis:// URL")

func run(ctx context.Context, command string, cfg config.Config, log *zap.Logger) error {
	store, err := cache.OpenStore(cfg.CacheURL)
	if err != nil {
		return err
	}
	if _, local := store.(*cache.MemoryStore); local {
		_ = store.Close()
		return ErrLocalStore
	}
	return execute(ctx, command, store, cfg, log)
}

// execute runs command against store and closes it.
func execute(ctx context.Context, command string, store cache.Store, cfg config.Config, log *zap.Logger) error {
	codec, err := cache.CodecByName(cfg.CacheCodec)
	if err != nil {
		_ = store.Close()
		return err
	}
	c, err := cache.New(cache.Options{Store: store, Codec: codec, Prefix: cfg.CachePrefix, Logger: log})
	if err != nil {
		_ = store.Close()
		return err
	}
	defer c.Close()

	switch command {
	case "flush":
		if err := c.Flush(ctx); err != nil {
			return err
		}
		log.Info("cache flushed", zap.String("prefix", cfg.CachePrefix))
		return nil
	case "warm":
		client := jikan.NewClient(jikan.Config{
			BaseURL:       cfg.Jikan.BaseURL,
			MaxConcurrent: cfg.Jikan.MaxConcurrent,
			Spacing:       cfg.Jikan.Spacing,
			Timeout:       cfg.Jikan.Timeout,
		}, log)
		defer client.Close()
		return warm(ctx, manga.NewService(client, c, log), log)
	default:
		return fmt.Errorf("unknown command %q, use: flush, warm", command)
	}
}

type warmer interface {
	Top(ctx context.Context, filter string) []manga.Record
	News(ctx context.Context) []manga.NewsItem
	Recommendations(ctx context.Context) []manga.Record
}

// topFilters are the top-list variants the front page asks for.
var topFilters = []string{"", "publishing", "upcoming", "bypopularity", "favorite"}

// warm populates the shared entries in sequence; the upstream gate
// serializes the calls anyway.
func warm(ctx context.Context, w warmer, log *zap.Logger) error {
	for _, filter := range topFilters {
		n := len(w.Top(ctx, filter))
		log.Info("warmed top list", zap.String("filter", filter), zap.Int("items", n))
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	log.Info("warmed news", zap.Int("items", len(w.News(ctx))))
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("warmed recommendations", zap.Int("items", len(w.Recommendations(ctx))))
	return ctx.Err()
}
