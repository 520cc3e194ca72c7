package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mangaverse/internal/collection"
	"mangaverse/internal/config"
	"mangaverse/internal/httpx"
	"mangaverse/internal/manga"
)

const maxBodyBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

type serverDeps struct {
	cfg        config.Config
	log        *zap.Logger
	manga      *manga.HTTPHandler
	collection *collection.HTTPHandler
	verifier   httpx.TokenVerifier
	db         pinger
	cache      pinger
}

func newRouter(d serverDeps) (http.Handler, *httpx.RateLimiter) {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", readyHandler(d))

	router.HandleFunc("GET /v1/manga", d.manga.List)
	router.HandleFunc("GET /v1/manga/details/{id}", d.manga.Details)
	router.HandleFunc("GET /v1/manga/search", d.manga.Search)
	router.HandleFunc("GET /v1/manga/top", d.manga.Top)
	router.HandleFunc("GET /v1/manga/genre/{id}", d.manga.ByGenre)
	router.HandleFunc("GET /v1/manga/news", d.manga.News)
	router.HandleFunc("GET /v1/manga/recommended", d.manga.Recommendations)

	protected := httpx.AuthMiddleware(d.verifier)
	router.Handle("GET /v1/collection", protected(http.HandlerFunc(d.collection.List)))
	router.Handle("POST /v1/collection", protected(http.HandlerFunc(d.collection.Add)))
	router.Handle("PUT /v1/collection/{id}", protected(http.HandlerFunc(d.collection.UpdateStatus)))
	router.Handle("DELETE /v1/collection/{id}", protected(http.HandlerFunc(d.collection.Remove)))

	limiter := httpx.NewRateLimiter(d.cfg.RateLimitRPS, d.cfg.RateLimitBurst)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.log),
		httpx.RecoveryMiddleware(d.log),
		httpx.SecurityHeadersMiddleware(d.cfg.IsProduction()),
		httpx.CORSMiddleware(d.cfg.CORSOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxBodyBytes),
	)
	return handler, limiter
}

func readyHandler(d serverDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if err := d.cache.Ping(ctx); err != nil {
			http.Error(w, "cache not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
