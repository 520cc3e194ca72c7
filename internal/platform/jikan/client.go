package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultBaseURL       = "https://api.jikan.moe/v4"
	DefaultMaxConcurrent = 3
	DefaultSpacing       = 400 * time.Millisecond
	DefaultTimeout       = 20 * time.Second

	defaultUserAgent = "mangaverse/1.0"
	maxBodyBytes     = 8 << 20
)

type Config struct {
	BaseURL       string
	UserAgent     string
	MaxConcurrent int
	// Spacing defaults to DefaultSpacing; a negative value disables it.
	Spacing time.Duration
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is the gateway to the catalog API. At most MaxConcurrent calls are
// in flight at once and every call waits Spacing after it is admitted.
// One attempt is made per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	gate       *semaphore.Weighted
	spacing    time.Duration
	timeout    time.Duration
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	switch {
	case cfg.Spacing == 0:
		cfg.Spacing = DefaultSpacing
	case cfg.Spacing < 0:
		cfg.Spacing = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		gate:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		spacing:    cfg.Spacing,
		timeout:    cfg.Timeout,
		logger:     logger.Named("jikan"),
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Fetch performs one GET against endpoint. Transport errors, timeouts and
// non-2xx statuses come back as an *Error wrapping ErrUnavailable (404 wraps
// ErrNotFound); Fetch never panics on upstream behavior.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (Envelope, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return Envelope{}, unavailable(endpoint, 0, err)
	}
	defer c.gate.Release(1)

	if c.spacing > 0 {
		t := time.NewTimer(c.spacing)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return Envelope{}, unavailable(endpoint, 0, ctx.Err())
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	env, status, err := c.do(callCtx, endpoint, params)
	if err != nil {
		c.logger.Warn("upstream call failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return Envelope{}, err
	}
	c.logger.Debug("upstream call",
		zap.String("endpoint", endpoint),
		zap.Duration("duration", time.Since(start)),
	)
	return env, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (Envelope, int, error) {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Envelope{}, 0, unavailable(endpoint, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, 0, unavailable(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Envelope{}, resp.StatusCode, &Error{Endpoint: endpoint, Status: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Envelope{}, resp.StatusCode, unavailable(endpoint, resp.StatusCode, nil)
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return Envelope{}, resp.StatusCode, unavailable(endpoint, resp.StatusCode, fmt.Errorf("decode envelope: %w", err))
	}
	return env, resp.StatusCode, nil
}

// GetManga fetches the detail resource for one title.
func (c *Client) GetManga(ctx context.Context, malID int) (*Manga, error) {
	endpoint := "manga/" + strconv.Itoa(malID)
	env, err := c.Fetch(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if env.Empty() {
		return nil, &Error{Endpoint: endpoint, Err: ErrNotFound}
	}
	var m Manga
	if err := json.Unmarshal(env.Data, &m); err != nil {
		return nil, &Error{Endpoint: endpoint, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
	}
	return &m, nil
}

// SearchManga runs a free-text search.
func (c *Client) SearchManga(ctx context.Context, query string, limit int) ([]Manga, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	env, err := c.Fetch(ctx, "manga", params)
	if err != nil {
		return nil, err
	}
	return c.decodeList(env, "manga"), nil
}

// TopManga fetches the top list, optionally filtered (favorite, upcoming, ...).
func (c *Client) TopManga(ctx context.Context, filter string) ([]Manga, error) {
	params := url.Values{}
	if filter != "" {
		params.Set("filter", filter)
	}
	env, err := c.Fetch(ctx, "top/manga", params)
	if err != nil {
		return nil, err
	}
	return c.decodeList(env, "top/manga"), nil
}

// MangaByGenre lists a genre ordered by popularity.
func (c *Client) MangaByGenre(ctx context.Context, genreID, limit int) ([]Manga, error) {
	params := url.Values{}
	params.Set("genres", strconv.Itoa(genreID))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "popularity")
	env, err := c.Fetch(ctx, "manga", params)
	if err != nil {
		return nil, err
	}
	return c.decodeList(env, "manga"), nil
}

// ListManga fetches one page of the listing with arbitrary filters.
func (c *Client) ListManga(ctx context.Context, page, limit int, filters map[string]string) ([]Manga, *Pagination, error) {
	params := url.Values{}
	for k, v := range filters {
		params.Set(k, v)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	env, err := c.Fetch(ctx, "manga", params)
	if err != nil {
		return nil, nil, err
	}
	return c.decodeList(env, "manga"), env.Pagination, nil
}

// MangaNews fetches news items for one title.
func (c *Client) MangaNews(ctx context.Context, malID int) ([]NewsItem, error) {
	endpoint := "manga/" + strconv.Itoa(malID) + "/news"
	env, err := c.Fetch(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[NewsItem](env, func(err error) {
		c.logger.Debug("dropping malformed news item", zap.String("endpoint", endpoint), zap.Error(err))
	}), nil
}

// Recommendations fetches the recommendations feed.
func (c *Client) Recommendations(ctx context.Context) ([]Recommendation, error) {
	env, err := c.Fetch(ctx, "recommendations/manga", nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[Recommendation](env, func(err error) {
		c.logger.Debug("dropping malformed recommendation", zap.Error(err))
	}), nil
}

func (c *Client) decodeList(env Envelope, endpoint string) []Manga {
	return decodeItems[Manga](env, func(err error) {
		c.logger.Debug("dropping malformed item", zap.String("endpoint", endpoint), zap.Error(err))
	})
}

// decodeItems decodes data as a list one element at a time, so a single
// malformed element is dropped instead of failing the whole list.
func decodeItems[T any](env Envelope, onErr func(error)) []T {
	if env.Empty() {
		return []T{}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		onErr(err)
		return []T{}
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		if len(item) == 0 || string(item) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			onErr(err)
			continue
		}
		out = append(out, v)
	}
	return out
}
