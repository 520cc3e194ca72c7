package manga

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mangaverse/internal/cache"
	"mangaverse/internal/platform/jikan"
)

const (
	SearchLimit        = 10
	GenreLimit         = 12
	MaxRecommendations = 12
	DefaultPageLimit   = 25
	MaxPageLimit       = 25
)

// PopularNewsIDs are the titles whose news make up the combined feed.
var PopularNewsIDs = []int{2, 1706, 1, 11, 16498}

// errAllFailed marks a fan-out where every sub-fetch failed. It keeps the
// empty aggregate out of the cache.
var errAllFailed = errors.New("every upstream sub-fetch failed")

// Service serves catalog reads through the cache.
type Service struct {
	upstream Upstream
	cache    *cache.Cache
	logger   *zap.Logger
	newsIDs  []int
}

func NewService(upstream Upstream, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		upstream: upstream,
		cache:    c,
		logger:   logger.Named("manga"),
		newsIDs:  PopularNewsIDs,
	}
}

// Details returns one title. Unknown ids and upstream failures both yield
// an error matching ErrNotFound.
func (s *Service) Details(ctx context.Context, malID int) (Record, error) {
	fp := cache.Fingerprint("manga_details", map[string]string{"id": strconv.Itoa(malID)})
	return cache.GetOrFetch(ctx, s.cache, fp, cache.ClassDetail, func(ctx context.Context) (Record, error) {
		raw, err := s.upstream.GetManga(ctx, malID)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		rec, ok := Normalize(raw)
		if !ok {
			return Record{}, ErrNotFound
		}
		return rec, nil
	})
}

// Search runs a free-text search. The fingerprint is case-insensitive.
func (s *Service) Search(ctx context.Context, query string) []Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Record{}
	}
	fp := cache.Fingerprint("search", map[string]string{"q": strings.ToLower(query)})
	return s.records(ctx, fp, cache.ClassSearch, func(ctx context.Context) ([]jikan.Manga, error) {
		return s.upstream.SearchManga(ctx, query, SearchLimit)
	})
}

// Top returns the top list. An empty filter means the popular list.
func (s *Service) Top(ctx context.Context, filter string) []Record {
	key := filter
	if key == "" {
		key = "popular"
	}
	fp := cache.Fingerprint("top_manga", map[string]string{"filter": key})
	return s.records(ctx, fp, cache.ClassTopList, func(ctx context.Context) ([]jikan.Manga, error) {
		return s.upstream.TopManga(ctx, filter)
	})
}

// ByGenre returns the most popular titles of a genre.
func (s *Service) ByGenre(ctx context.Context, genreID int) []Record {
	fp := cache.Fingerprint("genre", map[string]string{"id": strconv.Itoa(genreID)})
	return s.records(ctx, fp, cache.ClassGenre, func(ctx context.Context) ([]jikan.Manga, error) {
		return s.upstream.MangaByGenre(ctx, genreID, GenreLimit)
	})
}

// List returns one page of the listing. Filters are passed upstream as
// query parameters; page and limit always win over a filter of the same name.
func (s *Service) List(ctx context.Context, page, limit int, filters map[string]string) Page {
	params := make(map[string]string, len(filters)+2)
	for k, v := range filters {
		params[k] = v
	}
	params["page"] = strconv.Itoa(page)
	params["limit"] = strconv.Itoa(limit)
	fp := cache.Fingerprint("manga_list", params)

	p, err := cache.GetOrFetch(ctx, s.cache, fp, cache.ClassPagination, func(ctx context.Context) (Page, error) {
		raws, pagination, err := s.upstream.ListManga(ctx, page, limit, filters)
		if err != nil {
			return Page{}, err
		}
		return Page{Mangas: normalizeAll(raws), Pagination: pagination}, nil
	})
	if err != nil {
		s.logger.Warn("listing unavailable", zap.String("fingerprint", fp), zap.Error(err))
		return Page{Mangas: []Record{}}
	}
	if p.Mangas == nil {
		p.Mangas = []Record{}
	}
	return p
}

// News merges the news of PopularNewsIDs, newest first. Titles whose news
// cannot be fetched are left out.
func (s *Service) News(ctx context.Context) []NewsItem {
	items, err := cache.GetOrFetch(ctx, s.cache, cache.Fingerprint("combined_news", nil), cache.ClassNews, s.fetchCombinedNews)
	if err != nil {
		s.logger.Warn("news unavailable", zap.Error(err))
		return []NewsItem{}
	}
	if items == nil {
		return []NewsItem{}
	}
	return items
}

func (s *Service) fetchCombinedNews(ctx context.Context) ([]NewsItem, error) {
	batches := make([][]NewsItem, len(s.newsIDs))
	failed := make([]bool, len(s.newsIDs))

	var g errgroup.Group
	for i, id := range s.newsIDs {
		g.Go(func() error {
			items, err := s.upstream.MangaNews(ctx, id)
			if err != nil {
				failed[i] = true
				s.logger.Debug("news sub-fetch failed", zap.Int("mal_id", id), zap.Error(err))
				return nil
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if len(s.newsIDs) > 0 && !slices.Contains(failed, false) {
		return nil, errAllFailed
	}
	return MergeNews(batches...), nil
}

// MergeNews concatenates the batches and sorts them by date, newest first.
// Items without a date go last; ties keep their input order.
func MergeNews(batches ...[]NewsItem) []NewsItem {
	out := make([]NewsItem, 0)
	for _, b := range batches {
		out = append(out, b...)
	}
	slices.SortStableFunc(out, func(a, b NewsItem) int {
		return compareNewsDate(b.Date, a.Date)
	})
	return out
}

// compareNewsDate orders dates ascending with missing dates lowest.
func compareNewsDate(a, b *string) int {
	aMissing := a == nil || *a == ""
	bMissing := b == nil || *b == ""
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return -1
	case bMissing:
		return 1
	}
	at, aErr := time.Parse(time.RFC3339, *a)
	bt, bErr := time.Parse(time.RFC3339, *b)
	if aErr == nil && bErr == nil {
		return at.Compare(bt)
	}
	return strings.Compare(*a, *b)
}

// Recommendations resolves the first MaxRecommendations entries of the
// feed to detail records, dropping the ones that do not resolve.
func (s *Service) Recommendations(ctx context.Context) []Record {
	recs, err := cache.GetOrFetch(ctx, s.cache, cache.Fingerprint("manga_recommendations", nil), cache.ClassRecommendation, s.fetchRecommendations)
	if err != nil {
		s.logger.Warn("recommendations unavailable", zap.Error(err))
		return []Record{}
	}
	if recs == nil {
		return []Record{}
	}
	return recs
}

func (s *Service) fetchRecommendations(ctx context.Context) ([]Record, error) {
	feed, err := s.upstream.Recommendations(ctx)
	if err != nil {
		return nil, err
	}
	if len(feed) > MaxRecommendations {
		feed = feed[:MaxRecommendations]
	}

	ids := make([]int, 0, len(feed))
	for _, r := range feed {
		if len(r.Entry) > 0 {
			ids = append(ids, r.Entry[0].MalID)
		}
	}

	resolved := make([]*Record, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.Details(ctx, id)
			if err != nil {
				s.logger.Debug("recommendation dropped", zap.Int("mal_id", id), zap.Error(err))
				return nil
			}
			resolved[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Record, 0, len(ids))
	for _, rec := range resolved {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	if len(ids) > 0 && len(out) == 0 {
		return nil, errAllFailed
	}
	return out, nil
}

// records runs a single-call list read and degrades to an empty list.
func (s *Service) records(ctx context.Context, fp string, class cache.TTLClass, fetch func(context.Context) ([]jikan.Manga, error)) []Record {
	recs, err := cache.GetOrFetch(ctx, s.cache, fp, class, func(ctx context.Context) ([]Record, error) {
		raws, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeAll(raws), nil
	})
	if err != nil {
		s.logger.Warn("catalog list unavailable", zap.String("fingerprint", fp), zap.Error(err))
		return []Record{}
	}
	if recs == nil {
		return []Record{}
	}
	return recs
}
