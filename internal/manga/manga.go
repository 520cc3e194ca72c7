package manga

import (
	"context"
	"errors"

	"mangaverse/internal/platform/jikan"
)

// ErrNotFound is returned when the catalog has no usable record for an id.
var ErrNotFound = errors.New("manga not found")

// Record is the normalized catalog entry. Status is the upstream
// publication status, not a user reading status. Records are rebuilt whole
// on every refresh and never patched.
type Record struct {
	MalID            int      `json:"mal_id"`
	Title            string   `json:"title"`
	Status           *string  `json:"status"`
	CoverURL         *string  `json:"cover_url"`
	Author           string   `json:"author"`
	Year             string   `json:"year"`
	Rating           *float64 `json:"rating"`
	Tags             []string `json:"tags"`
	Description      *string  `json:"description"`
	AlternativeTitle *string  `json:"alternative_title"`
}

// NewsItem is an upstream news entry, passed through as-is.
type NewsItem = jikan.NewsItem

// Page is one page of the paginated listing.
type Page struct {
	Mangas     []Record          `json:"mangas"`
	Pagination *jikan.Pagination `json:"pagination"`
}

// Upstream is the subset of the catalog gateway the service needs.
type Upstream interface {
	GetManga(ctx context.Context, malID int) (*jikan.Manga, error)
	SearchManga(ctx context.Context, query string, limit int) ([]jikan.Manga, error)
	TopManga(ctx context.Context, filter string) ([]jikan.Manga, error)
	MangaByGenre(ctx context.Context, genreID, limit int) ([]jikan.Manga, error)
	ListManga(ctx context.Context, page, limit int, filters map[string]string) ([]jikan.Manga, *jikan.Pagination, error)
	MangaNews(ctx context.Context, malID int) ([]jikan.NewsItem, error)
	Recommendations(ctx context.Context) ([]jikan.Recommendation, error)
}
