package jikan

import (
	"encoding/json"
	"fmt"
)

// Envelope is the common response shape: { data: ..., pagination?: ... }.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Empty reports whether the envelope carries no data at all.
func (e Envelope) Empty() bool {
	return len(e.Data) == 0 || string(e.Data) == "null"
}

type Pagination struct {
	LastVisiblePage int              `json:"last_visible_page"`
	HasNextPage     bool             `json:"has_next_page"`
	CurrentPage     int              `json:"current_page,omitempty"`
	Items           *PaginationItems `json:"items,omitempty"`
}

type PaginationItems struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
}

// Manga matches a manga resource. Every nested field is optional upstream.
type Manga struct {
	MalID         int        `json:"mal_id"`
	Title         string     `json:"title"`
	TitleEnglish  *string    `json:"title_english"`
	TitleJapanese *string    `json:"title_japanese"`
	Status        *string    `json:"status"`
	Score         *float64   `json:"score"`
	Synopsis      *string    `json:"synopsis"`
	Images        *Images    `json:"images"`
	Authors       []Resource `json:"authors"`
	Genres        []Resource `json:"genres"`
	Published     *Published `json:"published"`
}

// UnmarshalJSON decodes field by field. A value of the wrong type leaves
// that field unset instead of failing the record; only mal_id must decode.
func (m *Manga) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	out := Manga{}
	if raw, ok := fields["mal_id"]; ok {
		if err := json.Unmarshal(raw, &out.MalID); err != nil {
			return fmt.Errorf("mal_id: %w", err)
		}
	}
	lenientField(fields, "title", &out.Title)
	lenientField(fields, "title_english", &out.TitleEnglish)
	lenientField(fields, "title_japanese", &out.TitleJapanese)
	lenientField(fields, "status", &out.Status)
	lenientField(fields, "score", &out.Score)
	lenientField(fields, "synopsis", &out.Synopsis)
	lenientField(fields, "images", &out.Images)
	lenientField(fields, "authors", &out.Authors)
	lenientField(fields, "genres", &out.Genres)
	lenientField(fields, "published", &out.Published)
	*m = out
	return nil
}

func lenientField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}

type Images struct {
	JPG  *ImageSet `json:"jpg"`
	WebP *ImageSet `json:"webp"`
}

type ImageSet struct {
	ImageURL      *string `json:"image_url"`
	SmallImageURL *string `json:"small_image_url"`
	LargeImageURL *string `json:"large_image_url"`
}

// Resource is the {mal_id, type, name, url} reference used for authors and genres.
type Resource struct {
	MalID int    `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type Published struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// NewsItem is passed through to consumers untouched apart from ordering.
type NewsItem struct {
	MalID          int             `json:"mal_id"`
	URL            string          `json:"url"`
	Title          string          `json:"title"`
	Date           *string         `json:"date"`
	AuthorUsername string          `json:"author_username,omitempty"`
	AuthorURL      string          `json:"author_url,omitempty"`
	ForumURL       string          `json:"forum_url,omitempty"`
	Images         json.RawMessage `json:"images,omitempty"`
	Comments       int             `json:"comments"`
	Excerpt        string          `json:"excerpt,omitempty"`
}

// Recommendation is one entry of the recommendations feed. Entry lists the
// titles the recommendation links together.
type Recommendation struct {
	MalID   string           `json:"mal_id"`
	Entry   []RecommendedRef `json:"entry"`
	Content string           `json:"content"`
	Date    string           `json:"date"`
}

type RecommendedRef struct {
	MalID int    `json:"mal_id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}
