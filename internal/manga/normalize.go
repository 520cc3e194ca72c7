package manga

import (
	"strings"

	"mangaverse/internal/platform/jikan"
)

const (
	unknownAuthor = "Unknown"
	unknownYear   = "N/A"
)

// Normalize maps a raw upstream manga onto a Record. It returns false for a
// nil input and never fails on missing nested fields.
func Normalize(raw *jikan.Manga) (Record, bool) {
	if raw == nil {
		return Record{}, false
	}
	return Record{
		MalID:            raw.MalID,
		Title:            raw.Title,
		Status:           cloneString(raw.Status),
		CoverURL:         coverURL(raw.Images),
		Author:           primaryAuthor(raw.Authors),
		Year:             startYear(raw.Published),
		Rating:           cloneFloat(raw.Score),
		Tags:             genreNames(raw.Genres),
		Description:      cloneString(raw.Synopsis),
		AlternativeTitle: alternativeTitle(raw),
	}, true
}

// Placeholder is the record shape used for a title known only by id.
func Placeholder(malID int) Record {
	return Record{MalID: malID, Author: unknownAuthor, Year: unknownYear, Tags: []string{}}
}

func normalizeAll(raws []jikan.Manga) []Record {
	out := make([]Record, 0, len(raws))
	for i := range raws {
		if rec, ok := Normalize(&raws[i]); ok {
			out = append(out, rec)
		}
	}
	return out
}

func primaryAuthor(authors []jikan.Resource) string {
	if len(authors) == 0 || authors[0].Name == "" {
		return unknownAuthor
	}
	return authors[0].Name
}

// startYear takes the four-digit prefix of the publication start date.
func startYear(p *jikan.Published) string {
	if p == nil || p.From == nil {
		return unknownYear
	}
	from := *p.From
	if len(from) < 4 {
		return unknownYear
	}
	for _, r := range from[:4] {
		if r < '0' || r > '9' {
			return unknownYear
		}
	}
	return from[:4]
}

func genreNames(genres []jikan.Resource) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

func alternativeTitle(raw *jikan.Manga) *string {
	if raw.TitleEnglish != nil && strings.TrimSpace(*raw.TitleEnglish) != "" {
		return cloneString(raw.TitleEnglish)
	}
	if raw.TitleJapanese != nil && strings.TrimSpace(*raw.TitleJapanese) != "" {
		return cloneString(raw.TitleJapanese)
	}
	return nil
}

func coverURL(images *jikan.Images) *string {
	if images == nil || images.JPG == nil {
		return nil
	}
	return cloneString(images.JPG.ImageURL)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
