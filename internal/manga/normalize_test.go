package manga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangaverse/internal/platform/jikan"
)

func TestNormalize(t *testing.T) {
	t.Run("nil input", func(t *testing.T) {
		_, ok := Normalize(nil)
		assert.False(t, ok)
	})

	t.Run("empty input uses sentinels", func(t *testing.T) {
		rec, ok := Normalize(&jikan.Manga{})
		require.True(t, ok)
		assert.Equal(t, "Unknown", rec.Author)
		assert.Equal(t, "N/A", rec.Year)
		assert.NotNil(t, rec.Tags)
		assert.Empty(t, rec.Tags)
		assert.Nil(t, rec.CoverURL)
		assert.Nil(t, rec.AlternativeTitle)
		assert.Nil(t, rec.Rating)
	})

	t.Run("full record", func(t *testing.T) {
		score := 9.47
		raw := &jikan.Manga{
			MalID:         2,
			Title:         "Berserk",
			TitleJapanese: strPtr("ベルセルク"),
			Status:        strPtr("Publishing"),
			Synopsis:      strPtr("Guts, a former mercenary..."),
			Score:         &score,
			Images:        &jikan.Images{JPG: &jikan.ImageSet{ImageURL: strPtr("https://cdn.example/2.jpg")}},
			Authors:       []jikan.Resource{{Name: "Miura, Kentarou"}, {Name: "Studio Gaga"}},
			Genres:        []jikan.Resource{{Name: "Action"}, {Name: "Drama"}},
			Published:     &jikan.Published{From: strPtr("1989-08-25T00:00:00+00:00")},
		}

		rec, ok := Normalize(raw)
		require.True(t, ok)
		assert.Equal(t, 2, rec.MalID)
		assert.Equal(t, "Miura, Kentarou", rec.Author)
		assert.Equal(t, "1989", rec.Year)
		assert.Equal(t, []string{"Action", "Drama"}, rec.Tags)
		require.NotNil(t, rec.AlternativeTitle)
		assert.Equal(t, "ベルセルク", *rec.AlternativeTitle)
		require.NotNil(t, rec.CoverURL)
		assert.Equal(t, "https://cdn.example/2.jpg", *rec.CoverURL)
		assert.InDelta(t, 9.47, *rec.Rating, 0.0001)

		// The record does not alias the raw payload.
		*raw.Status = "Finished"
		assert.Equal(t, "Publishing", *rec.Status)
	})

	t.Run("english title preferred", func(t *testing.T) {
		rec, _ := Normalize(&jikan.Manga{TitleEnglish: strPtr("Fullmetal Alchemist"), TitleJapanese: strPtr("鋼の錬金術師")})
		require.NotNil(t, rec.AlternativeTitle)
		assert.Equal(t, "Fullmetal Alchemist", *rec.AlternativeTitle)
	})

	t.Run("placeholder matches empty input", func(t *testing.T) {
		empty, _ := Normalize(&jikan.Manga{MalID: 9})
		assert.Equal(t, empty, Placeholder(9))
	})

	t.Run("malformed year", func(t *testing.T) {
		for _, from := range []string{"", "19", "abcd-01-01"} {
			rec, _ := Normalize(&jikan.Manga{Published: &jikan.Published{From: strPtr(from)}})
			assert.Equal(t, "N/A", rec.Year, from)
		}
	})
}
