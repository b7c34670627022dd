// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/joplin-hexo/pkg/types"
)

func TestNewFrontMatter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	t.Run("prefers user-visible creation time", func(t *testing.T) {
		n := types.Note{
			Title:           "Trip Report",
			UserCreatedTime: time.Date(2024, 5, 2, 9, 30, 0, 0, time.Local).UnixMilli(),
			CreatedTime:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local).UnixMilli(),
			UpdatedTime:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local).UnixMilli(),
		}
		fm := NewFrontMatter(n, nil, now)
		assert.Equal(t, "2024-05-02 09:30:00", fm.Date)
		assert.Equal(t, "2024-06-01 08:00:00", fm.Updated)
	})

	t.Run("falls back to internal creation time", func(t *testing.T) {
		n := types.Note{
			Title:       "Old Note",
			CreatedTime: time.Date(2023, 2, 3, 4, 5, 6, 0, time.Local).UnixMilli(),
		}
		fm := NewFrontMatter(n, nil, now)
		assert.Equal(t, "2023-02-03 04:05:06", fm.Date)
		// Never updated: updated mirrors the creation date.
		assert.Equal(t, "2023-02-03 04:05:06", fm.Updated)
	})

	t.Run("no timestamps at all uses now", func(t *testing.T) {
		fm := NewFrontMatter(types.Note{Title: "T"}, nil, now)
		assert.Equal(t, "2026-03-01 12:00:00", fm.Date)
		assert.Equal(t, "2026-03-01 12:00:00", fm.Updated)
	})
}

func TestRender_JSON(t *testing.T) {
	fm := FrontMatter{
		Title:      "Trip Report",
		Date:       "2024-05-02 09:30:00",
		Updated:    "2024-06-01 08:00:00",
		Categories: []string{"Notebooks", "Travel", "2024"},
	}

	got, err := fm.Render(types.FrontMatterJSON)
	require.NoError(t, err)

	want := `;;;
  "title": "Trip Report",
  "date": "2024-05-02 09:30:00",
  "updated": "2024-06-01 08:00:00",
  "categories": [
    "Notebooks",
    "Travel",
    "2024"
  ]

;;;

`
	assert.Equal(t, want, got)
}

func TestRender_JSONOmitsEmptyCategories(t *testing.T) {
	fm := FrontMatter{Title: "T", Date: "2024-01-01 00:00:00", Updated: "2024-01-01 00:00:00"}

	got, err := fm.Render(types.FrontMatterJSON)
	require.NoError(t, err)
	assert.NotContains(t, got, "categories")
}

func TestRender_JSONPreservesUnicode(t *testing.T) {
	fm := FrontMatter{Title: "旅行記録 & <notes>", Date: "2024-01-01 00:00:00", Updated: "2024-01-01 00:00:00"}

	got, err := fm.Render(types.FrontMatterJSON)
	require.NoError(t, err)
	// HTML escaping is off: the title appears literally.
	assert.Contains(t, got, `"title": "旅行記録 & <notes>"`)
}

func TestRender_EmptyFormatDefaultsToJSON(t *testing.T) {
	fm := FrontMatter{Title: "T", Date: "d", Updated: "u"}

	got, err := fm.Render("")
	require.NoError(t, err)
	assert.True(t, len(got) > 0 && got[0] == ';')
}

func TestRender_YAML(t *testing.T) {
	fm := FrontMatter{
		Title:      "Trip Report",
		Date:       "2024-05-02 09:30:00",
		Updated:    "2024-06-01 08:00:00",
		Categories: []string{"Notebooks", "Travel", "2024"},
	}

	got, err := fm.Render(types.FrontMatterYAML)
	require.NoError(t, err)

	assert.True(t, len(got) > 4 && got[:4] == "---\n")
	assert.Contains(t, got, "title: Trip Report")
	assert.Contains(t, got, `categories: [Notebooks, Travel, "2024"]`)
	assert.Contains(t, got, "\n---\n\n")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := FrontMatter{}.Render("toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown front-matter format "toml"`)
}
