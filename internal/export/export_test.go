// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/joplin-hexo/pkg/types"
)

// fakeAPI is an in-memory Joplin for pipeline tests.
type fakeAPI struct {
	notes       []types.Note
	notesByTag  map[string][]types.Note
	tags        []types.Tag
	notebooks   []types.Notebook
	resources   map[string]types.Resource
	files       map[string][]byte
	fileFetches map[string]int

	notesErr error
}

func (f *fakeAPI) Notes(_ context.Context) ([]types.Note, error) {
	return f.notes, f.notesErr
}

func (f *fakeAPI) NotesByTag(_ context.Context, tagID string) ([]types.Note, error) {
	return f.notesByTag[tagID], nil
}

func (f *fakeAPI) TagByTitle(_ context.Context, title string) (types.Tag, error) {
	for _, tag := range f.tags {
		if tag.Title == title {
			return tag, nil
		}
	}
	return types.Tag{}, fmt.Errorf("tag %q not found", title)
}

func (f *fakeAPI) Notebooks(_ context.Context) ([]types.Notebook, error) {
	return f.notebooks, nil
}

func (f *fakeAPI) Resource(_ context.Context, id string) (types.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return types.Resource{}, fmt.Errorf("Joplin API returned HTTP 404 for /resources/%s", id)
	}
	return r, nil
}

func (f *fakeAPI) ResourceFile(_ context.Context, id string) ([]byte, error) {
	data, ok := f.files[id]
	if !ok {
		return nil, fmt.Errorf("Joplin API returned HTTP 404 for /resources/%s/file", id)
	}
	if f.fileFetches == nil {
		f.fileFetches = make(map[string]int)
	}
	f.fileFetches[id]++
	return data, nil
}

const tripNoteID = "11112222333344445555666677778888"

// tripFixture is the scenario from the tool's acceptance checklist: a note
// tagged "blog" titled "Trip Report" in Notebooks→Travel→2024 with one
// embedded image.
func tripFixture() *fakeAPI {
	note := types.Note{
		ID:              tripNoteID,
		Title:           "Trip Report",
		Body:            "Some intro.\n\n![](:/" + ridA + ")\n\nThe end.\n",
		ParentID:        "y2024",
		UserCreatedTime: time.Date(2024, 5, 2, 9, 30, 0, 0, time.Local).UnixMilli(),
		UpdatedTime:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local).UnixMilli(),
	}
	return &fakeAPI{
		notes:      []types.Note{note},
		tags:       []types.Tag{{ID: "t-blog", Title: "blog"}},
		notesByTag: map[string][]types.Note{"t-blog": {note}},
		notebooks: []types.Notebook{
			{ID: "root", Title: "Notebooks"},
			{ID: "travel", Title: "Travel", ParentID: "root"},
			{ID: "y2024", Title: "2024", ParentID: "travel"},
		},
		resources: map[string]types.Resource{
			ridA: {ID: ridA, Filename: "photo.png", Mime: "image/png"},
		},
		files: map[string][]byte{
			ridA: {0x89, 'P', 'N', 'G'},
		},
	}
}

func runExport(t *testing.T, api API, fs afero.Fs, cfg types.ExportConfig) Result {
	t.Helper()
	var out bytes.Buffer
	result, err := Run(context.Background(), api, fs, cfg, &out)
	require.NoError(t, err, "output:\n%s", out.String())
	return result
}

func TestRun_Scenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := runExport(t, tripFixture(), fs, types.ExportConfig{Tag: "blog", OutputDir: "hexo_source"})

	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.ResourcesWritten)
	assert.Zero(t, result.Warnings)

	post, err := afero.ReadFile(fs, "hexo_source/source/_posts/"+tripNoteID+".md")
	require.NoError(t, err)

	content := string(post)
	assert.Contains(t, content, `"title": "Trip Report"`)
	assert.Contains(t, content, `"date": "2024-05-02 09:30:00"`)
	assert.Contains(t, content, `"updated": "2024-06-01 08:00:00"`)
	assert.Contains(t, content, "\"categories\": [\n    \"Notebooks\",\n    \"Travel\",\n    \"2024\"\n  ]")
	assert.Contains(t, content, "![](/resources/"+ridA+".png)")
	assert.NotContains(t, content, ":/"+ridA)

	img, err := afero.ReadFile(fs, "hexo_source/source/resources/"+ridA+".png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img)

	require.Len(t, result.Posts, 1)
	assert.Equal(t, []string{"Notebooks", "Travel", "2024"}, result.Posts[0].Categories)
}

func TestRun_TagFilter(t *testing.T) {
	api := tripFixture()
	untagged := types.Note{
		ID:          "99998888777766665555444433332222",
		Title:       "Private Note",
		Body:        "not for the blog",
		CreatedTime: time.Now().UnixMilli(),
	}
	api.notes = append(api.notes, untagged)

	fs := afero.NewMemMapFs()
	result := runExport(t, api, fs, types.ExportConfig{Tag: "blog", OutputDir: "out"})

	assert.Equal(t, 1, result.Exported)
	exists, err := afero.Exists(fs, "out/source/_posts/"+untagged.ID+".md")
	require.NoError(t, err)
	assert.False(t, exists, "untagged note must not be exported")
}

func TestRun_AllSentinel(t *testing.T) {
	for _, tag := range []string{"ALL", "all", ""} {
		t.Run("tag="+tag, func(t *testing.T) {
			api := tripFixture()
			api.notes = append(api.notes, types.Note{
				ID:          "99998888777766665555444433332222",
				Title:       "Second",
				Body:        "body",
				CreatedTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local).UnixMilli(),
			})

			fs := afero.NewMemMapFs()
			result := runExport(t, api, fs, types.ExportConfig{Tag: tag, OutputDir: "out"})
			assert.Equal(t, 2, result.Exported)
		})
	}
}

func TestRun_UnknownTag(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), tripFixture(), afero.NewMemMapFs(),
		types.ExportConfig{Tag: "nope", OutputDir: "out"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tag "nope" not found`)
}

func TestRun_NotesFetchErrorAborts(t *testing.T) {
	api := tripFixture()
	api.notesErr = fmt.Errorf("connection refused")

	var out bytes.Buffer
	_, err := Run(context.Background(), api, afero.NewMemMapFs(),
		types.ExportConfig{Tag: types.TagAll, OutputDir: "out"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_Idempotent(t *testing.T) {
	cfg := types.ExportConfig{Tag: "blog", OutputDir: "out"}

	fs1 := afero.NewMemMapFs()
	runExport(t, tripFixture(), fs1, cfg)

	fs2 := afero.NewMemMapFs()
	runExport(t, tripFixture(), fs2, cfg)

	assert.Equal(t, snapshot(t, fs1, "out"), snapshot(t, fs2, "out"),
		"two runs over unchanged remote state must produce identical trees")
}

func TestRun_WipesStaleOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/source/_posts/stale.md", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out/source/resources/stale.png", []byte{1}, 0o644))

	runExport(t, tripFixture(), fs, types.ExportConfig{Tag: "blog", OutputDir: "out"})

	for _, stale := range []string{"out/source/_posts/stale.md", "out/source/resources/stale.png"} {
		exists, err := afero.Exists(fs, stale)
		require.NoError(t, err)
		assert.False(t, exists, "%s should have been wiped", stale)
	}
}

func TestRun_SkipsNotesWithoutTitleOrBody(t *testing.T) {
	api := tripFixture()
	api.notes = append(api.notes,
		types.Note{ID: "aaaa1111aaaa1111aaaa1111aaaa1111", Body: "body, no title"},
		types.Note{ID: "bbbb2222bbbb2222bbbb2222bbbb2222", Title: "title, no body"},
	)

	fs := afero.NewMemMapFs()
	result := runExport(t, api, fs, types.ExportConfig{Tag: types.TagAll, OutputDir: "out"})

	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 2, result.Skipped)
}

func TestRun_ResourceFailureLeavesReferenceUnrewritten(t *testing.T) {
	api := tripFixture()
	// The note references a resource the API no longer has.
	delete(api.resources, ridA)

	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	result, err := Run(context.Background(), api, fs,
		types.ExportConfig{Tag: "blog", OutputDir: "out"}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Exported, "the note is still exported")
	assert.Equal(t, 1, result.Warnings)
	assert.Zero(t, result.ResourcesWritten)
	assert.Contains(t, out.String(), "warning: resource "+ridA)

	post, err := afero.ReadFile(fs, "out/source/_posts/"+tripNoteID+".md")
	require.NoError(t, err)
	assert.Contains(t, string(post), "![](:/"+ridA+")", "reference must stay unrewritten")
}

func TestRun_BracketedAltTextRewritten(t *testing.T) {
	api := tripFixture()
	api.notes[0].Body = "Intro.\n\n![figure [1]](:/" + ridA + ")\n\nThe end.\n"

	fs := afero.NewMemMapFs()
	result := runExport(t, api, fs, types.ExportConfig{Tag: "blog", OutputDir: "out"})

	assert.Equal(t, 1, result.Exported)
	assert.Zero(t, result.Warnings)

	post, err := afero.ReadFile(fs, "out/source/_posts/"+tripNoteID+".md")
	require.NoError(t, err)
	assert.Contains(t, string(post), "![figure [1]](/resources/"+ridA+".png)")
	assert.NotContains(t, string(post), ":/"+ridA)
}

func TestRun_ReferenceStyleImageWarnsWhenLeftUnrewritten(t *testing.T) {
	api := tripFixture()
	api.notes[0].Body = "![photo][p]\n\n[p]: :/" + ridA + "\n"

	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	result, err := Run(context.Background(), api, fs,
		types.ExportConfig{Tag: "blog", OutputDir: "out"}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.ResourcesWritten, "the file is still staged")
	assert.Equal(t, 1, result.Warnings)
	assert.Contains(t, out.String(), "warning: resource "+ridA+": image reference left unrewritten")
}

func TestRun_SharedResourceDownloadedOnce(t *testing.T) {
	api := tripFixture()
	second := types.Note{
		ID:          "99998888777766665555444433332222",
		Title:       "Also Has The Photo",
		Body:        "![same photo](:/" + ridA + ")",
		CreatedTime: time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local).UnixMilli(),
	}
	api.notes = append(api.notes, second)

	fs := afero.NewMemMapFs()
	result := runExport(t, api, fs, types.ExportConfig{Tag: types.TagAll, OutputDir: "out"})

	assert.Equal(t, 2, result.Exported)
	assert.Equal(t, 1, result.ResourcesWritten)
	assert.Equal(t, 1, api.fileFetches[ridA], "binary must be fetched once per run")

	post, err := afero.ReadFile(fs, "out/source/_posts/"+second.ID+".md")
	require.NoError(t, err)
	assert.Contains(t, string(post), "![same photo](/resources/"+ridA+".png)")
}

func TestRun_TitleSlugs(t *testing.T) {
	api := tripFixture()
	dup := types.Note{
		ID:          "99998888777766665555444433332222",
		Title:       "Trip Report",
		Body:        "a second trip",
		CreatedTime: time.Date(2024, 8, 1, 0, 0, 0, 0, time.Local).UnixMilli(),
	}
	api.notes = append(api.notes, dup)

	fs := afero.NewMemMapFs()
	result := runExport(t, api, fs,
		types.ExportConfig{Tag: types.TagAll, OutputDir: "out", Slug: types.SlugTitle})
	assert.Equal(t, 2, result.Exported)

	first, err := afero.Exists(fs, "out/source/_posts/Trip-Report.md")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := afero.Exists(fs, "out/source/_posts/Trip-Report-99998888.md")
	require.NoError(t, err)
	assert.True(t, second, "duplicate title gets an ID suffix")
}

func TestRun_CycleWarnsAndExportsWithoutCategories(t *testing.T) {
	api := tripFixture()
	api.notebooks = []types.Notebook{
		{ID: "y2024", Title: "2024", ParentID: "travel"},
		{ID: "travel", Title: "Travel", ParentID: "y2024"},
	}

	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	result, err := Run(context.Background(), api, fs,
		types.ExportConfig{Tag: "blog", OutputDir: "out"}, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.Warnings)
	assert.Contains(t, out.String(), "notebook cycle")

	post, err := afero.ReadFile(fs, "out/source/_posts/"+tripNoteID+".md")
	require.NoError(t, err)
	assert.NotContains(t, string(post), "categories")
}

func TestRun_InvalidConfigRejectedEarly(t *testing.T) {
	t.Run("front-matter format", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Run(context.Background(), tripFixture(), afero.NewMemMapFs(),
			types.ExportConfig{Tag: "blog", OutputDir: "out", FrontMatter: "toml"}, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown front-matter format")
	})

	t.Run("slug source", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Run(context.Background(), tripFixture(), afero.NewMemMapFs(),
			types.ExportConfig{Tag: "blog", OutputDir: "out", Slug: "uuid"}, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown slug source")
	})
}

// snapshot returns path→content for every file under root.
func snapshot(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return err
		}
		data, readErr := afero.ReadFile(fs, path)
		if readErr != nil {
			return readErr
		}
		files[path] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}
