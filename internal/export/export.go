// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export turns Joplin notes into a Hexo source tree: posts with
// front-matter under source/_posts/ and downloaded images under
// source/resources/. Each run wipes and rebuilds the output so it mirrors
// current remote state exactly.
package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/pdiddy/joplin-hexo/internal/hexo"
	"github.com/pdiddy/joplin-hexo/pkg/types"
)

// API is the slice of the Joplin client the pipeline consumes. Tests
// provide a fake; production wires *joplin.Client.
type API interface {
	Notes(ctx context.Context) ([]types.Note, error)
	NotesByTag(ctx context.Context, tagID string) ([]types.Note, error)
	TagByTitle(ctx context.Context, title string) (types.Tag, error)
	Notebooks(ctx context.Context) ([]types.Notebook, error)
	Resource(ctx context.Context, id string) (types.Resource, error)
	ResourceFile(ctx context.Context, id string) ([]byte, error)
}

// PostRecord describes one written post, for the run summary and manifest.
type PostRecord struct {
	NoteID     string
	Title      string
	Path       string
	Categories []string
}

// Result summarizes an export run.
type Result struct {
	Exported         int
	Skipped          int
	ResourcesWritten int
	Warnings         int
	Posts            []PostRecord
}

// Run executes a full export: resolve the tag filter, fetch notes and
// notebooks, prepare the output tree, then process notes one at a time.
// Individual resource failures are warnings and the note is still written;
// API failures during fetching and filesystem write failures abort the run.
// Progress and warnings go to w.
func Run(ctx context.Context, api API, fs afero.Fs, cfg types.ExportConfig, w io.Writer) (Result, error) {
	var result Result

	// Fail on a bad format before touching the output tree.
	if _, err := (FrontMatter{}).Render(cfg.FrontMatter); err != nil {
		return result, err
	}
	if cfg.Slug != "" && cfg.Slug != types.SlugNoteID && cfg.Slug != types.SlugTitle {
		return result, fmt.Errorf("unknown slug source %q", cfg.Slug)
	}

	notes, err := fetchNotes(ctx, api, cfg.Tag, w)
	if err != nil {
		return result, err
	}
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes matched. Nothing to do.")
		return result, nil
	}

	notebooks, err := api.Notebooks(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching notebooks: %w", err)
	}
	nbMap := NotebookMap(notebooks)

	layout := hexo.NewLayout(cfg.OutputDir)
	if err := layout.Prepare(fs); err != nil {
		return result, err
	}

	fmt.Fprintf(w, "Exporting %d note(s) to %s\n", len(notes), layout.PostsDir())

	slugs := make(map[string]bool)
	for _, note := range notes {
		if err := exportNote(ctx, api, fs, layout, note, nbMap, cfg, slugs, &result, w); err != nil {
			return result, err
		}
	}

	fmt.Fprintf(w, "\nExport summary: %d exported, %d skipped, %d resource file(s), %d warning(s)\n",
		result.Exported, result.Skipped, result.ResourcesWritten, result.Warnings)
	return result, nil
}

// fetchNotes resolves the tag filter and fetches the matching notes. An
// empty tag or the ALL sentinel (case-insensitive) fetches everything.
func fetchNotes(ctx context.Context, api API, tag string, w io.Writer) ([]types.Note, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, types.TagAll) {
		fmt.Fprintln(w, "No tag filter. Fetching all notes...")
		notes, err := api.Notes(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching notes: %w", err)
		}
		return notes, nil
	}

	fmt.Fprintf(w, "Fetching notes tagged %q...\n", tag)
	t, err := api.TagByTitle(ctx, tag)
	if err != nil {
		return nil, err
	}
	notes, err := api.NotesByTag(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching notes for tag %q: %w", tag, err)
	}
	return notes, nil
}

// exportNote processes a single note. The returned error is fatal (a
// filesystem write failed); everything recoverable is a counted warning.
func exportNote(ctx context.Context, api API, fs afero.Fs, layout hexo.Layout, note types.Note,
	notebooks map[string]types.Notebook, cfg types.ExportConfig, slugs map[string]bool,
	result *Result, w io.Writer) error {

	if note.Title == "" || note.Body == "" {
		fmt.Fprintf(w, "skipped: note %s has no title or body\n", note.ID)
		result.Skipped++
		return nil
	}

	fmt.Fprintf(w, "processing: %s\n", note.Title)

	categories, err := Categories(note.ParentID, notebooks)
	if err != nil {
		fmt.Fprintf(w, "  warning: %v; exporting without categories\n", err)
		result.Warnings++
		categories = nil
	}

	body := note.Body
	staged := make(map[string]bool)
	for _, id := range ResourceRefs(body) {
		name, err := stageResource(ctx, api, fs, layout, id, result)
		if err != nil {
			// Leave every reference to this resource unrewritten.
			fmt.Fprintf(w, "  warning: resource %s: %v\n", id, err)
			result.Warnings++
			continue
		}
		staged[id] = true
		body = RewriteResourceLinks(body, id, layout.ResourceLink(name))
	}

	// An image reference that survives its rewrite (reference-style image,
	// deeply nested alt text) would point at the Joplin ID while the file
	// sits staged under resources/. Surface it instead of exporting silently
	// broken markdown.
	for _, id := range ResourceRefs(body) {
		if staged[id] {
			fmt.Fprintf(w, "  warning: resource %s: image reference left unrewritten\n", id)
			result.Warnings++
		}
	}

	if note.CreatedAt().IsZero() {
		fmt.Fprintf(w, "  warning: note %s has no creation time, using current time\n", note.ID)
		result.Warnings++
	}
	fm := NewFrontMatter(note, categories, time.Now())

	rendered, err := fm.Render(cfg.FrontMatter)
	if err != nil {
		return err
	}

	name := postFilename(note, cfg.Slug, slugs)
	if err := layout.WritePost(fs, name, rendered+body); err != nil {
		return err
	}

	result.Exported++
	result.Posts = append(result.Posts, PostRecord{
		NoteID:     note.ID,
		Title:      fm.Title,
		Path:       filepath.ToSlash(layout.PostPath(name)),
		Categories: categories,
	})
	return nil
}

// stageResource makes sure the resource's file exists in the output tree
// and returns its local filename. The metadata fetch names the file; the
// binary is only downloaded when the file is not already present, so a
// resource shared across notes transfers once per run.
func stageResource(ctx context.Context, api API, fs afero.Fs, layout hexo.Layout, id string, result *Result) (string, error) {
	meta, err := api.Resource(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetching metadata: %w", err)
	}
	name := meta.LocalName()

	exists, err := afero.Exists(fs, layout.ResourcePath(name))
	if err != nil {
		return "", err
	}
	if exists {
		return name, nil
	}

	data, err := api.ResourceFile(ctx, id)
	if err != nil {
		return "", fmt.Errorf("downloading: %w", err)
	}
	wrote, err := layout.WriteResource(fs, name, data)
	if err != nil {
		return "", err
	}
	if wrote {
		result.ResourcesWritten++
	}
	return name, nil
}

// postFilename derives the output filename for a note. Note-ID slugs are
// collision-free by construction; title slugs disambiguate repeats with a
// short ID suffix, first writer keeping the clean name.
func postFilename(note types.Note, source types.SlugSource, slugs map[string]bool) string {
	slug := note.ID
	if source == types.SlugTitle {
		slug = TitleSlug(note.Title)
		if slugs[slug] {
			suffix := note.ID
			if len(suffix) > 8 {
				suffix = suffix[:8]
			}
			slug = slug + "-" + suffix
		}
	}
	slugs[slug] = true
	return slug + ".md"
}
