package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/joplin-hexo/internal/export"
	"github.com/pdiddy/joplin-hexo/internal/joplin"
	"github.com/pdiddy/joplin-hexo/internal/manifest"
	"github.com/pdiddy/joplin-hexo/internal/token"
	"github.com/pdiddy/joplin-hexo/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes to a Hexo source tree",
	Long: `Export fetches notes from the running Joplin instance, filtered by tag,
and writes one Hexo post per note plus the images the notes embed.

The destination directories (<output>/source/_posts and
<output>/source/resources) are wiped and rebuilt on every run, so the
output always mirrors current Joplin state. Use --tag ALL to export every
note regardless of tags.`,
	RunE: runExportCmd,
}

func init() {
	exportCmd.Flags().StringP("tag", "t", "blog", "tag of notes to export ('ALL' exports every note)")
	exportCmd.Flags().StringP("output", "o", "hexo_source", "base directory for the Hexo source files")
	exportCmd.Flags().String("front-matter", "json", "front-matter format: json or yaml")
	exportCmd.Flags().String("slug", "id", "post filename scheme: id or title")

	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	tag, _ := cmd.Flags().GetString("tag")
	output, _ := cmd.Flags().GetString("output")
	frontMatter, _ := cmd.Flags().GetString("front-matter")
	slug, _ := cmd.Flags().GetString("slug")

	expCfg := types.ExportConfig{
		Tag:         tag,
		OutputDir:   output,
		FrontMatter: types.FrontMatterFormat(frontMatter),
		Slug:        types.SlugSource(slug),
	}

	// The token comes from JOPLIN_HEXO_TOKEN or the config file if set,
	// otherwise from the token file, prompting on first run.
	tok := viper.GetString("token")
	if tok == "" {
		var err error
		tok, err = token.Load(cfg.TokenFile, token.TerminalPrompt(), os.Stdout)
		if err != nil {
			return err
		}
	}

	client := joplin.NewClient(cfg.API, tok)

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		return err
	}
	printSuccess("Connected to Joplin at %s", cfg.API.BaseURL)

	started := time.Now()
	result, err := export.Run(ctx, client, afero.NewOsFs(), expCfg, os.Stdout)
	if err != nil {
		return err
	}
	finished := time.Now()

	recordRun(ctx, cfg.ManifestPath, expCfg, result, started, finished)

	if result.Warnings > 0 {
		printWarning("Export finished with %d warning(s).", result.Warnings)
	} else {
		printSuccess("Export finished.")
	}
	return nil
}

// recordRun appends the run to the manifest database. History is a
// convenience; any failure here is reported and swallowed so it cannot
// spoil a completed export.
func recordRun(ctx context.Context, path string, cfg types.ExportConfig, result export.Result, started, finished time.Time) {
	if path == "" {
		return
	}

	store, err := manifest.Open(path)
	if err != nil {
		printWarning("warning: could not open manifest %s: %v", path, err)
		return
	}
	defer store.Close()

	frontMatter := string(cfg.FrontMatter)
	if frontMatter == "" {
		frontMatter = string(types.FrontMatterJSON)
	}
	run := manifest.RunRecord{
		ID:                  manifest.NewRunID(),
		StartedAt:           started,
		FinishedAt:          finished,
		Tag:                 cfg.Tag,
		OutputDir:           cfg.OutputDir,
		FrontMatter:         frontMatter,
		NotesExported:       result.Exported,
		NotesSkipped:        result.Skipped,
		ResourcesDownloaded: result.ResourcesWritten,
		Warnings:            result.Warnings,
	}
	posts := make([]manifest.PostRecord, len(result.Posts))
	for i, p := range result.Posts {
		posts[i] = manifest.PostRecord{
			NoteID:     p.NoteID,
			Title:      p.Title,
			Path:       p.Path,
			Categories: p.Categories,
		}
	}

	if err := store.RecordRun(ctx, run, posts); err != nil {
		printWarning("warning: could not record run in manifest: %v", err)
		return
	}
	fmt.Printf("Run %s recorded in %s\n", run.ID, path)
}
