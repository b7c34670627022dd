package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/joplin-hexo/internal/manifest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past export runs",
	Long: `History lists recent export runs recorded in the manifest database:
when they ran, what tag they exported, and how many posts and resources
they produced. Use --posts with a run ID to list the posts of one run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of runs to show")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().String("posts", "", "show the posts written by the given run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.ManifestPath == "" {
		return fmt.Errorf("no manifest path configured")
	}

	store, err := manifest.Open(cfg.ManifestPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if runID, _ := cmd.Flags().GetString("posts"); runID != "" {
		posts, err := store.Posts(ctx, runID)
		if err != nil {
			return err
		}
		return formatPosts(posts, jsonOutput)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	return formatRuns(runs, jsonOutput)
}

func formatRuns(runs []manifest.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-26s  %-20s  %-10s  %8s  %9s  %8s\n",
		"Run", "Started", "Tag", "Exported", "Resources", "Warnings")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-26s  %-20s  %-10s  %8d  %9d  %8d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Tag,
			r.NotesExported, r.ResourcesDownloaded, r.Warnings)
	}
	return nil
}

func formatPosts(posts []manifest.PostRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	}

	if len(posts) == 0 {
		fmt.Println("No posts recorded for that run.")
		return nil
	}

	for _, p := range posts {
		line := p.Path
		if len(p.Categories) > 0 {
			line += "  [" + strings.Join(p.Categories, " > ") + "]"
		}
		fmt.Println(line)
	}
	return nil
}
