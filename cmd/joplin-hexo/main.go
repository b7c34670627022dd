// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the joplin-hexo CLI, a one-shot
// exporter that turns Joplin notes into a Hexo blog source tree.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/joplin-hexo/internal/joplin"
	"github.com/pdiddy/joplin-hexo/internal/token"
	"github.com/pdiddy/joplin-hexo/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the joplin-hexo CLI.
var rootCmd = &cobra.Command{
	Use:   "joplin-hexo",
	Short: "Export Joplin notes to Hexo blog posts",
	Long: `joplin-hexo exports notes from a locally running Joplin instance into
Hexo-compatible blog posts: one markdown file per note with front-matter
(title, dates, categories derived from the notebook hierarchy) plus the
images the notes embed.

The exporter talks to Joplin's Web Clipper API, so Joplin must be running
with the Clipper service enabled (Tools > Options > Web Clipper). Each run
wipes and rebuilds the output directory to mirror current Joplin state.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./joplin-hexo.yaml or ~/.config/joplin-hexo/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("joplin-hexo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "joplin-hexo"))
		}
	}

	viper.SetEnvPrefix("JOPLIN_HEXO")
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", joplin.DefaultBaseURL)
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.user_agent", "joplin-hexo/"+version)
	viper.SetDefault("api.max_retries", 5)
	viper.SetDefault("token_file", token.DefaultFile)
	viper.SetDefault("manifest_path", defaultManifestPath())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// defaultManifestPath puts the run-history database next to the user config,
// well away from the output tree the exporter wipes.
func defaultManifestPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "joplin-hexo.db"
	}
	return filepath.Join(home, ".config", "joplin-hexo", "export.db")
}

// loadConfig assembles the effective configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		API: types.APIConfig{
			BaseURL:    viper.GetString("api.base_url"),
			Timeout:    viper.GetDuration("api.timeout"),
			UserAgent:  viper.GetString("api.user_agent"),
			MaxRetries: viper.GetInt("api.max_retries"),
		},
		TokenFile:    viper.GetString("token_file"),
		ManifestPath: viper.GetString("manifest_path"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
