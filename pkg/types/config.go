package types

import "time"

// APIConfig holds connection settings for the Joplin Clipper API.
type APIConfig struct {
	// BaseURL is the Clipper service endpoint (default "http://localhost:41184").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "joplin-hexo/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FrontMatterFormat selects the front-matter style written to posts.
type FrontMatterFormat string

const (
	// FrontMatterJSON is Hexo's ";;;"-fenced JSON front-matter.
	FrontMatterJSON FrontMatterFormat = "json"
	// FrontMatterYAML is the conventional "---"-fenced YAML front-matter.
	FrontMatterYAML FrontMatterFormat = "yaml"
)

// SlugSource selects how post filenames are derived.
type SlugSource string

const (
	// SlugNoteID names posts after the note's stable identifier. Duplicate
	// titles can never collide.
	SlugNoteID SlugSource = "id"
	// SlugTitle names posts after the sanitized note title.
	SlugTitle SlugSource = "title"
)

// TagAll is the sentinel tag value that disables tag filtering.
const TagAll = "ALL"

// ExportConfig holds settings for a single export run.
type ExportConfig struct {
	// Tag filters the exported notes. The TagAll sentinel (matched
	// case-insensitively) exports every note.
	Tag string `json:"tag" yaml:"tag"`

	// OutputDir is the Hexo source root; posts land in
	// OutputDir/source/_posts and resources in OutputDir/source/resources.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// FrontMatter selects the front-matter format (default json).
	FrontMatter FrontMatterFormat `json:"front_matter" yaml:"front_matter"`

	// Slug selects the post filename scheme (default id).
	Slug SlugSource `json:"slug" yaml:"slug"`
}

// Config groups all exporter configuration.
type Config struct {
	API    APIConfig    `json:"api" yaml:"api"`
	Export ExportConfig `json:"export" yaml:"export"`

	// TokenFile is the path of the saved Clipper API token.
	TokenFile string `json:"token_file" yaml:"token_file"`

	// ManifestPath is the SQLite run-history database path. Empty disables
	// run recording.
	ManifestPath string `json:"manifest_path" yaml:"manifest_path"`
}
