// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/joplin-hexo/pkg/types"
)

// timeLayout is the timestamp format Hexo expects in front-matter.
const timeLayout = "2006-01-02 15:04:05"

// FrontMatter is the metadata block prefixed to every generated post.
// Field order matters for the JSON rendering: Hexo displays the block as
// written, and title belongs first.
type FrontMatter struct {
	Title      string   `json:"title" yaml:"title"`
	Date       string   `json:"date" yaml:"date"`
	Updated    string   `json:"updated" yaml:"updated"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty,flow"`
}

// NewFrontMatter builds the front-matter for a note. The creation date
// prefers the note's user-visible timestamp and falls back to now for notes
// with no recorded creation time; the updated date falls back to the
// creation date.
func NewFrontMatter(n types.Note, categories []string, now time.Time) FrontMatter {
	created := n.CreatedAt()
	if created.IsZero() {
		created = now
	}
	updated := n.UpdatedAt()
	if updated.IsZero() {
		updated = created
	}
	return FrontMatter{
		Title:      NormalizeTitle(n.Title),
		Date:       created.Format(timeLayout),
		Updated:    updated.Format(timeLayout),
		Categories: categories,
	}
}

// Render produces the complete front-matter block, including fences and the
// blank line separating it from the body.
//
// The json format is Hexo's ";;;"-fenced style: the object body without its
// outer braces, two-space indented, HTML escaping off so Unicode titles
// pass through untouched. The yaml format is the conventional "---" fence.
func (fm FrontMatter) Render(format types.FrontMatterFormat) (string, error) {
	switch format {
	case types.FrontMatterJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fm); err != nil {
			return "", fmt.Errorf("marshaling front-matter: %w", err)
		}
		body := strings.TrimSpace(buf.String())
		body = strings.TrimPrefix(body, "{")
		body = strings.TrimSuffix(body, "}")
		return ";;;" + body + "\n;;;\n\n", nil

	case types.FrontMatterYAML:
		data, err := yaml.Marshal(fm)
		if err != nil {
			return "", fmt.Errorf("marshaling front-matter: %w", err)
		}
		return "---\n" + string(data) + "---\n\n", nil
	}
	return "", fmt.Errorf("unknown front-matter format %q", format)
}
