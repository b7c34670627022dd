// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hexo owns the output tree of an export: the standard Hexo source
// layout of posts and resources. All filesystem access goes through an
// afero.Fs so tests run against an in-memory filesystem.
package hexo

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	sourceDir    = "source"
	postsDir     = "_posts"
	resourcesDir = "resources"

	// ResourceLinkPrefix is how posts refer to exported resources. Hexo
	// serves source/resources/ at the site root, so links are absolute.
	ResourceLinkPrefix = "/resources/"
)

// Layout locates the output directories under a single root.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root (the --output directory).
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// PostsDir returns the directory posts are written to.
func (l Layout) PostsDir() string {
	return filepath.Join(l.Root, sourceDir, postsDir)
}

// ResourcesDir returns the directory resources are written to.
func (l Layout) ResourcesDir() string {
	return filepath.Join(l.Root, sourceDir, resourcesDir)
}

// PostPath returns the full path of a post file.
func (l Layout) PostPath(name string) string {
	return filepath.Join(l.PostsDir(), name)
}

// ResourcePath returns the full path of a resource file.
func (l Layout) ResourcePath(name string) string {
	return filepath.Join(l.ResourcesDir(), name)
}

// ResourceLink returns the in-post link target for a resource file.
func (l Layout) ResourceLink(name string) string {
	return ResourceLinkPrefix + name
}

// Prepare deletes and recreates the posts and resources directories so the
// finished output is an exact function of current remote state, with no
// stale files from earlier runs.
func (l Layout) Prepare(fs afero.Fs) error {
	for _, dir := range []string{l.PostsDir(), l.ResourcesDir()} {
		if err := fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("clearing %s: %w", dir, err)
		}
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// WritePost writes one post file. Prepare has wiped the directory, so this
// is always a fresh create.
func (l Layout) WritePost(fs afero.Fs, name, content string) error {
	path := l.PostPath(name)
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing post %s: %w", path, err)
	}
	return nil
}

// WriteResource writes one resource file unless it already exists, so a
// resource shared by several notes is downloaded and written once per run.
// The returned bool reports whether the file was written.
func (l Layout) WriteResource(fs afero.Fs, name string, data []byte) (bool, error) {
	path := l.ResourcePath(name)
	if exists, err := afero.Exists(fs, path); err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	} else if exists {
		return false, nil
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing resource %s: %w", path, err)
	}
	return true, nil
}
