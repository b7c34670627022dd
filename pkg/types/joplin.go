// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the joplin-hexo exporter.
package types

import (
	"path/filepath"
	"time"
)

// Note is a single Joplin note as returned by the Clipper API. It is an
// immutable snapshot: the exporter fetches each note once per run and never
// writes back.
type Note struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	ParentID string `json:"parent_id"`

	// Joplin timestamps are epoch milliseconds. The user_* variants hold
	// user-visible times, which survive sync and import; the plain variants
	// are internal bookkeeping times.
	CreatedTime     int64 `json:"created_time"`
	UpdatedTime     int64 `json:"updated_time"`
	UserCreatedTime int64 `json:"user_created_time"`
	UserUpdatedTime int64 `json:"user_updated_time"`
}

// CreatedAt returns the note creation time, preferring the user-visible
// timestamp. The zero Time is returned when the note carries no creation
// time at all.
func (n Note) CreatedAt() time.Time {
	switch {
	case n.UserCreatedTime > 0:
		return time.UnixMilli(n.UserCreatedTime)
	case n.CreatedTime > 0:
		return time.UnixMilli(n.CreatedTime)
	}
	return time.Time{}
}

// UpdatedAt returns the note's last-update time, falling back to the
// creation time when the note was never updated.
func (n Note) UpdatedAt() time.Time {
	if n.UpdatedTime > 0 {
		return time.UnixMilli(n.UpdatedTime)
	}
	return n.CreatedAt()
}

// Notebook is a Joplin folder. ParentID is empty for top-level notebooks;
// non-empty values form a tree the exporter flattens into category paths.
type Notebook struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parent_id"`
}

// Tag is a Joplin tag. Joplin lower-cases tag titles on creation.
type Tag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Resource is the metadata record of a binary attachment referenced from a
// note body.
type Resource struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
}

// LocalName returns the stable on-disk filename for the resource: the
// resource ID plus an extension inferred from the original filename, the
// title, or the MIME type, in that order. Resources with no usable hint get
// ".png", which matches what Joplin produces for pasted screenshots.
func (r Resource) LocalName() string {
	ext := filepath.Ext(r.Filename)
	if ext == "" {
		ext = filepath.Ext(r.Title)
	}
	if ext == "" {
		ext = mimeExtensions[r.Mime]
	}
	if ext == "" {
		ext = ".png"
	}
	return r.ID + ext
}

// mimeExtensions maps the image MIME types Joplin commonly stores to file
// extensions. mime.ExtensionsByType is avoided because its first result is
// platform-dependent (".jfif" vs ".jpg").
var mimeExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
}
