// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Characters invalid in filenames on at least one major OS.
	invalidFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	controlChars         = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// NormalizeTitle returns the title in NFC form. Notes created on macOS can
// carry decomposed accents; normalizing keeps front-matter and filenames
// byte-stable across platforms.
func NormalizeTitle(title string) string {
	return norm.NFC.String(title)
}

// TitleSlug turns a note title into a safe filename stem, preserving
// non-ASCII characters. Spaces become hyphens for URL friendliness; the
// characters that are invalid on some filesystem are removed, as are
// control characters and the trailing dots/spaces Windows rejects.
func TitleSlug(title string) string {
	s := NormalizeTitle(title)
	s = strings.ReplaceAll(s, " ", "-")
	s = invalidFilenameChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	s = strings.Trim(s, " .")
	if s == "" {
		return "untitled-note"
	}
	return s
}
