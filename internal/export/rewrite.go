// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// resourceIDPattern matches Joplin's resource identifiers: 32 lowercase hex
// characters.
var resourceIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// ResourceRefs returns the resource IDs referenced through markdown image
// syntax in body, deduplicated, in order of first appearance. Discovery
// walks the markdown AST rather than scanning with a single regex so alt
// text containing brackets and link titles are handled; plain links to a
// resource are not image references and are ignored.
func ResourceRefs(body string) []string {
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader([]byte(body)))

	var ids []string
	seen := make(map[string]bool)
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		id, found := strings.CutPrefix(string(img.Destination), ":/")
		if !found || !resourceIDPattern.MatchString(id) {
			return ast.WalkContinue, nil
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
		return ast.WalkContinue, nil
	})
	return ids
}

// RewriteResourceLinks replaces every image-syntax reference to the given
// resource ID with target, e.g. ![shot](:/ab…ef) becomes
// ![shot](/resources/ab…ef.png). The replacement is a surgical edit of the
// raw markdown, anchored to the image syntax, so surrounding text and
// non-image links to the same resource survive byte-for-byte. Alt text may
// contain one level of balanced brackets, like ![figure [1]](:/ab…ef);
// anything the rewrite cannot reach (deeper nesting, reference-style
// images) is caught by the pipeline's leftover check and reported.
func RewriteResourceLinks(body, id, target string) string {
	re := regexp.MustCompile(`(!\[(?:[^\[\]]|\[[^\]]*\])*\]\():/` + regexp.QuoteMeta(id) + `((?:\s+"[^"]*")?\))`)
	return re.ReplaceAllString(body, "${1}"+target+"${2}")
}
