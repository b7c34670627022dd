// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/pdiddy/joplin-hexo/pkg/types"
)

// Categories derives a note's Hexo category path from its notebook
// ancestry: the titles of every notebook from the root down to the note's
// direct parent. parentID is the note's parent notebook ID; notebooks maps
// notebook ID to notebook. An empty or unknown parent ends the walk, so a
// note in a deleted-but-referenced notebook simply gets a shorter path.
//
// Notebook trees are acyclic in healthy Joplin databases, but a corrupted
// sync can produce a loop; a visited set turns that into an error instead
// of a hang.
func Categories(parentID string, notebooks map[string]types.Notebook) ([]string, error) {
	var titles []string
	visited := make(map[string]bool)

	for id := parentID; id != ""; {
		nb, ok := notebooks[id]
		if !ok {
			break
		}
		if visited[id] {
			return nil, fmt.Errorf("notebook cycle detected at %q (%s)", nb.Title, id)
		}
		visited[id] = true
		titles = append(titles, nb.Title)
		id = nb.ParentID
	}

	// Walked leaf-to-root; categories read root-first.
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return titles, nil
}

// NotebookMap indexes notebooks by ID for Categories lookups.
func NotebookMap(notebooks []types.Notebook) map[string]types.Notebook {
	m := make(map[string]types.Notebook, len(notebooks))
	for _, nb := range notebooks {
		if nb.ID != "" {
			m[nb.ID] = nb
		}
	}
	return m
}
