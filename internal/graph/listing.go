package graph

import (
	"strings"

	"github.com/starford/ztk/internal/note"
)

const generatedMark = "*(generated automatically)*\n\n"

// NoNodesPage is the AllNodes body of an empty graph.
const NoNodesPage = "# All nodes\n\nThere are no nodes here.\n\n"

// NodeList renders notes as a bulleted listing under a heading.
func NodeList(nodes []*note.Note, title string) string {
	entries := make([]string, len(nodes))
	for i, n := range nodes {
		entries[i] = "- " + n.Entry()
	}
	return "# " + title + "\n\n" + generatedMark + strings.Join(entries, "\n")
}
