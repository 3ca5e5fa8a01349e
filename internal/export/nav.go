package export

import (
	"strings"

	"github.com/starford/ztk/internal/graph"
)

// NavigationBar returns the markdown prepended to every page: links to the
// home page and full listing when there are notes, to the tag index when
// there are tags. It is empty when no link applies.
func NavigationBar(g *graph.Graph) string {
	var elems []string
	if g.Len() > 0 {
		elems = append(elems, "[top](/index)", "[all](/all)")
	}
	if g.HasTags() {
		elems = append(elems, "[tags](/tags)")
	}
	if len(elems) == 0 {
		return ""
	}
	return strings.Join(elems, " ") + "\n\n---\n\n"
}

// PageTitle joins a page title and the site name as "page - site",
// skipping whichever is empty.
func PageTitle(page, site string) string {
	var parts []string
	if page != "" {
		parts = append(parts, page)
	}
	if site != "" {
		parts = append(parts, site)
	}
	return strings.Join(parts, " - ")
}
