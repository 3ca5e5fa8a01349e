// Package graph holds the full set of notes of a site together with the
// tag index and the home-page note derived from them.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ztk/internal/apperr"
	"github.com/starford/ztk/internal/note"
)

// Graph is built once from a finalised set of notes and is read-only
// afterwards, so it can be shared by concurrent page jobs.
type Graph struct {
	nodes map[string]*note.Note
	tags  map[string]map[string]struct{}
	top   *note.Note

	// Title is the optional site-wide display name.
	Title string
	// Style is the optional raw stylesheet text.
	Style string
}

// Option configures a Graph.
type Option func(*Graph)

// WithTitle sets the site name.
func WithTitle(title string) Option {
	return func(g *Graph) {
		g.Title = title
	}
}

// WithStyle sets the stylesheet text copied into the output tree.
func WithStyle(style string) Option {
	return func(g *Graph) {
		g.Style = style
	}
}

// TagFrequency is one row of the by-frequency tag listing.
type TagFrequency struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Latest string `json:"latest"` // greatest note id carrying the tag
}

// New takes ownership of nodes and derives the tag index and top note.
func New(nodes map[string]*note.Note, opts ...Option) *Graph {
	if nodes == nil {
		nodes = map[string]*note.Note{}
	}
	g := &Graph{nodes: nodes}
	for _, opt := range opts {
		opt(g)
	}
	g.tags = buildTags(nodes)
	g.top = inferTop(nodes)
	return g
}

func buildTags(nodes map[string]*note.Note) map[string]map[string]struct{} {
	tags := make(map[string]map[string]struct{})
	for id, n := range nodes {
		for tag := range n.Tags {
			set, ok := tags[tag]
			if !ok {
				set = make(map[string]struct{})
				tags[tag] = set
			}
			set[id] = struct{}{}
		}
	}
	return tags
}

func inferTop(nodes map[string]*note.Note) *note.Note {
	var top *note.Note
	for _, n := range nodes {
		if !n.HasTag(note.TagTop) {
			continue
		}
		if top == nil || n.ID < top.ID {
			top = n
		}
	}
	return top
}

// Len returns the number of notes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the note with the given id.
func (g *Graph) Node(id string) (*note.Note, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Lookup is Node with an apperr.ErrNotFound error for unknown ids.
func (g *Graph) Lookup(id string) (*note.Note, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("graph: note %q: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// Nodes returns every note, most recent (greatest id) first.
func (g *Graph) Nodes() []*note.Note {
	return g.sortedDesc(g.nodes)
}

// TopNode returns the home-page note, or nil when no note is tagged top.
func (g *Graph) TopNode() *note.Note {
	return g.top
}

// Tags returns every known tag in ascending order.
func (g *Graph) Tags() []string {
	out := make([]string, 0, len(g.tags))
	for t := range g.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasTags reports whether any note carries a tag.
func (g *Graph) HasTags() bool {
	return len(g.tags) > 0
}

// TagCount returns how many notes carry tag.
func (g *Graph) TagCount(tag string) int {
	return len(g.tags[tag])
}

// Tagged returns the notes carrying tag, greatest id first.
func (g *Graph) Tagged(tag string) []*note.Note {
	ids := g.tags[tag]
	subset := make(map[string]*note.Note, len(ids))
	for id := range ids {
		subset[id] = g.nodes[id]
	}
	return g.sortedDesc(subset)
}

// Frequencies returns every tag ordered by note count, then by the greatest
// note id carrying it (ids are assumed to sort chronologically), both
// descending. Tag name ascending breaks any remaining tie.
func (g *Graph) Frequencies() []TagFrequency {
	out := make([]TagFrequency, 0, len(g.tags))
	for tag, ids := range g.tags {
		f := TagFrequency{Name: tag, Count: len(ids)}
		for id := range ids {
			if id > f.Latest {
				f.Latest = id
			}
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Latest != b.Latest {
			return a.Latest > b.Latest
		}
		return a.Name < b.Name
	})
	return out
}

// Tag returns the listing page body for tag.
func (g *Graph) Tag(tag string) string {
	return NodeList(g.Tagged(tag), "#"+tag)
}

// TagIndex returns the tag index page body: every tag alphabetically, then
// by frequency annotated with its count.
func (g *Graph) TagIndex() string {
	alpha := g.Tags()
	for i, t := range alpha {
		alpha[i] = "#" + t
	}

	freqs := g.Frequencies()
	byFreq := make([]string, len(freqs))
	for i, f := range freqs {
		byFreq[i] = fmt.Sprintf("#%s<small>(%d)</small>", f.Name, f.Count)
	}

	var b strings.Builder
	b.WriteString("# Tag index\n\n")
	b.WriteString(generatedMark)
	b.WriteString("## Alphabetically\n\n")
	b.WriteString(strings.Join(alpha, " "))
	b.WriteString("\n\n## By frequency\n\n")
	b.WriteString(strings.Join(byFreq, " "))
	b.WriteString("\n\n")
	return b.String()
}

// AllNodes returns the listing of every note, or a placeholder page when
// there are none.
func (g *Graph) AllNodes() string {
	if len(g.nodes) == 0 {
		return NoNodesPage
	}
	return NodeList(g.Nodes(), "All nodes")
}

// Top returns the home page body: the top note, falling back to AllNodes.
func (g *Graph) Top() string {
	if g.top == nil {
		return g.AllNodes()
	}
	return g.top.Markdown()
}

func (g *Graph) sortedDesc(m map[string]*note.Note) []*note.Note {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	out := make([]*note.Note, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
