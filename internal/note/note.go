// Package note parses plain-text notes into titles and inline tags.
package note

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
)

// TagTop marks the note used as the site's home page.
const TagTop = "top"

var (
	// TagRe matches a #tag that is not glued to a preceding non-space
	// character. RE2 has no look-behind, so the boundary is captured in
	// group 1 and the tag name in group 2. Unicode spaces (NBSP, em space)
	// and the ASCII separators \v, \x1c-\x1f, \x85 count as whitespace.
	TagRe = regexp.MustCompile(`(^|[\s\v\x{1c}-\x{1f}\x{85}\p{Z}])#([a-zA-Z0-9-]+)`)

	titleRe = regexp.MustCompile(`(?m)^\s*#\s+(.+)`)
)

// Note is one source file: an id, its raw content and what is derived from it.
type Note struct {
	ID      string
	Content string
	Title   string
	Tags    map[string]struct{}
}

// New builds a Note, deriving title and tags from content.
func New(id, content string) *Note {
	return &Note{
		ID:      id,
		Content: content,
		Title:   inferTitle(id, content),
		Tags:    ExtractTags(content),
	}
}

// IDFromName maps a file name to a note id by dropping its final extension.
func IDFromName(name string) string {
	base := path.Base(name)
	if ext := path.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// HasTag reports whether the note carries tag.
func (n *Note) HasTag(tag string) bool {
	_, ok := n.Tags[tag]
	return ok
}

// SortedTags returns the note's tags in ascending order.
func (n *Note) SortedTags() []string {
	out := make([]string, 0, len(n.Tags))
	for t := range n.Tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether the note carries every required tag and none of
// the forbidden ones. Empty lists impose no constraint.
func (n *Note) Matches(required, forbidden []string) bool {
	for _, t := range required {
		if !n.HasTag(t) {
			return false
		}
	}
	for _, t := range forbidden {
		if n.HasTag(t) {
			return false
		}
	}
	return true
}

// StripTags removes tags from the note's tag set in place.
// It has to run before the note is handed to a graph; the graph's tag
// index is not updated afterwards.
func (n *Note) StripTags(tags ...string) {
	for _, t := range tags {
		delete(n.Tags, t)
	}
}

// Markdown returns the note body as authored.
func (n *Note) Markdown() string {
	return n.Content
}

// Entry renders the note as a single listing line. The id is left as a bare
// link so the link resolver can point it at the note page.
func (n *Note) Entry() string {
	return fmt.Sprintf("<small>%s</small> [%s](%s)", n.ID, n.Title, n.ID)
}

// ExtractTags returns the set of tags found in content.
func ExtractTags(content string) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, m := range TagRe.FindAllStringSubmatch(content, -1) {
		tags[m[2]] = struct{}{}
	}
	return tags
}

// inferTitle returns the first "# heading" line, or id when there is none.
func inferTitle(id, content string) string {
	m := titleRe.FindStringSubmatch(content)
	if m == nil {
		return id
	}
	if title := strings.TrimSpace(m[1]); title != "" {
		return title
	}
	return id
}
