// Package links rewrites author-facing note links into paths relative to
// the output page being generated. Everything here is string arithmetic;
// nothing touches the file system.
package links

import (
	"path"
	"regexp"
	"strings"

	"github.com/starford/ztk/internal/note"
)

var (
	bareLinkRe     = regexp.MustCompile(`\[(.+?)\]\(([^/]+?)\)`)
	absoluteLinkRe = regexp.MustCompile(`\[(.+?)\]\((/.+?)\)`)
)

// LinkTags turns every inline #tag into a link to its tag page.
func LinkTags(md string) string {
	return note.TagRe.ReplaceAllString(md, "${1}[#${2}](/tag/${2})")
}

// ResolveLinks rewrites the links in md for the page at currentPage
// (slash-separated, relative to the output root).
//
// Bare targets without a slash are note ids: they are made absolute under
// /node/ and always get "."+ext, since an id may itself contain dots. Then
// every absolute target is made relative to the page's directory, and one
// whose last segment has no extension and no trailing slash gets "."+ext
// appended. Nothing is appended when ext is empty.
func ResolveLinks(md, currentPage, ext string) string {
	md = bareLinkRe.ReplaceAllStringFunc(md, func(m string) string {
		sub := bareLinkRe.FindStringSubmatch(m)
		target := "/node/" + sub[2]
		if ext != "" && !strings.HasSuffix(target, "."+ext) {
			target += "." + ext
		}
		return "[" + sub[1] + "](" + target + ")"
	})

	return absoluteLinkRe.ReplaceAllStringFunc(md, func(m string) string {
		sub := absoluteLinkRe.FindStringSubmatch(m)
		label, target := sub[1], sub[2]
		resolved := ResolvePath(target, currentPage)
		if ext != "" && !strings.HasSuffix(resolved, "/") && !strings.Contains(path.Base(resolved), ".") {
			resolved += "." + ext
		}
		return "[" + label + "](" + resolved + ")"
	})
}

// ResolvePath returns target relative to the directory of currentPage.
// Both are treated as segment lists from the output root; a leading slash
// is ignored. The shared leading segments are dropped, then the result
// climbs out of what is left of the directory and descends into what is
// left of the target. An empty result is ".". A trailing slash on target
// is kept.
func ResolvePath(target, currentPage string) string {
	targetParts := segments(target)
	dirParts := segments(path.Dir("/" + strings.TrimPrefix(currentPage, "/")))

	for len(targetParts) > 0 && len(dirParts) > 0 && targetParts[0] == dirParts[0] {
		targetParts = targetParts[1:]
		dirParts = dirParts[1:]
	}

	parts := make([]string, 0, len(dirParts)+len(targetParts))
	for range dirParts {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts...)

	out := strings.Join(parts, "/")
	if out == "" {
		out = "."
	}
	if strings.HasSuffix(target, "/") {
		out += "/"
	}
	return out
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}
