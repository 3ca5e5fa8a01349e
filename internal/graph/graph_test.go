package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/ztk/internal/apperr"
	"github.com/starford/ztk/internal/note"
)

func nodes(pairs ...string) map[string]*note.Note {
	out := make(map[string]*note.Note, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = note.New(pairs[i], pairs[i+1])
	}
	return out
}

func TestTopNode_SmallestID(t *testing.T) {
	for i := 0; i < 20; i++ {
		g := New(nodes("b", "#top", "a", "#top", "c", "#other"))
		if g.TopNode() == nil || g.TopNode().ID != "a" {
			t.Fatalf("top = %v, want a", g.TopNode())
		}
	}
}

func TestTopNode_None(t *testing.T) {
	g := New(nodes("a", "# A\n#x"))
	if g.TopNode() != nil {
		t.Errorf("top = %v, want nil", g.TopNode().ID)
	}
	if g.Top() != g.AllNodes() {
		t.Error("Top should fall back to AllNodes")
	}
}

func TestTop_UsesTopContent(t *testing.T) {
	g := New(nodes("a", "# A\n#top", "b", "# B"))
	if g.Top() != "# A\n#top" {
		t.Errorf("top = %q", g.Top())
	}
}

func TestTagIndexBuilt(t *testing.T) {
	g := New(nodes("a", "#x #y", "b", "#x"))
	if got := g.Tags(); strings.Join(got, ",") != "x,y" {
		t.Errorf("tags = %v", got)
	}
	if g.TagCount("x") != 2 || g.TagCount("y") != 1 || g.TagCount("z") != 0 {
		t.Errorf("counts x=%d y=%d z=%d", g.TagCount("x"), g.TagCount("y"), g.TagCount("z"))
	}
}

func TestTag_ListingDescending(t *testing.T) {
	g := New(nodes("2024-01", "# Jan\n#x", "2024-03", "# Mar\n#x", "2024-02", "# Feb"))
	want := "# #x\n\n*(generated automatically)*\n\n" +
		"- <small>2024-03</small> [Mar](2024-03)\n" +
		"- <small>2024-01</small> [Jan](2024-01)"
	if got := g.Tag("x"); got != want {
		t.Errorf("Tag(x) =\n%s\nwant\n%s", got, want)
	}
}

func TestFrequencies_CountThenRecency(t *testing.T) {
	g := New(nodes(
		"1", "#x #y", "2", "#x #y", "3", "#x #y",
		"4", "#y", "5", "#y",
		"6", "#p", "9", "#q",
	))
	got := g.Frequencies()
	var names []string
	for _, f := range got {
		names = append(names, f.Name)
	}
	// y (5) before x (3); q and p tie at 1, q's latest id "9" > p's "6".
	if strings.Join(names, ",") != "y,x,q,p" {
		t.Errorf("order = %v, want [y x q p]", names)
	}
	if got[0].Count != 5 || got[0].Latest != "5" {
		t.Errorf("y = %+v", got[0])
	}
}

func TestTagIndex(t *testing.T) {
	g := New(nodes("a", "#b-tag #a-tag", "b", "#b-tag"))
	want := "# Tag index\n\n*(generated automatically)*\n\n" +
		"## Alphabetically\n\n#a-tag #b-tag\n\n" +
		"## By frequency\n\n#b-tag<small>(2)</small> #a-tag<small>(1)</small>\n\n"
	if got := g.TagIndex(); got != want {
		t.Errorf("TagIndex =\n%q\nwant\n%q", got, want)
	}
}

func TestAllNodes_Empty(t *testing.T) {
	g := New(nil)
	if g.AllNodes() != NoNodesPage {
		t.Errorf("AllNodes = %q", g.AllNodes())
	}
	if g.Top() != NoNodesPage {
		t.Errorf("Top = %q", g.Top())
	}
	if g.HasTags() {
		t.Error("empty graph should have no tags")
	}
}

func TestAllNodes_Populated(t *testing.T) {
	g := New(nodes("a", "# A", "b", "no title"))
	want := "# All nodes\n\n*(generated automatically)*\n\n" +
		"- <small>b</small> [b](b)\n" +
		"- <small>a</small> [A](a)"
	if got := g.AllNodes(); got != want {
		t.Errorf("AllNodes =\n%s\nwant\n%s", got, want)
	}
}

func TestOptions(t *testing.T) {
	g := New(nil, WithTitle("Site"), WithStyle("body{}"))
	if g.Title != "Site" || g.Style != "body{}" {
		t.Errorf("title=%q style=%q", g.Title, g.Style)
	}
}

func TestLookup(t *testing.T) {
	g := New(nodes("a", "# A"))
	n, err := g.Lookup("a")
	if err != nil || n.Title != "A" {
		t.Fatalf("Lookup(a) = %v, %v", n, err)
	}
	if _, err := g.Lookup("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Lookup(missing) err = %v, want ErrNotFound", err)
	}
}
