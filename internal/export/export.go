// Package export writes a graph out as a static site.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ztk/internal/graph"
	"github.com/starford/ztk/internal/links"
	"github.com/starford/ztk/internal/logfields"
	"github.com/starford/ztk/internal/render"
	"github.com/starford/ztk/internal/storage"
)

// Page is one output file of the site.
type Page struct {
	Path     string // slash-separated, relative to the output root
	Title    string // page title without the site name; empty for the home page
	Markdown string
}

// PageError reports a page that could not be rendered or written.
type PageError struct {
	Path string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Path, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Result summarises an export run.
type Result struct {
	Pages    int
	Failed   int
	Duration time.Duration
}

// Exporter renders every page of a graph and writes it to an output tree.
type Exporter struct {
	renderer render.Renderer
	out      storage.Writer
	ext      string
	styleExt string
	workers  int
	logger   *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithExtension overrides the page extension reported by the renderer.
func WithExtension(ext string) Option {
	return func(e *Exporter) {
		e.ext = ext
	}
}

// WithStyleExtension sets the stylesheet file extension (default "css").
func WithStyleExtension(ext string) Option {
	return func(e *Exporter) {
		e.styleExt = ext
	}
}

// WithWorkers bounds the number of pages rendered concurrently.
// Values below one mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		e.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// New creates an Exporter.
func New(r render.Renderer, out storage.Writer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: r,
		out:      out,
		ext:      r.Extension(),
		styleExt: "css",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.NumCPU()
	}
	return e
}

// Plan lists the pages of g in a fixed order: notes, the full listing, tag
// pages, the tag index (only when tags exist) and finally the home page.
func (e *Exporter) Plan(g *graph.Graph) []Page {
	var pages []Page
	for _, n := range g.Nodes() {
		pages = append(pages, Page{
			Path:     e.file("node/" + n.ID),
			Title:    n.Title,
			Markdown: n.Markdown(),
		})
	}
	pages = append(pages, Page{Path: e.file("all"), Title: "All nodes", Markdown: g.AllNodes()})
	for _, tag := range g.Tags() {
		pages = append(pages, Page{Path: e.file("tag/" + tag), Title: "#" + tag, Markdown: g.Tag(tag)})
	}
	if g.HasTags() {
		pages = append(pages, Page{Path: e.file("tags"), Title: "Tag index", Markdown: g.TagIndex()})
	}
	pages = append(pages, Page{Path: e.file("index"), Markdown: g.Top()})
	return pages
}

// StylePath is where the stylesheet is written, relative to the output root.
func (e *Exporter) StylePath() string {
	return "style/style." + e.styleExt
}

// Export writes the stylesheet (if any) and every planned page.
//
// Pages run concurrently on a bounded pool. A failing page does not stop the
// others: all failures are returned together, in plan order, as *PageError
// values joined with errors.Join. Cancelling ctx stops scheduling new pages.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph) (*Result, error) {
	start := time.Now()
	pages := e.Plan(g)
	nav := NavigationBar(g)

	styleHref := ""
	var styleErr error
	if g.Style != "" {
		if err := e.out.Write(e.StylePath(), []byte(g.Style)); err != nil {
			styleErr = &PageError{Path: e.StylePath(), Err: err}
		} else {
			styleHref = e.StylePath()
		}
	}

	errs := make([]error, len(pages))
	var eg errgroup.Group
	eg.SetLimit(e.workers)

	scheduled := 0
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			break
		}
		scheduled++
		eg.Go(func() error {
			if err := e.exportPage(g, p, nav, styleHref); err != nil {
				errs[i] = &PageError{Path: p.Path, Err: err}
				e.logger.Error("export: page failed", logfields.Page(p.Path), logfields.Error(err))
			}
			return nil
		})
	}
	_ = eg.Wait()

	res := &Result{Pages: scheduled, Duration: time.Since(start)}
	all := []error{styleErr}
	for _, err := range errs {
		if err != nil {
			res.Failed++
			all = append(all, err)
		}
	}
	if scheduled < len(pages) {
		all = append(all, fmt.Errorf("export: stopped after %d of %d pages: %w", scheduled, len(pages), ctx.Err()))
	}
	if err := errors.Join(all...); err != nil {
		return res, err
	}

	e.logger.Info("export: done",
		logfields.Pages(res.Pages),
		logfields.Notes(g.Len()),
		logfields.Tags(len(g.Tags())),
		logfields.Duration(res.Duration))
	return res, nil
}

// exportPage runs the per-page pipeline: tag links, navigation bar, link
// resolution, rendering, writing.
func (e *Exporter) exportPage(g *graph.Graph, p Page, nav, styleHref string) error {
	md := links.LinkTags(p.Markdown)
	md = nav + md
	md = links.ResolveLinks(md, p.Path, e.ext)

	href := ""
	if styleHref != "" {
		href = links.ResolvePath(styleHref, p.Path)
	}

	html, err := e.renderer.Render(md, PageTitle(p.Title, g.Title), href)
	if err != nil {
		return err
	}
	if err := e.out.Write(p.Path, html); err != nil {
		return err
	}
	e.logger.Debug("export: page written", logfields.Page(p.Path))
	return nil
}

func (e *Exporter) file(name string) string {
	if e.ext == "" {
		return name
	}
	return name + "." + e.ext
}
