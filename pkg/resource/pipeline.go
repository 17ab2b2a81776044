package resource

import (
	"context"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/dom"
	"vellum/pkg/html"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/paint"
	"vellum/pkg/render"
	"vellum/pkg/text"
)

// Renderer renders HTML content onto an image.
type Renderer interface {
	Render(htmlContent string, target *image.RGBA) error
}

// Document is a loaded, style-resolved tree ready to paint.
type Document struct {
	URL  string
	Tree *dom.Tree
	// Geometry is required when painting in paint.ModeLayout.
	Geometry layout.Source
}

// Pipeline loads documents and turns them into paint commands and pixels:
// fetch, build the styled tree, resolve styles, warm the image cache,
// emit, rasterize.
type Pipeline struct {
	fetcher    Fetcher
	parser     *html.Parser
	cache      *images.Cache
	shaper     *text.Shaper
	opts       paint.Options
	background css.Color
	prefetch   bool
	log        *zap.Logger
}

// NewPipeline wires the components of a render. fetcher may be nil when
// only LoadHTML and Render are used.
func NewPipeline(fetcher Fetcher, cache *images.Cache, shaper *text.Shaper, opts paint.Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		fetcher:    fetcher,
		parser:     html.NewParser(log),
		cache:      cache,
		shaper:     shaper,
		opts:       opts,
		background: css.Color{R: 255, G: 255, B: 255, A: 255},
		prefetch:   true,
		log:        log,
	}
}

// SetBackground sets the color frames are cleared to.
func (p *Pipeline) SetBackground(c css.Color) { p.background = c }

// SetPrefetch controls whether LoadHTML warms the image cache. Without it
// images decode lazily on first paint.
func (p *Pipeline) SetPrefetch(on bool) { p.prefetch = on }

// Load fetches and prepares the document at uri.
func (p *Pipeline) Load(ctx context.Context, uri string) (*Document, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	body, _, err := p.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return p.LoadHTML(ctx, string(body), uri)
}

// LoadHTML prepares a document from source. baseURL resolves relative
// image paths and may be empty.
func (p *Pipeline) LoadHTML(ctx context.Context, content, baseURL string) (*Document, error) {
	tree, err := p.parser.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	resolved := tree.ResolveStyles()
	p.log.Debug("resolved styles", zap.String("url", baseURL), zap.Int("properties", resolved))

	if p.cache != nil && p.prefetch {
		paths := paint.ImagePaths(tree, baseURL)
		if err := p.cache.Prefetch(ctx, paths); err != nil {
			return nil, fmt.Errorf("prefetching images: %w", err)
		}
	}
	return &Document{URL: baseURL, Tree: tree}, nil
}

// Emit produces the document's paint commands for a viewport. Commands
// are returned even when some nodes failed; err then lists the failures.
func (p *Pipeline) Emit(doc *Document, viewport layout.Size) ([]paint.Command, error) {
	opts := p.opts
	opts.BaseURL = doc.URL

	var source paint.ImageSource
	if p.cache != nil {
		source = p.cache
	}
	e := paint.NewEmitter(p.shaper, source, p.log, opts)
	return e.Emit(doc.Tree, doc.Geometry, viewport)
}

// Paint emits and rasterizes doc onto target, using target's size as the
// viewport. Node failures are logged and returned after the frame is drawn.
func (p *Pipeline) Paint(doc *Document, target *image.RGBA) error {
	b := target.Bounds()
	viewport := layout.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	cmds, err := p.Emit(doc, viewport)
	if err != nil {
		p.log.Warn("some nodes were not painted", zap.Error(err))
	}

	r := render.NewRendererForImage(target)
	r.SetBackground(p.background)
	r.SetLogger(p.log)
	r.Render(cmds)
	return err
}

// Render implements Renderer.
func (p *Pipeline) Render(htmlContent string, target *image.RGBA) error {
	doc, err := p.LoadHTML(context.Background(), htmlContent, "")
	if err != nil {
		return err
	}
	return p.Paint(doc, target)
}
