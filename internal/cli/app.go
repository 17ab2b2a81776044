// Package cli implements the vellum command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"vellum/internal/config"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/paint"
	"vellum/pkg/resource"
	"vellum/pkg/text"
)

// App holds the long-lived components shared by every command. It is
// populated by the root command before any subcommand runs.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Fonts   *text.Library
	Shaper  *text.Shaper
	Images  *images.Cache
	Fetcher *resource.DefaultFetcher

	fs afero.Fs
}

// NewApp builds fonts, image cache and fetcher from cfg.
func NewApp(cfg *config.Config, fs afero.Fs, log *zap.Logger) (*App, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}

	lib, err := newLibrary(cfg.Fonts, fs, log)
	if err != nil {
		return nil, err
	}

	fetcher := resource.NewFetcher("")
	cache := images.NewCache(fs,
		images.WithFetcher(fetcher),
		images.WithLogger(log.Named("images")),
		images.WithPrefetchLimit(cfg.Images.PrefetchConcurrency),
	)

	return &App{
		Config:  cfg,
		Log:     log,
		Fonts:   lib,
		Shaper:  text.NewShaper(lib),
		Images:  cache,
		Fetcher: fetcher,
		fs:      fs,
	}, nil
}

func newLibrary(cfg config.FontsConfig, fs afero.Fs, log *zap.Logger) (*text.Library, error) {
	lib := text.NewLibrary(fs, log.Named("fonts"))
	if cfg.GoFonts {
		if err := lib.RegisterGoFonts(); err != nil {
			return nil, fmt.Errorf("registering Go fonts: %w", err)
		}
	}
	for _, dir := range cfg.Dirs {
		n, err := lib.ScanDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning fonts in %s: %w", dir, err)
		}
		log.Debug("scanned font directory", zap.String("dir", dir), zap.Int("fonts", n))
	}
	for alias, family := range text.DefaultAliases {
		lib.Alias(alias, family)
	}
	for alias, family := range cfg.Aliases {
		lib.Alias(alias, family)
	}
	return lib, nil
}

// FrameOptions selects how one document is painted.
type FrameOptions struct {
	Width, Height int
	// Geometry is a layout file; when set the frame is painted in layout
	// mode unless Mode says otherwise.
	Geometry string
	Mode     string
}

// Frame is a loaded document plus everything needed to paint it.
type Frame struct {
	Pipeline *resource.Pipeline
	Document *resource.Document
	Viewport layout.Size
}

// Emit returns the frame's paint commands.
func (f *Frame) Emit() ([]paint.Command, error) {
	return f.Pipeline.Emit(f.Document, f.Viewport)
}

// Load fetches target, which may be a URL or a local path, and prepares
// it for painting.
func (a *App) Load(ctx context.Context, target string, fo FrameOptions) (*Frame, error) {
	pc := a.Config.Paint
	if fo.Mode != "" {
		pc.Mode = fo.Mode
	} else if fo.Geometry != "" {
		pc.Mode = "layout"
	}
	opts, err := pc.Options()
	if err != nil {
		return nil, err
	}

	var geometry layout.Source
	if fo.Geometry != "" {
		m, err := a.readGeometry(fo.Geometry)
		if err != nil {
			return nil, err
		}
		geometry = m
	}

	uri, err := resource.DocumentURL(target)
	if err != nil {
		return nil, err
	}

	p := resource.NewPipeline(a.Fetcher, a.Images, a.Shaper, opts, a.Log)
	p.SetBackground(pc.BackgroundColor())
	p.SetPrefetch(a.Config.Images.Prefetch)

	doc, err := p.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	doc.Geometry = geometry

	w, h := fo.Width, fo.Height
	if w <= 0 {
		w = a.Config.Viewport.Width
	}
	if h <= 0 {
		h = a.Config.Viewport.Height
	}
	a.Log.Debug("loaded document",
		zap.String("url", uri),
		zap.Int("nodes", doc.Tree.Len()),
		zap.Int("width", w), zap.Int("height", h))

	return &Frame{
		Pipeline: p,
		Document: doc,
		Viewport: layout.Size{Width: float64(w), Height: float64(h)},
	}, nil
}

func (a *App) readGeometry(path string) (layout.Map, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geometry: %w", err)
	}
	defer f.Close()
	return layout.ReadMap(f)
}
