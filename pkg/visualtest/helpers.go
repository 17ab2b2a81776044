package visualtest

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/spf13/afero"

	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/paint"
	"vellum/pkg/render"
	"vellum/pkg/resource"
	"vellum/pkg/text"
)

// Frame is one rendered document: the emitted commands and their raster.
type Frame struct {
	Commands []paint.Command
	Image    *image.RGBA
}

// RenderHTML renders HTML content with the default fonts and options.
// basePath, if set, is the directory relative image paths resolve against.
// Node errors are returned alongside the frame.
func RenderHTML(htmlContent string, width, height int, basePath string) (*Frame, error) {
	lib, err := text.NewDefaultLibrary(nil)
	if err != nil {
		return nil, err
	}
	baseURL := ""
	if basePath != "" {
		baseURL, err = resource.DocumentURL(filepath.Join(basePath, "index.html"))
		if err != nil {
			return nil, err
		}
	}

	p := resource.NewPipeline(resource.NewFetcher(baseURL), images.NewCache(nil), text.NewShaper(lib), paint.DefaultOptions(), nil)
	doc, err := p.LoadHTML(context.Background(), htmlContent, baseURL)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}

	cmds, emitErr := p.Emit(doc, layout.Size{Width: float64(width), Height: float64(height)})
	frame := &Frame{
		Commands: cmds,
		Image:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	render.NewRendererForImage(frame.Image).Render(cmds)
	if emitErr != nil {
		return frame, fmt.Errorf("paint error: %w", emitErr)
	}
	return frame, nil
}

// RenderHTMLFile renders an HTML file from fs, resolving images against
// the file's directory. A nil fs reads the OS filesystem.
func RenderHTMLFile(fs afero.Fs, htmlPath string, width, height int) (*Frame, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	content, err := afero.ReadFile(fs, htmlPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", htmlPath, err)
	}
	return RenderHTML(string(content), width, height, filepath.Dir(htmlPath))
}
