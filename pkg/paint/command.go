package paint

import (
	"fmt"

	"github.com/fogleman/gg"

	"vellum/pkg/css"
	"vellum/pkg/dom"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/text"
)

// Command is one drawing instruction. A frame is an ordered []Command and
// later commands paint over earlier ones.
type Command interface {
	// Source returns the node the command was emitted for.
	Source() dom.NodeID
	fmt.Stringer
}

// DrawRoundedRect fills a box whose corners are rounded independently.
type DrawRoundedRect struct {
	Node  dom.NodeID
	Box   layout.Box
	Radii css.Radii
	Color css.Color
}

// DrawText draws a glyph run. Transform maps run space, whose origin is
// the top-left of the first line, to surface space.
type DrawText struct {
	Node      dom.NodeID
	Run       *text.GlyphRun
	Color     css.Color
	Transform gg.Matrix
}

// DrawImage blits an image. Transform maps image pixels to surface space.
type DrawImage struct {
	Node      dom.NodeID
	Image     *images.Image
	Transform gg.Matrix
}

func (c DrawRoundedRect) Source() dom.NodeID { return c.Node }
func (c DrawText) Source() dom.NodeID        { return c.Node }
func (c DrawImage) Source() dom.NodeID       { return c.Node }

func (c DrawRoundedRect) String() string {
	return fmt.Sprintf("rect #%d %v radii=%v %v", c.Node, c.Box, c.Radii, c.Color)
}

func (c DrawText) String() string {
	return fmt.Sprintf("text #%d at (%g, %g) glyphs=%d size=%g %v",
		c.Node, c.Transform.X0, c.Transform.Y0, len(c.Run.Glyphs), c.Run.Size, c.Color)
}

func (c DrawImage) String() string {
	return fmt.Sprintf("image #%d %s %dx%d at (%g, %g) scale=%g",
		c.Node, c.Image.Path, c.Image.Width, c.Image.Height, c.Transform.X0, c.Transform.Y0, c.Transform.XX)
}
