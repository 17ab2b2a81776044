package cli

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"vellum/pkg/css"
	"vellum/pkg/dom"
	"vellum/pkg/layout"
	"vellum/pkg/paint"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type commandJSON struct {
	Op        string      `json:"op"`
	Node      dom.NodeID  `json:"node"`
	Box       *layout.Box `json:"box,omitempty"`
	Radii     *css.Radii  `json:"radii,omitempty"`
	Color     string      `json:"color,omitempty"`
	Transform []float64   `json:"transform,omitempty"`
	Font      string      `json:"font,omitempty"`
	Size      float64     `json:"size,omitempty"`
	Glyphs    []glyphJSON `json:"glyphs,omitempty"`
	Image     *imageJSON  `json:"image,omitempty"`
}

type glyphJSON struct {
	ID   uint16  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Rune string  `json:"rune"`
}

type imageJSON struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// EncodeCommands writes cmds as a JSON array.
func EncodeCommands(w io.Writer, cmds []paint.Command, indent bool) error {
	out := make([]commandJSON, 0, len(cmds))
	for _, c := range cmds {
		j, err := toJSON(c)
		if err != nil {
			return err
		}
		out = append(out, j)
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func toJSON(c paint.Command) (commandJSON, error) {
	switch c := c.(type) {
	case paint.DrawRoundedRect:
		box, radii := c.Box, c.Radii
		return commandJSON{Op: "rect", Node: c.Node, Box: &box, Radii: &radii, Color: c.Color.String()}, nil
	case paint.DrawText:
		glyphs := make([]glyphJSON, len(c.Run.Glyphs))
		for i, g := range c.Run.Glyphs {
			glyphs[i] = glyphJSON{ID: g.ID, X: g.X, Y: g.Y, Rune: string(g.Rune)}
		}
		return commandJSON{
			Op:        "text",
			Node:      c.Node,
			Color:     c.Color.String(),
			Transform: matrix(c.Transform.XX, c.Transform.YX, c.Transform.XY, c.Transform.YY, c.Transform.X0, c.Transform.Y0),
			Font:      c.Run.Font.Family,
			Size:      c.Run.Size,
			Glyphs:    glyphs,
		}, nil
	case paint.DrawImage:
		return commandJSON{
			Op:        "image",
			Node:      c.Node,
			Transform: matrix(c.Transform.XX, c.Transform.YX, c.Transform.XY, c.Transform.YY, c.Transform.X0, c.Transform.Y0),
			Image: &imageJSON{
				Path:   c.Image.Path,
				Width:  c.Image.Width,
				Height: c.Image.Height,
				Format: c.Image.Format.String(),
			},
		}, nil
	}
	return commandJSON{}, fmt.Errorf("unknown paint command %T", c)
}

// matrix lists an affine transform in the SVG order a b c d e f.
func matrix(a, b, c, d, e, f float64) []float64 {
	return []float64{a, b, c, d, e, f}
}
