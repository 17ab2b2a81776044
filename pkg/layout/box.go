package layout

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"vellum/pkg/dom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Box is resolved absolute geometry in render-surface coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Corners returns the box in corner form.
func (b Box) Corners() (x0, y0, x1, y1 float64) {
	return b.X, b.Y, b.X + b.Width, b.Y + b.Height
}

// Empty reports whether the box has no paintable area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func (b Box) String() string {
	return fmt.Sprintf("[x: %-4g y: %-4g width: %-4g height: %-4g]", b.X, b.Y, b.Width, b.Height)
}

// Size is an available-space constraint, e.g. the viewport.
type Size struct {
	Width  float64
	Height float64
}

// Source supplies per-node geometry computed by an external layout pass.
type Source interface {
	Box(id dom.NodeID) (Box, bool)
}

// Map is a Source backed by a plain map.
type Map map[dom.NodeID]Box

func (m Map) Box(id dom.NodeID) (Box, bool) {
	b, ok := m[id]
	return b, ok
}

type geometryFile struct {
	Boxes []struct {
		Node dom.NodeID `json:"node"`
		Box
	} `json:"boxes"`
}

// ReadMap decodes a geometry file of the form
// {"boxes":[{"node":3,"x":0,"y":0,"width":100,"height":50}]}.
func ReadMap(r io.Reader) (Map, error) {
	var f geometryFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding geometry: %w", err)
	}
	m := make(Map, len(f.Boxes))
	for _, b := range f.Boxes {
		m[b.Node] = b.Box
	}
	return m, nil
}
