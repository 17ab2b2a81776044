// Package visualtest checks rendered frames. A frame is compared by its
// paint commands first; pixels are only consulted when the commands differ.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vellum/pkg/images"
	"vellum/pkg/paint"
	"vellum/pkg/text"
)

// Tolerance bounds how far two rasters may drift and still match.
type Tolerance struct {
	// Channel is the largest per-channel difference (0-255) that still
	// counts as the same pixel.
	Channel int
	// MaxDifferentPercent lets a frame match when at most this share of
	// its pixels differ, which absorbs anti-aliased edges.
	MaxDifferentPercent float64
}

// Result describes a pixel comparison.
type Result struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
}

// Compare compares two rasters of the same bounds.
func Compare(actual, expected image.Image, tol Tolerance) (Result, error) {
	b := actual.Bounds()
	if b != expected.Bounds() {
		return Result{}, fmt.Errorf("bounds differ: actual %v, expected %v", b, expected.Bounds())
	}

	res := Result{TotalPixels: b.Dx() * b.Dy()}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := channelDiff(actual.At(x, y), expected.At(x, y))
			res.MaxDifference = max(res.MaxDifference, d)
			if d > tol.Channel {
				res.DifferentPixels++
			}
		}
	}

	res.Match = res.DifferentPixels == 0
	if !res.Match && res.TotalPixels > 0 {
		pct := 100 * float64(res.DifferentPixels) / float64(res.TotalPixels)
		res.Match = pct <= tol.MaxDifferentPercent
	}
	return res, nil
}

// channelDiff is the largest 8-bit channel difference between two colors.
func channelDiff(x, y color.Color) int {
	ar, ag, ab, aa := x.RGBA()
	br, bg, bb, ba := y.RGBA()
	d := 0
	for _, pair := range [4][2]uint32{{ar, br}, {ag, bg}, {ab, bb}, {aa, ba}} {
		delta := int(pair[0]>>8) - int(pair[1]>>8)
		if delta < 0 {
			delta = -delta
		}
		d = max(d, delta)
	}
	return d
}

// commandOptions compare glyph runs by what they draw and images by source,
// since fonts and pixel buffers are shared pointers with private state.
var commandOptions = cmp.Options{
	cmp.Comparer(func(a, b *text.GlyphRun) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Font.Family == b.Font.Family &&
			a.Size == b.Size &&
			a.LineHeight == b.LineHeight &&
			cmp.Equal(a.Glyphs, b.Glyphs)
	}),
	cmp.Comparer(func(a, b *images.Image) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Path == b.Path && a.Width == b.Width && a.Height == b.Height
	}),
}

// DiffCommands returns a readable diff of two command lists, or "" when
// they paint the same thing.
func DiffCommands(want, got []paint.Command) string {
	return cmp.Diff(want, got, commandOptions)
}

// AssertFrame fails t unless got paints the same frame as want. Identical
// commands pass outright; otherwise the rasters must agree within tol.
func AssertFrame(t testing.TB, got, want *Frame, tol Tolerance) {
	t.Helper()
	diff := DiffCommands(want.Commands, got.Commands)
	if diff == "" {
		return
	}
	res, err := Compare(got.Image, want.Image, tol)
	if err != nil {
		t.Errorf("frames differ (-want +got):\n%s\n%v", diff, err)
		return
	}
	if !res.Match {
		t.Errorf("frames differ in %d of %d pixels (-want +got):\n%s",
			res.DifferentPixels, res.TotalPixels, diff)
	}
}

// CountColor returns how many pixels of img are within tolerance of c on
// every channel.
func CountColor(img image.Image, c color.Color, tolerance int) int {
	count := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if channelDiff(img.At(x, y), c) <= tolerance {
				count++
			}
		}
	}
	return count
}
