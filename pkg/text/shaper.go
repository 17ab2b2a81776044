package text

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// ErrInvalidSize is returned for non-positive or non-finite font sizes.
var ErrInvalidSize = errors.New("invalid font size")

// Matcher resolves a single family name to a font.
type Matcher interface {
	Match(family string) (*Font, error)
}

// Mode selects how newlines are treated.
type Mode int

const (
	// SingleLine drops newlines without breaking.
	SingleLine Mode = iota
	// MultiLine breaks at each newline.
	MultiLine
)

// Glyph is one positioned glyph. X and Y are the pen position before the
// glyph's advance, relative to the top-left of the run.
type Glyph struct {
	ID   uint16
	X    float64
	Y    float64
	Rune rune
}

// GlyphRun is a shaped string in a single font at a single size.
type GlyphRun struct {
	Font       *Font
	Size       float64
	Glyphs     []Glyph
	Ascent     float64
	LineHeight float64
	Lines      int
	Width      float64
}

// Height returns the total height of all lines.
func (r *GlyphRun) Height() float64 {
	return float64(r.Lines) * r.LineHeight
}

// Shaper turns strings into positioned glyphs with a simple left-to-right
// pen model. It keeps no per-call state and is safe for concurrent use if
// its Matcher is.
type Shaper struct {
	fonts Matcher
}

func NewShaper(fonts Matcher) *Shaper {
	return &Shaper{fonts: fonts}
}

// SelectFont returns the first family in families that the matcher knows.
func (s *Shaper) SelectFont(families []string) (*Font, error) {
	for _, family := range families {
		if f, err := s.fonts.Match(family); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w for families %q", ErrNoFont, families)
}

// LineHeight returns ascent + descent + line gap of the selected font at
// size pixels.
func (s *Shaper) LineHeight(families []string, size float64) (float64, error) {
	if err := checkSize(size); err != nil {
		return 0, err
	}
	f, err := s.SelectFont(families)
	if err != nil {
		return 0, err
	}
	m, err := f.Metrics(size)
	if err != nil {
		return 0, err
	}
	return m.LineHeight, nil
}

// Shape positions every rune of text. Runes missing from the font map to
// glyph 0. Newlines never produce glyphs.
func (s *Shaper) Shape(families []string, size float64, text string, mode Mode) (*GlyphRun, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	f, err := s.SelectFont(families)
	if err != nil {
		return nil, err
	}
	m, err := f.Metrics(size)
	if err != nil {
		return nil, err
	}

	run := &GlyphRun{
		Font:       f,
		Size:       size,
		Glyphs:     make([]Glyph, 0, len(text)),
		Ascent:     m.Ascent,
		LineHeight: m.LineHeight,
		Lines:      1,
	}

	var buf sfnt.Buffer
	ppem := toFixed(size)
	x, y := 0.0, 0.0
	for _, r := range text {
		if r == '\n' {
			if mode == MultiLine {
				x = 0
				y += m.LineHeight
				run.Lines++
			}
			continue
		}
		gid, err := f.sfnt.GlyphIndex(&buf, r)
		if err != nil {
			gid = 0
		}
		run.Glyphs = append(run.Glyphs, Glyph{ID: uint16(gid), X: x, Y: y, Rune: r})

		adv, err := f.sfnt.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("advance of %q in %q: %w", r, f.Family, err)
		}
		x += fromFixed(adv)
		run.Width = math.Max(run.Width, x)
	}
	return run, nil
}

func checkSize(size float64) error {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return nil
}
