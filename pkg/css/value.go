package css

import (
	"fmt"
	"strconv"
)

// Value is a specified (cascaded) property value. It is one of Keyword,
// Length, Color or Composite.
type Value interface {
	fmt.Stringer
	isValue()
}

// Keyword is an identifier value such as "absolute" or "auto".
type Keyword string

// Unit is the unit suffix of a Length.
type Unit string

const (
	UnitNone    Unit = ""
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
	UnitEm      Unit = "em"
	UnitRem     Unit = "rem"
	UnitPt      Unit = "pt"
)

// Length is a typed numeric value with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

// Px returns a pixel length.
func Px(v float64) Length {
	return Length{Value: v, Unit: UnitPx}
}

// Color is an 8-bit RGBA color, not premultiplied.
type Color struct {
	R, G, B, A uint8
}

// Transparent is fully-transparent black, the fallback for unparsable colors.
var Transparent = Color{}

// Black is opaque black.
var Black = Color{0, 0, 0, 255}

// Composite is a raw string value that has not been strongly typed yet,
// e.g. the border-radius shorthand "10px 5px".
type Composite string

func (Keyword) isValue()   {}
func (Length) isValue()    {}
func (Color) isValue()     {}
func (Composite) isValue() {}

func (k Keyword) String() string { return string(k) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(l.Unit)
}

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Composite) String() string { return string(c) }

// RGBA returns the color components scaled to [0, 1] for painting APIs.
func (c Color) RGBA() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// Radii holds independently resolved corner radii in pixels.
type Radii struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64
}

// Uniform returns radii with all four corners equal to r.
func Uniform(r float64) Radii {
	return Radii{r, r, r, r}
}

// IsZero reports whether every corner is square.
func (r Radii) IsZero() bool {
	return r.TopLeft == 0 && r.TopRight == 0 && r.BottomRight == 0 && r.BottomLeft == 0
}
