package css

import "strings"

// Kind is the shape of a used value.
type Kind int

const (
	KindKeyword Kind = iota
	KindLength
	KindColor
	KindRadii
	KindFamilies
)

// propertyKinds maps the properties the painter consumes to the shape of
// their used value. Anything not listed resolves as a keyword.
var propertyKinds = map[string]Kind{
	"top":              KindLength,
	"right":            KindLength,
	"bottom":           KindLength,
	"left":             KindLength,
	"width":            KindLength,
	"height":           KindLength,
	"font-size":        KindLength,
	"color":            KindColor,
	"background-color": KindColor,
	"border-radius":    KindRadii,
	"font-family":      KindFamilies,
}

// KindOf returns the used-value kind for a property name.
func KindOf(property string) Kind {
	if k, ok := propertyKinds[property]; ok {
		return k
	}
	return KindKeyword
}

// Used is a resolved, strongly typed property value. Downstream code reads
// it through the typed accessors and never re-parses strings.
type Used struct {
	kind     Kind
	keyword  string
	px       float64
	hasPx    bool
	color    Color
	radii    Radii
	families []string
}

// Kind returns the shape of the value.
func (u Used) Kind() Kind { return u.kind }

// Length returns the pixel value. ok is false for unset, auto, and
// unsupported units.
func (u Used) Length() (px float64, ok bool) {
	return u.px, u.hasPx
}

// Color returns the color; unparsable colors are Transparent.
func (u Used) Color() Color { return u.color }

// Radii returns the per-corner radii.
func (u Used) Radii() Radii { return u.radii }

// Families returns the ordered font family list.
func (u Used) Families() []string { return u.families }

// Keyword returns the lowercased keyword.
func (u Used) Keyword() string { return u.keyword }

// Property is a named style property with its specified value and a used
// value slot that is filled on first resolution.
type Property struct {
	Name      string
	Specified Value

	used     Used
	resolved bool
}

// NewProperty creates an unresolved property.
func NewProperty(name string, specified Value) *Property {
	return &Property{Name: name, Specified: specified}
}

// Resolve fills the used-value slot and returns it. Resolving an already
// resolved property returns the cached value.
func (p *Property) Resolve() Used {
	if !p.resolved {
		p.used = Resolve(p.Name, p.Specified)
		p.resolved = true
	}
	return p.used
}

// Resolved reports whether the used slot has been filled.
func (p *Property) Resolved() bool { return p.resolved }

// Used returns the used value without mutating the property. An
// unresolved property is computed on the fly; resolution is pure, so the
// result equals what Resolve would store.
func (p *Property) Used() Used {
	if p.resolved {
		return p.used
	}
	return Resolve(p.Name, p.Specified)
}

// Resolve computes the used value of a property. It never fails: absent or
// malformed values fall back to the neutral value for the property kind.
func Resolve(property string, v Value) Used {
	kind := KindOf(property)
	u := Used{kind: kind}
	if v == nil {
		return u
	}

	switch kind {
	case KindLength:
		u.px, u.hasPx = resolveLength(v)
	case KindColor:
		u.color = resolveColor(v)
	case KindRadii:
		u.radii = resolveRadii(v)
	case KindFamilies:
		switch val := v.(type) {
		case Keyword, Composite:
			u.families = ParseFamilies(val.String())
		}
	default:
		u.keyword = strings.ToLower(strings.TrimSpace(v.String()))
	}
	return u
}

func resolveLength(v Value) (float64, bool) {
	switch val := v.(type) {
	case Length:
		return val.pixels()
	case Keyword, Composite:
		if l, ok := ParseLength(val.String()); ok {
			return l.pixels()
		}
	}
	return 0, false
}

func resolveColor(v Value) Color {
	switch val := v.(type) {
	case Color:
		return val
	case Keyword, Composite:
		c, _ := ParseColor(val.String())
		return c
	}
	return Transparent
}

func resolveRadii(v Value) Radii {
	switch val := v.(type) {
	case Length:
		px, _ := val.pixels()
		return Uniform(px)
	case Keyword, Composite:
		return ParseRadii(val.String())
	}
	return Radii{}
}
