package css

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Declaration is a single property: value pair from a style attribute.
type Declaration struct {
	Property string
	Value    Value
}

// ParseInlineStyle parses a style attribute ("top: 10px; left: 4px") into
// declarations in source order. Values stay Composite; typing them is the
// resolver's job. Later declarations of the same property win when applied.
func ParseInlineStyle(styleAttr string) []Declaration {
	var decls []Declaration
	for _, decl := range strings.Split(styleAttr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" {
			continue
		}
		decls = append(decls, expandShorthand(property, value)...)
	}
	return decls
}

// expandShorthand expands the shorthands the painter understands into
// their longhand properties.
func expandShorthand(property, value string) []Declaration {
	switch property {
	case "inset":
		return expandBoxProperty(value)
	case "background":
		// Only the color component is painted.
		for _, part := range splitComponents(value) {
			if c, ok := ParseColor(part); ok {
				return []Declaration{{"background-color", c}}
			}
		}
		return nil
	}
	return []Declaration{{property, Composite(value)}}
}

// splitComponents splits a shorthand value on whitespace outside
// parentheses, so "url(a b) rgb(1, 2, 3)" yields two components.
func splitComponents(value string) []string {
	var parts []string
	depth, start := 0, -1
	for i, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0 && isSpace(r):
			if start >= 0 {
				parts = append(parts, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, value[start:])
	}
	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// expandBoxProperty expands the inset shorthand.
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func expandBoxProperty(value string) []Declaration {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil
	}
	return []Declaration{
		{"top", Composite(top)},
		{"right", Composite(right)},
		{"bottom", Composite(bottom)},
		{"left", Composite(left)},
	}
}

// ParseLength parses a length value ("100px", "50%", "0"). A bare number
// is returned with UnitNone.
func ParseLength(val string) (Length, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "" {
		return Length{}, false
	}
	i := len(val)
	for i > 0 {
		c := val[i-1]
		if (c >= 'a' && c <= 'z') || c == '%' {
			i--
			continue
		}
		break
	}
	num, err := strconv.ParseFloat(val[:i], 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: num, Unit: Unit(val[i:])}, true
}

// pixels returns the pixel value of a length. Only px and unitless numbers
// have first-class support; everything else is neutral.
func (l Length) pixels() (float64, bool) {
	switch l.Unit {
	case UnitPx, UnitNone:
		return l.Value, true
	}
	return 0, false
}

// ParseColor parses hex, named, and rgb()/rgba() colors.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	switch {
	case colorStr == "":
		return Transparent, false
	case colorStr == "transparent":
		return Transparent, true
	case strings.HasPrefix(colorStr, "#"):
		return parseHexColor(colorStr[1:])
	case strings.HasPrefix(colorStr, "rgb"):
		return parseRGBFunction(colorStr)
	}
	if c, ok := colornames.Map[colorStr]; ok {
		return Color{c.R, c.G, c.B, c.A}, true
	}
	return Transparent, false
}

func parseHexColor(hex string) (Color, bool) {
	digits := make([]uint8, 0, 8)
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return Transparent, false
		}
		digits = append(digits, d)
	}
	switch len(digits) {
	case 3, 4:
		c := Color{digits[0] * 17, digits[1] * 17, digits[2] * 17, 255}
		if len(digits) == 4 {
			c.A = digits[3] * 17
		}
		return c, true
	case 6, 8:
		c := Color{
			digits[0]<<4 | digits[1],
			digits[2]<<4 | digits[3],
			digits[4]<<4 | digits[5],
			255,
		}
		if len(digits) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
		return c, true
	}
	return Transparent, false
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// parseRGBFunction handles rgb(r, g, b) and rgba(r, g, b, a) with either
// comma or whitespace separators.
func parseRGBFunction(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Transparent, false
	}
	fn := s[:open]
	if fn != "rgb" && fn != "rgba" {
		return Transparent, false
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : len(s)-1])
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return Transparent, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i], 255)
		if !ok {
			return Transparent, false
		}
		ch[i] = v
	}
	c := Color{ch[0], ch[1], ch[2], 255}
	if len(parts) == 4 {
		a, ok := parseChannel(parts[3], 1)
		if !ok {
			return Transparent, false
		}
		c.A = a
	}
	return c, true
}

// parseChannel parses a number or percentage; max is the numeric value
// that maps to 255.
func parseChannel(s string, max float64) (uint8, bool) {
	scale := 255 / max
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 2.55
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v *= scale
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5), true
}

// ParseRadii parses the border-radius shorthand: up to four whitespace
// separated lengths in the order top-left, top-right, bottom-right,
// bottom-left. Non-px components resolve to 0.
func ParseRadii(val string) Radii {
	parts := strings.Fields(val)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	corner := func(i int) (float64, bool) {
		if i >= len(parts) {
			return 0, false
		}
		l, ok := ParseLength(parts[i])
		if !ok {
			return 0, true
		}
		px, ok := l.pixels()
		if !ok {
			return 0, true
		}
		return px, true
	}

	var r Radii
	r.TopLeft, _ = corner(0)
	var ok bool
	if r.TopRight, ok = corner(1); !ok {
		r.TopRight = r.TopLeft
	}
	if r.BottomRight, ok = corner(2); !ok {
		r.BottomRight = r.TopLeft
	}
	if r.BottomLeft, ok = corner(3); !ok {
		r.BottomLeft = r.TopRight
	}
	return r
}

// ParseFamilies splits a font-family list into family names, stripping
// whitespace and quotes.
func ParseFamilies(val string) []string {
	var families []string
	for _, f := range strings.Split(val, ",") {
		f = strings.TrimSpace(f)
		f = strings.Trim(f, `"'`)
		f = strings.TrimSpace(f)
		if f != "" {
			families = append(families, f)
		}
	}
	return families
}
