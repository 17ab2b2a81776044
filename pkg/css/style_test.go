package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInlineStyle_SingleProperty(t *testing.T) {
	decls := ParseInlineStyle("color: red")
	if len(decls) != 1 || decls[0].Property != "color" || decls[0].Value != Composite("red") {
		t.Errorf("expected color='red', got %+v", decls)
	}
}

func TestParseInlineStyle_MultipleProperties(t *testing.T) {
	decls := ParseInlineStyle("color: red; width: 100px;; bogus")
	assert.Equal(t, []Declaration{
		{"color", Composite("red")},
		{"width", Composite("100px")},
	}, decls)
}

func TestParseInlineStyle_InsetShorthand(t *testing.T) {
	decls := ParseInlineStyle("inset: 1px 2px 3px")
	assert.Equal(t, []Declaration{
		{"top", Composite("1px")},
		{"right", Composite("2px")},
		{"bottom", Composite("3px")},
		{"left", Composite("2px")},
	}, decls)
}

func TestParseInlineStyle_BackgroundColorOnly(t *testing.T) {
	decls := ParseInlineStyle("background: url(x.png) #ff0000 no-repeat")
	assert.Equal(t, []Declaration{{"background-color", Color{255, 0, 0, 255}}}, decls)
}

func TestParseInlineStyle_BackgroundFunctionalColor(t *testing.T) {
	decls := ParseInlineStyle("background: url(a b.png) rgb(1, 2, 3) no-repeat")
	assert.Equal(t, []Declaration{{"background-color", Color{1, 2, 3, 255}}}, decls)

	decls = ParseInlineStyle("background: rgba( 10 , 20 , 30 , 0.5 )")
	assert.Equal(t, []Declaration{{"background-color", Color{10, 20, 30, 128}}}, decls)
}

func TestSplitComponents(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"red", []string{"red"}},
		{"  a   b ", []string{"a", "b"}},
		{"rgb(1, 2, 3) url(x y)", []string{"rgb(1, 2, 3)", "url(x y)"}},
		{"f(g(1 2) 3)\tz", []string{"f(g(1 2) 3)", "z"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitComponents(tt.in), "%q", tt.in)
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"100px", Px(100), true},
		{" 12.5px ", Px(12.5), true},
		{"0", Length{0, UnitNone}, true},
		{"50%", Length{50, UnitPercent}, true},
		{"-3em", Length{-3, UnitEm}, true},
		{"auto", Length{}, false},
		{"", Length{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLength(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseColor_BasicColors(t *testing.T) {
	tests := map[string]Color{
		"red":                  {255, 0, 0, 255},
		"blue":                 {0, 0, 255, 255},
		"green":                {0, 128, 0, 255},
		"CornflowerBlue":       {100, 149, 237, 255},
		"#fff":                 {255, 255, 255, 255},
		"#11223344":            {0x11, 0x22, 0x33, 0x44},
		"#0a0B0c":              {10, 11, 12, 255},
		"#f008":                {255, 0, 0, 0x88},
		"rgb(1, 2, 3)":         {1, 2, 3, 255},
		"rgba(10 20 30 / 0.5)": {10, 20, 30, 128},
		"rgb(100%, 0%, 0%)":    {255, 0, 0, 255},
		"transparent":          {0, 0, 0, 0},
	}
	for name, expected := range tests {
		color, ok := ParseColor(name)
		if !ok || color != expected {
			t.Errorf("color %s: expected %+v, got %+v (ok=%v)", name, expected, color, ok)
		}
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, s := range []string{"", "notacolor", "#12", "#ggg", "rgb(1,2)", "hsl(0, 0%, 0%)"} {
		c, ok := ParseColor(s)
		if ok {
			t.Errorf("expected %q to be rejected", s)
		}
		if c != Transparent {
			t.Errorf("expected transparent fallback for %q, got %+v", s, c)
		}
	}
}

func TestParseRadii_Shorthand(t *testing.T) {
	tests := map[string]Radii{
		"4px":             {4, 4, 4, 4},
		"4px 2px":         {4, 2, 4, 2},
		"4px 2px 1px":     {4, 2, 1, 2},
		"4px 2px 1px 3px": {4, 2, 1, 3},
		"10px 5px 0 0":    {10, 5, 0, 0},
		"50% 3px":         {0, 3, 0, 3},
		"":                {0, 0, 0, 0},
	}
	for in, want := range tests {
		if got := ParseRadii(in); got != want {
			t.Errorf("ParseRadii(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParseFamilies(t *testing.T) {
	got := ParseFamilies(` "Helvetica Neue", Arial ,'Go Mono',, sans-serif `)
	assert.Equal(t, []string{"Helvetica Neue", "Arial", "Go Mono", "sans-serif"}, got)
}
