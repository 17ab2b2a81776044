package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_LengthFromTypedAndString(t *testing.T) {
	typed := Resolve("top", Px(12))
	raw := Resolve("top", Composite("12px"))

	px, ok := typed.Length()
	require.True(t, ok)
	assert.Equal(t, 12.0, px)
	assert.Equal(t, typed, raw, "typed and string forms must resolve identically")
}

func TestResolve_KeywordFormMatchesComposite(t *testing.T) {
	assert.Equal(t, Resolve("width", Composite("12px")), Resolve("width", Keyword("12px")))
	px, ok := Resolve("width", Keyword("12px")).Length()
	require.True(t, ok)
	assert.Equal(t, 12.0, px)

	assert.Equal(t, Radii{4, 2, 4, 2}, Resolve("border-radius", Keyword("4px 2px")).Radii())
	assert.Equal(t, Resolve("border-radius", Composite("4px 2px")), Resolve("border-radius", Keyword("4px 2px")))
}

func TestResolve_LengthNeutralFallbacks(t *testing.T) {
	for _, v := range []Value{
		Keyword("auto"),
		Composite("auto"),
		Length{50, UnitPercent},
		Composite("3em"),
		Composite("garbage"),
		Color{1, 2, 3, 4},
		nil,
	} {
		_, ok := Resolve("width", v).Length()
		assert.False(t, ok, "expected %v to be unset", v)
	}
}

func TestResolve_ColorFallbackIsTransparent(t *testing.T) {
	assert.Equal(t, Transparent, Resolve("color", Composite("not-a-color")).Color())
	assert.Equal(t, Transparent, Resolve("background-color", Px(3)).Color())
	assert.Equal(t, Color{0, 0, 255, 255}, Resolve("color", Keyword("blue")).Color())
	assert.Equal(t, Color{9, 8, 7, 6}, Resolve("color", Color{9, 8, 7, 6}).Color())
}

func TestResolve_Radii(t *testing.T) {
	assert.Equal(t, Uniform(6), Resolve("border-radius", Px(6)).Radii())
	assert.Equal(t, Radii{4, 2, 1, 2}, Resolve("border-radius", Composite("4px 2px 1px")).Radii())
	assert.True(t, Resolve("border-radius", Keyword("none")).Radii().IsZero())
}

func TestResolve_KeywordsAreLowercased(t *testing.T) {
	u := Resolve("position", Composite(" Absolute "))
	assert.Equal(t, KindKeyword, u.Kind())
	assert.Equal(t, "absolute", u.Keyword())
}

func TestProperty_ResolveIsIdempotent(t *testing.T) {
	p := NewProperty("border-radius", Composite("4px 2px"))
	assert.False(t, p.Resolved())

	before := p.Used()
	assert.False(t, p.Resolved(), "Used must not fill the slot")

	first := p.Resolve()
	require.True(t, p.Resolved())

	// Changing the specified value after resolution does not recompute.
	p.Specified = Composite("9px")
	second := p.Resolve()

	assert.Equal(t, before, first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, p.Used())
}
