package text

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func newTestShaper(t *testing.T) (*Shaper, *Library) {
	t.Helper()
	lib, err := NewDefaultLibrary(nil)
	require.NoError(t, err)
	return NewShaper(lib), lib
}

func TestShape_MultiLine(t *testing.T) {
	s, _ := newTestShaper(t)
	run, err := s.Shape([]string{"Go"}, 16, "A\nB", MultiLine)
	require.NoError(t, err)

	require.Len(t, run.Glyphs, 2, "newline must not produce a glyph")
	a, b := run.Glyphs[0], run.Glyphs[1]
	assert.Equal(t, 'A', a.Rune)
	assert.Equal(t, 0.0, a.X)
	assert.Equal(t, 0.0, a.Y)

	assert.Equal(t, 'B', b.Rune)
	assert.Equal(t, 0.0, b.X, "pen x resets after a newline")
	assert.Equal(t, run.LineHeight, b.Y)
	assert.Equal(t, 2, run.Lines)
	assert.NotZero(t, a.ID)
	assert.NotZero(t, b.ID)

	lh, err := s.LineHeight([]string{"Go"}, 16)
	require.NoError(t, err)
	assert.Equal(t, lh, run.LineHeight)
	assert.Equal(t, 2*lh, run.Height())
}

func TestShape_SingleLineSkipsNewline(t *testing.T) {
	s, _ := newTestShaper(t)
	run, err := s.Shape([]string{"Go"}, 16, "A\nB", SingleLine)
	require.NoError(t, err)

	require.Len(t, run.Glyphs, 2)
	assert.Equal(t, 0.0, run.Glyphs[1].Y)
	assert.Greater(t, run.Glyphs[1].X, 0.0, "B continues on the same line")
	assert.Equal(t, 1, run.Lines)
}

func TestShape_PenAdvancesMonotonically(t *testing.T) {
	s, _ := newTestShaper(t)
	run, err := s.Shape([]string{"Go"}, 12, "hello", SingleLine)
	require.NoError(t, err)

	require.Len(t, run.Glyphs, 5)
	for i := 1; i < len(run.Glyphs); i++ {
		if run.Glyphs[i].X <= run.Glyphs[i-1].X {
			t.Errorf("glyph %d at x=%v is not right of glyph %d at x=%v",
				i, run.Glyphs[i].X, i-1, run.Glyphs[i-1].X)
		}
	}
	assert.Greater(t, run.Width, run.Glyphs[4].X)
}

func TestShape_AdvanceScalesWithSize(t *testing.T) {
	s, _ := newTestShaper(t)
	small, err := s.Shape([]string{"Go"}, 10, "WW", SingleLine)
	require.NoError(t, err)
	large, err := s.Shape([]string{"Go"}, 20, "WW", SingleLine)
	require.NoError(t, err)
	assert.InDelta(t, 2*small.Width, large.Width, 0.1)
}

func TestShape_MissingGlyphIsNotdef(t *testing.T) {
	s, _ := newTestShaper(t)
	// Private use area code point, absent from the Go fonts.
	run, err := s.Shape([]string{"Go"}, 12, "\uE000", SingleLine)
	require.NoError(t, err)
	require.Len(t, run.Glyphs, 1)
	assert.Equal(t, uint16(0), run.Glyphs[0].ID)
}

func TestSelectFont_FirstMatchWins(t *testing.T) {
	s, _ := newTestShaper(t)

	f, err := s.SelectFont([]string{"Nonexistent", "monospace", "Go"})
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", f.Family)

	f, err = s.SelectFont([]string{"SANS-SERIF"})
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)
}

func TestShape_Errors(t *testing.T) {
	s, _ := newTestShaper(t)

	_, err := s.Shape([]string{"Nope", "Also Nope"}, 12, "x", SingleLine)
	assert.True(t, errors.Is(err, ErrNoFont), "got %v", err)

	_, err = s.Shape(nil, 12, "x", SingleLine)
	assert.ErrorIs(t, err, ErrNoFont)

	_, err = s.Shape([]string{"Go"}, 0, "x", SingleLine)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = s.LineHeight([]string{"Go"}, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMetrics_LineHeightIsSumOfParts(t *testing.T) {
	f, err := ParseFont(goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)

	m, err := f.Metrics(20)
	require.NoError(t, err)
	assert.Greater(t, m.Ascent, 0.0)
	assert.Greater(t, m.Descent, 0.0)
	assert.InDelta(t, m.Ascent+m.Descent+m.LineGap, m.LineHeight, 1e-9)
}

func TestLibrary_ScanDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fonts/sub/regular.ttf", goregular.TTF, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/fonts/broken.otf", []byte("not a font"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/fonts/readme.txt", []byte("ignored"), 0o644))

	lib := NewLibrary(fs, nil)
	n, err := lib.ScanDir("/fonts")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Go"}, lib.Families())

	f, err := lib.Match("go")
	require.NoError(t, err)
	assert.Equal(t, "/fonts/sub/regular.ttf", f.Path)
}

func TestLibrary_AliasToUnknownFamily(t *testing.T) {
	lib := NewLibrary(afero.NewMemMapFs(), nil)
	lib.Alias("sans-serif", "Helvetica")
	_, err := lib.Match("sans-serif")
	assert.ErrorIs(t, err, ErrNoFont)
}
