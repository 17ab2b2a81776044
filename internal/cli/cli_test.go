package cli

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/internal/config"
	"vellum/pkg/paint"
	"vellum/pkg/text"
)

const boxPage = `<html><body>
<div style="position: absolute; top: 10px; left: 10px; width: 30px; height: 30px; background-color: red"></div>
</body></html>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(afero.NewOsFs())
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", boxPage)
	output := filepath.Join(dir, "out.png")

	_, err := run(t, "render", page, "-o", output, "--width", "100", "--height", "80")
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
	assert.Equal(t, color.RGBAModel.Convert(color.RGBA{255, 0, 0, 255}), color.RGBAModel.Convert(img.At(20, 20)))
	assert.Equal(t, color.RGBAModel.Convert(color.RGBA{255, 255, 255, 255}), color.RGBAModel.Convert(img.At(90, 70)))
}

func TestDumpCommand(t *testing.T) {
	page := writeFile(t, t.TempDir(), "page.html", boxPage)

	out, err := run(t, "dump", page, "--width", "100", "--height", "80")
	require.NoError(t, err)

	var cmds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cmds))
	require.Len(t, cmds, 1)
	assert.Equal(t, "rect", cmds[0]["op"])
	assert.Equal(t, "#ff0000", cmds[0]["color"])
	assert.Equal(t, map[string]any{"x": 10.0, "y": 10.0, "width": 30.0, "height": 30.0}, cmds[0]["box"])
}

func TestDumpCommand_Geometry(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<div style="background-color: blue"></div>`)
	geometry := writeFile(t, dir, "boxes.json", `{"boxes":[{"node":2,"x":5,"y":6,"width":7,"height":8}]}`)

	out, err := run(t, "dump", page, "-g", geometry, "--indent=false")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact output is one line")

	var cmds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cmds))
	require.Len(t, cmds, 1)
	assert.Equal(t, map[string]any{"x": 5.0, "y": 6.0, "width": 7.0, "height": 8.0}, cmds[0]["box"])
}

func TestTreeCommand(t *testing.T) {
	page := writeFile(t, t.TempDir(), "page.html", boxPage)

	out, err := run(t, "tree", page)
	require.NoError(t, err)
	assert.Contains(t, out, "#0 <document>")
	assert.Contains(t, out, "#1 <div")
	assert.Contains(t, out, "[x: 10")
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", boxPage)

	_, err := run(t, "render", filepath.Join(dir, "missing.html"), "-o", filepath.Join(dir, "x.png"))
	assert.Error(t, err)

	_, err = run(t, "dump", page, "--mode", "sideways")
	assert.ErrorContains(t, err, "paint.mode")

	_, err = run(t, "dump", page, "-g", filepath.Join(dir, "none.json"))
	assert.ErrorContains(t, err, "opening geometry")

	_, err = run(t, "--config", filepath.Join(dir, "absent.yaml"), "dump", page)
	assert.ErrorContains(t, err, "loading configuration")

	_, err = run(t, "dump")
	assert.Error(t, err, "a target is required")
}

func TestNewApp_FontsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Fonts.GoFonts = false
	cfg.Fonts.Aliases = map[string]string{"fancy": "Go"}

	app, err := NewApp(cfg, afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	assert.Empty(t, app.Fonts.Families())

	cfg.Fonts.GoFonts = true
	app, err = NewApp(cfg, afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	f, err := app.Fonts.Match("fancy")
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)

	cfg.Fonts.Dirs = []string{"/nowhere"}
	_, err = NewApp(cfg, afero.NewMemMapFs(), nil)
	assert.Error(t, err)
}

func TestEncodeCommands_Text(t *testing.T) {
	lib, err := text.NewDefaultLibrary(nil)
	require.NoError(t, err)
	glyphRun, err := text.NewShaper(lib).Shape([]string{"Go"}, 10, "hi", text.SingleLine)
	require.NoError(t, err)

	cmd := paint.DrawText{Node: 2, Run: glyphRun, Transform: gg.Translate(3, 4)}

	var buf bytes.Buffer
	require.NoError(t, EncodeCommands(&buf, []paint.Command{cmd}, false))

	var cmds []commandJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cmds))
	require.Len(t, cmds, 1)
	assert.Equal(t, "text", cmds[0].Op)
	assert.Equal(t, "Go", cmds[0].Font)
	assert.Equal(t, []float64{1, 0, 0, 1, 3, 4}, cmds[0].Transform)
	require.Len(t, cmds[0].Glyphs, 2)
	assert.Equal(t, "h", cmds[0].Glyphs[0].Rune)
}
