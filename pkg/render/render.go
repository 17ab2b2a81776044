package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"vellum/pkg/css"
	"vellum/pkg/paint"
	"vellum/pkg/text"
)

// Renderer replays paint commands onto a raster surface.
type Renderer struct {
	context    *gg.Context
	background css.Color
	log        *zap.Logger
	faces      map[faceKey]font.Face
}

type faceKey struct {
	font *text.Font
	size float64
}

func NewRenderer(width, height int) *Renderer {
	return newRenderer(gg.NewContext(width, height))
}

// NewRendererForImage draws directly into target.
func NewRendererForImage(target *image.RGBA) *Renderer {
	return newRenderer(gg.NewContextForRGBA(target))
}

func newRenderer(dc *gg.Context) *Renderer {
	return &Renderer{
		context:    dc,
		background: css.Color{R: 255, G: 255, B: 255, A: 255},
		log:        zap.NewNop(),
		faces:      make(map[faceKey]font.Face),
	}
}

// SetBackground sets the color the surface is cleared to.
func (r *Renderer) SetBackground(c css.Color) { r.background = c }

func (r *Renderer) SetLogger(log *zap.Logger) {
	if log != nil {
		r.log = log
	}
}

// Render clears the surface and draws cmds in order.
func (r *Renderer) Render(cmds []paint.Command) {
	r.setColor(r.background)
	r.context.Clear()

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case paint.DrawRoundedRect:
			r.drawRect(c)
		case paint.DrawText:
			r.drawText(c)
		case paint.DrawImage:
			r.drawImage(c)
		default:
			r.log.Warn("unknown paint command", zap.Stringer("command", cmd))
		}
	}
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA(c.RGBA())
}

func (r *Renderer) drawRect(c paint.DrawRoundedRect) {
	if c.Color.A == 0 || c.Box.Empty() {
		return
	}
	r.setColor(c.Color)
	if c.Radii.IsZero() {
		r.context.DrawRectangle(c.Box.X, c.Box.Y, c.Box.Width, c.Box.Height)
	} else {
		r.roundedRectPath(c.Box.X, c.Box.Y, c.Box.Width, c.Box.Height, c.Radii)
	}
	r.context.Fill()
}

// roundedRectPath traces a rectangle with independent corner radii,
// clockwise from the top-left corner.
func (r *Renderer) roundedRectPath(x, y, w, h float64, radii css.Radii) {
	tl, tr, br, bl := clampRadii(w, h, radii)
	dc := r.context
	dc.NewSubPath()
	dc.MoveTo(x+tl, y)
	dc.LineTo(x+w-tr, y)
	if tr > 0 {
		dc.DrawArc(x+w-tr, y+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x+w, y+h-br)
	if br > 0 {
		dc.DrawArc(x+w-br, y+h-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x+bl, y+h)
	if bl > 0 {
		dc.DrawArc(x+bl, y+h-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.DrawArc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}

// clampRadii scales all radii down uniformly when adjacent corners would
// overlap, as CSS does.
func clampRadii(w, h float64, radii css.Radii) (tl, tr, br, bl float64) {
	tl, tr = math.Max(radii.TopLeft, 0), math.Max(radii.TopRight, 0)
	br, bl = math.Max(radii.BottomRight, 0), math.Max(radii.BottomLeft, 0)
	f := 1.0
	for _, side := range [][3]float64{
		{w, tl, tr},
		{w, bl, br},
		{h, tl, bl},
		{h, tr, br},
	} {
		if sum := side[1] + side[2]; sum > side[0] {
			f = math.Min(f, side[0]/sum)
		}
	}
	return tl * f, tr * f, br * f, bl * f
}

func (r *Renderer) drawText(c paint.DrawText) {
	run := c.Run
	if run == nil || len(run.Glyphs) == 0 || c.Color.A == 0 {
		return
	}
	face, err := r.face(run.Font, run.Size)
	if err != nil {
		r.log.Debug("skipping text", zap.Int("node", int(c.Node)), zap.Error(err))
		return
	}
	r.context.SetFontFace(face)
	r.setColor(c.Color)

	// Glyph positions are pen positions on the line's top edge; gg draws
	// from the baseline.
	for _, g := range run.Glyphs {
		x, y := c.Transform.TransformPoint(g.X, g.Y+run.Ascent)
		r.context.DrawString(string(g.Rune), x, y)
	}
}

func (r *Renderer) face(f *text.Font, size float64) (font.Face, error) {
	key := faceKey{f, size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face, err := f.Face(size)
	if err != nil {
		return nil, err
	}
	r.faces[key] = face
	return face, nil
}

func (r *Renderer) drawImage(c paint.DrawImage) {
	if c.Image == nil {
		return
	}
	m := c.Transform

	r.context.Push()
	r.context.Translate(m.X0, m.Y0)
	r.context.Scale(m.XX, m.YY)
	r.context.DrawImage(c.Image.RGBA(), 0, 0)
	r.context.Pop()
}

// Image returns the rendered surface.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}
