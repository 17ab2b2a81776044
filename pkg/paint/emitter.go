package paint

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/dom"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/text"
	stdnet "vellum/std/net"
)

// ImageSource supplies decoded images without blocking on contention.
// *images.Cache implements it.
type ImageSource interface {
	TryGet(path string) (*images.Image, error)
}

// Mode selects where geometry comes from.
type Mode int

const (
	// ModeCursor paints only absolutely positioned elements, resolving
	// their boxes against the viewport, and stacks text down a cursor.
	ModeCursor Mode = iota
	// ModeLayout paints every node at the box an external layout pass
	// computed for it.
	ModeLayout
)

// Inheritance selects where a text node reads its font and color from.
type Inheritance int

const (
	// InheritParent reads only the immediate parent.
	InheritParent Inheritance = iota
	// InheritNearestAncestor reads each property from the closest
	// ancestor that sets it.
	InheritNearestAncestor
)

// Options control emission.
type Options struct {
	Mode        Mode
	TextMode    text.Mode
	Inheritance Inheritance

	DefaultFamilies []string
	DefaultFontSize float64
	DefaultColor    css.Color

	// BaseURL resolves relative img src attributes. Empty leaves them as is.
	BaseURL string
}

// DefaultOptions returns cursor mode, multi-line text and parent-only
// inheritance with 12px black sans-serif text.
func DefaultOptions() Options {
	return Options{
		Mode:            ModeCursor,
		TextMode:        text.MultiLine,
		Inheritance:     InheritParent,
		DefaultFamilies: []string{"sans-serif"},
		DefaultFontSize: 12,
		DefaultColor:    css.Black,
	}
}

// NodeError is a failure that prevented one node from painting.
type NodeError struct {
	Node dom.NodeID
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Emitter walks a styled tree and produces paint commands.
type Emitter struct {
	shaper *text.Shaper
	images ImageSource
	log    *zap.Logger
	opts   Options
}

func NewEmitter(shaper *text.Shaper, images ImageSource, log *zap.Logger, opts Options) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	if len(opts.DefaultFamilies) == 0 {
		opts.DefaultFamilies = DefaultOptions().DefaultFamilies
	}
	if opts.DefaultFontSize <= 0 {
		opts.DefaultFontSize = DefaultOptions().DefaultFontSize
	}
	// A zero color would make default text invisible.
	if opts.DefaultColor == (css.Color{}) {
		opts.DefaultColor = DefaultOptions().DefaultColor
	}
	return &Emitter{shaper: shaper, images: images, log: log, opts: opts}
}

// Options returns the emitter's effective options.
func (e *Emitter) Options() Options { return e.opts }

// frame is one pending node on the traversal stack.
type frame struct {
	id     dom.NodeID
	parent dom.NodeID
}

// walk is the state of one Emit call.
type walk struct {
	tree     *dom.Tree
	geometry layout.Source
	viewport layout.Size

	cursorX, cursorY float64
	stack            []frame
	cmds             []Command
	errs             error
}

// Emit walks tree in pre-order and returns its paint commands. geometry is
// consulted in ModeLayout and may be nil in ModeCursor. Failures to paint
// individual nodes never stop the walk: nodes that cannot be shaped are
// reported as *NodeError values combined into the returned error, and all
// other per-node problems are logged and skipped.
//
// Emit reads used values without mutating the tree, but the caller must
// not run it concurrently with ResolveStyles or SetProperty on the same
// tree.
func (e *Emitter) Emit(tree *dom.Tree, geometry layout.Source, viewport layout.Size) ([]Command, error) {
	w := &walk{tree: tree, geometry: geometry, viewport: viewport}
	if e.opts.Mode == ModeLayout && geometry == nil {
		return nil, fmt.Errorf("layout mode requires a geometry source")
	}

	root := tree.Root()
	w.pushChildren(root)
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		n, ok := tree.Node(f.id)
		if !ok {
			continue
		}
		if n.IsText() {
			e.emitText(w, n, f.parent)
		} else {
			e.emitElement(w, n)
		}
		w.pushChildren(n)
	}
	return w.cmds, w.errs
}

func (w *walk) pushChildren(n *dom.Node) {
	for i := len(n.Children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{id: n.Children[i], parent: n.ID})
	}
}

func (e *Emitter) emitText(w *walk, n *dom.Node, parent dom.NodeID) {
	style := e.textStyle(w.tree, n.ID, parent)
	run, err := e.shaper.Shape(style.families, style.size, n.Text, e.opts.TextMode)
	if err != nil {
		w.errs = multierr.Append(w.errs, &NodeError{Node: n.ID, Err: err})
		return
	}
	if len(run.Glyphs) == 0 {
		return
	}

	var x, y float64
	switch e.opts.Mode {
	case ModeLayout:
		box, ok := w.geometry.Box(n.ID)
		if !ok {
			e.log.Debug("text node has no geometry", zap.Int("node", int(n.ID)))
			return
		}
		x, y = box.X, box.Y
	default:
		x, y = w.cursorX, w.cursorY
		w.cursorY += run.Height()
	}

	w.cmds = append(w.cmds, DrawText{
		Node:      n.ID,
		Run:       run,
		Color:     style.color,
		Transform: gg.Translate(x, y),
	})
}

func (e *Emitter) emitElement(w *walk, n *dom.Node) {
	var (
		box   layout.Box
		radii css.Radii
	)
	switch e.opts.Mode {
	case ModeLayout:
		b, ok := w.geometry.Box(n.ID)
		if !ok {
			return
		}
		box = b
		if u, ok := n.Used("border-radius"); ok {
			radii = u.Radii()
		}
	default:
		p, ok := layout.ResolveAbsolute(n, w.viewport)
		if !ok {
			return
		}
		box, radii = p.Box, p.Radii
	}
	if box.Empty() {
		return
	}

	if n.TagName == "img" {
		e.emitImage(w, n, box)
		return
	}

	color := css.Transparent
	if u, ok := n.Used("background-color"); ok {
		color = u.Color()
	}
	w.cmds = append(w.cmds, DrawRoundedRect{Node: n.ID, Box: box, Radii: radii, Color: color})
}

func (e *Emitter) emitImage(w *walk, n *dom.Node, box layout.Box) {
	src, ok := n.GetAttribute("src")
	if !ok || strings.TrimSpace(src) == "" {
		e.log.Debug("img without src", zap.Int("node", int(n.ID)))
		return
	}
	if e.images == nil {
		return
	}
	path := ResolveSource(e.opts.BaseURL, src)
	img, err := e.images.TryGet(path)
	if err != nil {
		e.log.Debug("skipping image", zap.Int("node", int(n.ID)), zap.String("src", path), zap.Error(err))
		return
	}

	// Uniform scale: only the width is fitted, height follows.
	scale := box.Width / float64(img.Width)
	w.cmds = append(w.cmds, DrawImage{
		Node:      n.ID,
		Image:     img,
		Transform: gg.Identity().Translate(box.X, box.Y).Scale(scale, scale),
	})
}

type textStyle struct {
	families []string
	size     float64
	color    css.Color
}

func (e *Emitter) textStyle(tree *dom.Tree, id, parent dom.NodeID) textStyle {
	style := textStyle{
		families: e.opts.DefaultFamilies,
		size:     e.opts.DefaultFontSize,
		color:    e.opts.DefaultColor,
	}

	var families, size, color bool
	apply := func(a *dom.Node) bool {
		if !families {
			if u, ok := a.Used("font-family"); ok && len(u.Families()) > 0 {
				style.families, families = u.Families(), true
			}
		}
		if !size {
			if u, ok := a.Used("font-size"); ok {
				if px, ok := u.Length(); ok && px > 0 {
					style.size, size = px, true
				}
			}
		}
		if !color {
			if u, ok := a.Used("color"); ok {
				style.color, color = u.Color(), true
			}
		}
		return !(families && size && color)
	}

	if e.opts.Inheritance == InheritNearestAncestor {
		tree.Ancestors(id, apply)
	} else if p, ok := tree.Node(parent); ok && p.ID != dom.RootID {
		apply(p)
	}
	return style
}

// ResolveSource resolves an img src against base. data: URIs and absolute
// URLs are returned unchanged.
func ResolveSource(base, src string) string {
	src = strings.TrimSpace(src)
	if base == "" || images.IsDataURI(src) || stdnet.IsNetworkURL(src) || stdnet.IsFileURL(src) {
		return src
	}
	return stdnet.ResolveURL(base, src)
}

// ImagePaths lists the resolved src of every img element in document
// order, without duplicates. It is used to warm an image cache.
func ImagePaths(tree *dom.Tree, base string) []string {
	var paths []string
	seen := make(map[string]bool)
	stack := []dom.NodeID{dom.RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := tree.Node(id)
		if !ok {
			continue
		}
		if n.TagName == "img" {
			if src, ok := n.GetAttribute("src"); ok && strings.TrimSpace(src) != "" {
				p := ResolveSource(base, src)
				if !seen[p] {
					seen[p] = true
					paths = append(paths, p)
				}
			}
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return paths
}
