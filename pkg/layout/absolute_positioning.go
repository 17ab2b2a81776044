package layout

import (
	"vellum/pkg/css"
	"vellum/pkg/dom"
)

// Placement is the resolved geometry of an absolutely positioned node.
type Placement struct {
	Box   Box
	Radii css.Radii
}

// insets holds the four offsets; a nil pointer means unknown.
type insets struct {
	top, right, bottom, left *float64
}

// IsAbsolute reports whether the node's position resolves to absolute.
func IsAbsolute(n *dom.Node) bool {
	u, ok := n.Used("position")
	return ok && u.Keyword() == "absolute"
}

// ResolveAbsolute positions an absolutely positioned node against the
// container (normally the viewport). Nodes that are not absolute, or whose
// top/left cannot be determined, or whose box has no area, return false.
//
// This is an approximation of CSS inset resolution: top/left always win for
// position, and right/bottom are only consulted when the start edge or the
// size is missing.
func ResolveAbsolute(n *dom.Node, container Size) (Placement, bool) {
	if !IsAbsolute(n) {
		return Placement{}, false
	}

	offset := insets{
		top:    length(n, "top"),
		right:  length(n, "right"),
		bottom: length(n, "bottom"),
		left:   length(n, "left"),
	}

	var top, left float64
	switch {
	case offset.top != nil:
		top = *offset.top
	case offset.bottom != nil:
		top = container.Height - *offset.bottom
	default:
		return Placement{}, false
	}
	switch {
	case offset.left != nil:
		left = *offset.left
	case offset.right != nil:
		left = container.Width - *offset.right
	default:
		return Placement{}, false
	}

	var width, height float64
	if w := length(n, "width"); w != nil {
		width = *w
	} else if offset.right != nil {
		width = container.Width - *offset.right - left
	}
	if h := length(n, "height"); h != nil {
		height = *h
	} else if offset.bottom != nil {
		height = container.Height - *offset.bottom - top
	}

	box := Box{X: left, Y: top, Width: width, Height: height}
	if box.Empty() {
		return Placement{}, false
	}

	var radii css.Radii
	if u, ok := n.Used("border-radius"); ok {
		radii = u.Radii()
	}
	return Placement{Box: box, Radii: radii}, true
}

func length(n *dom.Node, property string) *float64 {
	u, ok := n.Used(property)
	if !ok {
		return nil
	}
	px, ok := u.Length()
	if !ok {
		return nil
	}
	return &px
}
