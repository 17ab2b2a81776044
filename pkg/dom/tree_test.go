package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/css"
)

func TestNewTree_HasRoot(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	if root == nil || root.ID != RootID || root.TagName != "document" {
		t.Fatalf("unexpected root: %+v", root)
	}
	if tree.Len() != 1 {
		t.Errorf("expected 1 node, got %d", tree.Len())
	}
}

func TestAppend_AssignsIDsInOrder(t *testing.T) {
	tree := NewTree()
	div, err := tree.AppendElement(RootID, "div", nil)
	require.NoError(t, err)
	txt, err := tree.AppendText(div, "hello")
	require.NoError(t, err)
	img, err := tree.AppendElement(RootID, "img", Attributes{{"src", "a.png"}, {"alt", "x"}})
	require.NoError(t, err)

	assert.Equal(t, []NodeID{div, img}, tree.Root().Children)
	n, ok := tree.Node(txt)
	require.True(t, ok)
	assert.Equal(t, div, n.Parent)
	assert.True(t, n.IsText())

	imgNode, _ := tree.Node(img)
	src, ok := imgNode.GetAttribute("src")
	assert.True(t, ok)
	assert.Equal(t, "a.png", src)
	assert.Equal(t, "alt", imgNode.Attributes[1].Name, "attribute order is preserved")
}

func TestAppend_Errors(t *testing.T) {
	tree := NewTree()
	_, err := tree.AppendElement(42, "div", nil)
	assert.Error(t, err)

	txt, _ := tree.AppendText(RootID, "leaf")
	_, err = tree.AppendText(txt, "child of text")
	assert.Error(t, err)
}

func TestResolveStyles_FillsEverySlotOnce(t *testing.T) {
	tree := NewTree()
	div, _ := tree.AppendElement(RootID, "div", nil)
	require.NoError(t, tree.SetStyle(div, "position: absolute; top: 10px; border-radius: 4px 2px"))

	assert.Equal(t, 3, tree.ResolveStyles())
	assert.Equal(t, 0, tree.ResolveStyles(), "second pass must be a no-op")

	n, _ := tree.Node(div)
	p, ok := n.Property("border-radius")
	require.True(t, ok)
	assert.True(t, p.Resolved())
	assert.Equal(t, css.Radii{TopLeft: 4, TopRight: 2, BottomRight: 4, BottomLeft: 2}, p.Used().Radii())

	u, ok := n.Used("top")
	require.True(t, ok)
	px, _ := u.Length()
	assert.Equal(t, 10.0, px)
}

func TestAncestors_NearestFirstWithoutRoot(t *testing.T) {
	tree := NewTree()
	a, _ := tree.AppendElement(RootID, "section", nil)
	b, _ := tree.AppendElement(a, "p", nil)
	txt, _ := tree.AppendText(b, "x")

	var seen []NodeID
	tree.Ancestors(txt, func(n *Node) bool {
		seen = append(seen, n.ID)
		return true
	})
	assert.Equal(t, []NodeID{b, a}, seen)

	seen = nil
	tree.Ancestors(txt, func(n *Node) bool {
		seen = append(seen, n.ID)
		return false
	})
	assert.Equal(t, []NodeID{b}, seen)
}

func TestFprint(t *testing.T) {
	tree := NewTree()
	div, _ := tree.AppendElement(RootID, "div", Attributes{{"id", "box"}})
	_ = tree.SetProperty(div, "top", css.Px(4))
	_, _ = tree.AppendText(div, "hi\nthere")
	_, _ = tree.AppendElement(RootID, "img", nil)

	var sb strings.Builder
	err := Fprint(&sb, tree, func(n *Node) string {
		if n.ID == div {
			return "[x: 0]"
		}
		return ""
	})
	require.NoError(t, err)

	want := `#0 <document>
├── #1 <div id="box"> {top: 4px} [x: 0]
│   └── #2 "hi there"
└── #3 <img>
`
	assert.Equal(t, want, sb.String())
}
