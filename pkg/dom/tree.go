package dom

import (
	"fmt"

	"vellum/pkg/css"
)

// NodeID identifies a node within one tree.
type NodeID int

// RootID is the distinguished document root. It is never painted.
const RootID NodeID = 0

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attribute is one element attribute; Attributes keeps source order.
type Attribute struct {
	Name  string
	Value string
}

type Attributes []Attribute

// Get returns the value of the first attribute with the given name.
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

type Node struct {
	ID         NodeID
	Type       NodeType
	TagName    string
	Attributes Attributes
	Text       string
	Parent     NodeID
	Children   []NodeID
	Properties map[string]*css.Property
}

func (n *Node) IsText() bool { return n.Type == TextNode }

func (n *Node) GetAttribute(name string) (string, bool) {
	return n.Attributes.Get(name)
}

// Property returns the named property if the node carries it.
func (n *Node) Property(name string) (*css.Property, bool) {
	p, ok := n.Properties[name]
	return p, ok
}

// Used returns the used value of a property, or ok=false if the node does
// not carry it.
func (n *Node) Used(name string) (css.Used, bool) {
	p, ok := n.Properties[name]
	if !ok {
		return css.Used{}, false
	}
	return p.Used(), true
}

// Tree owns every node of a document. Nodes reference their children by
// id, so walkers never hold aliased mutable pointers into the structure.
type Tree struct {
	nodes map[NodeID]*Node
	next  NodeID
}

// NewTree creates a tree holding only the root "document" element.
func NewTree() *Tree {
	t := &Tree{nodes: make(map[NodeID]*Node)}
	t.nodes[RootID] = &Node{
		ID:         RootID,
		Type:       ElementNode,
		TagName:    "document",
		Parent:     RootID,
		Properties: make(map[string]*css.Property),
	}
	t.next = RootID + 1
	return t
}

// Root returns the document root.
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Node looks up a node by id.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// AppendElement adds an element as the last child of parent.
func (t *Tree) AppendElement(parent NodeID, tag string, attrs Attributes) (NodeID, error) {
	return t.appendChild(parent, &Node{
		Type:       ElementNode,
		TagName:    tag,
		Attributes: attrs,
	})
}

// AppendText adds a text node as the last child of parent.
func (t *Tree) AppendText(parent NodeID, text string) (NodeID, error) {
	return t.appendChild(parent, &Node{
		Type: TextNode,
		Text: text,
	})
}

func (t *Tree) appendChild(parent NodeID, child *Node) (NodeID, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("dom: unknown parent node %d", parent)
	}
	if p.Type == TextNode {
		return 0, fmt.Errorf("dom: text node %d cannot have children", parent)
	}
	child.ID = t.next
	child.Parent = parent
	child.Properties = make(map[string]*css.Property)
	t.next++
	t.nodes[child.ID] = child
	p.Children = append(p.Children, child.ID)
	return child.ID, nil
}

// SetProperty sets the specified value of a property, discarding any
// previously resolved value. It must not run concurrently with a paint pass
// over the same tree.
func (t *Tree) SetProperty(id NodeID, name string, value css.Value) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("dom: unknown node %d", id)
	}
	n.Properties[name] = css.NewProperty(name, value)
	return nil
}

// SetStyle applies the declarations of an inline style attribute in order.
func (t *Tree) SetStyle(id NodeID, styleAttr string) error {
	for _, decl := range css.ParseInlineStyle(styleAttr) {
		if err := t.SetProperty(id, decl.Property, decl.Value); err != nil {
			return err
		}
	}
	return nil
}

// ResolveStyles resolves every property of every node once, so that the
// paint pass only reads stable used values.
func (t *Tree) ResolveStyles() int {
	count := 0
	for _, n := range t.nodes {
		for _, p := range n.Properties {
			if !p.Resolved() {
				p.Resolve()
				count++
			}
		}
	}
	return count
}

// Ancestors calls fn for each ancestor of id, nearest first, excluding the
// root. It stops early when fn returns false.
func (t *Tree) Ancestors(id NodeID, fn func(*Node) bool) {
	n, ok := t.nodes[id]
	for ok && n.ID != RootID {
		n, ok = t.nodes[n.Parent]
		if !ok || n.ID == RootID {
			return
		}
		if !fn(n) {
			return
		}
	}
}
