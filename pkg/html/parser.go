package html

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"vellum/pkg/dom"
)

// skipped elements contribute nothing to the styled tree.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Title:    true,
	atom.Meta:     true,
	atom.Link:     true,
}

// transparent elements are replaced by their children. body is kept as an
// element: it is always present and its inline style is inherited by text.
var transparent = map[atom.Atom]bool{
	atom.Html: true,
}

// Parser builds a styled dom.Tree from HTML. Each element's inline style
// attribute becomes its specified properties; there is no stylesheet
// cascade.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse reads an HTML document.
func (p *Parser) Parse(r io.Reader) (*dom.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	tree := dom.NewTree()
	if err := p.appendChildren(tree, dom.RootID, doc, false); err != nil {
		return nil, err
	}
	p.log.Debug("parsed document", zap.Int("nodes", tree.Len()))
	return tree, nil
}

func (p *Parser) appendChildren(tree *dom.Tree, parent dom.NodeID, n *html.Node, pre bool) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.appendNode(tree, parent, c, pre); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) appendNode(tree *dom.Tree, parent dom.NodeID, n *html.Node, pre bool) error {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !pre {
			text = collapseWhitespace(text)
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}
		_, err := tree.AppendText(parent, text)
		return err

	case html.ElementNode:
		if skipped[n.DataAtom] {
			return nil
		}
		if transparent[n.DataAtom] {
			return p.appendChildren(tree, parent, n, pre)
		}

		attrs := make(dom.Attributes, 0, len(n.Attr))
		for _, a := range n.Attr {
			attrs = append(attrs, dom.Attribute{Name: a.Key, Value: a.Val})
		}
		id, err := tree.AppendElement(parent, n.Data, attrs)
		if err != nil {
			return err
		}
		if style, ok := attrs.Get("style"); ok {
			if err := tree.SetStyle(id, style); err != nil {
				return err
			}
		}
		return p.appendChildren(tree, id, n, pre || n.DataAtom == atom.Pre)

	case html.DocumentNode:
		return p.appendChildren(tree, parent, n, pre)
	}
	// Comments and doctypes
	return nil
}

// collapseWhitespace folds runs of whitespace to one space, keeping a
// single leading or trailing space where the source had one.
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// Parse is a convenience wrapper around (*Parser).Parse for strings.
func Parse(content string) (*dom.Tree, error) {
	return NewParser(nil).Parse(strings.NewReader(content))
}
