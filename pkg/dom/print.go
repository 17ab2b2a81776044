package dom

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fprint writes the tree as an indented outline. annotate, if non-nil,
// appends extra text (such as geometry) to each node's line.
func Fprint(w io.Writer, t *Tree, annotate func(*Node) string) error {
	root := t.Root()
	if _, err := fmt.Fprintf(w, "%s\n", describe(root)); err != nil {
		return err
	}
	return printChildren(w, t, root, "", annotate)
}

func printChildren(w io.Writer, t *Tree, n *Node, prefix string, annotate func(*Node) string) error {
	for i, id := range n.Children {
		child, ok := t.Node(id)
		if !ok {
			continue
		}
		last := i == len(n.Children)-1
		fork, bar := "├── ", "│   "
		if last {
			fork, bar = "└── ", "    "
		}
		line := prefix + fork + describe(child)
		if annotate != nil {
			if extra := annotate(child); extra != "" {
				line += " " + extra
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := printChildren(w, t, child, prefix+bar, annotate); err != nil {
			return err
		}
	}
	return nil
}

func describe(n *Node) string {
	if n.Type == TextNode {
		text := strings.TrimSpace(strings.ReplaceAll(n.Text, "\n", " "))
		return fmt.Sprintf("#%d %q", n.ID, text)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d <%s", n.ID, n.TagName)
	for _, attr := range n.Attributes {
		if attr.Name == "style" {
			continue
		}
		fmt.Fprintf(&sb, " %s=%q", attr.Name, attr.Value)
	}
	sb.WriteByte('>')

	if len(n.Properties) > 0 {
		// Sort for deterministic output
		names := make([]string, 0, len(n.Properties))
		for name := range n.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+n.Properties[name].Specified.String())
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(parts, "; "))
	}
	return sb.String()
}
