package kson

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"
)

const dotHeader = `digraph kson {
    graph [fontname = "monospace" rankdir=LR];
    node [fontname = "courier new" shape=box style=rounded];
    edge [fontname = "courier new" fontsize=10];
`

func (n *Node) label(i int) string {
	switch n.Kind {
	case Array:
		return fmt.Sprintf("%d: [%d]", i, len(n.Child))
	case Object:
		return fmt.Sprintf("%d: {%d}", i, len(n.Child))
	}
	return fmt.Sprintf("%d: %s", i, n.Text())
}

// Dot renders the arena as a Graphviz digraph. Nodes are named by arena index
// and edges are labeled with the child's key or position.
func (a *Arena) Dot() string {
	var buf bytes.Buffer
	buf.WriteString(dotHeader)
	for i := 0; i < a.Len(); i++ {
		n := &a.Nodes[i]
		style := ""
		if n.Kind.Container() {
			style = ` style="rounded,bold"`
		}
		fmt.Fprintf(&buf, "    n%d [label=%s%s];\n", i, strconv.Quote(n.label(i)), style)
		for j, c := range n.Child {
			edge := strconv.Itoa(j)
			if ch := &a.Nodes[c]; ch.Keyed {
				edge = ch.KeyText()
			}
			fmt.Fprintf(&buf, "    n%d -> n%d [label=%s];\n", i, c, strconv.Quote(edge))
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// SVG lays out Dot with graphviz and returns the rendered image.
func (a *Arena) SVG(ctx context.Context) ([]byte, error) {
	graph, err := graphviz.ParseBytes([]byte(a.Dot()))
	if err != nil {
		return nil, fmt.Errorf("kson: parse dot: %w", err)
	}
	defer graph.Close()

	g, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("kson: graphviz: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("kson: render svg: %w", err)
	}
	return buf.Bytes(), nil
}
