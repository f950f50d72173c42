package dag

import (
	"fmt"
	"sort"
	"strings"
)

// Mermaid renders g as a Mermaid flowchart. Fan-out nodes are drawn with a
// dotted edge to their task; entry and exit nodes are connected to
// __start__ and __end__.
func Mermaid(g *Graph) (string, error) {
	if _, err := BuildLevels(g); err != nil {
		return "", err
	}

	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	hasIn := make(map[string]bool)
	hasOut := make(map[string]bool)
	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		hasOut[e.From] = true
		hasIn[e.To] = true
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("\t__start__([__start__])\n")
	for _, name := range names {
		if f, ok := Unwrap(g.Nodes[name]).(*Fanout); ok {
			fmt.Fprintf(&b, "\t%s{{%s}}\n", mermaidID(name), name)
			task := f.Task().Name()
			fmt.Fprintf(&b, "\t%s[[%s]]\n", mermaidID(name+"__task"), task)
			continue
		}
		fmt.Fprintf(&b, "\t%s[%s]\n", mermaidID(name), name)
	}
	b.WriteString("\t__end__([__end__])\n")

	for _, name := range names {
		if !hasIn[name] {
			fmt.Fprintf(&b, "\t__start__ --> %s\n", mermaidID(name))
		}
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "\t%s --> %s\n", mermaidID(e.From), mermaidID(e.To))
	}
	for _, name := range names {
		if _, ok := Unwrap(g.Nodes[name]).(*Fanout); ok {
			fmt.Fprintf(&b, "\t%s -. Send .-> %s\n", mermaidID(name), mermaidID(name+"__task"))
		}
		if !hasOut[name] {
			fmt.Fprintf(&b, "\t%s --> __end__\n", mermaidID(name))
		}
	}
	return b.String(), nil
}

// mermaidID makes a node name safe to use as a Mermaid identifier.
func mermaidID(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Unwrap strips decorators from node.
func Unwrap(node Node) Node {
	for {
		w, ok := node.(interface{ Unwrap() Node })
		if !ok {
			return node
		}
		node = w.Unwrap()
	}
}
