package doctree

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders the subtree as an indented outline. Intended for debugging
// and test assertions; the format is stable.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch n.Kind {
	case KindText:
		fmt.Fprintf(b, "text %q\n", n.Data)
	case KindElement:
		fmt.Fprintf(b, "element %s%s\n", n.Data, attrString(n.Attrs))
	case KindDocument:
		fmt.Fprintf(b, "document %s\n", n.Data)
	case KindRoot:
		b.WriteString("root\n")
	}
	for _, c := range n.children {
		c.dump(b, depth+1)
	}
}

func attrString(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%q", k, attrs[k])
	}
	return b.String()
}
