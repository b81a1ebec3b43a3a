package doctree

import "strings"

// CollapseText merges every maximal run of adjacent Text siblings under n
// (and recursively under its descendants) into a single Text node whose
// payload is the concatenation of the originals in document order. Text
// nodes whose payload ends up empty are dropped: they carry no content and
// only exist as leftovers of splitting. Text preprocessing may leave
// logically contiguous text fragmented across sibling nodes; after a
// collapse pass no renderer or later preprocessor needs to handle that
// fragmentation.
func (n *Node) CollapseText() {
	if len(n.children) == 0 {
		return
	}

	merged := make([]*Node, 0, len(n.children))
	var run []*Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		var b strings.Builder
		for _, t := range run {
			b.WriteString(t.Data)
		}
		head := run[0]
		head.Data = b.String()
		for _, t := range run[1:] {
			t.parent = nil
		}
		if head.Data == "" {
			head.parent = nil
		} else {
			merged = append(merged, head)
		}
		run = run[:0]
	}

	for _, c := range n.children {
		if c.Kind == KindText {
			run = append(run, c)
			continue
		}
		flush()
		merged = append(merged, c)
		c.CollapseText()
	}
	flush()

	n.children = merged
}
