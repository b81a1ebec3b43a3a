// Package doctree defines the document tree shared by every pipeline stage.
//
// A tree is rooted at a single Root node whose direct children are Document
// nodes, one per loaded unit. Documents own arbitrary subtrees of Element
// nodes with Text leaves. Loaders populate Documents, preprocessors mutate
// the tree in place, and renderers consume the finished tree. The tree is
// acyclic and rooted at all times; traversal order is the order children
// appear in each node's child list (document order).
//
// The package assumes single-goroutine, stage-sequential access. It performs
// no locking.
package doctree

// Kind identifies the role of a node in the tree.
type Kind int

const (
	// KindRoot is the single top-level container for one pipeline run.
	KindRoot Kind = iota
	// KindDocument represents one loaded unit (e.g. one module's docs).
	KindDocument
	// KindElement is a generic interior node tagged by Data.
	KindElement
	// KindText is a leaf carrying a raw string payload in Data.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Element tags shared between loaders, preprocessors and renderers. Plugins
// may introduce their own tags; renderers reject tags they do not understand.
const (
	// ElemPackage groups the documentation of one package.
	// Attrs: "name", "import".
	ElemPackage = "package"
	// ElemSection documents one symbol.
	// Attrs: "kind" (func|type|const|var), "name", "signature".
	ElemSection = "section"
	// ElemLink is an inline link whose children form the label.
	// Attrs: "href".
	ElemLink = "link"
)

// Node is a single element of the document tree. Kind determines how Data is
// interpreted: a Document's name, an Element's tag, or a Text payload. Attrs
// is nil until first written.
type Node struct {
	Kind  Kind
	Data  string
	Attrs map[string]string

	parent   *Node
	children []*Node
}

// NewRoot creates an empty Root node.
func NewRoot() *Node {
	return &Node{Kind: KindRoot}
}

// NewDocument creates an empty Document node with the given name.
func NewDocument(name string) *Node {
	return &Node{Kind: KindDocument, Data: name}
}

// NewElement creates an Element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{Kind: KindElement, Data: tag}
}

// NewText creates a Text leaf holding s.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Data: s}
}

// SetAttr sets a single attribute, allocating the map on first use.
func (n *Node) SetAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Attr returns the named attribute or "" when unset.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// Parent returns the owning parent, or nil for a detached node or the Root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the live child list in document order. Callers that
// mutate the tree while iterating must iterate over their own copy.
func (n *Node) Children() []*Node {
	return n.children
}

// contains reports whether c is n or a descendant of n.
func (n *Node) contains(c *Node) bool {
	for ; c != nil; c = c.parent {
		if c == n {
			return true
		}
	}
	return false
}

// AppendChild adds c as the last child of n. If c is currently attached
// elsewhere it is detached first. Attaching a node to itself or to one of
// its own descendants panics, since that would break the acyclic invariant.
func (n *Node) AppendChild(c *Node) {
	if c.contains(n) {
		panic("doctree: AppendChild would create a cycle")
	}
	c.Detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertBefore inserts c as a child of n directly before ref. A nil ref
// appends. Panics if ref is not a child of n or if the insert would create
// a cycle.
func (n *Node) InsertBefore(c, ref *Node) {
	if ref == nil {
		n.AppendChild(c)
		return
	}
	if ref.parent != n {
		panic("doctree: InsertBefore reference is not a child of this node")
	}
	if c.contains(n) {
		panic("doctree: InsertBefore would create a cycle")
	}
	c.Detach()
	for i, ch := range n.children {
		if ch == ref {
			c.parent = n
			n.children = append(n.children[:i], append([]*Node{c}, n.children[i:]...)...)
			return
		}
	}
}

// RemoveChild detaches c from n. Panics if c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c.parent != n {
		panic("doctree: RemoveChild called for a non-child node")
	}
	c.Detach()
}

// Detach removes n from its parent's child list. Detaching an unattached
// node is a no-op. The detached subtree stays intact and can be reattached.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, ch := range p.children {
		if ch == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// ReplaceWith replaces n in its parent's child list with the given nodes,
// preserving position. Panics if n is detached. n itself ends up detached.
func (n *Node) ReplaceWith(nodes ...*Node) {
	p := n.parent
	if p == nil {
		panic("doctree: ReplaceWith called on a detached node")
	}
	idx := -1
	for i, ch := range p.children {
		if ch == n {
			idx = i
			break
		}
	}
	n.parent = nil
	rest := append([]*Node(nil), p.children[idx+1:]...)
	p.children = p.children[:idx]
	for _, nn := range nodes {
		nn.Detach()
		nn.parent = p
		p.children = append(p.children, nn)
	}
	p.children = append(p.children, rest...)
}

// Walk visits n and its descendants depth-first in document order. The
// callback returns false to skip the current node's children. Walk iterates
// the live child lists; callers mutating structure during the walk get the
// usual caveats.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Documents returns the direct Document children of n in document order.
// Meaningful on a Root node.
func (n *Node) Documents() []*Node {
	var docs []*Node
	for _, c := range n.children {
		if c.Kind == KindDocument {
			docs = append(docs, c)
		}
	}
	return docs
}

// DocumentByName returns the direct Document child with the given name, or
// nil when absent.
func (n *Node) DocumentByName(name string) *Node {
	for _, c := range n.children {
		if c.Kind == KindDocument && c.Data == name {
			return c
		}
	}
	return nil
}
