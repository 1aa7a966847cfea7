// Package dom models the tree of element, text and whitespace nodes that a
// spine chunk parses into. Every node carries the byte offset of its start
// in the owning chunk; offsets are the canonical position identifiers the
// rest of the core exchanges, once package nav adds the chunk's start (see
// nav.Spine.ChunkStart).
package dom

// Kind discriminates the three node variants FictionBook-style engines never
// needed but reflowable HTML layout does: element, text run, and
// insignificant whitespace (kept distinct so C4 can collapse it without
// losing the original offset).
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindWhitespace
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Attr is one name/value pair. Attributes are kept in an ordered slice
// rather than a map: cascade matching and generated-content hooks both care
// about "the id attribute" specifically, not about stable iteration order
// over all of them, but preserving source order keeps debugging output and
// round-tripping predictable.
type Attr struct {
	Name  string
	Value string
}

// Node is the tagged-variant element/text/whitespace union. Exactly the
// fields relevant to Kind are populated; this mirrors how fb2.FlowItem
// tags a Kind alongside a handful of optional payload fields rather than
// declaring a class hierarchy per variant (see fb2/types.go).
type Node struct {
	Kind   Kind
	Offset int // byte offset of this node's start, local to the owning chunk

	// Element fields.
	Name     string
	Attrs    []Attr
	Children []*Node

	// Text / Whitespace fields.
	Text string
}

// Attr returns the value of the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the node's id attribute, or "" if absent.
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

// HasClass reports whether the node's class attribute contains cls as one
// of its space-separated tokens.
func (n *Node) HasClass(cls string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, tok := range splitFields(v) {
		if tok == cls {
			return true
		}
	}
	return false
}

func splitFields(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// IsWhitespaceOnly reports whether a Text/Whitespace node holds only
// whitespace runes.
func (n *Node) IsWhitespaceOnly() bool {
	if n.Kind == KindWhitespace {
		return true
	}
	if n.Kind != KindText {
		return false
	}
	for _, r := range n.Text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}

// Document wraps a parsed chunk's root node together with a memoized id
// index, built once on construction (C1 requires node lookups by id to be
// supported; C4 and C8 both need it).
type Document struct {
	Root *Node
	ids  map[string]*Node
}

// NewDocument builds a Document and indexes every element with an id
// attribute in a single preorder pass.
func NewDocument(root *Node) *Document {
	d := &Document{Root: root, ids: make(map[string]*Node)}
	d.indexIDs(root)
	return d
}

func (d *Document) indexIDs(n *Node) {
	if n == nil {
		return
	}
	if n.Kind == KindElement {
		if id := n.ID(); id != "" {
			if _, exists := d.ids[id]; !exists {
				d.ids[id] = n
			}
		}
		for _, c := range n.Children {
			d.indexIDs(c)
		}
	}
}

// ByID returns the element carrying the given id attribute, if any.
func (d *Document) ByID(id string) (*Node, bool) {
	n, ok := d.ids[id]
	return n, ok
}
