package style

import (
	"reflow/css"
	"reflow/dom"
)

// Element adapts a dom.Node, plus the parent/sibling context the block
// walker threads through recursion, to css.ElementContext — so the cascade
// matcher in package css never needs to import package dom. Grounded on
// spec.md 9's design note: "pass parent and previous sibling as borrowed
// context, never store back-pointers in nodes."
type Element struct {
	Node   *dom.Node
	Up     *Element
	Before *Element // preceding element sibling, if any
	Index  int       // 1-based position among element siblings
	Count  int       // total element siblings
}

var _ css.ElementContext = (*Element)(nil)

func (e *Element) TypeName() string         { return e.Node.Name }
func (e *Element) ElementID() string        { return e.Node.ID() }
func (e *Element) HasClass(cls string) bool { return e.Node.HasClass(cls) }

func (e *Element) HasAttr(name string) bool {
	_, ok := e.Node.Attr(name)
	return ok
}

func (e *Element) Parent() (css.ElementContext, bool) {
	if e.Up == nil {
		return nil, false
	}
	return e.Up, true
}

func (e *Element) PrecedingSibling() (css.ElementContext, bool) {
	if e.Before == nil {
		return nil, false
	}
	return e.Before, true
}

func (e *Element) ChildIndex() int   { return e.Index }
func (e *Element) SiblingCount() int { return e.Count }

// ElementChildren returns the element (non-whitespace, non-text) children
// of n, wrapped as Elements linked to parent e with sibling indices filled
// in — the context the cascade matcher needs for :first-child/:last-child/
// :nth-child and the adjacent/general sibling combinators.
func ElementChildren(n *dom.Node, parent *Element) []*Element {
	var kids []*dom.Node
	for _, c := range n.Children {
		if c.Kind == dom.KindElement {
			kids = append(kids, c)
		}
	}
	out := make([]*Element, len(kids))
	var prev *Element
	for i, k := range kids {
		el := &Element{Node: k, Up: parent, Before: prev, Index: i + 1, Count: len(kids)}
		out[i] = el
		prev = el
	}
	return out
}
