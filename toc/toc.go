// Package toc builds a table-of-contents tree from an NCX-style document
// and answers "which chapter owns this page" queries, per spec.md 4.6 /
// C8. It uses beevik/etree (the teacher's XML library) since, unlike dom,
// it has no need for byte offsets into the NCX itself: only the content
// targets' resolved offsets matter, and those come from package nav.
package toc

import (
	"strings"

	"github.com/beevik/etree"
)

// Entry is one navPoint: its label, the href it targets (resolved to a
// global offset lazily by the caller via nav.Navigator), a preorder index,
// and its children.
type Entry struct {
	Title    string
	Uri      string
	Offset   int // resolved global offset; set by Resolve
	Index    int // preorder index across the whole tree
	Children []*Entry
}

// Tree is the parsed TOC plus its flattened preorder listing, used for
// chapter()/chapter_relative() lookups.
type Tree struct {
	Roots []*Entry
	flat  []*Entry // preorder
}

// Parse builds a Tree from an NCX document's bytes. Malformed or missing
// navPoint/navLabel/content structure is tolerated: a navPoint lacking a
// label or content src is simply skipped.
func Parse(data []byte) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	navMap := doc.FindElement("//navMap")
	if navMap == nil {
		return &Tree{}, nil
	}
	t := &Tree{}
	for _, el := range navMap.ChildElements() {
		if localName(el.Tag) != "navPoint" {
			continue
		}
		if e := parseNavPoint(el); e != nil {
			t.Roots = append(t.Roots, e)
		}
	}
	t.reindex()
	return t, nil
}

func parseNavPoint(el *etree.Element) *Entry {
	e := &Entry{}
	for _, c := range el.ChildElements() {
		switch localName(c.Tag) {
		case "navLabel":
			if textEl := c.FindElement("text"); textEl != nil {
				e.Title = strings.TrimSpace(textEl.Text())
			}
		case "content":
			e.Uri = c.SelectAttrValue("src", "")
		case "navPoint":
			if child := parseNavPoint(c); child != nil {
				e.Children = append(e.Children, child)
			}
		}
	}
	if e.Title == "" && e.Uri == "" {
		return nil
	}
	return e
}

func localName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func (t *Tree) reindex() {
	t.flat = nil
	idx := 0
	var walk func(e *Entry)
	walk = func(e *Entry) {
		e.Index = idx
		idx++
		t.flat = append(t.flat, e)
		for _, c := range e.Children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
}

// OffsetResolver resolves a TOC entry's href (path#fragment) to a global
// offset; engines wire this to nav.Navigator.Resolve(nav.AtUri(...)).
type OffsetResolver func(uri string) (int, bool)

// ResolveOffsets walks the tree once, filling in Offset for every entry
// whose Uri resolves. Entries that fail to resolve keep Offset 0 and are
// excluded from chapter()/chapter_relative() consideration.
func (t *Tree) ResolveOffsets(resolve OffsetResolver) {
	for _, e := range t.flat {
		if e.Uri == "" {
			continue
		}
		if off, ok := resolve(e.Uri); ok {
			e.Offset = off
		}
	}
}

// PageSpan is the [start, end) global-offset range of the page currently
// being viewed, used to decide whether a TOC entry's offset falls "within"
// or "outside" it.
type PageSpan struct {
	Start, End int
}

func (s PageSpan) contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Chapter picks the entry that owns the page starting at span.Start: the
// entry with the greatest offset <= span.Start, per spec.md 4.6.
func (t *Tree) Chapter(span PageSpan) (*Entry, bool) {
	var best *Entry
	for _, e := range t.flat {
		if e.Uri == "" {
			continue
		}
		if e.Offset > span.Start {
			continue
		}
		if best == nil || e.Offset > best.Offset {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Direction for ChapterRelative.
type Direction int

const (
	DirForward Direction = iota
	DirBackward
)

// ChapterRelative walks the tree preorder (DirForward) or reverse-preorder
// (DirBackward) from the current chapter, returning the next entry whose
// offset lies outside span.
func (t *Tree) ChapterRelative(span PageSpan, dir Direction) (*Entry, bool) {
	cur, ok := t.Chapter(span)
	if !ok {
		return nil, false
	}
	if dir == DirForward {
		for i := cur.Index + 1; i < len(t.flat); i++ {
			e := t.flat[i]
			if e.Uri != "" && !span.contains(e.Offset) {
				return e, true
			}
		}
		return nil, false
	}
	for i := cur.Index - 1; i >= 0; i-- {
		e := t.flat[i]
		if e.Uri != "" && !span.contains(e.Offset) {
			return e, true
		}
	}
	return nil, false
}
