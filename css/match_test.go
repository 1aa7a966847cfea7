package css_test

import (
	"go.uber.org/zap"
	"testing"

	"reflow/css"
)

// fakeElement is a minimal ElementContext for exercising the matcher without
// depending on package dom.
type fakeElement struct {
	typ     string
	id      string
	classes []string
	attrs   []string
	parent  *fakeElement
	index   int
	count   int
	prev    *fakeElement
}

func (f *fakeElement) TypeName() string  { return f.typ }
func (f *fakeElement) ElementID() string { return f.id }
func (f *fakeElement) HasClass(cls string) bool {
	for _, c := range f.classes {
		if c == cls {
			return true
		}
	}
	return false
}
func (f *fakeElement) HasAttr(name string) bool {
	for _, a := range f.attrs {
		if a == name {
			return true
		}
	}
	return false
}
func (f *fakeElement) Parent() (css.ElementContext, bool) {
	if f.parent == nil {
		return nil, false
	}
	return f.parent, true
}
func (f *fakeElement) PrecedingSibling() (css.ElementContext, bool) {
	if f.prev == nil {
		return nil, false
	}
	return f.prev, true
}
func (f *fakeElement) ChildIndex() int  { return f.index }
func (f *fakeElement) SiblingCount() int { return f.count }

func TestMatches_TypeClassID(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`p.note#warn { color: red; }`))
	rule := sheet.Rules[0]

	el := &fakeElement{typ: "p", id: "warn", classes: []string{"note"}, index: 1, count: 1}
	if !rule.Selector.Matches(el) {
		t.Fatal("expected match")
	}
	el2 := &fakeElement{typ: "p", id: "other", classes: []string{"note"}, index: 1, count: 1}
	if rule.Selector.Matches(el2) {
		t.Fatal("expected no match on different id")
	}
}

func TestMatches_Descendant(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`div code { font-family: monospace; }`))
	rule := sheet.Rules[0]

	grandparent := &fakeElement{typ: "div", index: 1, count: 1}
	parent := &fakeElement{typ: "span", parent: grandparent, index: 1, count: 1}
	el := &fakeElement{typ: "code", parent: parent, index: 1, count: 1}
	if !rule.Selector.Matches(el) {
		t.Fatal("expected descendant match through intermediate span")
	}

	noAncestor := &fakeElement{typ: "code", index: 1, count: 1}
	if rule.Selector.Matches(noAncestor) {
		t.Fatal("expected no match without div ancestor")
	}
}

func TestMatches_Child(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`div > p { margin: 0; }`))
	rule := sheet.Rules[0]

	div := &fakeElement{typ: "div", index: 1, count: 1}
	directChild := &fakeElement{typ: "p", parent: div, index: 1, count: 1}
	if !rule.Selector.Matches(directChild) {
		t.Fatal("expected direct child match")
	}

	span := &fakeElement{typ: "span", parent: div, index: 1, count: 1}
	grandchild := &fakeElement{typ: "p", parent: span, index: 1, count: 1}
	if rule.Selector.Matches(grandchild) {
		t.Fatal("expected no match for non-direct child")
	}
}

func TestMatches_NthChild(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`li:nth-child(2n+1) { color: red; }`))
	rule := sheet.Rules[0]

	odd := &fakeElement{typ: "li", index: 1, count: 4}
	even := &fakeElement{typ: "li", index: 2, count: 4}
	if !rule.Selector.Matches(odd) {
		t.Fatal("expected nth-child(2n+1) to match index 1")
	}
	if rule.Selector.Matches(even) {
		t.Fatal("expected nth-child(2n+1) to not match index 2")
	}
}

func TestResolve_CascadeOrigin(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	viewer := p.Parse([]byte(`p { color: black; }`))
	doc := p.Parse([]byte(`p { color: green; }`))

	el := &fakeElement{typ: "p", index: 1, count: 1}
	props := css.Resolve(el, []css.LeveledSheet{
		{Sheet: viewer, Level: css.LevelViewer},
		{Sheet: doc, Level: css.LevelDocument},
	})
	if props["color"].Keyword != "green" {
		t.Errorf("expected document stylesheet to win over viewer, got %+v", props["color"])
	}
}

func TestResolve_SpecificityTieBreak(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`
		p { color: black; }
		.note { color: blue; }
	`))

	el := &fakeElement{typ: "p", classes: []string{"note"}, index: 1, count: 1}
	props := css.Resolve(el, []css.LeveledSheet{{Sheet: sheet, Level: css.LevelDocument}})
	if props["color"].Keyword != "blue" {
		t.Errorf("expected class selector (higher specificity) to win, got %+v", props["color"])
	}
}

func TestResolve_SourceOrderTieBreak(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(`
		p { color: black; }
		p { color: red; }
	`))

	el := &fakeElement{typ: "p", index: 1, count: 1}
	props := css.Resolve(el, []css.LeveledSheet{{Sheet: sheet, Level: css.LevelDocument}})
	if props["color"].Keyword != "red" {
		t.Errorf("expected later rule to win on equal specificity, got %+v", props["color"])
	}
}

// TestResolve_SourceOrderTieBreak_AcrossSheets covers a document linking a
// shared stylesheet plus a per-chapter inline <style> override, the shape
// engine.documentSheets produces: one Parser instance, called once per
// <link>/<style>. A rule late in the first sheet must not outrank a
// same-specificity rule in a later sheet merely because each sheet's order
// count would otherwise restart at zero.
func TestResolve_SourceOrderTieBreak_AcrossSheets(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	linked := p.Parse([]byte(`
		p { color: black; }
		p { color: blue; }
	`))
	inline := p.Parse([]byte(`p { color: red; }`))

	el := &fakeElement{typ: "p", index: 1, count: 1}
	props := css.Resolve(el, []css.LeveledSheet{
		{Sheet: linked, Level: css.LevelDocument},
		{Sheet: inline, Level: css.LevelDocument},
	})
	if props["color"].Keyword != "red" {
		t.Errorf("expected the later sheet's rule to win on equal specificity, got %+v", props["color"])
	}
}
