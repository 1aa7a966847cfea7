package inline_test

import (
	"testing"

	"reflow/dom"
	"reflow/inline"
	"reflow/style"
)

func resolveInherit(n *dom.Node, ctx *style.Element, parent *style.StyleData) *style.StyleData {
	child := parent.Clone()
	if n.Name == "br" {
		// no-op, br carries no meaningful style
	}
	return child
}

func TestGather_TextAndBold(t *testing.T) {
	doc, err := dom.Build([]byte(`<p>Hello <b>World</b>.</p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	g := inline.NewGatherer(resolveInherit, "OEBPS", nil)
	root := style.Default(16, 19.2)
	ctx := &style.Element{Node: p}
	stream := g.Gather(p, ctx, root)

	var texts []string
	for _, m := range stream.Materials {
		if m.Kind == inline.KindText {
			texts = append(texts, m.Text)
		}
	}
	if len(texts) != 3 {
		t.Fatalf("expected 3 text materials, got %d: %+v", len(texts), texts)
	}
	joined := texts[0] + texts[1] + texts[2]
	if joined != "Hello World." {
		t.Errorf("expected concatenation 'Hello World.', got %q", joined)
	}
}

func TestGather_DisplayNoneSkipped(t *testing.T) {
	doc, err := dom.Build([]byte(`<p>A<span class="hide">B</span>C</p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	resolve := func(n *dom.Node, ctx *style.Element, parent *style.StyleData) *style.StyleData {
		child := parent.Clone()
		if n.HasClass("hide") {
			child.Display = style.DisplayNone
		}
		return child
	}

	g := inline.NewGatherer(resolve, "", nil)
	stream := g.Gather(p, &style.Element{Node: p}, style.Default(16, 19.2))

	var joined string
	for _, m := range stream.Materials {
		if m.Kind == inline.KindText {
			joined += m.Text
		}
	}
	if joined != "AC" {
		t.Errorf("expected display:none subtree skipped, got %q", joined)
	}
}

func TestGather_BrEmitsLineBreak(t *testing.T) {
	doc, err := dom.Build([]byte(`<p>A<br/>B</p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	g := inline.NewGatherer(resolveInherit, "", nil)
	stream := g.Gather(p, &style.Element{Node: p}, style.Default(16, 19.2))

	var sawBreak bool
	for _, m := range stream.Materials {
		if m.Kind == inline.KindLineBreak {
			sawBreak = true
		}
	}
	if !sawBreak {
		t.Error("expected a LineBreak material for <br>")
	}
}

func TestGather_ImageResolvesRelativePath(t *testing.T) {
	doc, err := dom.Build([]byte(`<p><img src="../images/cover.png"/></p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	g := inline.NewGatherer(resolveInherit, "OEBPS/text", nil)
	stream := g.Gather(p, &style.Element{Node: p}, style.Default(16, 19.2))

	var found bool
	for _, m := range stream.Materials {
		if m.Kind == inline.KindImage {
			found = true
			if m.Path != "OEBPS/images/cover.png" {
				t.Errorf("expected resolved path OEBPS/images/cover.png, got %q", m.Path)
			}
		}
	}
	if !found {
		t.Error("expected an ImageMaterial")
	}
}

func TestGather_AnchorStampsHyperlink(t *testing.T) {
	doc, err := dom.Build([]byte(`<p><a href="ch2.xhtml#s1">link</a></p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	g := inline.NewGatherer(resolveInherit, "", nil)
	stream := g.Gather(p, &style.Element{Node: p}, style.Default(16, 19.2))

	var found bool
	for _, m := range stream.Materials {
		if m.Kind == inline.KindText && m.Text == "link" {
			found = true
			if m.Style.HyperlinkURI != "ch2.xhtml#s1" {
				t.Errorf("expected hyperlink stamped on descendant style, got %q", m.Style.HyperlinkURI)
			}
		}
	}
	if !found {
		t.Error("expected text material 'link'")
	}
}

func TestGather_MarkersCollectIDs(t *testing.T) {
	doc, err := dom.Build([]byte(`<p>A<span id="mark1">B</span>C</p>`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := doc.Root.Children[0]

	g := inline.NewGatherer(resolveInherit, "", nil)
	stream := g.Gather(p, &style.Element{Node: p}, style.Default(16, 19.2))

	if len(stream.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(stream.Markers))
	}
}
