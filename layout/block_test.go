package layout_test

import (
	"testing"

	"reflow/css"
	"reflow/dom"
	"reflow/fontsvc"
	"reflow/layout"
	"reflow/style"
)

func newResolver() *layout.StyleResolver {
	return &layout.StyleResolver{
		Sheets: []css.LeveledSheet{layout.DefaultStylesheet(nil)},
		Ctx:    style.Context{DPI: 96, RootFontSizePx: 12, ParentWidthPx: 100},
	}
}

func bodyDoc(t *testing.T, xhtml string) *dom.Document {
	t.Helper()
	parsed, err := dom.Build([]byte(xhtml))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return dom.NewDocument(parsed.Root.Children[0])
}

// TestLayout_S1_SimpleParagraph mirrors spec scenario S1: a one-chunk book
// containing <p>Hello <b>World</b>.</p> at a 100px band, 12px font produces
// exactly one page with three Text commands whose concatenated text equals
// "Hello World." with strictly increasing offsets.
func TestLayout_S1_SimpleParagraph(t *testing.T) {
	doc := bodyDoc(t, `<body><p>Hello <b>World</b>.</p></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	w := layout.NewWalker(resolver, fonts, nil, "", 0, 100, 2000, style.Edges{}, nil)

	dl := w.Layout(doc)
	if len(dl.Pages) != 1 {
		t.Fatalf("expected exactly one page, got %d", len(dl.Pages))
	}

	var texts []string
	var offsets []int
	for _, c := range dl.Pages[0].Commands {
		if c.Kind == layout.DrawText {
			texts = append(texts, c.Text)
			offsets = append(offsets, c.Offset)
		}
	}
	if len(texts) != 3 {
		t.Fatalf("expected 3 Text commands, got %d: %+v", len(texts), texts)
	}
	joined := texts[0] + texts[1] + texts[2]
	if joined != "Hello World." {
		t.Errorf("expected concatenation 'Hello World.', got %q", joined)
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Errorf("expected strictly increasing offsets, got %v", offsets)
		}
	}
}

func TestLayout_PageOverflowPushesNewPage(t *testing.T) {
	var sb string
	for i := 0; i < 200; i++ {
		sb += "word "
	}
	doc := bodyDoc(t, `<body><p>`+sb+`</p></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	w := layout.NewWalker(resolver, fonts, nil, "", 0, 100, 60, style.Edges{}, nil)

	dl := w.Layout(doc)
	if len(dl.Pages) < 2 {
		t.Fatalf("expected paragraph overflow to produce multiple pages, got %d", len(dl.Pages))
	}
}

// TestLayout_ParentFirstChildMarginsCollapse covers invariant 8's parent/
// first-child rule: a div's own top margin must collapse (max, since both
// are positive) with its first in-flow child's top margin rather than sum.
func TestLayout_ParentFirstChildMarginsCollapse(t *testing.T) {
	doc := bodyDoc(t, `<body><div id="outer"><p id="inner">Hello</p></div></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	parser := css.NewParser(nil)
	resolver.Sheets = append(resolver.Sheets, css.LeveledSheet{
		Sheet: parser.Parse([]byte(`#outer { margin-top: 20px; } #inner { margin-top: 10px; }`)),
		Level: css.LevelDocument,
	})

	w := layout.NewWalker(resolver, fonts, nil, "", 0, 200, 2000, style.Edges{}, nil)
	dl := w.Layout(doc)

	var textY float64
	for _, c := range dl.Pages[0].Commands {
		if c.Kind == layout.DrawText {
			textY = c.Rect.Y
			break
		}
	}
	if textY != 20 {
		t.Errorf("expected collapsed top margin of 20px, got %v", textY)
	}
}

// TestLayout_ParentLastChildMarginsCollapse covers invariant 8's parent/
// last-child rule: a last in-flow child's bottom margin must collapse with
// its parent's own bottom margin (surviving into the gap before the next
// sibling) rather than being discarded.
func TestLayout_ParentLastChildMarginsCollapse(t *testing.T) {
	doc := bodyDoc(t, `<body><div id="outer"><p id="inner">One</p></div><p id="next">Two</p></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	parser := css.NewParser(nil)
	resolver.Sheets = append(resolver.Sheets, css.LeveledSheet{
		Sheet: parser.Parse([]byte(`#outer { margin-bottom: 5px; } #inner { margin-bottom: 30px; } #next { margin-top: 0px; }`)),
		Level: css.LevelDocument,
	})

	w := layout.NewWalker(resolver, fonts, nil, "", 0, 200, 2000, style.Edges{}, nil)
	dl := w.Layout(doc)

	var ys []float64
	for _, c := range dl.Pages[0].Commands {
		if c.Kind == layout.DrawText {
			ys = append(ys, c.Rect.Y)
		}
	}
	if len(ys) != 2 {
		t.Fatalf("expected 2 Text commands, got %d: %+v", len(ys), ys)
	}
	// "One" starts at y=0; "Two" must start at least 30px later (the last
	// child's own bottom margin, not the 5px the parent alone declares).
	if ys[1] < ys[0]+30 {
		t.Errorf("expected last child's bottom margin (30px) to survive, got gap %v", ys[1]-ys[0])
	}
}

func TestLayout_EmptyChunkProducesSentinelPage(t *testing.T) {
	doc := bodyDoc(t, `<body></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	w := layout.NewWalker(resolver, fonts, nil, "", 500, 100, 200, style.Edges{}, nil)

	dl := w.Layout(doc)
	if len(dl.Pages) != 1 {
		t.Fatalf("expected a single sentinel page, got %d", len(dl.Pages))
	}
	if len(dl.Pages[0].Commands) != 1 || dl.Pages[0].Commands[0].Kind != layout.DrawMarker {
		t.Errorf("expected a single Marker command, got %+v", dl.Pages[0].Commands)
	}
	if dl.Pages[0].Commands[0].Offset != 500 {
		t.Errorf("expected sentinel offset to be the chunk's global offset base, got %d", dl.Pages[0].Commands[0].Offset)
	}
}

