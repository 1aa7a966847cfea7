package layout_test

import (
	"strings"
	"testing"

	"reflow/fontsvc"
	"reflow/layout"
	"reflow/style"
)

// TestLayout_Table_TwoColumnsBothRender exercises the probe/distribute/emit
// pipeline end to end: a two-column, two-row table must place text from
// every cell, left column before right column on each row.
func TestLayout_Table_TwoColumnsBothRender(t *testing.T) {
	doc := bodyDoc(t, `<body><table>
		<tr><td>Left one</td><td>Right one</td></tr>
		<tr><td>Left two</td><td>Right two</td></tr>
	</table></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	w := layout.NewWalker(resolver, fonts, nil, "", 0, 300, 4000, style.Edges{}, nil)

	dl := w.Layout(doc)
	var texts []string
	var xs []float64
	for _, p := range dl.Pages {
		for _, c := range p.Commands {
			if c.Kind == layout.DrawText {
				texts = append(texts, c.Text)
				xs = append(xs, c.Rect.X)
			}
		}
	}
	joined := strings.Join(texts, "")
	for _, want := range []string{"Left", "Right", "one", "two"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected rendered text to contain %q, got %q", want, joined)
		}
	}

	var sawLeftColumn, sawRightColumn bool
	for _, x := range xs {
		if x < 150 {
			sawLeftColumn = true
		} else {
			sawRightColumn = true
		}
	}
	if !sawLeftColumn || !sawRightColumn {
		t.Errorf("expected text in both the left and right column, x positions: %v", xs)
	}
}

// TestLayout_Table_RowOverflowAdvancesPage exercises emitRow's page
// tracking: a row whose first cell overflows onto a new page must carry
// that page advance forward rather than a same-page sibling cell's larger
// (but stale) cursor position silently winning instead.
func TestLayout_Table_RowOverflowAdvancesPage(t *testing.T) {
	var long string
	for i := 0; i < 400; i++ {
		long += "word "
	}
	doc := bodyDoc(t, `<body><table><tr><td>`+long+`</td><td>short</td></tr></table><p id="after">After</p></body>`)

	fonts := fontsvc.NewReferenceService()
	resolver := newResolver()
	w := layout.NewWalker(resolver, fonts, nil, "", 0, 300, 200, style.Edges{}, nil)

	dl := w.Layout(doc)
	if len(dl.Pages) < 2 {
		t.Fatalf("expected the overflowing cell to push the table onto multiple pages, got %d", len(dl.Pages))
	}

	lastPage := dl.Pages[len(dl.Pages)-1]
	found := false
	for _, c := range lastPage.Commands {
		if c.Kind == layout.DrawText && c.Text == "After" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the paragraph following the table to render after the table's final page, got %+v", lastPage.Commands)
	}
}
