package breaker_test

import (
	"testing"

	"reflow/breaker"
	"reflow/fontsvc"
	"reflow/inline"
	"reflow/style"
)

func TestBreakParagraph_ProducesNonEmptyLines(t *testing.T) {
	fonts := fontsvc.NewReferenceService()
	st := style.Default(16, 19.2)
	b := breaker.NewBuilder(fonts, style.AlignJustify)

	stream := inline.Stream{Materials: []inline.Material{
		{Kind: inline.KindText, Text: "the quick brown fox jumps over the lazy dog again and again", Style: st},
	}}
	items := b.Build(stream)

	lines := breaker.BreakParagraph(items, 80, style.AlignJustify, nil, fonts)
	if len(lines) == 0 {
		t.Fatal("expected at least one line")
	}
	for _, l := range lines {
		if len(l.Items) == 0 {
			t.Error("expected every line to carry items")
		}
	}
}

func TestBreakParagraph_SingleOverfullWordCropsAndFits(t *testing.T) {
	fonts := fontsvc.NewReferenceService()
	st := style.Default(16, 19.2)
	b := breaker.NewBuilder(fonts, style.AlignLeft)

	stream := inline.Stream{Materials: []inline.Material{
		{Kind: inline.KindText, Text: "supercalifragilisticexpialidocious", Style: st},
	}}
	items := b.Build(stream)

	lines := breaker.BreakParagraph(items, 50, style.AlignLeft, nil, fonts)
	if len(lines) == 0 {
		t.Fatal("expected the crop-and-retry fallback to produce at least one line")
	}
}

func TestPlace_BoxesAdvanceMonotonically(t *testing.T) {
	fonts := fontsvc.NewReferenceService()
	st := style.Default(16, 19.2)
	b := breaker.NewBuilder(fonts, style.AlignLeft)

	stream := inline.Stream{Materials: []inline.Material{
		{Kind: inline.KindText, Text: "a b c", Style: st},
	}}
	items := b.Build(stream)
	lines := breaker.BreakParagraph(items, 500, style.AlignLeft, nil, fonts)
	if len(lines) == 0 {
		t.Fatal("expected a line")
	}
	placed := breaker.Place(lines[0], 0, 500)
	for i := 1; i < len(placed); i++ {
		if placed[i].X < placed[i-1].X {
			t.Errorf("expected monotonically advancing x, got %v then %v", placed[i-1].X, placed[i].X)
		}
	}
}
