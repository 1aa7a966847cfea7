package breaker

import (
	"reflow/fontsvc"
	"reflow/style"
)

// Line is one emitted line: its item range, its chosen breakpoint ratio,
// and whether the break that ended it was a rendered hyphenation point.
type Line struct {
	Items      []Item
	Ratio      float64
	Align      style.Align
	Hyphenated bool
	HyphenAt   int // text offset the rendered hyphen is annotated with
}

// BreakParagraph runs the full retry chain spec.md 4.3 describes: optimal
// fit, then (if a dictionary is available) a hyphenated optimal-fit retry,
// then standard fit, then crop-and-retry standard fit. It always returns a
// set of lines — the crop fallback guarantees feasibility.
func BreakParagraph(items []Item, lineWidth float64, align style.Align, dict Dictionary, fonts fontsvc.Service) []Line {
	if breaks, ok := OptimalFit(items, lineWidth, Tolerance); ok {
		return emitLines(items, breaks, align)
	}

	if dict != nil {
		h := NewHyphenator(dict)
		hyphenated := Hyphenate(items, h, fonts)
		if breaks, ok := OptimalFit(hyphenated, lineWidth, Tolerance); ok {
			return emitLines(hyphenated, breaks, align)
		}
		items = hyphenated
	}

	breaks := StandardFit(items, lineWidth)
	if !anyOverflow(items, breaks, lineWidth) {
		return emitLines(items, breaks, align)
	}

	cropped := CropOverflowingBoxes(items, lineWidth, fonts)
	breaks = StandardFit(cropped, lineWidth)
	return emitLines(cropped, breaks, align)
}

func anyOverflow(items []Item, breaks []Break, lineWidth float64) bool {
	for _, br := range breaks {
		var w float64
		for _, it := range items[br.Start:br.End] {
			switch it.Kind {
			case Box:
				w += it.Width
			case Glue:
				w += it.Width
			}
		}
		if w > lineWidth+1 {
			return true
		}
	}
	return false
}

func emitLines(items []Item, breaks []Break, align style.Align) []Line {
	lines := make([]Line, 0, len(breaks))
	for _, br := range breaks {
		lineItems := items[br.Start:br.End]
		l := Line{Items: lineItems, Ratio: br.Ratio, Align: align}
		if br.End > 0 && br.End <= len(items) {
			last := items[br.End-1]
			if last.Kind == Penalty && last.Flagged && last.PenaltyWidth > 0 {
				l.Hyphenated = true
				l.HyphenAt = lastTextOffset(lineItems)
			}
		}
		lines = append(lines, l)
	}
	return lines
}

func lastTextOffset(items []Item) int {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind == Box && items[i].Payload == TextElement {
			return items[i].Offset
		}
	}
	return 0
}

// PlacedBox is one box positioned at an absolute x, ready to become a draw
// command (package render maps it to the concrete Text/Image command).
type PlacedBox struct {
	Item Item
	X    float64
}

const epsilonCarry = 0.5

// Place computes each box's x origin along a line per spec.md 4.3: glues
// expand/contract by the line's ratio, widths round to int with an
// epsilon-carry so rounding error does not drift the line, and the start
// x accounts for alignment (startX for Left/Justify, a right-aligned
// offset for Right, a centered offset for Center).
func Place(line Line, startX, endX float64) []PlacedBox {
	bandWidth := endX - startX
	natural, stretch, shrink := naturalWidth(line.Items)

	x := startX
	if line.Align == style.AlignRight || line.Align == style.AlignCenter {
		// ragged lines (and the bracketed center glue) already encode their
		// own offset via negative-stretch glue; only pure natural width
		// needs a manual shift when the line under-fills the band and no
		// glue absorbed the difference (e.g., a single unbreakable box).
		if slack := bandWidth - natural; slack > 0 && stretch == 0 {
			if line.Align == style.AlignRight {
				x += slack
			} else {
				x += slack / 2
			}
		}
	}

	var carry float64
	var placed []PlacedBox
	for _, it := range line.Items {
		w := glueWidth(it, line.Ratio)
		rounded, newCarry := roundWithCarry(w, carry)
		carry = newCarry
		if it.Kind == Box {
			placed = append(placed, PlacedBox{Item: it, X: x})
		}
		x += rounded
	}
	_ = shrink
	return placed
}

func naturalWidth(items []Item) (width, stretch, shrink float64) {
	for _, it := range items {
		switch it.Kind {
		case Box:
			width += it.Width
		case Glue:
			width += it.Width
			stretch += it.Stretch
			shrink += it.Shrink
		case Penalty:
			width += it.PenaltyWidth
		}
	}
	return
}

func glueWidth(it Item, ratio float64) float64 {
	switch it.Kind {
	case Box:
		return it.Width
	case Penalty:
		return it.PenaltyWidth
	case Glue:
		if ratio >= 0 {
			return it.Width + ratio*it.Stretch
		}
		return it.Width + ratio*it.Shrink
	}
	return 0
}

func roundWithCarry(w, carry float64) (float64, float64) {
	total := w + carry
	rounded := float64(int(total + epsilonCarrySign(total)))
	return rounded, total - rounded
}

func epsilonCarrySign(v float64) float64 {
	if v < 0 {
		return -epsilonCarry
	}
	return epsilonCarry
}
