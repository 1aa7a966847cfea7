package breaker

import (
	"reflow/fontsvc"
	"reflow/style"
)

// HyphenPenalty is the penalty value spec.md 6's configuration constants
// assign to every legal hyphenation point.
const HyphenPenalty = 50

// Hyphenate rewrites every text Box item in items into a
// box-penalty-box...-box sequence at each of its word's legal hyphenation
// points, per spec.md 4.3. Non-text boxes, glues and penalties pass
// through unchanged. Used as the optimal-fit retry step when the first
// pass without hyphenation finds no feasible solution.
func Hyphenate(items []Item, h *Hyphenator, fonts fontsvc.Service) []Item {
	if h == nil {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Kind != Box || it.Payload != TextElement {
			out = append(out, it)
			continue
		}
		out = append(out, hyphenateBox(it, h, fonts)...)
	}
	return out
}

func hyphenateBox(it Item, h *Hyphenator, fonts fontsvc.Service) []Item {
	points := h.Points(it.Text)
	if len(points) == 0 {
		return []Item{it}
	}

	hyphenWidth := shapedWidth(fonts, "-", it.Style)

	var out []Item
	prev := 0
	for _, p := range points {
		if p <= prev || p >= len(it.Text) {
			continue
		}
		segment := it.Text[prev:p]
		out = append(out, BoxItem(shapedWidth(fonts, segment, it.Style), segment, it.Offset, it.Style))
		out = append(out, PenaltyItem(HyphenPenalty, hyphenWidth, true))
		prev = p
	}
	tail := it.Text[prev:]
	out = append(out, BoxItem(shapedWidth(fonts, tail, it.Style), tail, it.Offset, it.Style))
	return out
}

func shapedWidth(fonts fontsvc.Service, text string, st *style.StyleData) float64 {
	req := fontsvc.ShapeRequest{Text: text}
	if st != nil {
		req.Kind = st.FontKind
		req.Style = st.FontStyle
		req.Weight = st.FontWeight
		req.SizePx = st.FontSizePx
		req.Features = st.OpenTypeFeatures
	}
	plan, err := fonts.Shape(req)
	if err != nil {
		return 0
	}
	return plan.Width
}
