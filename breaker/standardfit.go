package breaker

import (
	"reflow/fontsvc"
)

// StandardFit is the first-fit fallback: it greedily fills each line with
// items until the next legal break would overflow lineWidth, then breaks
// there, never reconsidering earlier choices. Grounded loosely on
// tinypdf's SplitText greedy line breaker, adapted from rune-width
// accumulation to the box/glue/penalty model.
func StandardFit(items []Item, lineWidth float64) []Break {
	var breaks []Break
	lineStart := 0
	var width float64
	lastBreak := -1

	isLegalBreak := func(i int) bool {
		it := items[i]
		if it.Kind == Penalty {
			return it.PenaltyValue < infinitePenalty
		}
		if it.Kind == Glue && i > 0 {
			return items[i-1].Kind == Box
		}
		return false
	}

	for i, it := range items {
		w := it.Width
		if it.Kind == Penalty {
			w = it.PenaltyWidth
		}

		if width+w > lineWidth && lastBreak >= lineStart {
			ratio := finalRatio(items, lineStart, lastBreak+1, lineWidth)
			breaks = append(breaks, Break{Start: lineStart, End: lastBreak + 1, Ratio: ratio})
			lineStart = lastBreak + 1
			width = sumWidth(items, lineStart, i+1)
			lastBreak = -1
		} else {
			width += w
		}

		if isLegalBreak(i) || i == len(items)-1 {
			lastBreak = i
		}
		if it.Kind == Penalty && it.PenaltyValue <= -infinitePenalty {
			ratio := finalRatio(items, lineStart, i+1, lineWidth)
			breaks = append(breaks, Break{Start: lineStart, End: i + 1, Ratio: ratio})
			lineStart = i + 1
			width = 0
			lastBreak = -1
		}
	}
	if lineStart < len(items) {
		ratio := finalRatio(items, lineStart, len(items), lineWidth)
		breaks = append(breaks, Break{Start: lineStart, End: len(items), Ratio: ratio})
	}
	return breaks
}

func sumWidth(items []Item, start, end int) float64 {
	var w float64
	for _, it := range items[start:end] {
		if it.Kind == Box {
			w += it.Width
		} else if it.Kind == Glue {
			w += it.Width
		}
	}
	return w
}

func finalRatio(items []Item, start, end int, lineWidth float64) float64 {
	var w, str, shr float64
	for _, it := range items[start:end] {
		switch it.Kind {
		case Box:
			w += it.Width
		case Glue:
			w += it.Width
			str += it.Stretch
			shr += it.Shrink
		case Penalty:
			w += it.PenaltyWidth
		}
	}
	return clampRatio(adjustmentRatio(lineWidth, w, str, shr))
}

// CropOverflowingBoxes rewrites every box wider than lineWidth to a cropped
// copy that fits, for the last-resort crop-and-retry fallback (spec.md
// 4.3). Image boxes are scaled down proportionally; text boxes have their
// shaped plan re-cropped via fontsvc.Plan.Crop.
func CropOverflowingBoxes(items []Item, lineWidth float64, fonts fontsvc.Service) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i, it := range out {
		if it.Kind != Box || it.Width <= lineWidth {
			continue
		}
		switch it.Payload {
		case ImageElement:
			out[i].Width = lineWidth
		case TextElement:
			req := fontsvc.ShapeRequest{Text: it.Text}
			if it.Style != nil {
				req.Kind = it.Style.FontKind
				req.Style = it.Style.FontStyle
				req.Weight = it.Style.FontWeight
				req.SizePx = it.Style.FontSizePx
				req.Features = it.Style.OpenTypeFeatures
			}
			plan, err := fonts.Shape(req)
			if err != nil {
				out[i].Width = lineWidth
				continue
			}
			cropped := plan.Crop(lineWidth)
			out[i].Width = cropped.Width
			out[i].Text = cropped.Text
		}
	}
	return out
}
