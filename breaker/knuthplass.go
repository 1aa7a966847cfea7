package breaker

import "math"

// Tolerance is the default adjustment-ratio tolerance spec.md 6 names for
// both optimal-fit and standard-fit (stretch tolerance 1.26).
const Tolerance = 1.26

// Break describes one chosen line: the half-open item range [Start, End)
// and the adjustment ratio to apply when placing its glues.
type Break struct {
	Start, End int
	Ratio      float64
}

// feasiblePoint is an active breakpoint candidate in the Knuth-Plass graph.
type feasiblePoint struct {
	pos        int
	line       int
	totalW     float64
	totalStr   float64
	totalShr   float64
	demerits   float64
	prev       *feasiblePoint
	ratio      float64
}

// OptimalFit runs Knuth-Plass total-fit line breaking over items against a
// fixed lineWidth, at the given tolerance. It returns (breaks, true) on a
// feasible solution, or (nil, false) if no sequence of breakpoints keeps
// every line's adjustment ratio within tolerance.
func OptimalFit(items []Item, lineWidth float64, tolerance float64) ([]Break, bool) {
	if len(items) == 0 {
		return nil, true
	}

	active := []*feasiblePoint{{pos: -1, line: 0}}

	// sums[i] = running total width/stretch/shrink of items[0:i].
	widthSum := make([]float64, len(items)+1)
	stretchSum := make([]float64, len(items)+1)
	shrinkSum := make([]float64, len(items)+1)
	for i, it := range items {
		widthSum[i+1] = widthSum[i]
		stretchSum[i+1] = stretchSum[i]
		shrinkSum[i+1] = shrinkSum[i]
		switch it.Kind {
		case Box:
			widthSum[i+1] += it.Width
		case Glue:
			widthSum[i+1] += it.Width
			stretchSum[i+1] += it.Stretch
			shrinkSum[i+1] += it.Shrink
		}
	}

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

	breakWidth := func(i int) float64 {
		if items[i].Kind == Penalty {
			return items[i].PenaltyWidth
		}
		return 0
	}
	breakPenalty := func(i int) int {
		if items[i].Kind == Penalty {
			return items[i].PenaltyValue
		}
		return 0
	}

	for i := range items {
		if i == len(items)-1 {
			// always allow a break after the final item (end of paragraph)
		} else if !isLegalBreak(i) {
			continue
		}

		var next []*feasiblePoint
		for _, a := range active {
			// A glue taken as the break is not part of the line it ends.
			end := i + 1
			if items[i].Kind == Glue {
				end = i
			}
			w := widthSum[end] - widthSum[a.pos+1] + breakWidth(i)
			str := stretchSum[end] - stretchSum[a.pos+1]
			shr := shrinkSum[end] - shrinkSum[a.pos+1]

			ratio := adjustmentRatio(lineWidth, w, str, shr)
			if ratio < -1 {
				// overfull beyond shrink capacity: this point cannot reach i
				continue
			}
			if ratio > tolerance && i != len(items)-1 {
				// too loose for a non-final line; not a feasible breakpoint here
				continue
			}

			demerit := demerits(ratio, breakPenalty(i))
			total := a.demerits + demerit
			next = append(next, &feasiblePoint{
				pos: i, line: a.line + 1,
				totalW: w, totalStr: str, totalShr: shr,
				demerits: total, prev: a, ratio: clampRatio(ratio),
			})
		}

		if len(next) == 0 {
			continue
		}
		best := next[0]
		for _, c := range next[1:] {
			if c.demerits < best.demerits {
				best = c
			}
		}
		active = append(active, best)
	}

	if len(active) <= 1 {
		return nil, false
	}
	last := active[len(active)-1]
	if last.pos != len(items)-1 {
		return nil, false
	}

	var breaks []Break
	for p := last; p != nil && p.prev != nil; p = p.prev {
		breaks = append([]Break{{Start: p.prev.pos + 1, End: p.pos + 1, Ratio: p.ratio}}, breaks...)
	}
	return breaks, true
}

func adjustmentRatio(target, width, stretch, shrink float64) float64 {
	diff := target - width
	if diff > 0 {
		if stretch <= 0 {
			return math.Inf(1)
		}
		return diff / stretch
	}
	if diff < 0 {
		if shrink <= 0 {
			return math.Inf(-1)
		}
		return diff / shrink
	}
	return 0
}

func clampRatio(r float64) float64 {
	if math.IsInf(r, 1) {
		return 1
	}
	if math.IsInf(r, -1) {
		return -1
	}
	return r
}

func demerits(ratio float64, penalty int) float64 {
	badness := 100 * math.Pow(math.Abs(ratio), 3)
	d := math.Pow(1+badness, 2)
	if penalty > 0 {
		d += float64(penalty * penalty)
	} else if penalty < 0 && penalty > -infinitePenalty {
		d -= float64(penalty * penalty)
	}
	return d
}
