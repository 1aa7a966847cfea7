package breaker

import "reflow/style"

// FloatSide is which band edge a float attaches to.
type FloatSide int

const (
	FloatLeft FloatSide = iota
	FloatRight
)

// PlacedFloat is a float image already positioned on a page, per spec.md
// 4.3's per-page float list keyed by page index in the display list.
type PlacedFloat struct {
	Path     string
	Side     FloatSide
	X, Y     float64
	W, H     float64
	PageIdx  int
}

// PlaceFloat clamps a float's box to at most one third of the available
// line width and two thirds of the remaining vertical space, and positions
// it against the given side of the band at the current vertical cursor.
func PlaceFloat(st *style.StyleData, path string, bandWidth, remainingHeight, startX, endX, cursorY float64, pageIdx int) PlacedFloat {
	w := st.WidthPx
	if w <= 0 || w > bandWidth/3 {
		w = bandWidth / 3
	}
	h := st.HeightPx
	if h <= 0 || h > remainingHeight*2/3 {
		h = remainingHeight * 2 / 3
	}

	side := FloatLeft
	if st.Float == style.FloatRight {
		side = FloatRight
	}

	x := startX
	if side == FloatRight {
		x = endX - w
	}

	return PlacedFloat{Path: path, Side: side, X: x, Y: cursorY, W: w, H: h, PageIdx: pageIdx}
}

// Shape narrows [startX, endX) to the band available to text at height y,
// given the floats already placed on this page: the complement of every
// float whose vertical extent covers y.
func Shape(startX, endX, y float64, floats []PlacedFloat) (float64, float64) {
	for _, f := range floats {
		if y < f.Y || y >= f.Y+f.H {
			continue
		}
		if f.Side == FloatLeft {
			left := f.X + f.W
			if left > startX {
				startX = left
			}
		} else {
			right := f.X
			if right < endX {
				endX = right
			}
		}
	}
	return startX, endX
}
