package layout

import (
	"strconv"
	"strings"

	"reflow/breaker"
	"reflow/dom"
	"reflow/inline"
	"reflow/style"
)

// cellProbe holds one cell's intrinsic min/max width from the probe pass.
type cellProbe struct {
	node    *dom.Node
	el      *style.Element
	st      *style.StyleData
	colspan int
	min     float64
	max     float64
}

// layoutTable implements spec.md 4.4's two-pass HTML3 column algorithm.
func (w *Walker) layoutTable(n *dom.Node, parentEl *style.Element, tableStyle *style.StyleData) {
	rows := w.tableRows(n, parentEl, tableStyle)
	if len(rows) == 0 {
		return
	}

	numCols := 0
	for _, row := range rows {
		c := 0
		for _, cell := range row {
			c += cell.colspan
		}
		if c > numCols {
			numCols = c
		}
	}
	if numCols == 0 {
		return
	}

	colMin := make([]float64, numCols)
	colMax := make([]float64, numCols)
	for _, row := range rows {
		col := 0
		for _, cell := range row {
			if cell.colspan == 1 && col < numCols {
				if cell.min > colMin[col] {
					colMin[col] = cell.min
				}
				if cell.max > colMax[col] {
					colMax[col] = cell.max
				}
			}
			col += cell.colspan
		}
	}

	bandWidth := w.endX - w.startX
	colWidth := distributeColumns(colMin, colMax, bandWidth)

	if tableStyle.Display == style.DisplayInlineTable && tableStyle.TextAlign == style.AlignCenter {
		var total float64
		for _, cw := range colWidth {
			total += cw
		}
		if slack := bandWidth - total; slack > 0 {
			w.startX += slack / 2
			w.endX -= slack / 2
			defer func() { w.startX -= slack / 2; w.endX += slack / 2 }()
		}
	}

	for _, row := range rows {
		w.emitRow(row, colWidth)
	}
}

// tableRows collects each <tr>'s cells (<td>/<th>), resolving styles and
// running the probe pass (isolated min/max width measurement) eagerly.
func (w *Walker) tableRows(n *dom.Node, parentEl *style.Element, parentStyle *style.StyleData) [][]cellProbe {
	var rows [][]cellProbe
	w.collectRows(n, parentEl, parentStyle, &rows)
	return rows
}

func (w *Walker) collectRows(n *dom.Node, parentEl *style.Element, parentStyle *style.StyleData, rows *[][]cellProbe) {
	children := style.ElementChildren(n, parentEl)
	idx := 0
	for _, c := range n.Children {
		if c.Kind != dom.KindElement {
			continue
		}
		el := children[idx]
		idx++
		switch strings.ToLower(c.Name) {
		case "tr":
			st := w.Resolver.Resolve(el, parentStyle)
			*rows = append(*rows, w.probeRow(c, el, st))
		case "thead", "tbody", "tfoot":
			st := w.Resolver.Resolve(el, parentStyle)
			w.collectRows(c, el, st, rows)
		}
	}
}

func (w *Walker) probeRow(n *dom.Node, parentEl *style.Element, rowStyle *style.StyleData) []cellProbe {
	var cells []cellProbe
	children := style.ElementChildren(n, parentEl)
	idx := 0
	for _, c := range n.Children {
		if c.Kind != dom.KindElement {
			continue
		}
		el := children[idx]
		idx++
		name := strings.ToLower(c.Name)
		if name != "td" && name != "th" {
			continue
		}
		st := w.Resolver.Resolve(el, rowStyle)
		colspan := 1
		if v, ok := c.Attr("colspan"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				colspan = n
			}
		}
		min, max := w.probeCell(c, el, st)
		cells = append(cells, cellProbe{node: c, el: el, st: st, colspan: colspan, min: min, max: max})
	}
	return cells
}

// probeCell gathers a cell's inline material and measures it in isolation:
// min-width is the widest unbreakable run (adjacent boxes with no glue or
// forced break between them),
// max-width is the natural (unbroken) width of its content — both plus
// horizontal padding.
func (w *Walker) probeCell(n *dom.Node, el *style.Element, st *style.StyleData) (min, max float64) {
	g := inline.NewGatherer(w.Resolver.AsResolveFunc(), w.ChunkDir, w.Log)
	stream := g.Gather(n, el, st)
	flow, _ := splitFloats(stream.Materials)

	b := breaker.NewBuilder(w.Fonts, st.TextAlign)
	items := b.Build(inline.Stream{Materials: flow})

	var runWidth float64
	for _, it := range items {
		switch it.Kind {
		case breaker.Box:
			runWidth += it.Width
			max += it.Width
			if runWidth > min {
				min = runWidth
			}
		case breaker.Glue:
			max += it.Width
			runWidth = 0
		case breaker.Penalty:
			if it.PenaltyValue <= -10000 {
				runWidth = 0
			}
		}
	}
	padding := st.Padding.Left + st.Padding.Right
	return min + padding, max + padding
}

// distributeColumns applies spec.md 4.4's distribution formula.
func distributeColumns(colMin, colMax []float64, bandWidth float64) []float64 {
	var sumMin, sumMax float64
	for i := range colMin {
		sumMin += colMin[i]
		sumMax += colMax[i]
	}
	out := make([]float64, len(colMin))
	switch {
	case sumMin >= bandWidth:
		for i := range out {
			if sumMin > 0 {
				out[i] = bandWidth * colMin[i] / sumMin
			}
		}
	case sumMax <= bandWidth:
		// Natural widths leave the band under-filled; scale every column up
		// proportionally so the widths still sum exactly to the band width
		// (spec.md invariant 10), same as the sumMin >= bandWidth case.
		if sumMax > 0 {
			for i := range out {
				out[i] = bandWidth * colMax[i] / sumMax
			}
		} else if len(out) > 0 {
			each := bandWidth / float64(len(out))
			for i := range out {
				out[i] = each
			}
		}
	default:
		span := sumMax - sumMin
		for i := range out {
			if span > 0 {
				out[i] = colMin[i] + (colMax[i]-colMin[i])*(bandWidth-sumMin)/span
			} else {
				out[i] = colMin[i]
			}
		}
	}
	return out
}

// emitRow lays out one row's cells left-to-right at the chosen column
// widths, advancing the vertical cursor to the tallest cell's outgoing
// (page count, vertical cursor) state (spec.md 4.4's emission pass), not
// just its cursorY: a cell whose content overflows onto a new page must
// win over a sibling cell that stayed on the row's starting page, even if
// that sibling's cursorY is numerically larger.
func (w *Walker) emitRow(row []cellProbe, colWidth []float64) {
	rowTop := w.cursorY
	rowBottomPages := len(w.pages)
	rowBottom := rowTop
	x := w.startX
	col := 0

	savedStartX, savedEndX := w.startX, w.endX
	for _, cell := range row {
		var width float64
		for k := 0; k < cell.colspan && col+k < len(colWidth); k++ {
			width += colWidth[col+k]
		}
		col += cell.colspan

		w.startX = x
		w.endX = x + width
		w.cursorY = rowTop
		w.layoutParagraph(cell.node, cell.el, cell.st)
		if pages := len(w.pages); pages > rowBottomPages || (pages == rowBottomPages && w.cursorY > rowBottom) {
			rowBottomPages = pages
			rowBottom = w.cursorY
		}
		x += width
	}
	w.startX, w.endX = savedStartX, savedEndX
	w.cursorY = rowBottom
}
