// Package layout drives the recursive block walk spec.md 4.4 describes:
// margin collapsing, page-break handling, table column sizing, the
// vertical cursor, and float-aware paragraph placement via package
// breaker. It is the component that actually emits draw commands
// (spec.md 3's tagged-variant Text/Image/Marker) into pages.
//
// Grounded on the teacher having no block-flow layout of its own
// (FictionBook is rendered by an external reader, never paginated
// in-process). The walk is plain recursion (walkChildren/layoutBlock) that
// carries margin collapsing in Walker.pendingTop rather than in per-child
// loop-context flags, and the draw-command vocabulary is new but named
// exactly as spec.md 3 describes it.
package layout

import (
	"reflow/fontsvc"
	"reflow/style"
)

// DrawKind discriminates the draw-command tagged variant.
type DrawKind int

const (
	DrawText DrawKind = iota
	DrawImage
	DrawMarker
)

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Command is one entry of a page's draw-command list. Only the fields
// relevant to Kind are populated.
type Command struct {
	Kind   DrawKind
	Offset int // global-offset-space position this command originates from

	// Text fields. Plan is the already-shaped run: rendering never
	// re-shapes or re-accesses the DOM (spec.md 5's memory discipline).
	Text  string
	Style *style.StyleData
	Plan  fontsvc.Plan

	// Image fields.
	Path  string
	Scale float64

	// Text/Image shared fields.
	Rect Rect
	URI  string
}

// Page is an ordered sequence of draw commands. Its canonical offset is
// the offset of its first command (spec.md 3's Page invariant).
type Page struct {
	Commands []Command
}

// Offset returns the page's canonical offset: the first command's offset,
// or 0 for an empty page (which should not occur outside the single
// sentinel-Marker-page case).
func (p Page) Offset() int {
	if len(p.Commands) == 0 {
		return 0
	}
	return p.Commands[0].Offset
}

// FirstNonMarkerOffset returns the offset of the first non-Marker command
// on the page, or -1 if the page holds only markers.
func (p Page) FirstNonMarkerOffset() int {
	for _, c := range p.Commands {
		if c.Kind != DrawMarker {
			return c.Offset
		}
	}
	return -1
}

// DisplayList is the ordered sequence of pages produced for one spine
// chunk (spec.md 3).
type DisplayList struct {
	Pages []Page
}

// SentinelPage returns the single Marker page emitted when a chunk
// produces no content at all, per spec.md 3's Display list invariant.
func SentinelPage(chunkStartOffset int) Page {
	return Page{Commands: []Command{{Kind: DrawMarker, Offset: chunkStartOffset}}}
}
