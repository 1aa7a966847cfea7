// Package inline walks a block element's subtree producing the linear
// inline-material stream package breaker consumes: the tagged-variant
// sequence of text runs, images, forced breaks and break-items spec.md 3
// calls "Inline material".
//
// Grounded on the teacher's fb2.FlowItem walk (fb2/types.go, content/content.go),
// generalized from FictionBook's fixed element set to the arbitrary XHTML
// subtree spec.md 4.2 names (img/image/svg:image, <a>, <br>, generated
// content hooks, display:none pruning).
package inline

import "reflow/style"

// Kind discriminates the inline-material tagged variant.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindLineBreak
	KindGlue
	KindPenalty
	KindBox
)

// Material is one element of the inline stream. Only the fields relevant
// to Kind are populated.
type Material struct {
	Kind Kind

	// Text / Image fields.
	Offset int
	Text   string // Text
	Path   string // Image
	Style  *style.StyleData

	// Glue fields.
	Width   float64
	Stretch float64
	Shrink  float64

	// Penalty fields.
	Value   int
	Flagged bool
}

// Stream is the ordered output of a gather pass: the inline material plus
// the local offsets of every id-bearing element encountered, for C5 to
// interleave as Marker draw commands.
type Stream struct {
	Materials []Material
	Markers   []int
}
