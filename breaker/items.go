// Package breaker turns one block's inline-material stream into laid-out
// lines: Knuth-Plass optimal-fit paragraph breaking with an optional
// hyphenation retry, a first-fit ("standard fit") fallback, and a
// crop-and-retry last resort, plus float placement and page-overflow
// handling for the block layout above it (package layout, C6).
//
// Grounded on the teacher having no paragraph breaker of its own (FictionBook
// readers render fixed-format pages); the break-item vocabulary here follows
// the tagged-variant style of fb2.FlowItem (fb2/types.go) generalized to the
// Knuth-Plass box/glue/penalty algebra, and the hyphenation algorithm is
// grounded on convert/text/hyphenator.go's trie-based pattern matching.
package breaker

import "reflow/style"

// Kind discriminates the Knuth-Plass break-item tagged variant.
type Kind int

const (
	Box Kind = iota
	Glue
	Penalty
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Glue:
		return "glue"
	case Penalty:
		return "penalty"
	default:
		return "unknown"
	}
}

// Payload discriminates what a Box item carries.
type Payload int

const (
	Nothing Payload = iota
	TextElement
	ImageElement
)

// Item is one Knuth-Plass break-item: a box, a glue, or a penalty. Only the
// fields relevant to Kind (and, for boxes, Payload) are populated.
type Item struct {
	Kind Kind

	// Box fields.
	Payload Payload
	Width   float64
	Text    string // TextElement: the rendered run this box represents
	Offset  int    // text offset this box originates from, for hit-testing
	Style   *style.StyleData
	ImagePath string // ImageElement

	// Glue fields.
	Stretch float64
	Shrink  float64

	// Penalty fields.
	PenaltyValue   int
	Flagged        bool // a hyphenation point: rendering it emits a "-"
	PenaltyWidth   float64
}

const infinitePenalty = 10000

// BoxItem constructs a text Box item.
func BoxItem(width float64, text string, offset int, st *style.StyleData) Item {
	return Item{Kind: Box, Payload: TextElement, Width: width, Text: text, Offset: offset, Style: st}
}

// ImageBoxItem constructs an image Box item.
func ImageBoxItem(width float64, path string, offset int, st *style.StyleData) Item {
	return Item{Kind: Box, Payload: ImageElement, Width: width, ImagePath: path, Offset: offset, Style: st}
}

// GlueItem constructs a Glue item.
func GlueItem(width, stretch, shrink float64) Item {
	return Item{Kind: Glue, Width: width, Stretch: stretch, Shrink: shrink}
}

// PenaltyItem constructs a Penalty item. A width > 0 with flagged = true
// models a hyphenation point: taking the break renders a hyphen there.
func PenaltyItem(value int, width float64, flagged bool) Item {
	return Item{Kind: Penalty, PenaltyValue: value, PenaltyWidth: width, Flagged: flagged}
}

// ForcedBreak is a mandatory break (value -infinity), used for newlines in
// whitespace-preserving content and explicit line breaks.
func ForcedBreak() Item {
	return PenaltyItem(-infinitePenalty, 0, false)
}
