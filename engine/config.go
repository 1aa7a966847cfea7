// Package engine is the facade: it owns the archive, the current
// EngineConfig, the navigator/TOC caches, and exposes the public API table
// spec.md section 6 describes. Grounded on the teacher having no single
// "one God object" facade (cmd/fbc wires its pipeline inline in main), the
// EngineConfig-as-single-tuning-value pattern instead follows spec.md 9's
// explicit design note against hiding tuning in process-wide singletons.
package engine

import "reflow/style"

// EngineConfig is the single value threaded through every layout call.
// Any mutating setter that changes one of these fields invalidates the
// navigator's display-list cache (spec.md 5's ordering guarantees).
type EngineConfig struct {
	PageWidth, PageHeight int
	DPI                   int
	FontSizePt            float64
	MarginMM              float64
	LineHeight            float64
	TextAlign             style.Align
	FontFamily            style.FontKind
	IgnoreDocumentCSS     bool
	StretchTolerance      float64
	HyphenPenalty         int

	// Ambient stylesheets supplied by the host (spec.md 6: "two ambient
	// stylesheets from the host"), since the core has no filesystem access
	// of its own beyond the archive.
	ViewerCSS []byte
	UserCSS   []byte
}

// DefaultConfig returns spec.md's configuration constants: a 1404x1872px
// page at 300 DPI, justified 11pt body text, 7.2mm margins.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		PageWidth: 1404, PageHeight: 1872,
		DPI:              300,
		FontSizePt:       11.0,
		MarginMM:         7.2,
		LineHeight:       1.2,
		TextAlign:        style.AlignJustify,
		FontFamily:       style.FontSerif,
		StretchTolerance: 1.26,
		HyphenPenalty:    50,
	}
}

// FontSizePx converts FontSizePt to pixels at the configured DPI.
func (c EngineConfig) FontSizePx() float64 {
	return c.FontSizePt * float64(c.DPI) / 72.0
}

// MarginPx converts MarginMM to a uniform pixel edge inset at the
// configured DPI.
func (c EngineConfig) MarginPx() float64 {
	const mmPerInch = 25.4
	return c.MarginMM / mmPerInch * float64(c.DPI)
}
