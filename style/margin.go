package style

// CollapseMargins implements spec.md 4.1's margin collapsing rule: max when
// both margins are non-negative, min when both are non-positive, otherwise
// their sum. top is the following block's top margin; bottom is the
// preceding block's bottom margin (or the parent's top margin, for a first
// in-flow child; or the parent's bottom margin, for a last in-flow child).
func CollapseMargins(bottom, top float64) float64 {
	switch {
	case bottom >= 0 && top >= 0:
		return max(bottom, top)
	case bottom <= 0 && top <= 0:
		return min(bottom, top)
	default:
		return bottom + top
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ClampOverflow applies spec.md 4.1's overflow clamp: if the resolved
// margins and padding would make the usable width negative against an
// explicit width, scale margins and padding down proportionally to honor
// the width; otherwise, if there is no explicit width, force the
// horizontal margins and padding to zero rather than let them exceed the
// available band.
func ClampOverflow(s *StyleData, availWidth float64) {
	horizontal := s.Margin.Left + s.Margin.Right + s.Padding.Left + s.Padding.Right

	if s.WidthPx > 0 {
		usable := availWidth - horizontal
		if usable < 0 && horizontal > 0 {
			scale := availWidth / horizontal
			if scale < 0 {
				scale = 0
			}
			s.Margin.Left *= scale
			s.Margin.Right *= scale
			s.Padding.Left *= scale
			s.Padding.Right *= scale
		}
		return
	}

	if horizontal > availWidth {
		s.Margin.Left = 0
		s.Margin.Right = 0
		s.Padding.Left = 0
		s.Padding.Right = 0
	}
}
