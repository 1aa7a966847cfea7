package pixmapsvc

import (
	"regexp"
	"strconv"
)

// strokeWidthPattern matches stroke-width attributes and CSS properties in
// raw SVG markup, capturing the numeric value for replacement.
var strokeWidthPattern = regexp.MustCompile(`(stroke-width\s*[=:]\s*["']?)(\d+(?:\.\d+)?)(["']?)`)

// scaleStrokeWidth multiplies every stroke-width value in svg by factor.
// Used when rasterizing at higher pixel density than the artwork assumes,
// so hairline strokes stay visible.
func scaleStrokeWidth(svg []byte, factor float64) []byte {
	return strokeWidthPattern.ReplaceAllFunc(svg, func(match []byte) []byte {
		parts := strokeWidthPattern.FindSubmatch(match)
		if len(parts) < 4 {
			return match
		}
		value, err := strconv.ParseFloat(string(parts[2]), 64)
		if err != nil {
			return match
		}
		scaled := strconv.FormatFloat(value*factor, 'f', -1, 64)
		out := append([]byte{}, parts[1]...)
		out = append(out, scaled...)
		out = append(out, parts[3]...)
		return out
	})
}
