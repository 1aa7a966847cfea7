// Package pixmapsvc ports image decoding and rasterization behind an
// interface so the render walker never hard-codes a codec or rasterizer
// choice, mirroring how package fontsvc ports font shaping. The reference
// implementation is grounded on the teacher's utils/images package:
// RasterizeSVGToImage's viewBox-to-target scaling rules for vector
// artwork, and disintegration/imaging (the pack's general-purpose resize
// library) for raster formats.
package pixmapsvc

import "image"

// Format discriminates the two image families C9 (render) ever needs to
// place: raster (png/jpeg/gif, decoded via the standard library's
// registered codecs) and vector (svg, rasterized to a target box).
type Format int

const (
	FormatRaster Format = iota
	FormatSVG
)

// Box is the target rectangle a decoded image is fit into, in pixels.
// Either dimension may be zero to mean "derive from the other, preserving
// aspect ratio"; both zero means "use the image's intrinsic size".
type Box struct {
	W, H int
}

// Service decodes and scales image bytes referenced by DrawImage commands.
// Decoding is always fresh: per spec.md 5, the pixmap cache is not
// retained across pages, so callers decode on demand at render time.
type Service interface {
	// Sniff classifies raw bytes as raster or vector content.
	Sniff(data []byte) Format

	// Decode turns raster bytes into an image.Image at its natural size.
	Decode(data []byte) (image.Image, error)

	// RasterizeSVG rasterizes vector bytes into an image.Image fit to box,
	// scaling stroke widths by strokeFactor (1 or <=0 leaves them
	// unchanged; a host that renders on especially high pixel density may
	// pass a larger factor so thin strokes remain visible).
	RasterizeSVG(data []byte, box Box, strokeFactor float64) (image.Image, error)

	// Fit scales img to box, preserving aspect ratio, per the same
	// zero-means-derive / both-zero-means-intrinsic rule as RasterizeSVG.
	Fit(img image.Image, box Box) image.Image
}
