package pixmapsvc

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultIntrinsicSize is used when an SVG's viewBox carries no usable
// size and no target box was requested either, per the teacher's
// RasterizeSVGToImage fallback.
const defaultIntrinsicSize = 2048

// ReferenceService decodes raster images via the standard library's
// registered codecs and rasterizes SVG via oksvg/rasterx.
type ReferenceService struct{}

func NewReferenceService() *ReferenceService { return &ReferenceService{} }

// Sniff classifies raster-vs-SVG by magic bytes via h2non/filetype (the
// teacher's own resource-sanity-check library, fb2/stylesheet.go's
// validateLoadedResource), same as the teacher uses it to confirm a
// font blob's claimed MIME type before trusting it. SVG is text with no
// magic bytes, so data whose first KiB contains an "<svg" tag is also
// classified as SVG.
func (s *ReferenceService) Sniff(data []byte) Format {
	if filetype.Is(data, "svg") {
		return FormatSVG
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, []byte("<svg")) {
		return FormatSVG
	}
	return FormatRaster
}

func (s *ReferenceService) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// RasterizeSVG applies the teacher's three scaling rules: no box requested
// keeps the intrinsic viewBox size (or a square fallback if the viewBox
// carries none); one dimension requested scales to it preserving aspect
// ratio; both requested fits into the box preserving aspect ratio.
func (s *ReferenceService) RasterizeSVG(data []byte, box Box, strokeFactor float64) (image.Image, error) {
	if strokeFactor > 0 && strokeFactor != 1.0 {
		data = scaleStrokeWidth(data, strokeFactor)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultIntrinsicSize
	}
	if intrH <= 0 {
		intrH = defaultIntrinsicSize
	}

	w, h := fitBox(intrW, intrH, box)

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

func (s *ReferenceService) Fit(img image.Image, box Box) image.Image {
	b := img.Bounds()
	w, h := fitBox(b.Dx(), b.Dy(), box)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// fitBox applies the no-box/one-dim/both-dims scaling rule shared by
// RasterizeSVG and Fit.
func fitBox(intrW, intrH int, box Box) (int, int) {
	w, h := intrW, intrH
	switch {
	case box.W <= 0 && box.H <= 0:
		// keep intrinsic size
	case box.W > 0 && box.H <= 0:
		w = box.W
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case box.H > 0 && box.W <= 0:
		h = box.H
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(box.W)/float64(intrW), float64(box.H)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// EncodeJPEG is used by a render host that wants to cache a finished page
// as JPEG rather than hold the raw RGBA buffer.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		return nil, errors.New("pixmapsvc: quality must be positive")
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
