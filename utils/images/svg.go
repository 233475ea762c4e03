// Package images holds helpers for turning SVG content into raster images.
package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// BaseDPI is the nominal SVG resolution, one user unit per 1/96 inch.
const BaseDPI = 96.0

// maxRasterDim is the maximum pixel dimension (width or height) allowed when
// rasterizing an SVG. This prevents OOM from enormous viewBox values or
// runaway dpi settings.
const maxRasterDim = 8192

// RasterOptions controls rasterization scale. DPI and Height are mutually
// exclusive, zero values fall back to the intrinsic viewBox size.
type RasterOptions struct {
	DPI    float64
	Height int
}

// Rasterize renders SVG data onto a white RGBA canvas.
func Rasterize(svgData []byte, opts RasterOptions) (image.Image, error) {
	if opts.DPI > 0 && opts.Height > 0 {
		return nil, errors.New("dpi and height are mutually exclusive")
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := icon.ViewBox.W
	intrH := icon.ViewBox.H
	if intrW <= 0 || intrH <= 0 {
		return nil, errors.New("svg has no usable viewBox")
	}

	var w, h int
	switch {
	case opts.DPI > 0:
		scale := opts.DPI / BaseDPI
		w = int(math.Round(intrW * scale))
		h = int(math.Round(intrH * scale))
	case opts.Height > 0:
		h = opts.Height
		w = int(math.Round(float64(h) * intrW / intrH))
	default:
		w = int(math.Ceil(intrW))
		h = int(math.Ceil(intrH))
	}
	w = max(w, 1)
	h = max(h, 1)

	// Clamp preserving aspect ratio.
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}
