package regress

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"texsvg/utils/images"
)

// Result of one image comparison.
type Result struct {
	Same       bool
	DiffPixels int
	Reason     string
}

// Compare rasterizes two SVG documents according to the fixture's render
// settings and compares them pixel by pixel within the configured
// tolerances.
func (f *Fixture) Compare(svgA, svgB []byte) (*Result, error) {
	opts := images.RasterOptions{DPI: f.Check.Render.DPI, Height: f.Check.Render.Height}

	imgA, err := images.Rasterize(svgA, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize first document: %w", err)
	}
	imgB, err := images.Rasterize(svgB, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize second document: %w", err)
	}

	if f.Check.Render.RenderArea == AreaDrawing {
		imgA, imgB = trimToInk(imgA), trimToInk(imgB)
	}

	fuzz, err := f.Check.Compare.fuzzFraction()
	if err != nil {
		return nil, err
	}
	return comparePixels(imgA, imgB, fuzz, f.Check.Compare), nil
}

// CompareFiles is Compare over files on disk.
func (f *Fixture) CompareFiles(pathA, pathB string) (*Result, error) {
	svgA, err := os.ReadFile(pathA)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	svgB, err := os.ReadFile(pathB)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	return f.Compare(svgA, svgB)
}

func comparePixels(im1, im2 image.Image, fuzz float64, tol CompareSpec) *Result {
	w1, h1 := im1.Bounds().Dx(), im1.Bounds().Dy()
	w2, h2 := im2.Bounds().Dx(), im2.Bounds().Dy()

	dw, dh := absInt(w2-w1), absInt(h2-h1)
	w, h := min(w1, w2), min(h1, h2)

	sizeAbsTol, sizeRelTol := *tol.SizeAbsTol, *tol.SizeRelTol
	if dw > sizeAbsTol || dh > sizeAbsTol ||
		float64(dw) > float64(w)*sizeRelTol || float64(dh) > float64(h)*sizeRelTol {
		return &Result{Reason: fmt.Sprintf("images have too different sizes: %dx%d vs %dx%d", w1, h1, w2, h2)}
	}

	absTol := *tol.PixelDiffAbsTol
	if dw != 0 || dh != 0 {
		// sizes differ within tolerance, downsample both before the pixel
		// walk so subpixel edge jitter does not dominate the count
		w, h = max(w/2, 1), max(h/2, 1)
		absTol /= 2
		im1 = imaging.Resize(im1, w, h, imaging.Lanczos)
		im2 = imaging.Resize(im2, w, h, imaging.Lanczos)
	}

	threshold := uint32(fuzz * 0xffff)
	b1, b2 := im1.Bounds(), im2.Bounds()
	diff := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r1, g1, bl1, a1 := im1.At(b1.Min.X+x, b1.Min.Y+y).RGBA()
			r2, g2, bl2, a2 := im2.At(b2.Min.X+x, b2.Min.Y+y).RGBA()
			d := max(chanDiff(r1, r2), chanDiff(g1, g2), chanDiff(bl1, bl2), chanDiff(a1, a2))
			if d > threshold {
				diff++
			}
		}
	}

	if diff > absTol {
		return &Result{DiffPixels: diff, Reason: fmt.Sprintf("diff pixels (%d) > %d", diff, absTol)}
	}
	if relTol := *tol.PixelDiffRelTol; float64(diff) > float64(w*h)*relTol {
		return &Result{DiffPixels: diff, Reason: fmt.Sprintf("diff pixels (%d) > %dx%dx%g (%g)", diff, w, h, relTol, float64(w*h)*relTol)}
	}
	return &Result{Same: true, DiffPixels: diff}
}

// trimToInk crops an image to its non-white extent, the raster equivalent of
// exporting the drawing area instead of the whole page.
func trimToInk(img image.Image) image.Image {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r == 0xffff && g == 0xffff && bl == 0xffff {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}
	return imaging.Crop(img, image.Rect(minX, minY, maxX+1, maxY+1))
}

func chanDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
