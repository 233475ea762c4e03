package geom

import (
	"fmt"
	"math"
	"strings"
)

// Space identifies the coordinate space a bounding box was measured in.
type Space int

const (
	// SpaceConverter is the raw converter output space (PDF/TeX points).
	SpaceConverter Space = iota
	// SpaceDocument is the host document user space.
	SpaceDocument
)

func (s Space) String() string {
	switch s {
	case SpaceConverter:
		return "converter"
	case SpaceDocument:
		return "document"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}

// BBox is an axis aligned rectangle together with the space it was measured
// in. X,Y is the top-left reference origin.
type BBox struct {
	X, Y, W, H float64
	Space      Space
}

// Transformed returns the axis aligned bounding box of the four transformed
// corners, in the space the transform maps into.
func (b BBox) Transformed(m Matrix, target Space) BBox {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{b.X, b.Y}, {b.X + b.W, b.Y}, {b.X, b.Y + b.H}, {b.X + b.W, b.Y + b.H}} {
		x, y := m.Apply(c[0], c[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	return BBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY, Space: target}
}

// Anchor is one of the nine compass reference positions on a bounding box.
type Anchor string

const (
	AnchorTopLeft      Anchor = "top left"
	AnchorTopCenter    Anchor = "top center"
	AnchorTopRight     Anchor = "top right"
	AnchorMiddleLeft   Anchor = "middle left"
	AnchorMiddleCenter Anchor = "middle center"
	AnchorMiddleRight  Anchor = "middle right"
	AnchorBottomLeft   Anchor = "bottom left"
	AnchorBottomCenter Anchor = "bottom center"
	AnchorBottomRight  Anchor = "bottom right"
)

// AnchorLabels lists all valid anchors, top row first.
var AnchorLabels = []Anchor{
	AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
	AnchorMiddleLeft, AnchorMiddleCenter, AnchorMiddleRight,
	AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight,
}

// ParseAnchor validates an anchor label.
func ParseAnchor(label string) (Anchor, error) {
	l := Anchor(strings.Join(strings.Fields(label), " "))
	for _, a := range AnchorLabels {
		if l == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%q is not a valid alignment anchor", label)
}

// Point returns the anchor point on the box. A box with zero extent along an
// axis contributes no offset along that axis.
func (b BBox) Point(a Anchor) (float64, float64) {
	v, h, _ := strings.Cut(string(a), " ")

	x := b.X + b.W/2
	switch h {
	case "left":
		x = b.X
	case "right":
		x = b.X + b.W
	}

	y := b.Y + b.H/2
	switch v {
	case "top":
		y = b.Y
	case "bottom":
		y = b.Y + b.H
	}
	return x, y
}
