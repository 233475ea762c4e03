package document

import (
	"fmt"

	"github.com/beevik/etree"

	"texsvg/geom"
	"texsvg/utils/images"
)

// measureDPI gives sub-unit precision when locating node ink extents.
const measureDPI = 4 * images.BaseDPI

// NodeExtent measures the visible extent of a single node by rendering it
// alone on the host document's canvas. The returned box is expressed in the
// document user space, with the node's own transform applied.
func (d *Document) NodeExtent(el *etree.Element) (geom.BBox, error) {
	root := d.Root()
	vbX, vbY, vbW, vbH, err := parseViewBox(root)
	if err != nil {
		return geom.BBox{}, fmt.Errorf("host document has no usable viewBox: %w", err)
	}

	probe := etree.NewDocument()
	svg := probe.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("viewBox", root.SelectAttrValue("viewBox", ""))
	svg.AddChild(el.Copy())

	data, err := probe.WriteToBytes()
	if err != nil {
		return geom.BBox{}, fmt.Errorf("unable to serialize measurement probe: %w", err)
	}
	img, err := images.Rasterize(data, images.RasterOptions{DPI: measureDPI})
	if err != nil {
		return geom.BBox{}, fmt.Errorf("unable to measure node extent: %w", err)
	}

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
		return geom.BBox{}, fmt.Errorf("node has no visible extent")
	}

	sx := vbW / float64(b.Dx())
	sy := vbH / float64(b.Dy())
	return geom.BBox{
		X:     vbX + float64(minX)*sx,
		Y:     vbY + float64(minY)*sy,
		W:     float64(maxX-minX+1) * sx,
		H:     float64(maxY-minY+1) * sy,
		Space: geom.SpaceDocument,
	}, nil
}

// ContextTransform returns the accumulated transform of the element's
// ancestor chain, the element's own transform included, relative to the
// document root.
func (d *Document) ContextTransform(el *etree.Element) (geom.Matrix, error) {
	var chain []*etree.Element
	for e := el; e != nil; e = e.Parent() {
		chain = append(chain, e)
	}

	m := geom.Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		ts := chain[i].SelectAttrValue("transform", "")
		if len(ts) == 0 {
			continue
		}
		t, err := geom.ParseTransform(ts)
		if err != nil {
			return geom.Matrix{}, fmt.Errorf("unable to parse transform of %q: %w", chain[i].SelectAttrValue("id", chain[i].Tag), err)
		}
		m = m.Mul(t)
	}
	return m, nil
}
