// Package document manages the host SVG document: locating nodes, splicing
// rendered fragments in and reading round-trip metadata back.
package document

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Document wraps the host SVG file the rendered fragments are spliced into.
type Document struct {
	doc *etree.Document
}

// Load reads an SVG document. Encoding declarations other than UTF-8 are
// respected, old Inkscape files are not always UTF-8.
func Load(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{CanonicalText: true, CanonicalAttrVal: true}
	doc.ReadSettings = etree.ReadSettings{CharsetReader: charset.NewReaderLabel, Permissive: true}

	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to parse svg document: %w", err)
	}
	if root := doc.Root(); root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("not an svg document")
	}
	return &Document{doc: doc}, nil
}

// LoadFile reads an SVG document from a file.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open svg document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Root returns the document root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// FindByID returns the element carrying the requested id, nil when absent.
func (d *Document) FindByID(id string) *etree.Element {
	if len(id) == 0 {
		return nil
	}
	return findByID(d.doc.Root(), id)
}

func findByID(el *etree.Element, id string) *etree.Element {
	if el.SelectAttrValue("id", "") == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// WriteTo serializes the document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}

// WriteToFile serializes the document into a file.
func (d *Document) WriteToFile(path string) error {
	return d.doc.WriteToFile(path)
}

// Unit returns the unit of the document user space, derived from the width
// attribute of the root element. Unitless documents default to px.
func (d *Document) Unit() string {
	w := strings.TrimSpace(d.doc.Root().SelectAttrValue("width", ""))
	unit := strings.TrimLeftFunc(w, func(r rune) bool {
		return r == '.' || r == '-' || r == '+' || (r >= '0' && r <= '9')
	})
	unit = strings.TrimSpace(unit)
	if len(unit) == 0 {
		return "px"
	}
	return unit
}

// unitsPerPt maps a document unit to its size expressed in PDF points
// (1/72 inch), the native unit of the converter output.
var unitsPerPt = map[string]float64{
	"pt": 1.0,
	"px": 96.0 / 72.0,
	"mm": 25.4 / 72.0,
	"cm": 2.54 / 72.0,
	"in": 1.0 / 72.0,
	"pc": 1.0 / 12.0,
}

// PtFactor returns the scale converting converter points into document units.
func (d *Document) PtFactor() float64 {
	if f, ok := unitsPerPt[d.Unit()]; ok {
		return f
	}
	return 1.0
}

// parseViewBox returns the x, y, width, height of an svg root viewBox attribute.
func parseViewBox(el *etree.Element) (x, y, w, h float64, err error) {
	vb := strings.TrimSpace(el.SelectAttrValue("viewBox", ""))
	if len(vb) == 0 {
		return 0, 0, 0, 0, fmt.Errorf("no viewBox attribute")
	}
	fields := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("malformed viewBox %q", vb)
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		if vals[i], err = strconv.ParseFloat(f, 64); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("malformed viewBox %q: %w", vb, err)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}
