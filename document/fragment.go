package document

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"texsvg/css"
	"texsvg/geom"
)

// idPrefix marks generated node ids in the host document.
const idPrefix = "textext-"

// Fragment is converter output prepared for splicing: all content collected
// under one detached <g> element plus the measured extent in converter space.
type Fragment struct {
	Group *etree.Element
	BBox  geom.BBox
}

// LoadFragment reads an SVG file produced by a converter backend and turns it
// into a spliceable fragment.
func LoadFragment(path string) (*Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read converter output: %w", err)
	}
	return ParseFragment(data)
}

// ParseFragment turns raw converter SVG output into a Fragment.
func ParseFragment(data []byte) (*Fragment, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{CharsetReader: charset.NewReaderLabel, Permissive: true}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unparsable converter output: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("converter output is not an svg document")
	}

	x, y, w, h, err := parseViewBox(root)
	if err != nil {
		return nil, fmt.Errorf("converter output has no usable extent: %w", err)
	}

	group := etree.NewElement("g")
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "title", "desc", "metadata", "namedview":
			continue
		}
		group.AddChild(child.Copy())
	}
	if len(group.ChildElements()) == 0 {
		return nil, fmt.Errorf("converter output is empty")
	}

	makeIDsUnique(group)
	zeroNoneStrokes(group)

	return &Fragment{
		Group: group,
		BBox:  geom.BBox{X: x, Y: y, W: w, H: h, Space: geom.SpaceConverter},
	}, nil
}

var urlRefRe = regexp.MustCompile(`url\(#([^)(]*)\)`)

// makeIDsUnique replaces converter generated element ids with fresh unique
// values. PDF->SVG converters reuse the same ids (glyph0, surface1, ...) so
// two fragments in one document would otherwise cross-reference each other.
func makeIDsUnique(group *etree.Element) {
	rename := make(map[string]string)

	var walk func(el *etree.Element, visit func(*etree.Element))
	walk = func(el *etree.Element, visit func(*etree.Element)) {
		visit(el)
		for _, child := range el.ChildElements() {
			walk(child, visit)
		}
	}

	walk(group, func(el *etree.Element) {
		if a := el.SelectAttr("id"); a != nil {
			fresh := "id-" + uuid.NewString()
			rename[a.Value] = fresh
			a.Value = fresh
		}
	})

	walk(group, func(el *etree.Element) {
		for i, a := range el.Attr {
			// url(#...) references in attributes and inline style
			el.Attr[i].Value = urlRefRe.ReplaceAllStringFunc(a.Value, func(ref string) string {
				old := urlRefRe.FindStringSubmatch(ref)[1]
				if fresh, ok := rename[old]; ok {
					return "url(#" + fresh + ")"
				}
				return ref
			})
			// href / xlink:href references
			if a.Key == "href" && strings.HasPrefix(el.Attr[i].Value, "#") {
				if fresh, ok := rename[el.Attr[i].Value[1:]]; ok {
					el.Attr[i].Value = "#" + fresh
				}
			}
		}
	})
}

// zeroNoneStrokes adds stroke-width:0 to every element with stroke:none so
// that later colorization in the host editor does not turn glyph outlines
// into bold strokes.
func zeroNoneStrokes(group *etree.Element) {
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		decls := css.ParseDeclarations(el.SelectAttrValue("style", ""))
		stroke, _ := decls.Get("stroke")
		if strings.EqualFold(el.SelectAttrValue("stroke", ""), "none") || strings.EqualFold(stroke, "none") {
			if !decls.Has("stroke-width") {
				decls.Set("stroke-width", "0")
				el.CreateAttr("style", decls.String())
			}
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(group)
}
