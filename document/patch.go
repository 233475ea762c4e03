package document

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"texsvg/css"
	"texsvg/geom"
)

// PatchError marks a splice target that could not be resolved when an edit
// of an existing node was expected.
type PatchError struct {
	TargetID string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("node %q not found in document", e.TargetID)
}

// Replace swaps the content of the node carrying targetID for the fragment.
// The node keeps its id, parent and position among its siblings, so
// references from elsewhere in the document stay valid. Returns the node id.
func (d *Document) Replace(targetID string, frag *Fragment, transform geom.Matrix, meta Metadata) (string, error) {
	old := d.FindByID(targetID)
	if old == nil {
		return "", &PatchError{TargetID: targetID}
	}

	parent := old.Parent()
	if parent == nil {
		return "", fmt.Errorf("node %q has no parent, refusing to replace document root", targetID)
	}

	group := prepareNode(frag, transform, meta)
	group.CreateAttr("id", targetID)

	// Keep host editor colorization: a freshly compiled fragment is all
	// black, carry the old node's group level color styling over.
	if !isColorized(group) {
		copyColorStyle(old, group)
	}

	idx := old.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, group)
	return targetID, nil
}

// Insert adds the fragment as a new node. parentID selects the insertion
// parent, empty means the document root. Returns the fresh node id.
func (d *Document) Insert(parentID string, frag *Fragment, transform geom.Matrix, meta Metadata) (string, error) {
	parent := d.Root()
	if len(parentID) > 0 {
		if parent = d.FindByID(parentID); parent == nil {
			return "", &PatchError{TargetID: parentID}
		}
	}

	group := prepareNode(frag, transform, meta)
	id := idPrefix + uuid.NewString()
	group.CreateAttr("id", id)
	parent.AddChild(group)
	return id, nil
}

func prepareNode(frag *Fragment, transform geom.Matrix, meta Metadata) *etree.Element {
	group := frag.Group.Copy()
	group.CreateAttr("transform", transform.String())
	meta.Jacobian = transform.JacobianSqrt()
	Encode(meta, group)
	return group
}

// color values treated as "not colorized"
var defaultColors = map[string]bool{
	"":              true,
	"black":         true,
	"none":          true,
	"#000000":       true,
	"rgb(0%,0%,0%)": true,
}

// isColorized reports whether any element of the node carries a non-black
// fill or stroke, either as attribute or inline style.
func isColorized(el *etree.Element) bool {
	decls := css.ParseDeclarations(el.SelectAttrValue("style", ""))
	for _, prop := range []string{"fill", "stroke"} {
		if !paintIsDefault(el.SelectAttrValue(prop, "")) {
			return true
		}
		if v, ok := decls.Get(prop); ok && !paintIsDefault(v) {
			return true
		}
	}
	for _, child := range el.ChildElements() {
		if isColorized(child) {
			return true
		}
	}
	return false
}

func paintIsDefault(v string) bool {
	v = normalizeColor(v)
	// paint server references come straight from the converter output,
	// they carry glyph geometry, not a user chosen color
	if strings.HasPrefix(v, "url(") {
		return true
	}
	return defaultColors[v]
}

func normalizeColor(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

// copyColorStyle moves color relevant style declarations from the old node's
// top level onto the new one.
func copyColorStyle(old, group *etree.Element) {
	kept := css.ParseDeclarations("")
	for _, decl := range css.ParseDeclarations(old.SelectAttrValue("style", "")).All() {
		switch decl.Property {
		case "fill", "stroke", "opacity", "fill-opacity", "stroke-opacity":
			if !strings.EqualFold(decl.Value, "none") {
				kept.Set(decl.Property, decl.Value)
			}
		}
	}
	if kept.Len() > 0 {
		group.CreateAttr("style", kept.String())
	}
}
