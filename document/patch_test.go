package document

import (
	"errors"
	"strings"
	"testing"

	"texsvg/config"
	"texsvg/geom"
)

const hostSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="100mm" height="100mm" viewBox="0 0 100 100">
  <rect id="before" x="0" y="0" width="10" height="10"/>
  <g id="content" transform="translate(5,5)" style="fill:#ff0000;stroke:none">
    <path id="old-path" d="M 0 0 L 1 1"/>
  </g>
  <rect id="after" x="20" y="20" width="10" height="10"/>
</svg>`

const fragmentSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 30 12" width="30pt" height="12pt">
  <defs>
    <symbol id="glyph0"><path d="M 1 1 L 2 2"/></symbol>
  </defs>
  <use href="#glyph0" x="0" y="0" fill="url(#glyph0)"/>
  <path d="M 0 0 L 3 3" stroke="none"/>
</svg>`

func loadTestDoc(t *testing.T) *Document {
	t.Helper()
	d, err := Load(strings.NewReader(hostSVG))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testMeta() Metadata {
	return Metadata{
		Text:       "$a$",
		Scale:      1,
		Alignment:  geom.AnchorMiddleCenter,
		Jacobian:   1,
		Version:    SchemaVersion,
		TexCommand: config.TexCommandPdflatex,
		Converter:  config.ConverterInkscape,
	}
}

func TestReplaceKeepsIdentityAndOrder(t *testing.T) {
	d := loadTestDoc(t)
	frag, err := ParseFragment([]byte(fragmentSVG))
	if err != nil {
		t.Fatal(err)
	}

	id, err := d.Replace("content", frag, geom.Translate(1, 2), testMeta())
	if err != nil {
		t.Fatal(err)
	}
	if id != "content" {
		t.Fatalf("replaced node id changed to %q", id)
	}

	// identity preserved, position among siblings preserved
	var order []string
	for _, el := range d.Root().ChildElements() {
		order = append(order, el.SelectAttrValue("id", "?"))
	}
	want := []string{"before", "content", "after"}
	if len(order) != len(want) {
		t.Fatalf("child count changed: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("sibling order perturbed: %v", order)
		}
	}

	node := d.FindByID("content")
	if node.FindElement(".//path[@id='old-path']") != nil {
		t.Error("old content not discarded")
	}
	if got := node.SelectAttrValue("transform", ""); got != geom.Translate(1, 2).String() {
		t.Errorf("transform attribute = %q", got)
	}

	// new node must be re-editable
	m, found, err := Decode(node)
	if err != nil || !found {
		t.Fatalf("metadata on replaced node: found=%v err=%v", found, err)
	}
	if m.Text != "$a$" {
		t.Errorf("metadata text = %q", m.Text)
	}

	// all black fragment inherits the old node's colorization
	if style := node.SelectAttrValue("style", ""); !strings.Contains(style, "fill:#ff0000") {
		t.Errorf("old color style not carried over: %q", style)
	}
}

func TestReplaceColorCarryOver(t *testing.T) {
	// paint server references in converter output do not count as user
	// colorization, an explicit color does
	tests := []struct {
		name    string
		frag    string
		carried bool
	}{
		{
			name: "paint server fill",
			frag: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <defs><symbol id="g0"><path d="M 1 1 L 2 2"/></symbol></defs>
  <use href="#g0" fill="url(#g0)"/>
</svg>`,
			carried: true,
		},
		{
			name: "black style fill",
			frag: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M 0 0 L 3 3" style="fill:rgb(0%, 0%, 0%)"/>
</svg>`,
			carried: true,
		},
		{
			name: "explicit color",
			frag: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M 0 0 L 3 3" fill="#00ff00"/>
</svg>`,
			carried: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := loadTestDoc(t)
			frag, err := ParseFragment([]byte(tt.frag))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := d.Replace("content", frag, geom.Identity(), testMeta()); err != nil {
				t.Fatal(err)
			}

			style := d.FindByID("content").SelectAttrValue("style", "")
			if got := strings.Contains(style, "fill:#ff0000"); got != tt.carried {
				t.Errorf("color carried = %v, want %v (style %q)", got, tt.carried, style)
			}
		})
	}
}

func TestReplaceMissingTarget(t *testing.T) {
	d := loadTestDoc(t)
	frag, err := ParseFragment([]byte(fragmentSVG))
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Replace("no-such-node", frag, geom.Identity(), testMeta())
	var perr *PatchError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PatchError, got %v", err)
	}
}

func TestInsertAssignsFreshIdentity(t *testing.T) {
	d := loadTestDoc(t)
	frag, err := ParseFragment([]byte(fragmentSVG))
	if err != nil {
		t.Fatal(err)
	}

	id1, err := d.Insert("", frag, geom.Identity(), testMeta())
	if err != nil {
		t.Fatal(err)
	}
	id2, err := d.Insert("", frag, geom.Identity(), testMeta())
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatalf("inserted nodes share id %q", id1)
	}
	if !strings.HasPrefix(id1, "textext-") {
		t.Errorf("unexpected id format %q", id1)
	}
	if d.FindByID(id1) == nil || d.FindByID(id2) == nil {
		t.Fatal("inserted nodes not reachable by id")
	}
}

func TestInsertUnknownParent(t *testing.T) {
	d := loadTestDoc(t)
	frag, err := ParseFragment([]byte(fragmentSVG))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Insert("missing-layer", frag, geom.Identity(), testMeta()); err == nil {
		t.Fatal("expected error for unknown insertion parent")
	}
}
