package document

import (
	"errors"
	"testing"

	"github.com/beevik/etree"

	"texsvg/config"
	"texsvg/geom"
)

func TestMetadataRoundTrip(t *testing.T) {
	for _, anchor := range geom.AnchorLabels {
		for _, useFont := range []bool{false, true} {
			m := Metadata{
				Text:        "$\\frac{x}{y}$\nsecond line\twith tab \\n literal",
				Preamble:    "packages.tex",
				TexCommand:  config.TexCommandLualatex,
				Converter:   config.ConverterPdf2svg,
				Alignment:   anchor,
				Jacobian:    1.25,
				Stroke2Path: true,
				Version:     SchemaVersion,
			}
			if useFont {
				m.FontSizePt = 12.5
				m.UseFontSize = true
			} else {
				m.Scale = 0.75
			}

			el := etree.NewElement("g")
			Encode(m, el)

			got, found, err := Decode(el)
			if err != nil {
				t.Fatalf("anchor %s useFont %v: %v", anchor, useFont, err)
			}
			if !found {
				t.Fatalf("anchor %s useFont %v: metadata not found", anchor, useFont)
			}
			if got != m {
				t.Errorf("anchor %s useFont %v: round trip mismatch\n got %+v\nwant %+v", anchor, useFont, got, m)
			}
		}
	}
}

func TestMetadataRoundTripThroughSerialization(t *testing.T) {
	m := Metadata{
		Text:       "line one\nline two",
		Preamble:   "p.tex",
		Scale:      2,
		Alignment:  geom.AnchorTopRight,
		Jacobian:   1,
		Version:    SchemaVersion,
		TexCommand: config.TexCommandPdflatex,
		Converter:  config.ConverterInkscape,
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("svg")
	node := root.CreateElement("g")
	node.CreateAttr("id", "content")
	Encode(m, node)

	out, err := doc.WriteToString()
	if err != nil {
		t.Fatal(err)
	}

	reread := etree.NewDocument()
	if err := reread.ReadFromString(out); err != nil {
		t.Fatal(err)
	}
	el := reread.Root().SelectElement("g")
	got, found, err := Decode(el)
	if err != nil || !found {
		t.Fatalf("decode after serialization: found=%v err=%v", found, err)
	}
	if got != m {
		t.Errorf("serialization round trip mismatch\n got %+v\nwant %+v", got, m)
	}
}

func TestDecodeAbsent(t *testing.T) {
	el := etree.NewElement("g")
	el.CreateAttr("id", "foreign")
	_, found, err := Decode(el)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("foreign node reported as carrying metadata")
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name string
		prep func(el *etree.Element)
	}{
		{"bad scale", func(el *etree.Element) {
			el.CreateAttr("textext:scale", "not-a-number")
		}},
		{"both sizing modes", func(el *etree.Element) {
			el.CreateAttr("textext:scale", "1.0")
			el.CreateAttr("textext:fontsize_pt", "10")
		}},
		{"bad alignment", func(el *etree.Element) {
			el.CreateAttr("textext:alignment", "sideways")
		}},
		{"incompatible schema version", func(el *etree.Element) {
			el.CreateAttr("textext:version", "2.0.0")
		}},
		{"unknown tex command", func(el *etree.Element) {
			el.CreateAttr("textext:texconverter", "teximate")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := etree.NewElement("g")
			el.CreateAttr("textext:text", "x")
			el.CreateAttr("textext:preamble", "")
			tt.prep(el)

			_, found, err := Decode(el)
			if !found {
				t.Fatal("node with attributes reported as absent")
			}
			var merr *MetadataError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MetadataError, got %v", err)
			}
		})
	}
}

func TestDecodeLegacyDefaults(t *testing.T) {
	// node written by an early version: no sizing, no alignment, no version
	el := etree.NewElement("g")
	el.CreateAttr("textext:text", "x")
	el.CreateAttr("textext:preamble", "p.tex")

	m, found, err := Decode(el)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if m.Scale != 1.0 || m.UseFontSize {
		t.Errorf("sizing defaults wrong: %+v", m)
	}
	if m.Alignment != geom.AnchorMiddleCenter {
		t.Errorf("alignment default wrong: %v", m.Alignment)
	}
	if m.Jacobian != 1.0 {
		t.Errorf("jacobian default wrong: %v", m.Jacobian)
	}
}

func TestEscapeText(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"multi\nline\ntext",
		`backslash \n is not a newline`,
		"tabs\tand\rreturns",
	}
	for _, c := range cases {
		got, err := unescapeText(escapeText(c))
		if err != nil {
			t.Errorf("unescape(escape(%q)): %v", c, err)
			continue
		}
		if got != c {
			t.Errorf("escape round trip %q -> %q", c, got)
		}
	}
}
