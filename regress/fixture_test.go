package regress

import (
	"testing"

	"texsvg/config"
	"texsvg/geom"
)

const fixtureYAML = `
original:
  text: "$a^2$"
  scale-factor: 1.0
  alignment: "middle center"
modified:
  text: "$b^2$"
  tex-command: xelatex
  font-size-pt: 14
check:
  render:
    dpi: 96
    render-area: drawing
  compare:
    fuzz: "10%"
    pixel-diff-abs-tol: 20
`

const fixtureJSON = `{
  "original": {"text": "$a$", "scale-factor": 2.0},
  "modified": {"text": "$b$"},
  "check": {"render": {"height": 300}, "compare": {"fuzz": "0%"}}
}`

func TestParseFixtureYAML(t *testing.T) {
	fix, err := ParseFixture([]byte(fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}
	if fix.Original.Text != "$a^2$" || fix.Modified.Text != "$b^2$" {
		t.Errorf("text blocks mismatch: %q %q", fix.Original.Text, fix.Modified.Text)
	}
	if fix.Check.Render.DPI != 96 || fix.Check.Render.RenderArea != AreaDrawing {
		t.Errorf("render block mismatch: %+v", fix.Check.Render)
	}
	if *fix.Check.Compare.PixelDiffAbsTol != 20 {
		t.Errorf("explicit tolerance lost: %d", *fix.Check.Compare.PixelDiffAbsTol)
	}
	// untouched tolerances fall back to defaults
	if *fix.Check.Compare.SizeAbsTol != defaultSizeAbsTol || *fix.Check.Compare.PixelDiffRelTol != defaultPixelDiffRelTol {
		t.Errorf("defaults not applied: %+v", fix.Check.Compare)
	}
}

func TestParseFixtureZeroTolerances(t *testing.T) {
	// an explicit zero is a valid strict setting, not a request for defaults
	fix, err := ParseFixture([]byte(`
original:
  text: $a$
check:
  compare:
    pixel-diff-abs-tol: 0
    size-abs-tol: 0
    size-rel-tol: 0
    pixel-diff-rel-tol: 0
`))
	if err != nil {
		t.Fatal(err)
	}
	if *fix.Check.Compare.PixelDiffAbsTol != 0 || *fix.Check.Compare.SizeAbsTol != 0 ||
		*fix.Check.Compare.SizeRelTol != 0 || *fix.Check.Compare.PixelDiffRelTol != 0 {
		t.Errorf("explicit zero tolerances replaced by defaults: %+v", fix.Check.Compare)
	}
}

func TestParseFixtureJSON(t *testing.T) {
	fix, err := ParseFixture([]byte(fixtureJSON))
	if err != nil {
		t.Fatal(err)
	}
	if fix.Check.Render.Height != 300 || *fix.Original.ScaleFactor != 2.0 {
		t.Errorf("json fixture mismatch: %+v", fix)
	}
}

func TestParseFixtureRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no text", `{"original": {}}`},
		{"both sizes", `{"original": {"text": "x", "scale-factor": 1, "font-size-pt": 10}}`},
		{"dpi and height", `{"original": {"text": "x"}, "check": {"render": {"dpi": 96, "height": 100}}}`},
		{"bad area", `{"original": {"text": "x"}, "check": {"render": {"render-area": "page"}}}`},
		{"bad fuzz", `{"original": {"text": "x"}, "check": {"compare": {"fuzz": "lots"}}}`},
		{"bad tex command", `{"original": {"text": "x", "tex-command": "latex2e"}}`},
		{"bad alignment", `{"original": {"text": "x", "alignment": "center middle"}}`},
		{"unknown key", `{"original": {"text": "x", "texx": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(tt.data)); err == nil {
				t.Errorf("fixture accepted: %s", tt.data)
			}
		})
	}
}

func TestMergedInheritsOriginal(t *testing.T) {
	fix, err := ParseFixture([]byte(fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}

	m := fix.Merged()
	if m.Text != "$b^2$" {
		t.Errorf("modified text not taken: %q", m.Text)
	}
	if m.Alignment != "middle center" {
		t.Errorf("original alignment not inherited: %q", m.Alignment)
	}
	// the modified block switched sizing mode, scale must not survive
	if m.ScaleFactor != nil || m.FontSizePt == nil || *m.FontSizePt != 14 {
		t.Errorf("sizing mode merge broken: %+v", m)
	}
	if m.TexCommand != "xelatex" {
		t.Errorf("tex command override lost: %q", m.TexCommand)
	}
}

func TestEditSpecRequest(t *testing.T) {
	fix, err := ParseFixture([]byte(fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}

	req := fix.Merged().Request("content")
	if req.TargetID != "content" || req.Text != "$b^2$" {
		t.Errorf("request basics wrong: %+v", req)
	}
	if req.TexCommand == nil || *req.TexCommand != config.TexCommandXelatex {
		t.Errorf("tex command not converted: %v", req.TexCommand)
	}
	if req.Alignment == nil || *req.Alignment != geom.AnchorMiddleCenter {
		t.Errorf("alignment not converted: %v", req.Alignment)
	}
	if req.FontSizePt == nil || req.ScaleFactor != nil {
		t.Errorf("sizing not converted: %+v", req)
	}
}

func TestFuzzFraction(t *testing.T) {
	tests := []struct {
		fuzz string
		want float64
	}{
		{"", 0},
		{"0%", 0},
		{"10%", 0.1},
		{" 25 % ", 0.25},
	}
	for _, tt := range tests {
		got, err := CompareSpec{Fuzz: tt.fuzz}.fuzzFraction()
		if err != nil || got != tt.want {
			t.Errorf("fuzz %q: got %v, %v", tt.fuzz, got, err)
		}
	}

	for _, bad := range []string{"lots", "-5%", "150%"} {
		if _, err := (CompareSpec{Fuzz: bad}).fuzzFraction(); err == nil {
			t.Errorf("fuzz %q accepted", bad)
		}
	}
}
