package document

import (
	"math"
	"strings"
	"testing"
)

func TestLoadRejectsNonSVG(t *testing.T) {
	if _, err := Load(strings.NewReader(`<root><child/></root>`)); err == nil {
		t.Fatal("expected error for non svg document")
	}
}

func TestFindByID(t *testing.T) {
	d := loadTestDoc(t)
	if el := d.FindByID("old-path"); el == nil || el.Tag != "path" {
		t.Fatalf("nested lookup failed: %v", el)
	}
	if el := d.FindByID("missing"); el != nil {
		t.Fatalf("phantom element found: %v", el)
	}
	if el := d.FindByID(""); el != nil {
		t.Fatal("empty id must not resolve")
	}
}

func TestUnitAndPtFactor(t *testing.T) {
	tests := []struct {
		width  string
		unit   string
		factor float64
	}{
		{"210mm", "mm", 25.4 / 72.0},
		{"100pt", "pt", 1.0},
		{"800", "px", 96.0 / 72.0},
		{"8.5in", "in", 1.0 / 72.0},
		{"", "px", 96.0 / 72.0},
	}
	for _, tt := range tests {
		svg := `<svg xmlns="http://www.w3.org/2000/svg" width="` + tt.width + `"/>`
		d, err := Load(strings.NewReader(svg))
		if err != nil {
			t.Fatalf("width %q: %v", tt.width, err)
		}
		if got := d.Unit(); got != tt.unit {
			t.Errorf("width %q: unit = %q, want %q", tt.width, got, tt.unit)
		}
		if got := d.PtFactor(); math.Abs(got-tt.factor) > 1e-12 {
			t.Errorf("width %q: pt factor = %g, want %g", tt.width, got, tt.factor)
		}
	}
}
