package css

import "testing"

func TestParseDeclarations(t *testing.T) {
	d := ParseDeclarations("fill:#ff0000; stroke: none;stroke-width:0.5pt")
	if d.Len() != 3 {
		t.Fatalf("expected 3 declarations, got %d: %v", d.Len(), d.All())
	}
	if v, ok := d.Get("fill"); !ok || v != "#ff0000" {
		t.Errorf("fill = %q, %v", v, ok)
	}
	if v, ok := d.Get("stroke"); !ok || v != "none" {
		t.Errorf("stroke = %q, %v", v, ok)
	}
	if v, ok := d.Get("stroke-width"); !ok || v != "0.5pt" {
		t.Errorf("stroke-width = %q, %v", v, ok)
	}
	if _, ok := d.Get("opacity"); ok {
		t.Error("phantom property found")
	}
}

func TestParseDeclarationsEmpty(t *testing.T) {
	for _, s := range []string{"", "   ", ";;"} {
		if d := ParseDeclarations(s); d.Len() != 0 {
			t.Errorf("style %q produced declarations: %v", s, d.All())
		}
	}
}

func TestParseDeclarationsMultiValue(t *testing.T) {
	// whitespace around commas normalizes to a single space after
	for _, in := range []string{
		"font-family: DejaVu Sans, sans-serif",
		"font-family: DejaVu Sans,sans-serif",
		"font-family: DejaVu Sans ,  sans-serif",
	} {
		d := ParseDeclarations(in)
		if v, ok := d.Get("font-family"); !ok || v != "DejaVu Sans, sans-serif" {
			t.Errorf("%q: font-family = %q, %v", in, v, ok)
		}
	}
}

func TestSetPreservesOrder(t *testing.T) {
	d := ParseDeclarations("fill:black;stroke:none")
	d.Set("stroke", "red")
	d.Set("stroke-width", "0")
	if got := d.String(); got != "fill:black;stroke:red;stroke-width:0" {
		t.Errorf("serialized form = %q", got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	in := "fill:#001122;stroke:none;opacity:0.5"
	if got := ParseDeclarations(in).String(); got != in {
		t.Errorf("round trip changed style: %q -> %q", in, got)
	}
}
