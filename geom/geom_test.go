package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestMatrixMulApply(t *testing.T) {
	// translate after scale: point (1,1) -> (2,3) -> (12,23)
	m := Translate(10, 20).Mul(ScaleXY(2, 3))
	x, y := m.Apply(1, 1)
	if !near(x, 12) || !near(y, 23) {
		t.Fatalf("got (%g,%g), want (12,23)", x, y)
	}

	if d := m.Det(); !near(d, 6) {
		t.Fatalf("det = %g, want 6", d)
	}
	if j := m.JacobianSqrt(); !near(j, math.Sqrt(6)) {
		t.Fatalf("jacobian sqrt = %g", j)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, -3).Mul(Scale(2))
	inv, err := m.Invert()
	if err != nil {
		t.Fatal(err)
	}
	id := m.Mul(inv)
	want := Identity()
	for _, p := range [][2]float64{{0, 0}, {3, 7}, {-1, 2}} {
		x1, y1 := id.Apply(p[0], p[1])
		x2, y2 := want.Apply(p[0], p[1])
		if !near(x1, x2) || !near(y1, y2) {
			t.Fatalf("m*inv(m) is not identity at %v", p)
		}
	}

	if _, err := ScaleXY(1, 0).Invert(); err == nil {
		t.Fatal("expected error for singular matrix")
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in   string
		x, y float64 // image of (1,1)
	}{
		{"", 1, 1},
		{"matrix(1,0,0,1,10,20)", 11, 21},
		{"translate(5)", 6, 1},
		{"translate(5,7)", 6, 8},
		{"scale(2)", 2, 2},
		{"scale(2 3)", 2, 3},
		{"translate(10,0) scale(2)", 12, 2},
		{"rotate(90)", -1, 1},
	}
	for _, tt := range tests {
		m, err := ParseTransform(tt.in)
		if err != nil {
			t.Errorf("ParseTransform(%q): %v", tt.in, err)
			continue
		}
		x, y := m.Apply(1, 1)
		if !near(x, tt.x) || !near(y, tt.y) {
			t.Errorf("ParseTransform(%q)(1,1) = (%g,%g), want (%g,%g)", tt.in, x, y, tt.x, tt.y)
		}
	}

	for _, bad := range []string{"skewX(30)", "matrix(1,2,3)", "scale(a)", "rotate(45, 1, 2)"} {
		if _, err := ParseTransform(bad); err == nil {
			t.Errorf("ParseTransform(%q): expected error", bad)
		}
	}
}

func TestParseTransformRoundTrip(t *testing.T) {
	m := Translate(1.5, -2.25).Mul(ScaleXY(3, 0.5))
	got, err := ParseTransform(m.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("round trip %s -> %s", m, got)
	}
}

func TestAnchorPoints(t *testing.T) {
	b := BBox{X: 10, Y: 20, W: 100, H: 50}
	tests := []struct {
		a    Anchor
		x, y float64
	}{
		{AnchorTopLeft, 10, 20},
		{AnchorTopCenter, 60, 20},
		{AnchorTopRight, 110, 20},
		{AnchorMiddleLeft, 10, 45},
		{AnchorMiddleCenter, 60, 45},
		{AnchorMiddleRight, 110, 45},
		{AnchorBottomLeft, 10, 70},
		{AnchorBottomCenter, 60, 70},
		{AnchorBottomRight, 110, 70},
	}
	for _, tt := range tests {
		x, y := b.Point(tt.a)
		if !near(x, tt.x) || !near(y, tt.y) {
			t.Errorf("%s point = (%g,%g), want (%g,%g)", tt.a, x, y, tt.x, tt.y)
		}
	}
}

func TestParseAnchor(t *testing.T) {
	for _, a := range AnchorLabels {
		got, err := ParseAnchor(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAnchor(%q) = %q, %v", a, got, err)
		}
	}
	if a, err := ParseAnchor("middle  center"); err != nil || a != AnchorMiddleCenter {
		t.Errorf("extra whitespace not normalized: %q, %v", a, err)
	}
	if _, err := ParseAnchor("center middle"); err == nil {
		t.Error("expected error for swapped label")
	}
}

func TestComputeTransformMapsAnchors(t *testing.T) {
	prior := Prior{
		BBox:      BBox{X: 100, Y: 200, W: 40, H: 20, Space: SpaceDocument},
		Transform: Translate(100, 200).Mul(Scale(0.5)),
	}
	newBB := BBox{X: 0, Y: 0, W: 120, H: 30, Space: SpaceConverter}

	for _, anchor := range AnchorLabels {
		for _, scale := range []float64{1.0, 0.25, 3} {
			m := ComputeTransform(prior, newBB, anchor, scale)

			placed := newBB.Transformed(m, SpaceDocument)
			wantX, wantY := prior.BBox.Point(anchor)
			gotX, gotY := placed.Point(anchor)
			if !near(gotX, wantX) || !near(gotY, wantY) {
				t.Errorf("anchor %s scale %g: anchor maps to (%g,%g), want (%g,%g)",
					anchor, scale, gotX, gotY, wantX, wantY)
			}
		}
	}
}

func TestComputeTransformFlipY(t *testing.T) {
	prior := Prior{
		BBox:      BBox{X: 0, Y: 0, W: 10, H: 10, Space: SpaceDocument},
		Transform: Identity(),
		FlipY:     true,
	}
	newBB := BBox{X: 0, Y: 0, W: 10, H: 10, Space: SpaceConverter}

	m := ComputeTransform(prior, newBB, AnchorMiddleCenter, 1)
	if m.Det() >= 0 {
		t.Fatalf("expected orientation reversing transform, got %s", m)
	}
	placed := newBB.Transformed(m, SpaceDocument)
	x, y := placed.Point(AnchorMiddleCenter)
	if !near(x, 5) || !near(y, 5) {
		t.Fatalf("flipped content not re-anchored: (%g,%g)", x, y)
	}
}

func TestComputeTransformDegenerateBox(t *testing.T) {
	prior := Prior{
		BBox:      BBox{X: 50, Y: 60, W: 0, H: 30, Space: SpaceDocument},
		Transform: Identity(),
	}
	newBB := BBox{X: 0, Y: 0, W: 0, H: 12, Space: SpaceConverter}

	for _, anchor := range AnchorLabels {
		m := ComputeTransform(prior, newBB, anchor, 2)
		for _, v := range []float64{m.A, m.B, m.C, m.D, m.E, m.F} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("anchor %s: transform not finite: %s", anchor, m)
			}
		}
		placed := newBB.Transformed(m, SpaceDocument)
		gotX, gotY := placed.Point(anchor)
		wantX, wantY := prior.BBox.Point(anchor)
		if !near(gotX, wantX) || !near(gotY, wantY) {
			t.Errorf("anchor %s: (%g,%g), want (%g,%g)", anchor, gotX, gotY, wantX, wantY)
		}
	}
}

func TestComputeInsertTransform(t *testing.T) {
	ins := Insertion{X: 200, Y: 100, Context: Translate(50, 0)}
	newBB := BBox{X: 10, Y: 10, W: 20, H: 10, Space: SpaceConverter}

	m, err := ComputeInsertTransform(ins, newBB, AnchorMiddleCenter, 2)
	if err != nil {
		t.Fatal(err)
	}

	// anchor point must land on the insertion point once the context
	// transform is applied on top
	ax, ay := newBB.Point(AnchorMiddleCenter)
	x, y := ins.Context.Mul(m).Apply(ax, ay)
	if !near(x, 200) || !near(y, 100) {
		t.Fatalf("anchor landed at (%g,%g), want (200,100)", x, y)
	}

	// and the content is scaled by the requested factor
	if j := m.JacobianSqrt(); !near(j, 2) {
		t.Fatalf("scale = %g, want 2", j)
	}
}
