// Package geom implements the affine geometry used to place rendered
// fragments into a host SVG document.
package geom

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Matrix is an affine transform in SVG order:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C, D, E, F float64
}

func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

func Scale(s float64) Matrix {
	return ScaleXY(s, s)
}

func ScaleXY(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// FlipY is a vertical reflection.
func FlipY() Matrix {
	return Matrix{A: 1, D: -1}
}

// Mul returns m*n, the transform applying n first and m after it.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply maps a point through the transform.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// JacobianSqrt is the square root of the absolute transform determinant -
// the uniform scale factor the transform effectively applies to areas.
func (m Matrix) JacobianSqrt() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

// Invert returns the inverse transform. Singular matrices have no inverse.
func (m Matrix) Invert() (Matrix, error) {
	det := m.Det()
	if det == 0 {
		return Matrix{}, fmt.Errorf("transform %s is singular", m)
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, nil
}

// String renders the transform as an SVG transform attribute value.
func (m Matrix) String() string {
	return fmt.Sprintf("matrix(%s,%s,%s,%s,%s,%s)",
		fmtNum(m.A), fmtNum(m.B), fmtNum(m.C), fmtNum(m.D), fmtNum(m.E), fmtNum(m.F))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var transformRe = regexp.MustCompile(`(matrix|translate|scale|rotate)\s*\(([^)]*)\)`)

// ParseTransform parses an SVG transform attribute value. An empty value is
// the identity. Unsupported primitives (skewX/skewY) are rejected so a
// malformed host document does not silently misplace content.
func ParseTransform(value string) (Matrix, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return Identity(), nil
	}

	m := Identity()
	for _, sub := range transformRe.FindAllStringSubmatch(value, -1) {
		args, err := parseArgs(sub[2])
		if err != nil {
			return Matrix{}, fmt.Errorf("bad transform %q: %w", value, err)
		}
		var next Matrix
		switch sub[1] {
		case "matrix":
			if len(args) != 6 {
				return Matrix{}, fmt.Errorf("bad transform %q: matrix needs 6 numbers", value)
			}
			next = Matrix{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}
		case "translate":
			switch len(args) {
			case 1:
				next = Translate(args[0], 0)
			case 2:
				next = Translate(args[0], args[1])
			default:
				return Matrix{}, fmt.Errorf("bad transform %q: translate needs 1 or 2 numbers", value)
			}
		case "scale":
			switch len(args) {
			case 1:
				next = Scale(args[0])
			case 2:
				next = ScaleXY(args[0], args[1])
			default:
				return Matrix{}, fmt.Errorf("bad transform %q: scale needs 1 or 2 numbers", value)
			}
		case "rotate":
			if len(args) != 1 {
				// rotation about a point is not produced by any of our converters
				return Matrix{}, fmt.Errorf("bad transform %q: only plain rotate is supported", value)
			}
			rad := args[0] * math.Pi / 180
			sin, cos := math.Sin(rad), math.Cos(rad)
			next = Matrix{A: cos, B: sin, C: -sin, D: cos}
		}
		m = m.Mul(next)
	}

	// make sure nothing unrecognized was silently dropped
	stripped := transformRe.ReplaceAllString(value, "")
	if len(strings.Trim(stripped, " ,\t\r\n")) > 0 {
		return Matrix{}, fmt.Errorf("unsupported transform %q", value)
	}
	return m, nil
}

func parseArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	args := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		args = append(args, v)
	}
	return args, nil
}
