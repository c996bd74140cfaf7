package smath

// Some basic 2D linear algebra, used for the coordinate transforms that
// shear/magnify/rotate surface brightness profiles

import(
	"fmt"
	"math"
)

type Vec2 [2]float64

// Row-major 2x2 matrix
type Mat2 [4]float64

func Identity() Mat2 {
	return Mat2{1, 0,   0, 1}
}

func (a Mat2)Mult(b Mat2) Mat2 {
	return Mat2{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
	}
}

func (m Mat2)Apply(v Vec2) Vec2 {
	return Vec2{
		m[0]*v[0] + m[1]*v[1],
		m[2]*v[0] + m[3]*v[1],
	}
}

func (m Mat2)Det() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

func (m Mat2)Inverse() Mat2 {
	d := m.Det()
	return Mat2{m[3] / d, -m[1] / d, -m[2] / d, m[0] / d}
}

func (m Mat2)Scale(s float64) Mat2 {
	return Mat2{m[0] * s, m[1] * s, m[2] * s, m[3] * s}
}

func (m Mat2)String() string {
	return fmt.Sprintf("[%10f, %10f]\n[%10f, %10f]\n", m[0], m[1], m[2], m[3])
}

// EtaShear builds the unit-determinant distortion matrix for a conformal
// shear given as (eta1, eta2), where |eta| = ln(a/b)
func EtaShear(eta1, eta2 float64) Mat2 {
	eta := math.Hypot(eta1, eta2)
	if eta == 0 {
		return Identity()
	}
	phi := 0.5 * math.Atan2(eta2, eta1)
	c, s := math.Cos(phi), math.Sin(phi)
	rot  := Mat2{c, -s,   s, c}
	diag := Mat2{math.Exp(eta / 2), 0,   0, math.Exp(-eta / 2)}
	return rot.Mult(diag).Mult(Mat2{c, s,   -s, c})
}

// GShear builds the distortion matrix for a reduced shear (g1, g2).
// The leading factor keeps the determinant at 1, so area (flux) is preserved.
func GShear(g1, g2 float64) Mat2 {
	gsq := g1*g1 + g2*g2
	if gsq >= 1 {
		// Caller should have rejected this; return identity rather than NaNs
		return Identity()
	}
	norm := 1.0 / math.Sqrt(1.0-gsq)
	return Mat2{1 + g1, g2,   g2, 1 - g1}.Scale(norm)
}

// Dilate builds an isotropic magnification by linear scale factor s
func Dilate(s float64) Mat2 {
	return Mat2{s, 0,   0, s}
}
