package shim

import (
	"errors"
	"fmt"
)

// ErrMatrixInit is returned when a matrix is built from the wrong number of
// values.
var ErrMatrixInit = errors.New("shim: matrix init needs 0 or 6 values")

// Matrix is a 2D affine transform laid out like DOMMatrix:
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

// NewMatrix builds a matrix from the six values a..f, or the identity when
// none are given.
func NewMatrix(values ...float64) (Matrix, error) {
	switch len(values) {
	case 0:
		return Identity(), nil
	case 6:
		return Matrix{values[0], values[1], values[2], values[3], values[4], values[5]}, nil
	default:
		return Matrix{}, fmt.Errorf("%w: got %d", ErrMatrixInit, len(values))
	}
}

// Multiply returns m × o, so o is applied to a point first.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

func (m Matrix) Translate(tx, ty float64) Matrix {
	return m.Multiply(Matrix{A: 1, D: 1, E: tx, F: ty})
}

func (m Matrix) Scale(sx, sy float64) Matrix {
	return m.Multiply(Matrix{A: sx, D: sy})
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

func (m Matrix) Values() [6]float64 {
	return [6]float64{m.A, m.B, m.C, m.D, m.E, m.F}
}
