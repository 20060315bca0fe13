package poincare

import (
	"math"

	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
)

const (
	// normalizeRadius is the radius Normalize rescales points to.
	normalizeRadius = 0.5

	// boundaryShrink is the radius Scale falls back to when a result would
	// leave the ball.
	boundaryShrink = 0.99
)

// Compile-time check to ensure Ops satisfies the shared capability.
var _ geometry.Operations[Vector] = Ops{}

// Ops implements hyperbolic vector operations. The zero value is ready to use.
type Ops struct {
	flat euclidean.Ops
}

// Distance returns the geodesic distance between x and y:
//
//	d(x, y) = 2/sqrt(c) * acosh(1 + 2|x-y|² / ((1-|x|²)(1-|y|²)))
//
// where c is the magnitude of the curvature.
func (o Ops) Distance(x, y Vector) (float64, error) {
	if err := compatible(x, y); err != nil {
		return 0, err
	}
	c := math.Abs(x.curvature)

	nx := squaredNorm(x.data)
	ny := squaredNorm(y.data)
	d, err := o.flat.SquaredDistance(euclidean.Wrap(x.data), euclidean.Wrap(y.data))
	if err != nil {
		return 0, err
	}

	frac := 1 + 2*d/((1-nx)*(1-ny))
	ac, err := geometry.Acosh(frac)
	if err != nil {
		return 0, err
	}
	return (2 / math.Sqrt(c)) * ac, nil
}

// InnerProduct returns the Euclidean inner product weighted by the conformal
// factor 4/((1-|x|²)(1-|y|²)).
func (o Ops) InnerProduct(x, y Vector) (float64, error) {
	if err := compatible(x, y); err != nil {
		return 0, err
	}
	ip, err := o.flat.InnerProduct(euclidean.Wrap(x.data), euclidean.Wrap(y.data))
	if err != nil {
		return 0, err
	}
	conformal := 4 / ((1 - squaredNorm(x.data)) * (1 - squaredNorm(y.data)))
	return conformal * ip, nil
}

// Add is Möbius addition. See MobiusAddition.
func (o Ops) Add(x, y Vector) (Vector, error) {
	return o.MobiusAddition(x, y)
}

// MobiusAddition returns x ⊕ y. The operation is not commutative.
func (o Ops) MobiusAddition(x, y Vector) (Vector, error) {
	if err := compatible(x, y); err != nil {
		return Vector{}, err
	}
	dot, err := o.flat.InnerProduct(euclidean.Wrap(x.data), euclidean.Wrap(y.data))
	if err != nil {
		return Vector{}, err
	}
	nx := squaredNorm(x.data)
	ny := squaredNorm(y.data)

	denom := 1 + 2*dot + nx*ny
	a := 1 + 2*dot + ny
	b := 1 - nx

	out := make([]float64, len(x.data))
	for i := range out {
		out[i] = (a*x.data[i] + b*y.data[i]) / denom
	}
	return wrap(out, x.curvature)
}

// MobiusNegation returns the additive inverse of x under Möbius addition.
func (Ops) MobiusNegation(x Vector) Vector {
	out := make([]float64, len(x.data))
	for i, v := range x.data {
		out[i] = -v
	}
	return Vector{data: out, curvature: x.curvature}
}

// MobiusSubtraction returns x ⊕ (-y).
func (o Ops) MobiusSubtraction(x, y Vector) (Vector, error) {
	return o.MobiusAddition(x, o.MobiusNegation(y))
}

// Scale performs hyperbolic scalar multiplication, applying
//
//	factor = (1/tanh(s·atanh(|v|))) / |v|
//
// componentwise. Results that would reach the boundary are pulled back to 0.99
// of the unit radius. The zero vector scales to itself.
func (Ops) Scale(v Vector, s float64) (Vector, error) {
	n := math.Sqrt(squaredNorm(v.data))
	if n < geometry.Epsilon {
		return v, nil
	}
	at, err := geometry.Atanh(n)
	if err != nil {
		return Vector{}, err
	}

	out := make([]float64, len(v.data))
	t := math.Tanh(s * at)
	if t == 0 {
		// Infinite factor: the limit point sits on the boundary.
		for i, x := range v.data {
			out[i] = x * boundaryShrink / n
		}
		return wrap(out, v.curvature)
	}

	factor := (1 / t) / n
	for i, x := range v.data {
		out[i] = x * factor
	}
	if sq := squaredNorm(out); sq >= 1 {
		rescale := boundaryShrink / math.Sqrt(sq)
		for i := range out {
			out[i] *= rescale
		}
	}
	return wrap(out, v.curvature)
}

// Normalize rescales v to radius 0.5 while preserving its direction.
// It fails with geometry.ErrDegenerateVector on a near-zero input.
func (Ops) Normalize(v Vector) (Vector, error) {
	n := math.Sqrt(squaredNorm(v.data))
	if n < geometry.Epsilon {
		return Vector{}, geometry.ErrDegenerateVector
	}
	s := normalizeRadius / n
	out := make([]float64, len(v.data))
	for i, x := range v.data {
		out[i] = x * s
	}
	return wrap(out, v.curvature)
}

// ExponentialMap maps a tangent vector at the origin into the ball:
// exp(v) = tanh(|v|)/|v| · v. The zero vector maps to the origin.
//
// Very long tangent vectors saturate tanh to 1 in float64 and fail with
// *geometry.ErrOutOfBall.
func (Ops) ExponentialMap(v euclidean.Vector, curvature float64) (Vector, error) {
	n := v.Norm()
	if n < geometry.Epsilon {
		return Zeros(v.Dimension(), curvature)
	}
	s := math.Tanh(n) / n
	data := v.Components()
	for i := range data {
		data[i] *= s
	}
	return wrap(data, curvature)
}

// LogarithmicMap maps a point of the ball to the tangent space at the origin:
// log(x) = atanh(|x|)/|x| · x. It is the inverse of ExponentialMap.
func (Ops) LogarithmicMap(x Vector) (euclidean.Vector, error) {
	n := math.Sqrt(squaredNorm(x.data))
	if n < geometry.Epsilon {
		return euclidean.Zeros(len(x.data)), nil
	}
	at, err := geometry.Atanh(n)
	if err != nil {
		return euclidean.Vector{}, err
	}
	s := at / n
	out := make([]float64, len(x.data))
	for i, c := range x.data {
		out[i] = c * s
	}
	return euclidean.Wrap(out), nil
}

func compatible(x, y Vector) error {
	if len(x.data) != len(y.data) {
		return &geometry.ErrDimensionMismatch{Expected: len(x.data), Actual: len(y.data)}
	}
	if x.curvature != y.curvature {
		return &geometry.ErrCurvatureMismatch{Expected: x.curvature, Actual: y.curvature}
	}
	return nil
}
