package geometry

import (
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultCurvature is the curvature used when none is configured.
	DefaultCurvature = -1.0

	// Epsilon is the norm below which a vector is treated as zero.
	Epsilon = 1e-10
)

// Kind identifies the metric space a vector lives in.
type Kind uint8

const (
	// Euclidean is flat space.
	Euclidean Kind = iota
	// Poincare is the Poincaré ball model of hyperbolic space.
	Poincare
)

func (k Kind) String() string {
	switch k {
	case Euclidean:
		return "euclidean"
	case Poincare:
		return "poincare"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseKind parses a geometry name as used in configuration files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "flat", "l2":
		return Euclidean, nil
	case "poincare", "poincare_ball", "hyperbolic", "hyperbolic_poincare":
		return Poincare, nil
	default:
		return 0, fmt.Errorf("unknown geometry %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != Euclidean && k != Poincare {
		return nil, fmt.Errorf("unknown geometry %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Operations is the capability shared by the Euclidean and Poincaré algebras.
//
// Implementations are stateless and safe for concurrent use.
type Operations[T any] interface {
	// Distance returns the metric distance between a and b.
	Distance(a, b T) (float64, error)
	// InnerProduct returns the (possibly conformally weighted) inner product.
	InnerProduct(a, b T) (float64, error)
	// Add returns the geometry's notion of vector addition.
	Add(a, b T) (T, error)
	// Scale returns the geometry's notion of scalar multiplication.
	Scale(v T, s float64) (T, error)
	// Normalize rescales v to the geometry's reference length.
	Normalize(v T) (T, error)
}

// Acosh returns the inverse hyperbolic cosine of x.
// It fails with *ErrDomain when x < 1.
func Acosh(x float64) (float64, error) {
	if !(x >= 1) {
		return 0, &ErrDomain{Func: "acosh", Arg: x}
	}
	return math.Acosh(x), nil
}

// Atanh returns the inverse hyperbolic tangent of x.
// It fails with *ErrDomain when x is outside (-1, 1).
func Atanh(x float64) (float64, error) {
	if !(x > -1 && x < 1) {
		return 0, &ErrDomain{Func: "atanh", Arg: x}
	}
	return math.Atanh(x), nil
}

// ValidateCurvature reports whether c is a usable curvature (finite and negative).
func ValidateCurvature(c float64) error {
	if !(c < 0) || math.IsInf(c, -1) {
		return &ErrInvalidCurvature{Curvature: c}
	}
	return nil
}
