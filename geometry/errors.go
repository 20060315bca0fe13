package geometry

import (
	"errors"
	"fmt"
)

// ErrDegenerateVector is returned when normalizing a vector whose norm is
// below Epsilon.
var ErrDegenerateVector = errors.New("degenerate vector: norm is too close to zero")

// ErrDimensionMismatch indicates operands with different component counts.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrCurvatureMismatch indicates hyperbolic operands with different curvature.
type ErrCurvatureMismatch struct {
	Expected float64
	Actual   float64
}

func (e *ErrCurvatureMismatch) Error() string {
	return fmt.Sprintf("curvature mismatch: expected %g, got %g", e.Expected, e.Actual)
}

// ErrDomain indicates an argument outside the domain of acosh or atanh.
type ErrDomain struct {
	Func string
	Arg  float64
}

func (e *ErrDomain) Error() string {
	switch e.Func {
	case "acosh":
		return fmt.Sprintf("domain error: acosh requires x >= 1, got %g", e.Arg)
	case "atanh":
		return fmt.Sprintf("domain error: atanh requires -1 < x < 1, got %g", e.Arg)
	default:
		return fmt.Sprintf("domain error: %s(%g)", e.Func, e.Arg)
	}
}

// ErrOutOfBall indicates a point that violates the open unit ball invariant.
// Norm is the Euclidean norm of the offending point.
type ErrOutOfBall struct {
	Norm float64
}

func (e *ErrOutOfBall) Error() string {
	return fmt.Sprintf("vector lies outside the poincare ball (norm >= 1): %g", e.Norm)
}

// ErrInvalidRadius indicates a conversion radius outside (0, 1).
type ErrInvalidRadius struct {
	Radius float64
}

func (e *ErrInvalidRadius) Error() string {
	return fmt.Sprintf("invalid radius %g: must be in (0, 1)", e.Radius)
}

// ErrInvalidCurvature indicates a curvature that is not a finite negative number.
type ErrInvalidCurvature struct {
	Curvature float64
}

func (e *ErrInvalidCurvature) Error() string {
	return fmt.Sprintf("invalid curvature %g: must be negative", e.Curvature)
}
