package hypervec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/index"
	"github.com/hupe1980/hypervec/resource"
	"github.com/hupe1980/hypervec/store"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFound is returned when a collection or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCollectionExists is returned when creating a collection twice.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("db is closed")

	// ErrMemoryLimit is returned when an insert would exceed the memory limit.
	ErrMemoryLimit = resource.ErrMemoryLimit
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrOutOfBall indicates a vector on or outside the Poincaré ball boundary.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrOutOfBall struct {
	Norm  float64
	cause error
}

func (e *ErrOutOfBall) Error() string {
	return fmt.Sprintf("vector norm %g lies outside the Poincaré ball", e.Norm)
}

func (e *ErrOutOfBall) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, store.ErrCollectionNotFound) ||
		errors.Is(err, store.ErrRecordNotFound) ||
		errors.Is(err, index.ErrNoSuchCollection) ||
		errors.Is(err, index.ErrIndexNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, store.ErrCollectionExists) {
		return fmt.Errorf("%w: %w", ErrCollectionExists, err)
	}

	// Dimension and argument normalization.
	var dm *geometry.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var oob *geometry.ErrOutOfBall
	if errors.As(err, &oob) {
		return &ErrOutOfBall{Norm: oob.Norm, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
