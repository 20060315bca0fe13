package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
)

// VectorRecord is a stored vector with its metadata.
type VectorRecord struct {
	ID        string
	Geometry  geometry.Kind
	Vector    []float32
	Metadata  metadata.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dimension returns the number of vector components.
func (r *VectorRecord) Dimension() int { return len(r.Vector) }

// Clone returns a deep copy of the record.
func (r *VectorRecord) Clone() *VectorRecord {
	c := *r
	c.Vector = slices.Clone(r.Vector)
	c.Metadata = r.Metadata.Clone()
	return &c
}

// SearchResult is one hit of a similarity search.
type SearchResult struct {
	ID string
	// Vector is a copy of the record's vector.
	Vector []float32
	// Distance to the query in the searched geometry. Lower is closer.
	Distance float64
	// Record is the record snapshot the hit was scored against.
	Record *VectorRecord
}

// Score maps the distance to (0, 1]; identical vectors score 1.
func (r SearchResult) Score() float64 {
	return 1 / (1 + r.Distance)
}

// CollectionConfig describes the shape and storage of a collection.
type CollectionConfig struct {
	Dimension   int
	Geometry    geometry.Kind
	Format      codec.Format
	Compression codec.Compression
	// Curvature of the Poincaré ball. Ignored for Euclidean collections.
	// Zero means geometry.DefaultCurvature.
	Curvature float64
	// Schema optionally constrains metadata field types.
	Schema metadata.Schema
}

// EuclideanConfig returns a Euclidean collection configuration.
func EuclideanConfig(dim int, format codec.Format) CollectionConfig {
	return CollectionConfig{Dimension: dim, Geometry: geometry.Euclidean, Format: format}
}

// PoincareConfig returns a Poincaré collection configuration with the
// default curvature.
func PoincareConfig(dim int, format codec.Format) CollectionConfig {
	return CollectionConfig{
		Dimension: dim,
		Geometry:  geometry.Poincare,
		Format:    format,
		Curvature: geometry.DefaultCurvature,
	}
}

// Validate checks the configuration.
func (c CollectionConfig) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("invalid dimension %d: must be positive", c.Dimension)
	}
	switch c.Geometry {
	case geometry.Euclidean:
	case geometry.Poincare:
		if c.Curvature != 0 {
			if err := geometry.ValidateCurvature(c.Curvature); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("invalid geometry %v", c.Geometry)
	}
	if _, err := codec.New(c.Format, c.Compression); err != nil {
		return err
	}
	return nil
}

// EffectiveCurvature returns the curvature searches in this collection use.
func (c CollectionConfig) EffectiveCurvature() float64 {
	if c.Curvature == 0 {
		return geometry.DefaultCurvature
	}
	return c.Curvature
}

// VectorSizeBytes returns the uncompressed at-rest size of one vector.
func (c CollectionConfig) VectorSizeBytes() int {
	return c.Format.BytesPerVector(c.Dimension)
}

// CollectionStats summarizes a collection.
type CollectionStats struct {
	Name           string
	VectorCount    int
	TotalSizeBytes int64
	Dimension      int
	Geometry       geometry.Kind
	Format         codec.Format
	Compression    codec.Compression
}

// AvgBytesPerVector returns the mean stored size per vector.
func (s CollectionStats) AvgBytesPerVector() float64 {
	if s.VectorCount == 0 {
		return 0
	}
	return float64(s.TotalSizeBytes) / float64(s.VectorCount)
}

// HumanSize renders TotalSizeBytes, e.g. "1.2 kB".
func (s CollectionStats) HumanSize() string {
	return humanize.Bytes(uint64(max(s.TotalSizeBytes, 0)))
}
