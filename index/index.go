package index

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNoSuchCollection is returned when a search targets an unknown collection.
	ErrNoSuchCollection = errors.New("collection does not exist")

	// ErrIndexNotFound is returned by Stats for a collection that has no index.
	ErrIndexNotFound = errors.New("index not found")
)

// RecordSource supplies the records a search scans.
//
// AllRecords must return a point-in-time snapshot: a search observes the
// records as they were when the snapshot was taken.
type RecordSource interface {
	ListCollections() []string
	AllRecords(collection string) ([]model.VectorRecord, error)
	CollectionExists(collection string) bool
}

// ConfigSource is optionally implemented by a RecordSource that knows the
// shape of its collections.
type ConfigSource interface {
	CollectionConfig(collection string) (model.CollectionConfig, error)
}

// SearchOptions configures a single search.
type SearchOptions struct {
	// Geometry selects the distance function.
	Geometry geometry.Kind
	// Filter restricts candidates. Nil matches every record.
	Filter metadata.Expr
	// Curvature used for Poincaré distances when the source does not provide
	// one. Zero means geometry.DefaultCurvature.
	Curvature float64
}

// Engine is implemented by similarity search engines.
type Engine interface {
	Search(ctx context.Context, collection string, query []float32, k int, opts SearchOptions) ([]model.SearchResult, error)
	BuildIndex(ctx context.Context, collection string, params map[string]any) error
	AddToIndex(collection string, ids []string) error
	RemoveFromIndex(collection string, ids []string) error
	Stats(collection string) (Stats, error)
	IndexExists(collection string) bool
	DeleteIndex(collection string) error
}

// Stats describes the index built for a collection.
type Stats struct {
	Collection    string
	Type          string
	Geometry      geometry.Kind
	VectorCount   int
	Dimension     int
	SizeBytes     int64
	BuildDuration time.Duration
	BuiltAt       time.Time
	Parameters    map[string]any
	Metrics       map[string]any
}

// Clone returns a copy that shares no maps with s.
func (s Stats) Clone() Stats {
	s.Parameters = maps.Clone(s.Parameters)
	s.Metrics = maps.Clone(s.Metrics)
	return s
}
