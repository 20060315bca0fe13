// Package flat provides an exact brute-force search engine over Euclidean or
// Poincaré vectors.
package flat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/index"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
	"github.com/hupe1980/hypervec/poincare"
	"github.com/hupe1980/hypervec/queue"
)

// Compile-time check to ensure Flat satisfies the engine contract.
var _ index.Engine = (*Flat)(nil)

// IndexType is the type reported in index statistics.
const IndexType = "flat"

// minChunk is the smallest number of records a scoring worker handles.
const minChunk = 256

// Options contains configuration options for the flat engine.
type Options struct {
	// Parallelism bounds the number of scoring workers. Values <= 0 use
	// runtime.GOMAXPROCS(0).
	Parallelism int

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the flat engine.
var DefaultOptions = Options{
	Parallelism: 0,
}

// Flat scans every record of a collection on each search.
//
// It keeps no secondary structure. BuildIndex, AddToIndex and RemoveFromIndex
// only maintain the statistics reported by Stats.
type Flat struct {
	source index.RecordSource
	opts   Options
	logger *slog.Logger

	euclid euclidean.Ops
	hyper  poincare.Ops

	mu    sync.RWMutex
	stats map[string]*index.Stats
}

// New creates a flat engine reading from source.
func New(source index.RecordSource, optFns ...func(o *Options)) *Flat {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Flat{
		source: source,
		opts:   opts,
		logger: logger,
		stats:  make(map[string]*index.Stats),
	}
}

// Search returns the k records of collection closest to query.
//
// Results are sorted by ascending distance. Records at equal distance keep
// the order of the source snapshot; callers should not rely on it.
func (f *Flat) Search(ctx context.Context, collection string, query []float32, k int, opts index.SearchOptions) ([]model.SearchResult, error) {
	if !f.source.CollectionExists(collection) {
		return nil, fmt.Errorf("%w: %s", index.ErrNoSuchCollection, collection)
	}
	if k <= 0 {
		return nil, index.ErrInvalidK
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	curvature, err := f.prepare(collection, query, &opts)
	if err != nil {
		return nil, err
	}

	score, err := f.scorer(query, opts.Geometry, curvature)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	records, err := f.source.AllRecords(collection)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []model.SearchResult{}, nil
	}

	positions := f.filter(records, opts.Filter)
	if len(positions) == 0 {
		return []model.SearchResult{}, nil
	}

	top, err := f.scoreAll(ctx, records, positions, k, score)
	if err != nil {
		return nil, err
	}

	best := top.Sorted()
	results := make([]model.SearchResult, len(best))
	for i, c := range best {
		rec := records[c.Pos].Clone()
		results[i] = model.SearchResult{
			ID:       rec.ID,
			Vector:   slices.Clone(rec.Vector),
			Distance: c.Distance,
			Record:   rec,
		}
	}

	f.logger.Debug("flat search",
		"collection", collection,
		"geometry", opts.Geometry,
		"scanned", len(records),
		"candidates", len(positions),
		"k", k,
		"duration", time.Since(start),
	)

	return results, nil
}

// prepare validates the query against the collection configuration, when
// the source provides one, and returns the curvature to search with.
func (f *Flat) prepare(collection string, query []float32, opts *index.SearchOptions) (float64, error) {
	curvature := opts.Curvature
	if curvature == 0 {
		curvature = geometry.DefaultCurvature
	}

	cs, ok := f.source.(index.ConfigSource)
	if !ok {
		return curvature, nil
	}

	cfg, err := cs.CollectionConfig(collection)
	if err != nil {
		return 0, err
	}
	if cfg.Dimension > 0 && len(query) != cfg.Dimension {
		return 0, &geometry.ErrDimensionMismatch{Expected: cfg.Dimension, Actual: len(query)}
	}
	if cfg.Geometry == geometry.Poincare {
		curvature = cfg.EffectiveCurvature()
	}
	return curvature, nil
}

// scorer returns a function computing the distance from query to a stored
// vector in the requested geometry.
func (f *Flat) scorer(query []float32, kind geometry.Kind, curvature float64) (func(v []float32) (float64, error), error) {
	switch kind {
	case geometry.Euclidean:
		q := euclidean.FromFloat32(query)
		return func(v []float32) (float64, error) {
			return f.euclid.Distance(q, euclidean.FromFloat32(v))
		}, nil
	case geometry.Poincare:
		q, err := poincare.FromFloat32(query, curvature)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		return func(v []float32) (float64, error) {
			p, err := poincare.FromFloat32(v, curvature)
			if err != nil {
				return 0, err
			}
			return f.hyper.Distance(q, p)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported geometry %v", kind)
	}
}

// filter returns the snapshot positions of records satisfying expr.
func (f *Flat) filter(records []model.VectorRecord, expr metadata.Expr) []uint32 {
	if metadata.IsNil(expr) {
		positions := make([]uint32, len(records))
		for i := range positions {
			positions[i] = uint32(i)
		}
		return positions
	}

	docs := make([]metadata.Document, len(records))
	for i := range records {
		docs[i] = records[i].Metadata
	}

	sel := metadata.Select(expr, docs)
	f.logger.Debug("flat filter", "filter", expr.String(), "selected", sel.Cardinality(), "bitmapBytes", sel.SizeInBytes())
	if sel.IsEmpty() {
		return nil
	}
	return sel.ToArray()
}

// scoreAll scores the records at positions and keeps the k best. Each
// worker selects from its own chunk and the partial results are merged.
func (f *Flat) scoreAll(ctx context.Context, records []model.VectorRecord, positions []uint32, k int, score func([]float32) (float64, error)) (*queue.TopK, error) {
	workers := f.opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := max(minChunk, (len(positions)+workers-1)/workers)
	parts := make([]*queue.TopK, (len(positions)+chunk-1)/chunk)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for w := range parts {
		lo := w * chunk
		hi := min(lo+chunk, len(positions))
		g.Go(func() error {
			top := queue.NewTopK(k)
			for i := lo; i < hi; i++ {
				if (i-lo)%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				pos := int(positions[i])
				d, err := score(records[pos].Vector)
				if err != nil {
					return fmt.Errorf("record %s: %w", records[pos].ID, err)
				}
				top.Push(queue.Item{Pos: pos, Distance: d})
			}
			parts[w] = top
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := parts[0]
	for _, p := range parts[1:] {
		top.Merge(p)
	}
	return top, nil
}
