package hypervec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hypervec/config"
	"github.com/hupe1980/hypervec/convert"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/index"
	"github.com/hupe1980/hypervec/index/flat"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
	"github.com/hupe1980/hypervec/resource"
	"github.com/hupe1980/hypervec/store"
)

// DB ties an in-memory vector store to an exact search engine and a
// curvature learner.
//
// All methods are safe for concurrent use. After Close every method returns
// ErrClosed.
type DB struct {
	store   *store.Memory
	budget  *resource.Budget
	engine  index.Engine
	conv    *convert.Converter
	logger  *Logger
	metrics MetricsCollector

	defaultK    int
	memoryLimit int64
	learnKind   curvature.Kind
	learnOpts   curvature.Options
	parallelism int

	learnMu  sync.Mutex
	learners map[curvature.Kind]curvature.Learner
	adaptive *curvature.AdaptiveConverter

	closed atomic.Bool
}

// Open creates a DB.
func Open(optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)

	var (
		file *config.File
		err  error
	)
	if o.configFile != "" {
		if file, err = config.Load(o.configFile); err != nil {
			return nil, err
		}
	}

	logger := o.logger
	if logger == nil {
		logger = NoopLogger()
		if file != nil && file.LogLevel != "" {
			level, err := file.Level()
			if err != nil {
				return nil, err
			}
			logger = NewTextLogger(level)
		}
	}

	mc := o.metricsCollector
	if mc == nil {
		mc = NoopMetricsCollector{}
	}

	db := &DB{
		logger:      logger,
		metrics:     mc,
		defaultK:    config.DefaultK,
		learnKind:   o.learner,
		learnOpts:   curvature.DefaultOptions(),
		parallelism: o.parallelism,
		memoryLimit: o.memoryLimit,
		learners:    make(map[curvature.Kind]curvature.Learner),
	}

	var collections map[string]model.CollectionConfig
	if file != nil {
		if err := db.applyFile(file, o); err != nil {
			return nil, err
		}
		if collections, err = file.CollectionConfigs(); err != nil {
			return nil, err
		}
	}
	if o.learnOptions != nil {
		if err := o.learnOptions.Validate(); err != nil {
			return nil, err
		}
		db.learnOpts = *o.learnOptions
	}

	db.budget = resource.NewBudget(db.memoryLimit)
	db.store = store.NewMemory(func(so *store.Options) {
		so.Logger = logger.Logger
		so.Budget = db.budget
	})
	db.engine = flat.New(db.store, func(fo *flat.Options) {
		fo.Parallelism = db.parallelism
		fo.Logger = logger.Logger
	})
	db.conv = convert.New(convert.WithParallelism(db.parallelism))

	learner, err := db.learner(db.learnKind)
	if err != nil {
		return nil, err
	}
	db.adaptive = curvature.NewAdaptiveConverter(learner, db.conv)

	for name, cfg := range collections {
		if err := db.store.CreateCollection(name, cfg); err != nil {
			return nil, translateError(err)
		}
		logger.Info("collection created from config", "collection", name, "geometry", cfg.Geometry)
	}

	return db, nil
}

func (db *DB) applyFile(file *config.File, o options) error {
	db.defaultK = file.Search.DefaultK
	if o.parallelism == 0 {
		db.parallelism = file.Search.Parallelism
	}
	if o.memoryLimit == 0 {
		limit, err := file.MemoryLimitBytes()
		if err != nil {
			return err
		}
		db.memoryLimit = limit
	}
	if o.learnOptions != nil {
		return nil
	}
	kind, err := file.Curvature.LearnerKind()
	if err != nil {
		return err
	}
	opts, err := file.Curvature.Options()
	if err != nil {
		return err
	}
	db.learnKind = kind
	db.learnOpts = opts
	return nil
}

// Logger returns the DB logger.
func (db *DB) Logger() *Logger { return db.logger }

// MemoryUsage returns the encoded vector bytes held across all collections.
func (db *DB) MemoryUsage() int64 { return db.budget.Usage() }

// DefaultK returns the k configured for searches that do not choose one.
func (db *DB) DefaultK() int { return db.defaultK }

// CreateCollection creates an empty collection.
func (db *DB) CreateCollection(name string, cfg model.CollectionConfig) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.store.CreateCollection(name, cfg); err != nil {
		return translateError(err)
	}
	db.logger.Debug("collection created", "collection", name, "geometry", cfg.Geometry, "dimension", cfg.Dimension)
	return nil
}

// DeleteCollection removes a collection and its index statistics.
func (db *DB) DeleteCollection(name string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.store.DeleteCollection(name); err != nil {
		return translateError(err)
	}
	if db.engine.IndexExists(name) {
		if err := db.engine.DeleteIndex(name); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// Collections returns the collection names in lexical order.
func (db *DB) Collections() ([]string, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	return db.store.ListCollections(), nil
}

// CollectionConfig returns the configuration of a collection.
func (db *DB) CollectionConfig(name string) (model.CollectionConfig, error) {
	if db.closed.Load() {
		return model.CollectionConfig{}, ErrClosed
	}
	cfg, err := db.store.CollectionConfig(name)
	return cfg, translateError(err)
}

// Insert stores a vector and returns its generated ID.
func (db *DB) Insert(ctx context.Context, collection string, vector []float32, meta metadata.Document) (string, error) {
	if db.closed.Load() {
		return "", ErrClosed
	}
	start := time.Now()
	id, err := db.insert(ctx, collection, vector, meta)
	db.metrics.RecordInsert(time.Since(start), err)
	db.logger.LogInsert(ctx, collection, 1, err)
	return id, err
}

func (db *DB) insert(ctx context.Context, collection string, vector []float32, meta metadata.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := db.store.Insert(collection, vector, meta)
	if err != nil {
		return "", translateError(err)
	}
	if err := db.engine.AddToIndex(collection, []string{id}); err != nil {
		return "", translateError(err)
	}
	return id, nil
}

// InsertBatch stores vectors with their metadata. metas may be nil;
// otherwise it must match vectors in length. Either every vector is stored
// or none is.
func (db *DB) InsertBatch(ctx context.Context, collection string, vectors [][]float32, metas []metadata.Document) ([]string, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	ids, err := db.insertBatch(ctx, collection, vectors, metas)
	failed := 0
	if err != nil {
		failed = len(vectors)
	}
	db.metrics.RecordBatchInsert(len(vectors), failed, time.Since(start))
	db.logger.LogInsert(ctx, collection, len(vectors), err)
	return ids, err
}

func (db *DB) insertBatch(ctx context.Context, collection string, vectors [][]float32, metas []metadata.Document) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := db.store.InsertBatch(collection, vectors, metas)
	if err != nil {
		return nil, translateError(err)
	}
	if err := db.engine.AddToIndex(collection, ids); err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

// Get returns a copy of a record.
func (db *DB) Get(collection, id string) (*model.VectorRecord, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	rec, err := db.store.Get(collection, id)
	if err != nil {
		return nil, translateError(err)
	}
	return rec, nil
}

// Find returns the records whose metadata match expr, in insertion order.
func (db *DB) Find(collection string, expr metadata.Expr) ([]model.VectorRecord, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	recs, err := db.store.Find(collection, expr)
	if err != nil {
		return nil, translateError(err)
	}
	return recs, nil
}

// Delete removes a record.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	err := db.delete(ctx, collection, id)
	db.metrics.RecordDelete(time.Since(start), err)
	db.logger.LogDelete(ctx, collection, id, err)
	return err
}

func (db *DB) delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := db.store.Delete(collection, id); err != nil {
		return translateError(err)
	}
	return translateError(db.engine.RemoveFromIndex(collection, []string{id}))
}

// UpdateMetadata replaces the metadata of a record.
func (db *DB) UpdateMetadata(collection, id string, meta metadata.Document) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return translateError(db.store.UpdateMetadata(collection, id, meta))
}

// UpdateVector replaces the vector of a record.
func (db *DB) UpdateVector(collection, id string, vector []float32) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return translateError(db.store.UpdateVector(collection, id, vector))
}

// Search returns the k records nearest to query, closest first.
//
// The search runs in the collection's geometry unless WithGeometry overrides
// it. Equal distances keep insertion order.
func (db *DB) Search(ctx context.Context, collection string, query []float32, k int, optFns ...SearchOption) ([]model.SearchResult, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	results, err := db.search(ctx, collection, query, k, optFns)
	db.metrics.RecordSearch(k, time.Since(start), err)
	db.logger.LogSearch(ctx, collection, k, len(results), err)
	return results, err
}

func (db *DB) search(ctx context.Context, collection string, query []float32, k int, optFns []SearchOption) ([]model.SearchResult, error) {
	var so searchOptions
	for _, fn := range optFns {
		fn(&so)
	}

	opts := index.SearchOptions{
		Filter:    so.filter,
		Curvature: so.curvature,
	}
	if so.geometry != nil {
		opts.Geometry = *so.geometry
	} else {
		cfg, err := db.store.CollectionConfig(collection)
		if err != nil {
			return nil, translateError(err)
		}
		opts.Geometry = cfg.Geometry
	}

	results, err := db.engine.Search(ctx, collection, query, k, opts)
	if err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

// LearnCurvature learns a curvature for h. The learned value becomes the
// curvature ConvertBatch uses.
//
// Learners are created once per kind and reused. A nil opts uses the options
// given to Open.
func (db *DB) LearnCurvature(ctx context.Context, h curvature.Hierarchy, kind curvature.Kind, opts *curvature.Options) (float64, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}
	if opts == nil {
		o := db.learnOpts
		opts = &o
	}

	db.learnMu.Lock()
	defer db.learnMu.Unlock()

	start := time.Now()
	c, err := db.learn(ctx, h, kind, opts)
	d := time.Since(start)
	db.metrics.RecordLearn(kind.String(), d, err)
	db.logger.LogLearn(ctx, kind.String(), c, d, err)
	return c, err
}

func (db *DB) learn(ctx context.Context, h curvature.Hierarchy, kind curvature.Kind, opts *curvature.Options) (float64, error) {
	if kind == db.learnKind {
		return db.adaptive.Learn(ctx, h, opts)
	}
	learner, err := db.learner(kind)
	if err != nil {
		return 0, err
	}
	c, err := learner.Learn(ctx, h, opts)
	if err != nil {
		return 0, err
	}
	if err := db.adaptive.SetCurvature(c); err != nil {
		return 0, err
	}
	return c, nil
}

// learner returns the cached learner of kind. Callers hold learnMu or run
// before the DB is shared.
func (db *DB) learner(kind curvature.Kind) (curvature.Learner, error) {
	if l, ok := db.learners[kind]; ok {
		return l, nil
	}
	l, err := curvature.New(kind, curvature.WithLogger(db.logger.Logger))
	if err != nil {
		return nil, err
	}
	db.learners[kind] = l
	return l, nil
}

// Curvature returns the curvature ConvertBatch currently uses.
func (db *DB) Curvature() float64 {
	return db.adaptive.Curvature()
}

// ConvertBatch maps Euclidean vectors into the Poincaré ball at the learned
// curvature. The vectors are jointly rescaled so the batch fits inside
// maxRadius.
func (db *DB) ConvertBatch(ctx context.Context, vectors [][]float32, maxRadius float64) ([][]float32, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	in := make([]euclidean.Vector, len(vectors))
	for i, v := range vectors {
		in[i] = euclidean.FromFloat32(v)
	}
	out, err := db.adaptive.BatchEuclideanToPoincare(ctx, in, maxRadius)
	if err != nil {
		return nil, translateError(err)
	}
	res := make([][]float32, len(out))
	for i, p := range out {
		res[i] = p.Float32()
	}
	return res, nil
}

// Stats summarizes a collection.
func (db *DB) Stats(collection string) (model.CollectionStats, error) {
	if db.closed.Load() {
		return model.CollectionStats{}, ErrClosed
	}
	s, err := db.store.Stats(collection)
	return s, translateError(err)
}

// BuildIndex records index statistics for a collection.
func (db *DB) BuildIndex(ctx context.Context, collection string, params map[string]any) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return translateError(db.engine.BuildIndex(ctx, collection, params))
}

// IndexStats returns the statistics recorded by BuildIndex, extended with
// the encoded size of the collection.
func (db *DB) IndexStats(collection string) (index.Stats, error) {
	if db.closed.Load() {
		return index.Stats{}, ErrClosed
	}
	s, err := db.engine.Stats(collection)
	if err != nil {
		return index.Stats{}, translateError(err)
	}
	size, err := db.store.EncodedBytes(collection)
	if err != nil && !errors.Is(err, store.ErrCollectionNotFound) {
		return index.Stats{}, translateError(err)
	}
	s.SizeBytes = size
	return s, nil
}

// Close releases the DB. Data held in memory is dropped.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return ErrClosed
	}
	for _, name := range db.store.ListCollections() {
		if err := db.store.DeleteCollection(name); err != nil {
			return fmt.Errorf("close: %w", translateError(err))
		}
		_ = db.engine.DeleteIndex(name)
	}
	db.logger.Debug("db closed")
	return nil
}
