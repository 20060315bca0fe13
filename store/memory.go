// Package store provides an in-memory, collection-keyed record source.
//
// Every collection is an independent unit of concurrency: operations on one
// collection never wait for another. Vectors are kept encoded with the
// collection's codec and decoded on read.
package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/index"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
	"github.com/hupe1980/hypervec/resource"
)

var (
	// ErrCollectionExists is returned when creating a collection twice.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrCollectionNotFound is returned for operations on unknown collections.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrRecordNotFound is returned when a record ID is unknown.
	ErrRecordNotFound = errors.New("record not found")
)

// Compile-time checks to ensure Memory satisfies the search engine contracts.
var (
	_ index.RecordSource = (*Memory)(nil)
	_ index.ConfigSource = (*Memory)(nil)
)

// compactThreshold is the number of tombstones a collection tolerates
// before its entry slice is rewritten.
const compactThreshold = 64

// Options contains configuration options for the memory store.
type Options struct {
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger

	// Now returns the time stamped on records. Nil uses time.Now.
	Now func() time.Time

	// Budget accounts the encoded bytes of stored vectors. Inserts that do
	// not fit fail with resource.ErrMemoryLimit. Nil disables accounting.
	Budget *resource.Budget
}

// DefaultOptions contains the default configuration options for the memory store.
var DefaultOptions = Options{}

type entry struct {
	id        string
	blob      []byte
	meta      metadata.Document
	createdAt time.Time
	updatedAt time.Time
}

type collection struct {
	mu    sync.RWMutex
	cfg   model.CollectionConfig
	codec *codec.VectorCodec

	// entries keeps insertion order. Deleted slots are nil until compaction.
	entries    []*entry
	byID       map[string]int
	tombstones int

	// dropped is set by DeleteCollection. Writers that looked the collection
	// up before the drop see it once they hold mu.
	dropped bool
}

// Memory is an in-memory record store.
type Memory struct {
	opts   Options
	logger *slog.Logger

	mu          sync.RWMutex
	collections map[string]*collection
}

// NewMemory creates an empty store.
func NewMemory(optFns ...func(o *Options)) *Memory {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Memory{
		opts:        opts,
		logger:      logger,
		collections: make(map[string]*collection),
	}
}

// CreateCollection registers a collection.
func (m *Memory) CreateCollection(name string, cfg model.CollectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("collection %s: %w", name, err)
	}
	if cfg.Geometry == geometry.Poincare && cfg.Curvature == 0 {
		cfg.Curvature = geometry.DefaultCurvature
	}

	c, err := codec.New(cfg.Format, cfg.Compression)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[name]; ok {
		return fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	m.collections[name] = &collection{
		cfg:   cfg,
		codec: c,
		byID:  make(map[string]int),
	}

	m.logger.Info("created collection",
		"collection", name,
		"dimension", cfg.Dimension,
		"geometry", cfg.Geometry,
		"format", cfg.Format,
		"compression", cfg.Compression,
	)
	return nil
}

// DeleteCollection removes a collection and its records.
func (m *Memory) DeleteCollection(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(m.collections, name)

	c.mu.Lock()
	c.dropped = true
	m.opts.Budget.Release(c.liveBytes())
	c.mu.Unlock()

	m.logger.Info("deleted collection", "collection", name)
	return nil
}

// CollectionExists reports whether name is a collection.
func (m *Memory) CollectionExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.collections[name]
	return ok
}

// ListCollections returns the collection names in sorted order.
func (m *Memory) ListCollections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CollectionConfig returns the configuration of a collection.
func (m *Memory) CollectionConfig(name string) (model.CollectionConfig, error) {
	c, err := m.collection(name)
	if err != nil {
		return model.CollectionConfig{}, err
	}
	return c.cfg, nil
}

// Insert stores a vector with metadata and returns its generated ID.
func (m *Memory) Insert(name string, vector []float32, meta metadata.Document) (string, error) {
	ids, err := m.InsertBatch(name, [][]float32{vector}, []metadata.Document{meta})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertBatch stores vectors with their metadata. metas may be nil;
// otherwise it must have one entry per vector. Either every vector is stored
// or none is.
func (m *Memory) InsertBatch(name string, vectors [][]float32, metas []metadata.Document) ([]string, error) {
	if metas != nil && len(metas) != len(vectors) {
		return nil, fmt.Errorf("vectors and metadata must have the same length: %d != %d", len(vectors), len(metas))
	}

	c, err := m.collection(name)
	if err != nil {
		return nil, err
	}

	now := m.opts.Now()
	entries := make([]*entry, len(vectors))
	var size int64
	for i, v := range vectors {
		var meta metadata.Document
		if metas != nil {
			meta = metas[i]
		}
		blob, err := c.encode(v)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		if err := c.cfg.Schema.Validate(meta); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		size += int64(len(blob))
		entries[i] = &entry{
			id:        uuid.NewString(),
			blob:      blob,
			meta:      meta.Clone(),
			createdAt: now,
			updatedAt: now,
		}
	}

	if err := m.opts.Budget.Reserve(size); err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, err)
	}

	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		m.opts.Budget.Release(size)
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		c.byID[e.id] = len(c.entries)
		c.entries = append(c.entries, e)
		ids[i] = e.id
	}
	c.mu.Unlock()

	m.logger.Debug("stored vectors", "collection", name, "count", len(ids))
	return ids, nil
}

// Get returns a record by ID.
func (m *Memory) Get(name, id string) (*model.VectorRecord, error) {
	c, err := m.collection(name)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	pos, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	rec, err := c.record(c.entries[pos])
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetMany returns the records with the given IDs in request order. Unknown
// IDs are skipped.
func (m *Memory) GetMany(name string, ids []string) ([]model.VectorRecord, error) {
	c, err := m.collection(name)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	out := make([]model.VectorRecord, 0, len(ids))
	for _, id := range ids {
		pos, ok := c.byID[id]
		if !ok {
			continue
		}
		rec, err := c.record(c.entries[pos])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes a record.
func (m *Memory) Delete(name, id string) error {
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	return m.remove(c, name, id)
}

func (m *Memory) remove(c *collection, name, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dropped {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	pos, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	m.opts.Budget.Release(int64(len(c.entries[pos].blob)))
	c.entries[pos] = nil
	delete(c.byID, id)
	c.tombstones++

	if c.tombstones >= compactThreshold && c.tombstones > len(c.byID) {
		c.compact()
	}
	return nil
}

// UpdateMetadata replaces the metadata of a record.
func (m *Memory) UpdateMetadata(name, id string, meta metadata.Document) error {
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	if err := c.cfg.Schema.Validate(meta); err != nil {
		return err
	}
	now := m.opts.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dropped {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	pos, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	e := c.entries[pos]
	e.meta = meta.Clone()
	e.updatedAt = now
	return nil
}

// UpdateVector replaces the vector of a record.
func (m *Memory) UpdateVector(name, id string, vector []float32) error {
	c, err := m.collection(name)
	if err != nil {
		return err
	}
	blob, err := c.encode(vector)
	if err != nil {
		return err
	}
	if err := m.opts.Budget.Reserve(int64(len(blob))); err != nil {
		return fmt.Errorf("collection %s: %w", name, err)
	}
	now := m.opts.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dropped {
		m.opts.Budget.Release(int64(len(blob)))
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	pos, ok := c.byID[id]
	if !ok {
		m.opts.Budget.Release(int64(len(blob)))
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	e := c.entries[pos]
	m.opts.Budget.Release(int64(len(e.blob)))
	e.blob = blob
	e.updatedAt = now
	return nil
}

// AllRecords returns a snapshot of every record in insertion order.
func (m *Memory) AllRecords(name string) ([]model.VectorRecord, error) {
	c, err := m.collection(name)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	out := make([]model.VectorRecord, 0, len(c.byID))
	for _, e := range c.entries {
		if e == nil {
			continue
		}
		rec, err := c.record(e)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Find returns the records whose metadata satisfies expr, in insertion order.
func (m *Memory) Find(name string, expr metadata.Expr) ([]model.VectorRecord, error) {
	records, err := m.AllRecords(name)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(records, func(r model.VectorRecord) bool {
		return !metadata.Evaluate(expr, r.Metadata)
	}), nil
}

// Stats summarizes a collection. TotalSizeBytes counts the uncompressed
// at-rest size of every vector.
func (m *Memory) Stats(name string) (model.CollectionStats, error) {
	c, err := m.collection(name)
	if err != nil {
		return model.CollectionStats{}, err
	}

	c.mu.RLock()
	count := len(c.byID)
	c.mu.RUnlock()

	return model.CollectionStats{
		Name:           name,
		VectorCount:    count,
		TotalSizeBytes: int64(count) * int64(c.cfg.VectorSizeBytes()),
		Dimension:      c.cfg.Dimension,
		Geometry:       c.cfg.Geometry,
		Format:         c.cfg.Format,
		Compression:    c.cfg.Compression,
	}, nil
}

// EncodedBytes returns the bytes actually held for vectors after encoding
// and compression.
func (m *Memory) EncodedBytes(name string) (int64, error) {
	c, err := m.collection(name)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.liveBytes(), nil
}

func (m *Memory) collection(name string) (*collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

// encode validates v against the collection and returns its at-rest form.
// Poincaré vectors are checked after a decode so that quantization cannot
// push a stored point onto the boundary.
func (c *collection) encode(v []float32) ([]byte, error) {
	if len(v) != c.cfg.Dimension {
		return nil, &geometry.ErrDimensionMismatch{Expected: c.cfg.Dimension, Actual: len(v)}
	}
	if c.cfg.Geometry == geometry.Poincare {
		if err := insideBall(v); err != nil {
			return nil, err
		}
	}

	blob, err := c.codec.Encode(v)
	if err != nil {
		return nil, err
	}

	if c.cfg.Geometry == geometry.Poincare {
		decoded, err := c.codec.Decode(blob, len(v))
		if err != nil {
			return nil, err
		}
		if err := insideBall(decoded); err != nil {
			return nil, fmt.Errorf("after %s encoding: %w", c.cfg.Format, err)
		}
	}
	return blob, nil
}

func (c *collection) record(e *entry) (model.VectorRecord, error) {
	v, err := c.codec.Decode(e.blob, c.cfg.Dimension)
	if err != nil {
		return model.VectorRecord{}, fmt.Errorf("record %s: %w", e.id, err)
	}
	return model.VectorRecord{
		ID:        e.id,
		Geometry:  c.cfg.Geometry,
		Vector:    v,
		Metadata:  e.meta.Clone(),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}, nil
}

// liveBytes sums the encoded size of live entries. Callers hold c.mu.
func (c *collection) liveBytes() int64 {
	var n int64
	for _, e := range c.entries {
		if e != nil {
			n += int64(len(e.blob))
		}
	}
	return n
}

func (c *collection) compact() {
	live := make([]*entry, 0, len(c.byID))
	for _, e := range c.entries {
		if e != nil {
			c.byID[e.id] = len(live)
			live = append(live, e)
		}
	}
	c.entries = live
	c.tombstones = 0
}

func insideBall(v []float32) error {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if !(sq < 1) {
		return &geometry.ErrOutOfBall{Norm: math.Sqrt(sq)}
	}
	return nil
}
