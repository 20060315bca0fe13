package flat

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/hupe1980/hypervec/index"
)

// BuildIndex records statistics for collection. The engine keeps no index
// structure, so building only counts the current records.
func (f *Flat) BuildIndex(ctx context.Context, collection string, params map[string]any) error {
	if !f.source.CollectionExists(collection) {
		return fmt.Errorf("%w: %s", index.ErrNoSuchCollection, collection)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()

	records, err := f.source.AllRecords(collection)
	if err != nil {
		return err
	}

	s := &index.Stats{
		Collection:  collection,
		Type:        IndexType,
		VectorCount: len(records),
		Parameters:  maps.Clone(params),
		Metrics:     map[string]any{"exactSearch": true},
	}
	if s.Parameters == nil {
		s.Parameters = map[string]any{}
	}

	if cs, ok := f.source.(index.ConfigSource); ok {
		cfg, err := cs.CollectionConfig(collection)
		if err != nil {
			return err
		}
		s.Dimension = cfg.Dimension
		s.Geometry = cfg.Geometry
	} else if len(records) > 0 {
		s.Dimension = records[0].Dimension()
		s.Geometry = records[0].Geometry
	}

	s.BuildDuration = time.Since(start)
	s.BuiltAt = time.Now()

	f.mu.Lock()
	f.stats[collection] = s
	f.mu.Unlock()

	f.logger.Info("flat index built",
		"collection", collection,
		"vectors", s.VectorCount,
		"dimension", s.Dimension,
		"geometry", s.Geometry,
		"duration", s.BuildDuration,
	)

	return nil
}

// AddToIndex adds ids to the vector count of an existing index. It is a
// no-op when no index has been built for collection.
func (f *Flat) AddToIndex(collection string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.stats[collection]; ok {
		s.VectorCount += len(ids)
	}
	return nil
}

// RemoveFromIndex subtracts ids from the vector count of an existing index.
func (f *Flat) RemoveFromIndex(collection string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.stats[collection]; ok {
		s.VectorCount = max(0, s.VectorCount-len(ids))
	}
	return nil
}

// Stats returns a copy of the statistics recorded for collection.
func (f *Flat) Stats(collection string) (index.Stats, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, ok := f.stats[collection]
	if !ok {
		return index.Stats{}, fmt.Errorf("%w: %s", index.ErrIndexNotFound, collection)
	}
	return s.Clone(), nil
}

// IndexExists reports whether BuildIndex has run for collection.
func (f *Flat) IndexExists(collection string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.stats[collection]
	return ok
}

// DeleteIndex drops the statistics of collection.
func (f *Flat) DeleteIndex(collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.stats, collection)
	return nil
}
