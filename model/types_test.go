package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
)

func TestVectorRecordClone(t *testing.T) {
	now := time.Now()
	r := &VectorRecord{
		ID:        "a",
		Geometry:  geometry.Poincare,
		Vector:    []float32{0.1, 0.2},
		Metadata:  metadata.Document{"k": metadata.Int(1)},
		CreatedAt: now,
		UpdatedAt: now,
	}

	c := r.Clone()
	c.Vector[0] = 0.9
	c.Metadata["k"] = metadata.Int(2)

	assert.Equal(t, float32(0.1), r.Vector[0])
	assert.Equal(t, metadata.Int(1), r.Metadata["k"])
	assert.Equal(t, 2, c.Dimension())
	assert.Equal(t, r.CreatedAt, c.CreatedAt)
}

func TestSearchResultScore(t *testing.T) {
	assert.Equal(t, 1.0, SearchResult{Distance: 0}.Score())
	assert.Equal(t, 0.5, SearchResult{Distance: 1}.Score())
	assert.InDelta(t, 0.2, SearchResult{Distance: 4}.Score(), 1e-12)
}

func TestCollectionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CollectionConfig
		wantErr bool
	}{
		{"Euclidean", EuclideanConfig(3, codec.Float32), false},
		{"Poincare", PoincareConfig(8, codec.Int8), false},
		{"ZeroCurvatureMeansDefault", CollectionConfig{Dimension: 2, Geometry: geometry.Poincare}, false},
		{"ZeroDimension", EuclideanConfig(0, codec.Float32), true},
		{"PositiveCurvature", CollectionConfig{Dimension: 2, Geometry: geometry.Poincare, Curvature: 1}, true},
		{"UnknownGeometry", CollectionConfig{Dimension: 2, Geometry: geometry.Kind(7)}, true},
		{"UnknownFormat", CollectionConfig{Dimension: 2, Format: codec.Format(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollectionConfigSizes(t *testing.T) {
	assert.Equal(t, 12, EuclideanConfig(3, codec.Float32).VectorSizeBytes())
	assert.Equal(t, 6, EuclideanConfig(3, codec.Float16).VectorSizeBytes())
	assert.Equal(t, 7, PoincareConfig(3, codec.Int8).VectorSizeBytes())

	assert.Equal(t, -1.0, CollectionConfig{Geometry: geometry.Poincare}.EffectiveCurvature())
	assert.Equal(t, -2.5, CollectionConfig{Curvature: -2.5}.EffectiveCurvature())
}

func TestCollectionStats(t *testing.T) {
	s := CollectionStats{Name: "c", VectorCount: 4, TotalSizeBytes: 2048}
	assert.Equal(t, 512.0, s.AvgBytesPerVector())
	assert.Equal(t, "2.0 kB", s.HumanSize())

	empty := CollectionStats{}
	assert.Equal(t, 0.0, empty.AvgBytesPerVector())
	require.Equal(t, "0 B", empty.HumanSize())
}
