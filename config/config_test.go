package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
)

const sample = `
log_level: debug
memory_limit: 2MiB
search:
  default_k: 5
  parallelism: 2
curvature:
  strategy: gradient
  min: -3
  max_iterations: 50
  seed: 0
collections:
  - name: taxonomy
    dimension: 16
    geometry: poincare
    format: float16
    compression: zstd
    curvature: -1.5
    schema:
      year: int
  - name: docs
    dimension: 3
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	level, err := f.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	limit, err := f.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), limit)
	assert.Equal(t, 5, f.Search.DefaultK)
	assert.Equal(t, 2, f.Search.Parallelism)

	cols, err := f.CollectionConfigs()
	require.NoError(t, err)
	require.Len(t, cols, 2)

	tax := cols["taxonomy"]
	assert.Equal(t, 16, tax.Dimension)
	assert.Equal(t, geometry.Poincare, tax.Geometry)
	assert.Equal(t, codec.Float16, tax.Format)
	assert.Equal(t, codec.Zstd, tax.Compression)
	assert.Equal(t, -1.5, tax.Curvature)
	assert.Equal(t, metadata.Schema{"year": metadata.FieldTypeInt}, tax.Schema)

	docs := cols["docs"]
	assert.Equal(t, geometry.Euclidean, docs.Geometry)
	assert.Equal(t, codec.Float32, docs.Format)
	assert.Equal(t, codec.None, docs.Compression)
	assert.Nil(t, docs.Schema)

	kind, err := f.Curvature.LearnerKind()
	require.NoError(t, err)
	assert.Equal(t, curvature.KindGradientDescent, kind)

	opts, err := f.Curvature.Options()
	require.NoError(t, err)
	assert.Equal(t, -3.0, opts.MinCurvature)
	assert.Equal(t, curvature.DefaultOptions().MaxCurvature, opts.MaxCurvature)
	assert.Equal(t, 50, opts.MaxIterations)
	assert.Equal(t, int64(0), opts.Seed)
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, DefaultK, f.Search.DefaultK)

	level, err := f.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	kind, err := f.Curvature.LearnerKind()
	require.NoError(t, err)
	assert.Equal(t, curvature.KindGridSearch, kind)

	limit, err := f.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, limit)

	opts, err := f.Curvature.Options()
	require.NoError(t, err)
	assert.Equal(t, curvature.DefaultOptions(), opts)

	cols, err := f.CollectionConfigs()
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Syntax", "collections: [\n"},
		{"NegativeK", "search:\n  default_k: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"MissingName", "collections:\n  - dimension: 3\n"},
		{"Duplicate", "collections:\n  - {name: a, dimension: 3}\n  - {name: a, dimension: 3}\n"},
		{"Geometry", "collections:\n  - {name: a, dimension: 3, geometry: sphere}\n"},
		{"Format", "collections:\n  - {name: a, dimension: 3, format: nf4}\n"},
		{"Compression", "collections:\n  - {name: a, dimension: 3, compression: snappy}\n"},
		{"Schema", "collections:\n  - {name: a, dimension: 3, schema: {x: date}}\n"},
		{"Dimension", "collections:\n  - {name: a}\n"},
		{"Curvature", "collections:\n  - {name: a, dimension: 3, geometry: poincare, curvature: 2}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = f.CollectionConfigs()
			assert.Error(t, err)
		})
	}

	t.Run("LogLevel", func(t *testing.T) {
		f, err := Parse([]byte("log_level: loud\n"))
		require.NoError(t, err)
		_, err = f.Level()
		assert.Error(t, err)
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		f, err := Parse([]byte("memory_limit: lots\n"))
		require.NoError(t, err)
		_, err = f.MemoryLimitBytes()
		assert.Error(t, err)
	})

	t.Run("Strategy", func(t *testing.T) {
		f, err := Parse([]byte("curvature: {strategy: annealing}\n"))
		require.NoError(t, err)
		_, err = f.Curvature.LearnerKind()
		assert.Error(t, err)
	})

	t.Run("CurvatureBounds", func(t *testing.T) {
		f, err := Parse([]byte("curvature: {min: -0.01, max: -0.5}\n"))
		require.NoError(t, err)
		_, err = f.Curvature.Options()
		assert.ErrorIs(t, err, curvature.ErrInvalidOptions)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hypervec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Collections, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
