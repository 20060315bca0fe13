// Package config loads hypervec configuration from YAML.
//
// A file declares collections to create at startup, search defaults and
// curvature learning settings:
//
//	log_level: debug
//	memory_limit: 512MiB
//	search:
//	  default_k: 10
//	  parallelism: 4
//	curvature:
//	  strategy: gradient
//	  min: -5
//	  max: -0.1
//	collections:
//	  - name: taxonomy
//	    dimension: 16
//	    geometry: poincare
//	    format: float16
//	    compression: zstd
//	    curvature: -1.5
//	    schema:
//	      year: int
//
// Omitted values keep their defaults.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
)

// File is the parsed configuration file.
type File struct {
	LogLevel    string       `yaml:"log_level"`
	MemoryLimit string       `yaml:"memory_limit"`
	Search      Search       `yaml:"search"`
	Curvature   Curvature    `yaml:"curvature"`
	Collections []Collection `yaml:"collections"`
}

// Search holds search defaults.
type Search struct {
	DefaultK    int `yaml:"default_k"`
	Parallelism int `yaml:"parallelism"`
}

// Curvature holds curvature learning settings. Zero values fall back to
// curvature.DefaultOptions.
type Curvature struct {
	Strategy      string  `yaml:"strategy"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	LearningRate  float64 `yaml:"learning_rate"`
	MaxIterations int     `yaml:"max_iterations"`
	Threshold     float64 `yaml:"threshold"`
	Dimensions    int     `yaml:"dimensions"`
	MaxRadius     float64 `yaml:"max_radius"`
	Seed          *int64  `yaml:"seed"`
}

// Collection declares one collection.
type Collection struct {
	Name        string            `yaml:"name"`
	Dimension   int               `yaml:"dimension"`
	Geometry    string            `yaml:"geometry"`
	Format      string            `yaml:"format"`
	Compression string            `yaml:"compression"`
	Curvature   float64           `yaml:"curvature"`
	Schema      map[string]string `yaml:"schema"`
}

// DefaultK is the search k used when the file does not set one.
const DefaultK = 10

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if f.Search.DefaultK == 0 {
		f.Search.DefaultK = DefaultK
	}
	if f.Search.DefaultK < 0 {
		return nil, fmt.Errorf("search.default_k must be positive, got %d", f.Search.DefaultK)
	}
	return &f, nil
}

// Level returns the configured log level. An empty level is info.
func (f *File) Level() (slog.Level, error) {
	var l slog.Level
	if f.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(f.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// MemoryLimitBytes parses memory_limit ("512MiB", "2GB", "1048576"). An
// empty limit is 0, meaning unlimited.
func (f *File) MemoryLimitBytes() (int64, error) {
	if strings.TrimSpace(f.MemoryLimit) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(f.MemoryLimit)
	if err != nil {
		return 0, fmt.Errorf("memory_limit: %w", err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("memory_limit: %s is too large", f.MemoryLimit)
	}
	return int64(n), nil
}

// CollectionConfigs converts the declared collections, keyed by name.
func (f *File) CollectionConfigs() (map[string]model.CollectionConfig, error) {
	out := make(map[string]model.CollectionConfig, len(f.Collections))
	for i, c := range f.Collections {
		if c.Name == "" {
			return nil, fmt.Errorf("collections[%d]: name is required", i)
		}
		if _, ok := out[c.Name]; ok {
			return nil, fmt.Errorf("collections[%d]: duplicate name %q", i, c.Name)
		}
		cfg, err := c.config()
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Name, err)
		}
		out[c.Name] = cfg
	}
	return out, nil
}

func (c Collection) config() (model.CollectionConfig, error) {
	g := geometry.Euclidean
	if c.Geometry != "" {
		var err error
		if g, err = geometry.ParseKind(c.Geometry); err != nil {
			return model.CollectionConfig{}, err
		}
	}
	format, err := codec.ParseFormat(c.Format)
	if err != nil {
		return model.CollectionConfig{}, err
	}
	compression, err := codec.ParseCompression(c.Compression)
	if err != nil {
		return model.CollectionConfig{}, err
	}

	var schema metadata.Schema
	if len(c.Schema) > 0 {
		schema = make(metadata.Schema, len(c.Schema))
		for field, typ := range c.Schema {
			ft, err := metadata.ParseFieldType(typ)
			if err != nil {
				return model.CollectionConfig{}, fmt.Errorf("schema field %s: %w", field, err)
			}
			schema[field] = ft
		}
	}

	cfg := model.CollectionConfig{
		Dimension:   c.Dimension,
		Geometry:    g,
		Format:      format,
		Compression: compression,
		Curvature:   c.Curvature,
		Schema:      schema,
	}
	if err := cfg.Validate(); err != nil {
		return model.CollectionConfig{}, err
	}
	return cfg, nil
}

// LearnerKind returns the configured learning strategy. The default is grid
// search.
func (c Curvature) LearnerKind() (curvature.Kind, error) {
	s := strings.ToLower(strings.TrimSpace(c.Strategy))
	if s == "" {
		return curvature.KindGridSearch, nil
	}
	return curvature.ParseKind(s)
}

// Options returns learning options with the configured values applied over
// curvature.DefaultOptions.
func (c Curvature) Options() (curvature.Options, error) {
	o := curvature.DefaultOptions()
	if c.Min != 0 {
		o.MinCurvature = c.Min
	}
	if c.Max != 0 {
		o.MaxCurvature = c.Max
	}
	if c.LearningRate != 0 {
		o.LearningRate = c.LearningRate
	}
	if c.MaxIterations != 0 {
		o.MaxIterations = c.MaxIterations
	}
	if c.Threshold != 0 {
		o.Threshold = c.Threshold
	}
	if c.Dimensions != 0 {
		o.Dimensions = c.Dimensions
	}
	if c.MaxRadius != 0 {
		o.MaxRadius = c.MaxRadius
	}
	if c.Seed != nil {
		o.Seed = *c.Seed
	}
	if err := o.Validate(); err != nil {
		return curvature.Options{}, err
	}
	return o, nil
}
