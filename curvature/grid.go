package curvature

import (
	"context"
	"log/slog"

	"github.com/hupe1980/hypervec/geometry"
)

const (
	// deepThreshold is the depth beyond which deeper trees get more negative curvature.
	deepThreshold = 5
	// wideThreshold is the branching factor beyond which wider trees get more negative curvature.
	wideThreshold = 3
)

var _ Learner = (*GridSearch)(nil)

// GridSearch estimates curvature from structural statistics of the hierarchy.
// Despite the name it evaluates no grid: a depth above 5 gives
// -2 - 0.1*(depth-5), otherwise a branching factor above 3 gives
// -1 - 0.2*(branching-3), otherwise the default -1. The result is clamped to
// the option bounds.
type GridSearch struct {
	logger *slog.Logger
	last   *lastValue
}

// NewGridSearch creates a GridSearch learner.
func NewGridSearch(opts ...Option) *GridSearch {
	c := applyOptions(opts)
	return &GridSearch{logger: c.logger, last: newLastValue()}
}

// Learn implements Learner.
func (g *GridSearch) Learn(ctx context.Context, h Hierarchy, opts *Options) (float64, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	nodes := len(h.Nodes())
	depth := h.MaxDepth()
	branching := h.AvgBranchingFactor()

	g.logger.Debug("hierarchy statistics",
		slog.Int("nodes", nodes),
		slog.Int("max_depth", depth),
		slog.Float64("branching_factor", branching),
	)

	c := geometry.DefaultCurvature
	switch {
	case depth > deepThreshold:
		c = -2.0 - float64(depth-deepThreshold)*0.1
	case branching > wideThreshold:
		c = -1.0 - (branching-wideThreshold)*0.2
	}
	c = o.clamp(c)

	g.logger.Info("learned curvature", slog.String("strategy", "grid"), slog.Float64("curvature", c))
	g.last.store(c)
	return c, nil
}

// LastLearned implements Learner.
func (g *GridSearch) LastLearned() float64 { return g.last.load() }

// Default implements Learner.
func (g *GridSearch) Default() float64 { return geometry.DefaultCurvature }
