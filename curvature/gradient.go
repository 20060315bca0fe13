package curvature

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hypervec/convert"
	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/poincare"
)

const (
	// hopScale divides hop counts before they are compared with hyperbolic distances.
	hopScale = 5.0
	// gradientStep is the finite difference step for the loss gradient.
	gradientStep = 0.001
	// embeddingStdDev is the standard deviation of the initial embedding.
	embeddingStdDev = 0.1
	// logEvery controls how often iteration progress is logged.
	logEvery = 10
)

var _ Learner = (*GradientDescent)(nil)

// GradientDescent fits the curvature by minimizing the mean squared error
// between Poincaré distances of a fixed random embedding and scaled hop
// distances of the hierarchy.
type GradientDescent struct {
	logger    *slog.Logger
	last      *lastValue
	converter *convert.Converter
	ops       poincare.Ops
}

// NewGradientDescent creates a GradientDescent learner.
func NewGradientDescent(opts ...Option) *GradientDescent {
	c := applyOptions(opts)
	return &GradientDescent{
		logger:    c.logger,
		last:      newLastValue(),
		converter: convert.New(),
	}
}

type hopPair struct {
	a, b int
	hop  float64
}

// Learn implements Learner. The embedding is drawn from opts.Seed over the
// sorted node IDs, so equal inputs yield equal results.
func (g *GradientDescent) Learn(ctx context.Context, h Hierarchy, opts *Options) (float64, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return 0, err
	}

	nodes := h.Nodes()
	emb := randomEmbedding(len(nodes), o.Dimensions, o.Seed)
	pairs := hopPairs(h, nodes)

	g.logger.Debug("starting gradient descent",
		slog.Int("nodes", len(nodes)),
		slog.Int("pairs", len(pairs)),
		slog.Int("max_iterations", o.MaxIterations),
	)

	c := geometry.DefaultCurvature
	prevLoss := math.MaxFloat64

	for iter := 0; iter < o.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		cPlus := o.clamp(c + gradientStep)
		cMinus := o.clamp(c - gradientStep)

		var loss, lossPlus, lossMinus float64
		var skipped int

		eg, _ := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			loss, skipped, err = g.loss(emb, pairs, c, o.MaxRadius)
			return err
		})
		eg.Go(func() (err error) {
			lossPlus, _, err = g.loss(emb, pairs, cPlus, o.MaxRadius)
			return err
		})
		eg.Go(func() (err error) {
			lossMinus, _, err = g.loss(emb, pairs, cMinus, o.MaxRadius)
			return err
		})
		if err := eg.Wait(); err != nil {
			return 0, err
		}

		grad := (lossPlus - lossMinus) / (2 * gradientStep)
		if math.IsNaN(grad) || math.IsInf(grad, 0) {
			grad = 0
		}
		c = o.clamp(c - o.LearningRate*grad)

		if math.Abs(prevLoss-loss) < o.Threshold {
			g.logger.Debug("converged", slog.Int("iteration", iter), slog.Float64("loss", loss))
			break
		}
		prevLoss = loss

		if iter%logEvery == 0 {
			g.logger.Debug("gradient descent progress",
				slog.Int("iteration", iter),
				slog.Float64("curvature", c),
				slog.Float64("loss", loss),
				slog.Int("skipped_pairs", skipped),
			)
		}
	}

	g.logger.Info("learned curvature", slog.String("strategy", "gradient"), slog.Float64("curvature", c))
	g.last.store(c)
	return c, nil
}

// LastLearned implements Learner.
func (g *GradientDescent) LastLearned() float64 { return g.last.load() }

// Default implements Learner.
func (g *GradientDescent) Default() float64 { return geometry.DefaultCurvature }

// loss converts the embedding at curvature c and returns the mean squared
// error over all pairs, plus the number of pairs skipped on numeric failure.
// Without any usable pair the loss is math.MaxFloat64.
func (g *GradientDescent) loss(emb []euclidean.Vector, pairs []hopPair, c, maxRadius float64) (float64, int, error) {
	points := make([]poincare.Vector, len(emb))
	for i, v := range emb {
		p, err := g.converter.EuclideanToPoincare(v, maxRadius, c)
		if err != nil {
			return 0, 0, err
		}
		points[i] = p
	}

	var total float64
	count, skipped := 0, 0
	for _, p := range pairs {
		d, err := g.ops.Distance(points[p.a], points[p.b])
		if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
			skipped++
			continue
		}
		e := d - p.hop/hopScale
		total += e * e
		count++
	}
	if count == 0 {
		return math.MaxFloat64, skipped, nil
	}
	return total / float64(count), skipped, nil
}

// randomEmbedding draws n points from N(0, embeddingStdDev) with a private
// source, so equal seeds give equal embeddings.
func randomEmbedding(n, dim int, seed int64) []euclidean.Vector {
	rng := rand.New(rand.NewSource(seed))
	out := make([]euclidean.Vector, n)
	for i := range out {
		data := make([]float64, dim)
		for j := range data {
			data[j] = rng.NormFloat64() * embeddingStdDev
		}
		out[i] = euclidean.Wrap(data)
	}
	return out
}

// hopPairs lists every ordered pair of distinct, connected nodes with its hop
// distance. Indices refer to nodes; the order is deterministic.
func hopPairs(h Hierarchy, nodes []string) []hopPair {
	var pairs []hopPair
	hops := h.HopDistances()
	for i, src := range nodes {
		for j, dst := range nodes {
			if i == j {
				continue
			}
			if d, ok := hops[src][dst]; ok {
				pairs = append(pairs, hopPair{a: i, b: j, hop: float64(d)})
			}
		}
	}
	return pairs
}
