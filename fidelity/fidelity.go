// Package fidelity measures how well an embedding preserves a hierarchy.
//
// The hierarchical fidelity of a node is the fraction of its k nearest
// neighbors that are related to it in the reference tree: ancestors,
// descendants, siblings, or nodes sharing its grandparent. The fidelity of an
// embedding is the mean over all nodes.
package fidelity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hypervec/convert"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/poincare"
)

// ErrMissingPoint is returned when a hierarchy node has no embedding.
var ErrMissingPoint = errors.New("node has no embedding")

// Options contains configuration options for fidelity evaluation.
type Options struct {
	// Parallelism bounds the number of nodes scanned concurrently. Values
	// <= 0 use runtime.GOMAXPROCS(0).
	Parallelism int
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{}

// DistanceFunc returns the distance between two embedded points.
type DistanceFunc[T any] func(a, b T) (float64, error)

// Evaluate returns the mean hierarchical fidelity of points at k. Every node
// of h must have an entry in points. Each node contributes
// related/k, so nodes with fewer than k neighbors score below 1.
func Evaluate[T any](ctx context.Context, h curvature.Hierarchy, points map[string]T, dist DistanceFunc[T], k int, optFns ...func(o *Options)) (float64, error) {
	scores, err := nodeScores(ctx, h, points, dist, k, optFns...)
	if err != nil || len(scores) == 0 {
		return 0, err
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// EvaluateByLevel is like Evaluate but averages per tree level. Level 0
// holds the roots.
func EvaluateByLevel[T any](ctx context.Context, h curvature.Hierarchy, points map[string]T, dist DistanceFunc[T], k int, optFns ...func(o *Options)) (map[int]float64, error) {
	scores, err := nodeScores(ctx, h, points, dist, k, optFns...)
	if err != nil {
		return nil, err
	}

	sums := map[int]float64{}
	counts := map[int]int{}
	for node, s := range scores {
		l := level(h, node)
		sums[l] += s
		counts[l]++
	}

	out := make(map[int]float64, len(sums))
	for l, s := range sums {
		out[l] = s / float64(counts[l])
	}
	return out, nil
}

type neighbor struct {
	node     string
	distance float64
}

func nodeScores[T any](ctx context.Context, h curvature.Hierarchy, points map[string]T, dist DistanceFunc[T], k int, optFns ...func(o *Options)) (map[string]float64, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	workers := opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	nodes := h.Nodes()
	for _, n := range nodes {
		if _, ok := points[n]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPoint, n)
		}
	}

	scores := make([]float64, len(nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, node := range nodes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			neighbors := make([]neighbor, 0, len(nodes)-1)
			for _, other := range nodes {
				if other == node {
					continue
				}
				d, err := dist(points[node], points[other])
				if err != nil {
					return fmt.Errorf("distance %s to %s: %w", node, other, err)
				}
				neighbors = append(neighbors, neighbor{node: other, distance: d})
			}
			slices.SortStableFunc(neighbors, func(a, b neighbor) int {
				return cmp.Compare(a.distance, b.distance)
			})

			related := 0
			for _, nb := range neighbors[:min(k, len(neighbors))] {
				if h.Related(node, nb.node) {
					related++
				}
			}
			scores[i] = float64(related) / float64(k)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(nodes))
	for i, n := range nodes {
		out[n] = scores[i]
	}
	return out, nil
}

// level counts parent hops from node to a root along first parents.
func level(h curvature.Hierarchy, node string) int {
	seen := map[string]bool{node: true}
	l := 0
	for {
		p, ok := h.Parent(node)
		if !ok || seen[p] {
			return l
		}
		seen[p] = true
		node = p
		l++
	}
}

// Comparison reports the fidelity of one embedding in both geometries.
type Comparison struct {
	Dimension   int
	Euclidean   float64
	Poincare    float64
	Improvement float64
}

// Compare evaluates vectors as a Euclidean embedding and, after mapping each
// vector into the ball of radius maxRadius with the given curvature, as a
// Poincaré embedding.
func Compare(ctx context.Context, h curvature.Hierarchy, vectors map[string][]float64, k int, maxRadius, c float64, optFns ...func(o *Options)) (Comparison, error) {
	conv := convert.New()

	flat := make(map[string]euclidean.Vector, len(vectors))
	ball := make(map[string]poincare.Vector, len(vectors))
	dim := 0
	for id, v := range vectors {
		e := euclidean.New(v...)
		p, err := conv.EuclideanToPoincare(e, maxRadius, c)
		if err != nil {
			return Comparison{}, fmt.Errorf("node %s: %w", id, err)
		}
		flat[id] = e
		ball[id] = p
		dim = len(v)
	}

	var eops euclidean.Ops
	ef, err := Evaluate(ctx, h, flat, eops.Distance, k, optFns...)
	if err != nil {
		return Comparison{}, err
	}

	var pops poincare.Ops
	pf, err := Evaluate(ctx, h, ball, pops.Distance, k, optFns...)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Dimension:   dim,
		Euclidean:   ef,
		Poincare:    pf,
		Improvement: pf - ef,
	}, nil
}
