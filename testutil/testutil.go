package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// NormFloat64 returns a standard normal sample.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// UniformRangeVectors generates random vectors with values in range [-1, 1).
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()*2 - 1
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// BallVectors generates points strictly inside the ball of radius maxRadius.
// Directions are uniform on the sphere; radii are uniform in [0, maxRadius).
func (r *RNG) BallVectors(num, dimensions int, maxRadius float64) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range num {
		dir := make([]float64, dimensions)
		var norm float64
		for j := range dir {
			dir[j] = r.rand.NormFloat64()
			norm += dir[j] * dir[j]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}

		radius := r.rand.Float64() * maxRadius
		vec := make([]float32, dimensions)
		for j := range vec {
			vec[j] = float32(dir[j] / norm * radius)
		}
		vectors[i] = vec
	}

	return vectors
}

// DeepHierarchy returns a child-to-parents mapping for a complete tree with
// the given number of levels below the root. The root is named "root" and
// other nodes "node_N", numbered breadth first.
func DeepHierarchy(depth, branching int) map[string][]string {
	h := map[string][]string{"root": nil}
	level := []string{"root"}
	next := 0

	for range depth {
		var children []string
		for _, parent := range level {
			for range branching {
				child := "node_" + strconv.Itoa(next)
				next++
				h[child] = []string{parent}
				children = append(children, child)
			}
		}
		level = children
	}

	return h
}

// Tree is a synthetic hierarchy with a Euclidean embedding of every node.
type Tree struct {
	// Parents maps every node to its parent. The root maps to nil.
	Parents map[string][]string
	// Vectors holds the embedding of every node.
	Vectors map[string][]float64
	// Levels holds the depth of every node; the root is level 0.
	Levels map[string]int
}

// Tree generates a complete tree whose children are Gaussian perturbations
// of their parent. The perturbation scale is 0.3/level, so deeper levels
// cluster more tightly. The root sits at the origin and nodes are named by
// their path ("0", "0.1", "0.1.0", ...).
func (r *RNG) Tree(depth, branching, dimensions int) Tree {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := Tree{
		Parents: map[string][]string{"root": nil},
		Vectors: map[string][]float64{"root": make([]float64, dimensions)},
		Levels:  map[string]int{"root": 0},
	}
	r.grow(&t, "root", "", 1, depth, branching, dimensions)
	return t
}

func (r *RNG) grow(t *Tree, parent, prefix string, level, depth, branching, dimensions int) {
	if level > depth {
		return
	}

	scale := 0.3 / float64(level)
	pv := t.Vectors[parent]

	for i := range branching {
		id := strconv.Itoa(i)
		if prefix != "" {
			id = prefix + "." + id
		}

		v := make([]float64, dimensions)
		for j := range v {
			v[j] = pv[j] + scale*r.rand.NormFloat64()
		}

		t.Parents[id] = []string{parent}
		t.Vectors[id] = v
		t.Levels[id] = level

		r.grow(t, id, id, level+1, depth, branching, dimensions)
	}
}
