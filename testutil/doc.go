// Package testutil provides testing utilities for hypervec.
//
// This package is intended for use in tests, examples and the CLI only.
// It provides a seeded, thread-safe random source and generators for
// vectors, hierarchies and embedded trees.
//
// # Random Vectors
//
//	rng := testutil.NewRNG(seed)
//	vs := rng.GaussianVectors(100, 16)
//	ball := rng.BallVectors(100, 16, 0.9) // inside the Poincaré ball
//
// # Hierarchies
//
//	h := testutil.DeepHierarchy(6, 2)  // child -> parents
//	tree := rng.Tree(4, 2, 8)          // hierarchy plus embedding
package testutil
