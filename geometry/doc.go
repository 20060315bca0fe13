// Package geometry holds what the flat and hyperbolic algebras share: the
// geometry kind enum, the Operations capability interface, the error kinds
// returned by vector math, and domain-guarded inverse hyperbolic functions.
//
// The two algebras live in the euclidean and poincare packages. They share no
// state and neither vector type embeds the other; both satisfy
// Operations[T] for their own vector type.
package geometry
