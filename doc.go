// Package hypervec provides an in-memory vector store that searches in
// either Euclidean space or the Poincaré ball model of hyperbolic space.
//
// Hyperbolic space grows exponentially with the radius, so trees and
// taxonomies embed into few dimensions with low distortion. hypervec keeps
// the flat and curved algebras side by side, converts between them and
// learns a curvature that suits a given hierarchy.
//
// # Quick Start
//
//	db, _ := hypervec.Open()
//	defer db.Close()
//
//	_ = db.CreateCollection("taxonomy", model.PoincareConfig(2, codec.Float32))
//	id, _ := db.Insert(ctx, "taxonomy", []float32{0.1, 0.2}, metadata.Document{
//	    "kind": metadata.String("genus"),
//	})
//
//	results, _ := db.Search(ctx, "taxonomy", []float32{0.1, 0.25}, 5)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Distance)
//	}
//
// # Geometry
//
// Each collection declares a geometry. Poincaré collections reject vectors
// on or outside the unit ball. A search runs in the collection's geometry
// unless WithGeometry overrides it:
//
//	results, _ := db.Search(ctx, "docs", query, 10, hypervec.WithGeometry(geometry.Poincare))
//
// # Filtering
//
// Metadata filters compose with And, Or and Not:
//
//	filter := metadata.And(metadata.Eq("kind", "genus"), metadata.Gte("year", 1900))
//	results, _ := db.Search(ctx, "taxonomy", query, 10, hypervec.WithFilter(filter))
//
// # Curvature
//
// LearnCurvature estimates a curvature for a hierarchy given as a
// child-to-parents map. The result drives ConvertBatch:
//
//	c, _ := db.LearnCurvature(ctx, h, curvature.KindGradientDescent, nil)
//	ball, _ := db.ConvertBatch(ctx, embeddings, 0.9)
//
// # Storage
//
// Vectors are held in a configurable at-rest format (float32, float16 or
// int8) with optional LZ4 or Zstd compression. Search always runs on the
// decoded float32 values.
package hypervec
