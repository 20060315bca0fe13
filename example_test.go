package hypervec_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/hypervec"
	"github.com/hupe1980/hypervec/codec"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
	"github.com/hupe1980/hypervec/model"
)

// Example_search demonstrates an exact Euclidean search.
func Example_search() {
	ctx := context.Background()

	db, err := hypervec.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.CreateCollection("points", model.EuclideanConfig(2, codec.Float32)); err != nil {
		log.Fatal(err)
	}

	for _, v := range [][]float32{{0, 0}, {3, 4}, {1, 1}} {
		if _, err := db.Insert(ctx, "points", v, nil); err != nil {
			log.Fatal(err)
		}
	}

	results, err := db.Search(ctx, "points", []float32{0, 0}, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Printf("%v %.4f\n", r.Vector, r.Distance)
	}
	// Output:
	// [0 0] 0.0000
	// [1 1] 1.4142
}

// Example_poincare demonstrates a search in the Poincaré ball.
func Example_poincare() {
	ctx := context.Background()

	db, err := hypervec.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.CreateCollection("tree", model.PoincareConfig(2, codec.Float32)); err != nil {
		log.Fatal(err)
	}

	if _, err := db.Insert(ctx, "tree", []float32{0.5, 0}, nil); err != nil {
		log.Fatal(err)
	}

	results, err := db.Search(ctx, "tree", []float32{0, 0}, 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.4f\n", results[0].Distance)

	_, err = db.Insert(ctx, "tree", []float32{1, 0}, nil)
	fmt.Println(err != nil)
	// Output:
	// 2.1972
	// true
}

// Example_filter demonstrates a metadata filter.
func Example_filter() {
	ctx := context.Background()

	db, err := hypervec.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.CreateCollection("docs", model.EuclideanConfig(1, codec.Float32)); err != nil {
		log.Fatal(err)
	}

	langs := []string{"en", "de", "en"}
	for i, lang := range langs {
		meta := metadata.Document{"lang": metadata.String(lang)}
		if _, err := db.Insert(ctx, "docs", []float32{float32(i)}, meta); err != nil {
			log.Fatal(err)
		}
	}

	results, err := db.Search(ctx, "docs", []float32{0}, 10,
		hypervec.WithFilter(metadata.Eq("lang", "en")),
		hypervec.WithGeometry(geometry.Euclidean),
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Println(r.Vector)
	}
	// Output:
	// [0]
	// [2]
}

// Example_learnCurvature demonstrates curvature learning on a small tree.
func Example_learnCurvature() {
	db, err := hypervec.Open()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	h := curvature.Hierarchy{
		"root": nil,
		"a":    {"root"},
		"b":    {"root"},
	}

	c, err := db.LearnCurvature(context.Background(), h, curvature.KindGridSearch, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(c, db.Curvature())
	// Output: -1 -1
}
