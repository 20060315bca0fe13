// Package metadata provides typed record metadata and composable filter
// expressions.
//
// # Values
//
// Metadata values are small typed values; strings are interned:
//
//	doc := metadata.Document{
//	    "category": metadata.String("tech"),
//	    "year":     metadata.Int(2024),
//	    "score":    metadata.Float(0.8),
//	}
//
// Use DocumentFromAny to ingest map[string]any input.
//
// # Expressions
//
// An Expr is a tree of comparisons joined by AND, OR and NOT:
//
//	filter := metadata.Or(
//	    metadata.Eq("category", 1),
//	    metadata.And(metadata.Gt("id", 7), metadata.Eq("category", 2)),
//	)
//	ok := metadata.Evaluate(filter, doc)
//
// A comparison on a missing field is false. Comparisons whose operand types do
// not fit the operator are false as well, for example Gt on a string field.
// Integers and floats compare by numeric value.
//
// Select evaluates an expression over a slice of documents and returns the
// matching positions as a roaring bitmap backed Selection.
package metadata
