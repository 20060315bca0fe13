// Package model defines the record and collection types shared by the store,
// the search engine and the public API.
//
//   - VectorRecord: ID, geometry tag, float32 vector, metadata, timestamps
//   - SearchResult: hit with distance and the record snapshot
//   - CollectionConfig: dimension, geometry, at-rest format and compression
//   - CollectionStats: counts and sizes of a collection
package model
