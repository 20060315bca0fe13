// Package index defines the contracts between search engines and the record
// sources they scan.
//
// A search engine reads records through RecordSource and, when the source
// also implements ConfigSource, validates queries against the collection
// configuration.
//
// # Subpackages
//
//   - flat: exact brute-force kNN over Euclidean or Poincaré geometry
package index
