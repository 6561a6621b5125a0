// Package quarry implements an in-memory tabular record store for two
// auto-detected dataset shapes: world-development indicator series and
// air-quality sensor observations.
//
// The store exposes one logical query contract over three interchangeable
// physical layouts:
//
//   - linked: one independently allocated node per row
//   - columnar: struct-of-arrays, one packed slice per field
//   - compact: array-of-structures, whole records stored contiguously
//
// Repeated string fields are dictionary-encoded into dense integer codes
// with reverse lookup. Ingestion of a directory fans out across a fixed
// worker pool, each worker owning private row storage and a private
// dictionary encoder; a single-threaded freeze step merges dictionaries,
// remaps stored codes, and produces the immutable queryable store.
//
// Queries cover typed column range scans (sequential or thread-partitioned
// with roaring-bitmap selection), min/max extremes over a unified numeric
// metric, and per-year sums.
//
// See cmd/quarry for the CLI entry point and pkg/ingest for the
// construction API.
package quarry
