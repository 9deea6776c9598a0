// Package registry holds the catalog of primitive functions known to the
// runtime.
//
// A Registry is built once from a fixed list of descriptors, validated as a
// whole, and is read-only afterwards. It maps every function name to a small
// integer ID and every ID back to its immutable Descriptor. Looking up a name
// the runtime does not know is a compile-time failure for the query that
// referenced it, never a per-row event.
package registry
