// Package diffx is a semantic differ for structured data. It compares two
// document trees and reports what changed, where, and how, as a flat list of
// path-qualified change records rather than a textual diff.
//
// Instead of operating on a particular serialization, diffx compares trees of
// Value, a closed union of six variants: two composite types,
//
//	Array, Object
//
// and four scalar types:
//
//	Null, Boolean, Number, String
//
// so documents decoded from JSON, YAML, TOML, INI, XML or CSV (see the decode
// package) can be compared with each other, and configuration files that differ
// only in whitespace, key order or quoting style compare equal.
//
// Each difference is one of four kinds:
//
//	Added        present in the second tree only
//	Removed      present in the first tree only
//	Modified     present in both with the same type, different value
//	TypeChanged  present in both with different types
//
// Paths read "parent.key" for object members, "parent[2]" for array positions
// and "parent[id=7]" for array elements matched by an identity key.
//
// Comparison is controlled by a handful of orthogonal options: a regular
// expression of object keys to skip at any depth, a numeric tolerance, an
// identity key for matching array elements regardless of their order, and a
// batched mode for very large inputs that yields exactly the same records.
//
// diffx never computes minimal edit scripts for arrays: without an identity key
// elements are compared position by position. It doesn't patch or merge either,
// comparison is read-only.
package diffx
