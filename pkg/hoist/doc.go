// Package hoist flattens a canonical dependency tree into a minimal nested
// placement compatible with npm-style node placement rules.
//
// # Overview
//
// The input tree may legitimately repeat the same package name at different
// depths with different variants. Hoisting deduplicates identical variants
// (same name, version, and content signature) and places every variant as
// shallow as possible: walk the placement tree from the root along the
// variant's consumer path; an empty name slot takes the variant, a slot
// holding the same variant needs nothing, and a slot holding a different
// variant forces a descent one level down the path. Placement never removes
// or overwrites an existing occupant, which is what lets two incompatible
// versions of one package coexist nested under their respective consumers.
//
// # Determinism
//
// Variants are placed in a total order - ascending minimum depth, then
// descending occurrence count, then lexicographic by first occurrence path -
// so the same input always yields the same placement, independent of map
// iteration order.
package hoist
