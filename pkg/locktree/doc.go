// Package locktree builds canonical, content-addressed dependency trees from
// raw nested lock files.
//
// # Overview
//
// A raw lock file stores resolutions as a nested dependencies map where a
// package can appear at several depths with locally-overridden versions. This
// package turns that document into a canonical [Node] tree: every node
// carries its resolved version, its own requires map, one child per requires
// entry, and a content [Signature] computed bottom-up over its dependency
// subtree.
//
// Resolution mirrors Node-style module lookup: a requires entry for name
// found while processing lock-path P is resolved by searching P|name, then
// the parent prefixes of P, and finally the root. The nearest enclosing
// override wins.
//
// # Signatures
//
// Two subtrees with identical names, versions, and recursively identical
// child signatures hash identically, on any platform and across process
// runs. Signatures are the identity primitive the differ and hoister use to
// decide that two occurrences of a package are the same variant.
//
// # Scope
//
// All memoization state (the per-lock-path table, the signature index) is
// owned by a single [Builder] and dies with it. Signatures are only
// guaranteed unique within one build's content universe, so builders must
// never be reused across independent runs.
package locktree
