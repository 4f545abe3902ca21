// Package policy implements the compact wire format and evaluation model for
// factor-gated permissions used by goPolicy.
//
// A policy is one subject's set of satisfied factors plus a mapping from each
// permission to the factors it requires. The wire format packs both into a
// single printable string small enough to ride inside a signed token claim:
// integers are radix-32 encoded, factor lists are comma-joined, and
// permissions that share an identical factor requirement are merged into one
// group so the requirement is emitted once.
//
// # Wire format
//
//	policy            := [ "!" factor-list ] [ "#" permission-groups ]
//	permission-groups := group ("&" group)*
//	group             := perm-list [ "+" factor-list ]
//
// The leading "!" section lists the subject's satisfied factors. Each group
// names one or more permission ids and, after "+", the factors they all
// require; a group with no "+" part requires nothing and is always granted.
// The full alphabet is 0-9a-vA-V!#&+, — any other byte is a parse error.
// An empty policy serializes to the empty string.
//
// # Architecture boundaries
//
// This package is a pure in-memory codec and evaluator with no I/O. Carrier
// concerns (JWT claims, Redis persistence) live in the token and store
// packages; this package only produces and consumes the policy string.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import goPolicy, token, or store.
//   - Mutate a Policy after construction (replace, never patch).
package policy
