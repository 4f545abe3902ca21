// Package store provides Redis-backed persistence for serialized policy
// strings, keyed by subject.
//
// # Stored form
//
// Policies are stored exactly as their compact wire form, one string key
// per subject. The store never parses that form: a value read back is
// returned byte-for-byte as written, and grammar handling stays in the
// policy package.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and nothing else. It
// does NOT evaluate permissions, interpret tokens, or enforce policy —
// those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goPolicy, policy, or token (no upward imports).
//   - Parse or rewrite stored policy strings.
//   - Make authorization decisions.
package store
