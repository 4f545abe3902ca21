// Package goPolicy provides a low-latency authorization engine built on compact
// factor-based policy strings, with signed policy tokens and Redis-backed policy storage.
//
// A policy records which authentication factors a subject has satisfied and which
// factors each permission requires. Policies serialize to a short base-32 wire form
// that fits inside a token claim, so permission checks need no database round-trip.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goPolicy is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (CheckResult, MetricsSnapshot, PolicyInfo, etc.). Grammar handling lives in the policy
// sub-package, Redis persistence in store, and token signing in token; this package only
// coordinates them.
//
// # What this package must NOT do
//
//   - Expose Redis clients or token signing internals in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports goPolicy (no import cycles).
//
// # Performance contract
//
// CheckPolicy and CheckToken are the hot paths. A check parses the policy string once,
// evaluates in memory, and completes without Redis round-trips. CheckSubject, SavePolicy,
// and RevokePolicy are allowed one Redis round-trip per call.
package goPolicy
