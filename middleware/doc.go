// Package middleware exposes HTTP middleware adapters that enforce
// policy-token permissions on top of goPolicy.Engine checks.
//
// # Guards
//
//   - [Require] — admits requests whose bearer token grants one permission.
//   - [RequireAll] — admits requests only when every listed permission is granted.
//   - [RequireStrict] — additionally re-checks the subject's stored policy, so
//     revocations take effect before the token expires.
//
// Each guard reads the Authorization header, calls Engine.CheckToken, and
// injects the resulting [goPolicy.CheckResult] into the request context.
// Token failures map to 401, permission denials to 403; RequireStrict answers
// 503 when the policy store is unreachable.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// evaluate policies itself — all decisions are delegated to Engine.CheckToken
// and Engine.CheckSubject.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine checks.
package middleware
