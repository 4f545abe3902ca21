package goPolicy

import (
	"time"

	"github.com/MrEthical07/goPolicy/policy"
)

// CheckResult is returned by [Engine.CheckToken] and [Engine.CheckPolicy].
// It carries the tri-state decision plus the factors the subject would still
// need for a grant, so callers can distinguish "blocked, needs MFA" from
// "no such permission" and prompt accordingly.
//
//	Docs: docs/engine.md, docs/policy.md
type CheckResult struct {
	SubjectID  string
	Permission policy.Permission

	Decision policy.Decision

	// MissingFactors is populated only when Decision is [policy.Denied].
	MissingFactors []policy.Factor
}

// Granted reports whether the check ended in a full grant.
func (r CheckResult) Granted() bool {
	return r.Decision == policy.Granted
}

// IssueResult is returned by [Engine.IssueToken]. It carries the signed
// token together with the serialized policy claim embedded in it.
//
//	Docs: docs/token.md
type IssueResult struct {
	Token        string
	PolicyString string
	SubjectID    string
	ExpiresAt    time.Time
}

// PolicyInfo is returned by [Engine.InspectSubject]. It summarizes a stored
// policy without exposing the internal policy structure.
type PolicyInfo struct {
	SubjectID        string
	PolicyString     string
	SatisfiedFactors []policy.Factor
	Permissions      []policy.Permission
	TTL              time.Duration
}
