package goPolicy

import "errors"

var (
	// ErrPolicyNotFound is an exported constant or variable used by the policy engine.
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrPolicyInvalid is an exported constant or variable used by the policy engine.
	ErrPolicyInvalid = errors.New("invalid policy string")
	// ErrStoreDisabled is an exported constant or variable used by the policy engine.
	ErrStoreDisabled = errors.New("policy store disabled (no redis client)")
	// ErrStoreUnavailable is an exported constant or variable used by the policy engine.
	ErrStoreUnavailable = errors.New("policy store unavailable")
	// ErrTokensDisabled is an exported constant or variable used by the policy engine.
	ErrTokensDisabled = errors.New("token support disabled (no signing key)")
	// ErrTokenInvalid is an exported constant or variable used by the policy engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the policy engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrSubjectRequired is an exported constant or variable used by the policy engine.
	ErrSubjectRequired = errors.New("subject id required")
	// ErrPolicyConflict is an exported constant or variable used by the policy engine.
	ErrPolicyConflict = errors.New("policy modified concurrently")
)
