package internaldefs

import (
	goPolicy "github.com/MrEthical07/goPolicy"
)

// CounterDef defines a public type used by goPolicy APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goPolicy.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goPolicy APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goPolicy.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the policy engine.
var CounterDefs = []CounterDef{
	{ID: goPolicy.MetricSerializeSuccess, Name: "gopolicy_serialize_success_total", Help: "Successful policy serializations."},
	{ID: goPolicy.MetricSerializeFailure, Name: "gopolicy_serialize_failure_total", Help: "Failed policy serializations."},
	{ID: goPolicy.MetricDeserializeSuccess, Name: "gopolicy_deserialize_success_total", Help: "Successful policy parses."},
	{ID: goPolicy.MetricDeserializeFailure, Name: "gopolicy_deserialize_failure_total", Help: "Failed policy parses."},
	{ID: goPolicy.MetricCheckGranted, Name: "gopolicy_check_granted_total", Help: "Permission checks that granted access."},
	{ID: goPolicy.MetricCheckDenied, Name: "gopolicy_check_denied_total", Help: "Permission checks denied for missing factors."},
	{ID: goPolicy.MetricCheckNotFound, Name: "gopolicy_check_not_found_total", Help: "Permission checks against permissions absent from the policy."},
	{ID: goPolicy.MetricTokenIssued, Name: "gopolicy_token_issued_total", Help: "Issued policy tokens."},
	{ID: goPolicy.MetricTokenIssueFailure, Name: "gopolicy_token_issue_failure_total", Help: "Failed token issuance operations."},
	{ID: goPolicy.MetricTokenParseFailure, Name: "gopolicy_token_parse_failure_total", Help: "Rejected policy tokens."},
	{ID: goPolicy.MetricPolicySaved, Name: "gopolicy_policy_saved_total", Help: "Policies saved to the store."},
	{ID: goPolicy.MetricPolicyLoaded, Name: "gopolicy_policy_loaded_total", Help: "Policies loaded from the store."},
	{ID: goPolicy.MetricPolicyRevoked, Name: "gopolicy_policy_revoked_total", Help: "Policies revoked from the store."},
	{ID: goPolicy.MetricPolicyMissing, Name: "gopolicy_policy_missing_total", Help: "Store lookups that found no policy."},
	{ID: goPolicy.MetricStoreFailure, Name: "gopolicy_store_failure_total", Help: "Failed store operations."},
}

// HistogramDefs is an exported constant or variable used by the policy engine.
var HistogramDefs = []HistogramDef{
	{ID: goPolicy.MetricCheckLatency, Name: "gopolicy_check_latency_seconds", Help: "Check latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the policy engine.
var HistogramBounds = []string{
	"0.000001",
	"0.000005",
	"0.00001",
	"0.00005",
	"0.0001",
	"0.0005",
	"0.001",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the policy engine.
var HistogramBoundSuffix = []string{
	"1us",
	"5us",
	"10us",
	"50us",
	"100us",
	"500us",
	"1ms",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
