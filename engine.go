package goPolicy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goPolicy/policy"
	"github.com/MrEthical07/goPolicy/store"
	"github.com/MrEthical07/goPolicy/token"
)

// Engine defines a public type used by goPolicy APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	registry *policy.Registry
	store    *store.Store
	tokens   *token.Manager
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Registry describes the registry operation and its observable behavior.
//
// Registry may return an error when input validation, dependency calls, or security checks fail.
// Registry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Registry() *policy.Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// IssueToken describes the issuetoken operation and its observable behavior.
//
// IssueToken may return an error when input validation, dependency calls, or security checks fail.
// IssueToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueToken(ctx context.Context, subjectID string, satisfied []policy.Factor, perms ...policy.Permission) (IssueResult, error) {
	if e.tokens == nil {
		return IssueResult{}, ErrTokensDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return IssueResult{}, ErrSubjectRequired
	}

	p := policy.FromRegistry(satisfied, e.registry, perms...)

	s, err := e.serializePolicy(p)
	if err != nil {
		return IssueResult{}, err
	}

	tok, expiresAt, err := e.tokens.Issue(subjectID, s)
	if err != nil {
		e.metricInc(MetricTokenIssueFailure)
		e.emitAudit(ctx, auditEventTokenIssueFailure, false, subjectID, err, nil)
		return IssueResult{}, err
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, subjectID, nil, func() map[string]string {
		return map[string]string{"policy": s}
	})

	return IssueResult{
		Token:        tok,
		PolicyString: s,
		SubjectID:    subjectID,
		ExpiresAt:    expiresAt,
	}, nil
}

// CheckToken describes the checktoken operation and its observable behavior.
//
// CheckToken may return an error when input validation, dependency calls, or security checks fail.
// CheckToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CheckToken(ctx context.Context, tokenString string, perm policy.Permission) (CheckResult, error) {
	if e.tokens == nil {
		return CheckResult{}, ErrTokensDisabled
	}

	claims, err := e.tokens.Parse(tokenString)
	if err != nil {
		e.metricInc(MetricTokenParseFailure)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", err, nil)
		if errors.Is(err, token.ErrExpired) {
			return CheckResult{}, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return CheckResult{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return e.check(ctx, claims.Subject, claims.PolicyString, perm)
}

// CheckPolicy evaluates a raw policy string against one permission without
// touching the token or storage layers. It is the pure in-memory path.
//
//	Docs: docs/engine.md
func (e *Engine) CheckPolicy(policyString string, perm policy.Permission) (CheckResult, error) {
	return e.check(context.Background(), "", policyString, perm)
}

// CheckSubject describes the checksubject operation and its observable behavior.
//
// CheckSubject may return an error when input validation, dependency calls, or security checks fail.
// CheckSubject does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CheckSubject(ctx context.Context, subjectID string, perm policy.Permission) (CheckResult, error) {
	s, err := e.loadString(ctx, subjectID)
	if err != nil {
		return CheckResult{}, err
	}
	return e.check(ctx, subjectID, s, perm)
}

// SavePolicy describes the savepolicy operation and its observable behavior.
//
// SavePolicy may return an error when input validation, dependency calls, or security checks fail.
// SavePolicy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SavePolicy(ctx context.Context, subjectID string, p *policy.Policy) error {
	if e.store == nil {
		return ErrStoreDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return ErrSubjectRequired
	}

	s, err := e.serializePolicy(p)
	if err != nil {
		return err
	}

	if err := e.store.Save(ctx, subjectID, s); err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventStoreFailure, false, subjectID, err, nil)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPolicySaved)
	e.emitAudit(ctx, auditEventPolicySaved, true, subjectID, nil, func() map[string]string {
		return map[string]string{"policy": s}
	})
	return nil
}

// LoadPolicy describes the loadpolicy operation and its observable behavior.
//
// LoadPolicy may return an error when input validation, dependency calls, or security checks fail.
// LoadPolicy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoadPolicy(ctx context.Context, subjectID string) (*policy.Policy, error) {
	s, err := e.loadString(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	p, err := e.parsePolicy(s)
	if err != nil {
		e.emitAudit(ctx, auditEventPolicyRejected, false, subjectID, err, nil)
		return nil, err
	}
	return p, nil
}

// RevokePolicy describes the revokepolicy operation and its observable behavior.
//
// RevokePolicy may return an error when input validation, dependency calls, or security checks fail.
// RevokePolicy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokePolicy(ctx context.Context, subjectID string) error {
	if e.store == nil {
		return ErrStoreDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return ErrSubjectRequired
	}

	if err := e.store.Delete(ctx, subjectID); err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventStoreFailure, false, subjectID, err, nil)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPolicyRevoked)
	e.emitAudit(ctx, auditEventPolicyRevoked, true, subjectID, nil, nil)
	return nil
}

// SwapPolicy describes the swappolicy operation and its observable behavior.
//
// SwapPolicy may return an error when input validation, dependency calls, or security checks fail.
// SwapPolicy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SwapPolicy(ctx context.Context, subjectID string, expected, next *policy.Policy) error {
	if e.store == nil {
		return ErrStoreDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return ErrSubjectRequired
	}

	current, err := e.serializePolicy(expected)
	if err != nil {
		return err
	}
	updated, err := e.serializePolicy(next)
	if err != nil {
		return err
	}

	if err := e.store.CompareAndSwap(ctx, subjectID, current, updated); err != nil {
		switch {
		case errors.Is(err, store.ErrPolicyNotFound):
			e.metricInc(MetricPolicyMissing)
			return ErrPolicyNotFound
		case errors.Is(err, store.ErrSwapConflict):
			return ErrPolicyConflict
		default:
			e.metricInc(MetricStoreFailure)
			e.emitAudit(ctx, auditEventStoreFailure, false, subjectID, err, nil)
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	e.metricInc(MetricPolicySaved)
	e.emitAudit(ctx, auditEventPolicySaved, true, subjectID, nil, func() map[string]string {
		return map[string]string{"policy": updated, "cas": "true"}
	})
	return nil
}

// InspectSubject describes the inspectsubject operation and its observable behavior.
//
// InspectSubject may return an error when input validation, dependency calls, or security checks fail.
// InspectSubject does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) InspectSubject(ctx context.Context, subjectID string) (PolicyInfo, error) {
	if e.store == nil {
		return PolicyInfo{}, ErrStoreDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return PolicyInfo{}, ErrSubjectRequired
	}

	s, ttl, err := e.store.GetWithTTL(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			e.metricInc(MetricPolicyMissing)
			return PolicyInfo{}, ErrPolicyNotFound
		}
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventStoreFailure, false, subjectID, err, nil)
		return PolicyInfo{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricPolicyLoaded)

	p, err := e.parsePolicy(s)
	if err != nil {
		e.emitAudit(ctx, auditEventPolicyRejected, false, subjectID, err, nil)
		return PolicyInfo{}, err
	}

	return PolicyInfo{
		SubjectID:        subjectID,
		PolicyString:     s,
		SatisfiedFactors: p.SatisfiedFactors(),
		Permissions:      p.Permissions(),
		TTL:              ttl,
	}, nil
}

func (e *Engine) check(ctx context.Context, subjectID, policyString string, perm policy.Permission) (CheckResult, error) {
	start := time.Now()

	p, err := e.parsePolicy(policyString)
	if err != nil {
		e.emitAudit(ctx, auditEventPolicyRejected, false, subjectID, err, nil)
		return CheckResult{}, err
	}

	res := CheckResult{
		SubjectID:  subjectID,
		Permission: perm,
		Decision:   p.IsGranted(perm),
	}

	switch res.Decision {
	case policy.Granted:
		e.metricInc(MetricCheckGranted)
		e.emitCheck(ctx, auditEventCheckGranted, true, subjectID, perm, res.Decision)
	case policy.Denied:
		res.MissingFactors = p.MissingFactors(perm)
		e.metricInc(MetricCheckDenied)
		e.emitCheck(ctx, auditEventCheckDenied, false, subjectID, perm, res.Decision)
	default:
		e.metricInc(MetricCheckNotFound)
		e.emitCheck(ctx, auditEventCheckNotFound, false, subjectID, perm, res.Decision)
	}

	e.metricObserve(MetricCheckLatency, time.Since(start))

	return res, nil
}

func (e *Engine) serializePolicy(p *policy.Policy) (string, error) {
	s, err := policy.Serialize(p)
	if err != nil {
		e.metricInc(MetricSerializeFailure)
		return "", err
	}
	if max := e.config.Policy.MaxLength; max > 0 && len(s) > max {
		e.metricInc(MetricSerializeFailure)
		return "", fmt.Errorf("%w: serialized policy exceeds %d bytes", ErrPolicyInvalid, max)
	}
	e.metricInc(MetricSerializeSuccess)
	return s, nil
}

func (e *Engine) parsePolicy(s string) (*policy.Policy, error) {
	if max := e.config.Policy.MaxLength; max > 0 && len(s) > max {
		e.metricInc(MetricDeserializeFailure)
		return nil, fmt.Errorf("%w: policy string exceeds %d bytes", ErrPolicyInvalid, max)
	}

	p, err := policy.Deserialize(s)
	if err != nil {
		e.metricInc(MetricDeserializeFailure)
		return nil, fmt.Errorf("%w: %w", ErrPolicyInvalid, err)
	}

	e.metricInc(MetricDeserializeSuccess)
	return p, nil
}

func (e *Engine) loadString(ctx context.Context, subjectID string) (string, error) {
	if e.store == nil {
		return "", ErrStoreDisabled
	}
	if strings.TrimSpace(subjectID) == "" {
		return "", ErrSubjectRequired
	}

	s, err := e.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			e.metricInc(MetricPolicyMissing)
			return "", ErrPolicyNotFound
		}
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventStoreFailure, false, subjectID, err, nil)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPolicyLoaded)
	return s, nil
}
