package goPolicy

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goPolicy/policy"
	"github.com/MrEthical07/goPolicy/store"
	"github.com/MrEthical07/goPolicy/token"
)

const (
	auditEventCheckGranted      = "check_granted"
	auditEventCheckDenied       = "check_denied"
	auditEventCheckNotFound     = "check_not_found"
	auditEventTokenIssued       = "token_issued"
	auditEventTokenIssueFailure = "token_issue_failure"
	auditEventTokenRejected     = "token_rejected"
	auditEventPolicySaved       = "policy_saved"
	auditEventPolicyRevoked     = "policy_revoked"
	auditEventPolicyRejected    = "policy_rejected"
	auditEventStoreFailure      = "store_failure"
)

// AuditErrorCode defines a public type used by goPolicy APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrPolicyInvalid   AuditErrorCode = "invalid_policy"
	auditErrPolicyNotFound  AuditErrorCode = "policy_not_found"
	auditErrTokenInvalid    AuditErrorCode = "invalid_token"
	auditErrTokenExpired    AuditErrorCode = "token_expired"
	auditErrSubjectRequired AuditErrorCode = "subject_required"
	auditErrConflict        AuditErrorCode = "policy_conflict"
	auditErrDisabled        AuditErrorCode = "feature_disabled"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SubjectID: subjectID,
		TenantID:  tenantIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitCheck(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	perm policy.Permission,
	d policy.Decision,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		SubjectID:  subjectID,
		TenantID:   tenantIDFromContext(ctx),
		IP:         clientIPFromContext(ctx),
		Permission: policy.EncodeUint(uint32(perm)),
		Decision:   d.String(),
		Success:    success,
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrPolicyInvalid),
		errors.Is(err, policy.ErrMalformedGrammar),
		errors.Is(err, policy.ErrInvalidCharacter),
		errors.Is(err, policy.ErrOverflow),
		errors.Is(err, policy.ErrEmptyInput),
		errors.Is(err, policy.ErrNullInput):
		return auditErrPolicyInvalid
	case errors.Is(err, ErrPolicyNotFound),
		errors.Is(err, store.ErrPolicyNotFound):
		return auditErrPolicyNotFound
	case errors.Is(err, ErrTokenExpired),
		errors.Is(err, token.ErrExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, token.ErrInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrSubjectRequired):
		return auditErrSubjectRequired
	case errors.Is(err, ErrPolicyConflict),
		errors.Is(err, store.ErrSwapConflict):
		return auditErrConflict
	case errors.Is(err, ErrStoreDisabled),
		errors.Is(err, ErrTokensDisabled):
		return auditErrDisabled
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, store.ErrUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
