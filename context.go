package goPolicy

import "context"

type clientIPContextKey struct{}
type tenantIDContextKey struct{}

// WithClientIP attaches the caller’s IP address to ctx. The Engine stamps
// it on every audit event emitted while handling the request.
//
//	Docs: docs/audit.md
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithTenantID attaches a tenant identifier to ctx. It is an audit
// dimension only: policy evaluation itself is tenant-agnostic, and events
// from requests without a tenant simply omit the field.
//
//	Docs: docs/audit.md, docs/engine.md
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey{}, tenantID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func tenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	tenantID, _ := ctx.Value(tenantIDContextKey{}).(string)
	return tenantID
}
