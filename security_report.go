package goPolicy

import "time"

type SecurityReport struct {
	SigningAlgorithm      string
	TokenTTL              time.Duration
	Leeway                time.Duration
	TokensEnabled         bool
	StoreEnabled          bool
	SlidingExpiration     bool
	PolicyTTL             time.Duration
	MaxPolicyLength       int
	RegisteredPermissions int
	AuditEnabled          bool
	AuditLossy            bool
	MetricsEnabled        bool
	LatencyHistograms     bool

	// Warnings is the lint output for the active config. Empty in a clean
	// deployment.
	Warnings LintWarnings
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	perms := 0
	if e.registry != nil {
		perms = e.registry.Count()
	}

	return SecurityReport{
		SigningAlgorithm:      e.config.Token.SigningMethod,
		TokenTTL:              e.config.Token.TTL,
		Leeway:                e.config.Token.Leeway,
		TokensEnabled:         e.tokens != nil,
		StoreEnabled:          e.store != nil,
		SlidingExpiration:     e.config.Store.SlidingExpiration,
		PolicyTTL:             e.config.Store.PolicyTTL,
		MaxPolicyLength:       e.config.Policy.MaxLength,
		RegisteredPermissions: perms,
		AuditEnabled:          e.config.Audit.Enabled,
		AuditLossy:            e.config.Audit.Enabled && e.config.Audit.DropIfFull,
		MetricsEnabled:        e.config.Metrics.Enabled,
		LatencyHistograms:     e.config.Metrics.Enabled && e.config.Metrics.EnableLatencyHistograms,
		Warnings:              e.config.Lint(),
	}
}
