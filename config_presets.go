package goPolicy

import "time"

// DefaultConfig returns the baseline configuration: ed25519 tokens with a
// 15 minute TTL, 24 hour stored-policy TTL, metrics and audit disabled.
// Signing keys must still be supplied before tokens can be issued.
//
//	Docs: docs/config.md
func DefaultConfig() Config {
	return defaultConfig()
}

// HighSecurityConfig tightens the defaults for deployments that treat every
// policy string as hostile: short token TTL, minimal clock leeway, a small
// parse ceiling, and audit enabled in blocking mode.
//
//	Docs: docs/config.md
func HighSecurityConfig() Config {
	cfg := defaultConfig()
	cfg.Token.TTL = 5 * time.Minute
	cfg.Token.Leeway = 10 * time.Second
	cfg.Store.PolicyTTL = time.Hour
	cfg.Policy.MaxLength = 2048
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Metrics.Enabled = true
	return cfg
}

// HighThroughputConfig relaxes the defaults for hot-path checking: longer
// token TTL, sliding stored-policy expiration, lossy audit, and latency
// histograms enabled for capacity planning.
//
//	Docs: docs/config.md
func HighThroughputConfig() Config {
	cfg := defaultConfig()
	cfg.Token.TTL = time.Hour
	cfg.Store.SlidingExpiration = true
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 8192
	cfg.Audit.DropIfFull = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}
