package goPolicy

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a lint warning. [Config.Validate] rejects configs that
// cannot work at all; Lint flags configs that work but are risky or
// contradictory.
type LintSeverity int

const (
	LintLow LintSeverity = iota
	LintMedium
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintHigh:
		return "HIGH"
	case LintMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// LintWarning is a single finding from [Config.Lint]. Code is stable and
// machine-checkable; Message is for humans.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the ordered result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError converts the warnings at or above min into a single error, or nil
// when none reach that severity. Useful as a deploy gate:
//
//	if err := cfg.Lint().AsError(goPolicy.LintHigh); err != nil {
//		log.Fatal(err)
//	}
func (ws LintWarnings) AsError(min LintSeverity) error {
	offending := ws.BySeverity(min)
	if len(offending) == 0 {
		return nil
	}
	return fmt.Errorf("config lint (%s or above): %s", min, strings.Join(offending.Codes(), ", "))
}

// Lint inspects the config for settings that are valid but weaken the
// deployment: oversized clock leeway, long-lived tokens, shared-secret
// signing, unbounded policy input, and contradictory toggles. It never
// rejects a config; pair it with [LintWarnings.AsError] to enforce a
// severity floor.
//
//	Docs: docs/config.md
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.Token.Leeway > time.Minute {
		add("leeway_large", LintMedium,
			fmt.Sprintf("token clock leeway %s extends effective token lifetime; 30s or less is typical", c.Token.Leeway))
	}
	if c.Token.TTL > time.Hour {
		add("token_ttl_long", LintMedium,
			fmt.Sprintf("token TTL %s delays revocation taking effect for already-issued tokens", c.Token.TTL))
	}
	if c.Token.SigningMethod == "hs256" {
		add("signing_hs256", LintMedium,
			"hs256 uses one shared secret for signing and verification; ed25519 lets verifiers hold only the public key")
	}
	if c.Store.PolicyTTL > 0 && c.Token.TTL > c.Store.PolicyTTL {
		add("token_outlives_policy", LintMedium,
			"token TTL exceeds stored-policy TTL; issued tokens stay valid after the subject's stored policy expires")
	}

	if c.Policy.MaxLength == 0 {
		add("policy_length_unbounded", LintHigh,
			"Policy.MaxLength 0 disables the parse ceiling; untrusted callers can submit arbitrarily large policy strings")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		add("histograms_without_metrics", LintHigh,
			"EnableLatencyHistograms has no effect while Metrics.Enabled is false")
	}

	if !c.Audit.Enabled {
		add("audit_disabled", LintLow,
			"audit is disabled; grants, denials and revocations leave no trail")
	} else if !c.Audit.DropIfFull {
		add("audit_blocking", LintLow,
			"DropIfFull false means a slow audit sink can stall check and store operations")
	}

	return ws
}
