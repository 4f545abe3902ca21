package goPolicy

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goPolicy APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token   TokenConfig
	Store   StoreConfig
	Policy  PolicyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goPolicy APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goPolicy APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix       string
	PolicyTTL         time.Duration
	SlidingExpiration bool
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig defines a public type used by goPolicy APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	// MaxLength rejects policy strings longer than this many bytes before
	// parsing. Zero disables the limit. The wire format itself imposes no
	// ceiling; this is the engine's defense for untrusted input.
	MaxLength int
}

// AuditConfig defines a public type used by goPolicy APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goPolicy APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           15 * time.Minute,
			SigningMethod: "ed25519",
			Issuer:        "gopolicy",
			Audience:      "gopolicy",
			Leeway:        30 * time.Second,
		},
		Store: StoreConfig{
			RedisPrefix:       "pol",
			PolicyTTL:         24 * time.Hour,
			SlidingExpiration: false,
		},
		Policy: PolicyConfig{
			MaxLength: 8192,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	if cfg.Token.VerifyKeys != nil {
		out.Token.VerifyKeys = make(map[string][]byte, len(cfg.Token.VerifyKeys))
		for kid, key := range cfg.Token.VerifyKeys {
			out.Token.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}

	if c.Token.SigningMethod != "ed25519" && c.Token.SigningMethod != "hs256" {
		return errors.New("unsupported token signing method")
	}

	// ed25519 accepts a private key alone (the verify key is derived) or
	// verify-only key material. hs256 always signs and verifies with the
	// same secret.
	if c.Token.SigningMethod == "hs256" {
		if len(c.Token.PublicKey) > 0 || len(c.Token.VerifyKeys) > 0 {
			if len(c.Token.PrivateKey) == 0 {
				return errors.New("hs256 requires PrivateKey")
			}
		}
	}

	if strings.TrimSpace(c.Token.Issuer) == "" {
		return errors.New("Token Issuer must not be blank")
	}
	if strings.TrimSpace(c.Token.Audience) == "" {
		return errors.New("Token Audience must not be blank")
	}

	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}
	if c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be <= 2m")
	}

	// Store
	if strings.TrimSpace(c.Store.RedisPrefix) == "" {
		return errors.New("Store RedisPrefix must not be blank")
	}
	if c.Store.PolicyTTL < 0 {
		return errors.New("Store PolicyTTL must be >= 0")
	}
	if c.Store.SlidingExpiration && c.Store.PolicyTTL <= 0 {
		return errors.New("Store SlidingExpiration requires PolicyTTL > 0")
	}

	// Policy
	if c.Policy.MaxLength < 0 {
		return errors.New("Policy MaxLength must be >= 0")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
