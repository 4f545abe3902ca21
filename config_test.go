package goPolicy

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "token ttl zero invalid",
			mutate: func(c *Config) {
				c.Token.TTL = 0
			},
			wantValid: false,
		},
		{
			name: "token leeway valid",
			mutate: func(c *Config) {
				c.Token.Leeway = 45 * time.Second
			},
			wantValid: true,
		},
		{
			name: "token leeway invalid",
			mutate: func(c *Config) {
				c.Token.Leeway = 3 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "token leeway negative invalid",
			mutate: func(c *Config) {
				c.Token.Leeway = -time.Second
			},
			wantValid: false,
		},
		{
			name: "token issuer blank invalid",
			mutate: func(c *Config) {
				c.Token.Issuer = "   "
			},
			wantValid: false,
		},
		{
			name: "token audience blank invalid",
			mutate: func(c *Config) {
				c.Token.Audience = "   "
			},
			wantValid: false,
		},
		{
			name: "token signing hs256 valid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "hs256"
				c.Token.PrivateKey = []byte("secret-secret-secret-secret")
			},
			wantValid: true,
		},
		{
			name: "token signing invalid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "rs256"
			},
			wantValid: false,
		},
		{
			name: "hs256 verify keys without private key invalid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "hs256"
				c.Token.VerifyKeys = map[string][]byte{"k1": []byte("secret")}
			},
			wantValid: false,
		},
		{
			name: "store prefix blank invalid",
			mutate: func(c *Config) {
				c.Store.RedisPrefix = " "
			},
			wantValid: false,
		},
		{
			name: "store negative ttl invalid",
			mutate: func(c *Config) {
				c.Store.PolicyTTL = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "sliding expiration without ttl invalid",
			mutate: func(c *Config) {
				c.Store.PolicyTTL = 0
				c.Store.SlidingExpiration = true
			},
			wantValid: false,
		},
		{
			name: "sliding expiration with ttl valid",
			mutate: func(c *Config) {
				c.Store.PolicyTTL = time.Hour
				c.Store.SlidingExpiration = true
			},
			wantValid: true,
		},
		{
			name: "policy max length negative invalid",
			mutate: func(c *Config) {
				c.Policy.MaxLength = -1
			},
			wantValid: false,
		},
		{
			name: "policy max length zero valid",
			mutate: func(c *Config) {
				c.Policy.MaxLength = 0
			},
			wantValid: true,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit enabled with buffer valid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 64
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config, got nil")
			}
		})
	}
}

func TestConfigCloneIsolatesKeyMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.PrivateKey = []byte{1, 2, 3}
	cfg.Token.PublicKey = []byte{4, 5, 6}
	cfg.Token.VerifyKeys = map[string][]byte{"k1": {7, 8, 9}}

	cloned := cloneConfig(cfg)
	cfg.Token.PrivateKey[0] = 99
	cfg.Token.PublicKey[0] = 99
	cfg.Token.VerifyKeys["k1"][0] = 99

	if cloned.Token.PrivateKey[0] != 1 {
		t.Fatal("private key shared between config and clone")
	}
	if cloned.Token.PublicKey[0] != 4 {
		t.Fatal("public key shared between config and clone")
	}
	if cloned.Token.VerifyKeys["k1"][0] != 7 {
		t.Fatal("verify key shared between config and clone")
	}
}
