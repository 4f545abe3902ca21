package goPolicy

import (
	"errors"

	"github.com/MrEthical07/goPolicy/policy"
	"github.com/MrEthical07/goPolicy/store"
	"github.com/MrEthical07/goPolicy/token"
	"github.com/redis/go-redis/v9"
)

type registryEntry struct {
	id       policy.Permission
	required []policy.Factor
}

// Builder defines a public type used by goPolicy APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	registry *policy.Registry
	entries  []registryEntry

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithRegistry describes the withregistry operation and its observable behavior.
//
// WithRegistry may return an error when input validation, dependency calls, or security checks fail.
// WithRegistry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRegistry(r *policy.Registry) *Builder {
	b.registry = r
	return b
}

// WithPermission describes the withpermission operation and its observable behavior.
//
// WithPermission may return an error when input validation, dependency calls, or security checks fail.
// WithPermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPermission(id policy.Permission, required ...policy.Factor) *Builder {
	b.entries = append(b.entries, registryEntry{id: id, required: required})
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- PERMISSION REGISTRY --------
	registry := b.registry
	if registry == nil {
		registry = policy.NewRegistry()
	}

	for _, entry := range b.entries {
		if err := registry.Register(entry.id, entry.required...); err != nil {
			return nil, err
		}
	}

	registry.Freeze()

	engine := &Engine{
		config:   cloneConfig(cfg),
		registry: registry,
	}

	// -------- POLICY STORE --------
	if b.redis != nil {
		engine.store = store.NewStore(
			b.redis,
			cfg.Store.RedisPrefix,
			cfg.Store.PolicyTTL,
			cfg.Store.SlidingExpiration,
		)
	}

	// -------- TOKEN MANAGER --------
	if tokenKeysConfigured(cfg.Token) {
		tm, err := token.NewManager(token.Config{
			TTL:           cfg.Token.TTL,
			SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
			Audience:      cfg.Token.Audience,
			Leeway:        cfg.Token.Leeway,
			KeyID:         cfg.Token.KeyID,
			VerifyKeys:    cfg.Token.VerifyKeys,
		})
		if err != nil {
			return nil, err
		}
		engine.tokens = tm
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

func tokenKeysConfigured(cfg TokenConfig) bool {
	return len(cfg.PrivateKey) > 0 || len(cfg.PublicKey) > 0 || len(cfg.VerifyKeys) > 0
}
