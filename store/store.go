package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrPolicyNotFound is returned when no policy exists for the subject.
var ErrPolicyNotFound = errors.New("policy not found")

// ErrUnavailable is an exported constant or variable used by the policy engine.
var ErrUnavailable = errors.New("redis unavailable")

// ErrSwapConflict is returned when a compare-and-swap sees a different
// stored policy than the caller expected.
var ErrSwapConflict = errors.New("policy swap conflict")

const (
	swapStatusNotFound int64 = 0
	swapStatusConflict int64 = 1
	swapStatusSwapped  int64 = 2
)

const swapPolicyScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 1
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[2])
end
return 2
`

var swapPolicyLua = redis.NewScript(swapPolicyScript)

// Store is a Redis-backed policy store that handles persistence,
// expiration, and atomic replacement of policy strings.
//
//	Docs: docs/store.md
type Store struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	sliding bool
}

// NewStore creates a policy [Store] backed by the given Redis client.
// prefix sets the Redis key namespace, ttl the per-policy lifetime
// (zero keeps policies until revoked), and sliding controls whether
// reads renew the lifetime.
//
//	Docs: docs/store.md
func NewStore(
	redis redis.UniversalClient,
	prefix string,
	ttl time.Duration,
	sliding bool,
) *Store {
	return &Store{
		redis:   redis,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (s *Store) key(subjectID string) string {
	return s.prefix + ":" + subjectID
}

// Save persists a serialized policy for the subject, replacing any
// previous value and resetting the configured TTL.
//
//	Performance: 1 Redis SET.
//	Docs: docs/store.md
func (s *Store) Save(ctx context.Context, subjectID, policyString string) error {
	if err := s.redis.Set(ctx, s.key(subjectID), policyString, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get retrieves the serialized policy for a subject. When sliding
// expiration is enabled the read renews the configured TTL.
//
//	Performance: 1 Redis GET, plus 1 EXPIRE when sliding.
//	Docs: docs/store.md
func (s *Store) Get(ctx context.Context, subjectID string) (string, error) {
	key := s.key(subjectID)

	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrPolicyNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if s.sliding && s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return value, nil
}

// GetWithTTL fetches the serialized policy and its remaining lifetime
// without mutating TTL or any other Redis state. A zero duration means
// the policy has no expiry.
func (s *Store) GetWithTTL(ctx context.Context, subjectID string) (string, time.Duration, error) {
	key := s.key(subjectID)

	pipe := s.redis.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	value, err := getCmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", 0, ErrPolicyNotFound
		}
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ttl, err := ttlCmd.Result()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return value, ttl, nil
}

// Delete removes the subject's policy. Deleting a missing policy is not
// an error.
//
//	Performance: 1 Redis DEL.
//	Docs: docs/store.md
func (s *Store) Delete(ctx context.Context, subjectID string) error {
	if err := s.redis.Del(ctx, s.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CompareAndSwap atomically replaces the subject's policy only when the
// stored value still equals expected, preserving the remaining TTL. It
// is the safe way to apply a read-modify-write policy update under
// concurrent writers.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
//	Docs: docs/store.md
func (s *Store) CompareAndSwap(ctx context.Context, subjectID, expected, next string) error {
	result, err := swapPolicyLua.Run(
		ctx,
		s.redis,
		[]string{s.key(subjectID)},
		expected,
		next,
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid swap script status", ErrUnavailable)
	}

	switch code {
	case swapStatusNotFound:
		return ErrPolicyNotFound
	case swapStatusConflict:
		return ErrSwapConflict
	case swapStatusSwapped:
		return nil
	default:
		return fmt.Errorf("%w: unknown swap script status", ErrUnavailable)
	}
}

// EstimatePolicyCount scans the store's key namespace and counts matches.
// This is an admin-only O(n) operation and must not be used in request hot paths.
func (s *Store) EstimatePolicyCount(ctx context.Context) (int, error) {
	pattern := s.prefix + ":*"
	var (
		cursor uint64
		total  int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return total, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
