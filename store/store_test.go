package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newPolicyStoreTest(t *testing.T, ttl time.Duration, sliding bool) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "pol", ttl, sliding)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	const policyString = "!1,3#1+1&2+1,3"

	if err := store.Save(ctx, "alice", policyString); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get policy: %v", err)
	}
	if got != policyString {
		t.Fatalf("expected stored policy returned byte-for-byte, got %q", got)
	}
}

func TestGetMissingPolicy(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()

	_, err := store.Get(context.Background(), "nobody")
	if !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}
	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := store.Get(ctx, "alice"); !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound after delete, got %v", err)
	}
}

func TestFixedTTLExpires(t *testing.T) {
	store, mr, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	mr.FastForward(61 * time.Minute)

	if _, err := store.Get(ctx, "alice"); !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected expiry after TTL, got %v", err)
	}
}

func TestSlidingExpirationRenewsTTL(t *testing.T) {
	store, mr, done := newPolicyStoreTest(t, time.Hour, true)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	// Each read inside the window must push the expiry out again.
	for i := 0; i < 3; i++ {
		mr.FastForward(45 * time.Minute)
		if _, err := store.Get(ctx, "alice"); err != nil {
			t.Fatalf("get %d after fast-forward: %v", i, err)
		}
	}

	mr.FastForward(61 * time.Minute)
	if _, err := store.Get(ctx, "alice"); !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected expiry once reads stop, got %v", err)
	}
}

func TestGetWithTTLIsReadOnly(t *testing.T) {
	store, mr, done := newPolicyStoreTest(t, time.Hour, true)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	mr.FastForward(30 * time.Minute)

	_, ttl, err := store.GetWithTTL(ctx, "alice")
	if err != nil {
		t.Fatalf("get with ttl: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("expected remaining ttl within (0, 30m], got %v", ttl)
	}

	// The inspection read must not have renewed the lifetime.
	_, ttl2, err := store.GetWithTTL(ctx, "alice")
	if err != nil {
		t.Fatalf("second get with ttl: %v", err)
	}
	if ttl2 > 30*time.Minute {
		t.Fatalf("inspection read renewed ttl to %v", ttl2)
	}
}

func TestGetWithTTLNoExpiry(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	_, ttl, err := store.GetWithTTL(ctx, "alice")
	if err != nil {
		t.Fatalf("get with ttl: %v", err)
	}
	if ttl != 0 {
		t.Fatalf("expected zero ttl for persistent policy, got %v", ttl)
	}
}

func TestCompareAndSwapSentinelErrors(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	// Not found.
	err := store.CompareAndSwap(ctx, "missing", "!1#1+1", "!1,2#1+1")
	if !errors.Is(err, ErrPolicyNotFound) {
		t.Fatalf("expected not-found sentinel, got %v", err)
	}

	// Conflict leaves the stored value untouched.
	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}
	err = store.CompareAndSwap(ctx, "alice", "!9#1+9", "!1,2#1+1")
	if !errors.Is(err, ErrSwapConflict) {
		t.Fatalf("expected conflict sentinel, got %v", err)
	}
	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get after conflict: %v", err)
	}
	if got != "!1#1+1" {
		t.Fatalf("conflicting swap mutated stored policy to %q", got)
	}
}

func TestCompareAndSwapPreservesTTL(t *testing.T) {
	store, mr, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "!1#1+1"); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	mr.FastForward(30 * time.Minute)

	if err := store.CompareAndSwap(ctx, "alice", "!1#1+1", "!1,2#1+1,2"); err != nil {
		t.Fatalf("compare-and-swap: %v", err)
	}

	got, ttl, err := store.GetWithTTL(ctx, "alice")
	if err != nil {
		t.Fatalf("get with ttl: %v", err)
	}
	if got != "!1,2#1+1,2" {
		t.Fatalf("expected swapped policy, got %q", got)
	}
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("swap must preserve remaining ttl, got %v", ttl)
	}
}

func TestCompareAndSwapSingleWinnerUnderContention(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	const initial = "!1#1+1"
	if err := store.Save(ctx, "alice", initial); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			<-start
			next := fmt.Sprintf("!1,%d#1+1", workerID+2)
			results <- store.CompareAndSwap(ctx, "alice", initial, next)
		}(w)
	}

	close(start)
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSwapConflict):
			lost++
		default:
			t.Fatalf("unexpected swap error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning swap, got %d (lost %d)", won, lost)
	}
}

func TestEstimatePolicyCount(t *testing.T) {
	store, mr, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := store.Save(ctx, fmt.Sprintf("subject-%d", i), "!1#1+1"); err != nil {
			t.Fatalf("save policy %d: %v", i, err)
		}
	}
	// Keys outside the namespace must not count.
	if err := mr.Set("other:thing", "x"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	count, err := store.EstimatePolicyCount(ctx)
	if err != nil {
		t.Fatalf("estimate count: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12 policies, got %d", count)
	}
}

func TestPing(t *testing.T) {
	store, _, done := newPolicyStoreTest(t, time.Hour, false)
	defer done()

	latency, err := store.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if latency < 0 {
		t.Fatalf("negative latency %v", latency)
	}
}

func TestUnavailableSentinelOnClosedClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "pol", time.Hour, false)
	mr.Close()
	rdb.Close()

	ctx := context.Background()
	if err := store.Save(ctx, "alice", "!1#1+1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on save, got %v", err)
	}
	if _, err := store.Get(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on get, got %v", err)
	}
	if err := store.CompareAndSwap(ctx, "alice", "a", "b"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on swap, got %v", err)
	}
}
