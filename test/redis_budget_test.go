//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goPolicy/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// newCountedStore creates a policy store backed by miniredis with a
// cmdCounter hook installed. Reset the counter before each measured operation.
func newCountedStore(t *testing.T, sliding bool) (*store.Store, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection: go-redis may emit extra commands on first use
	// (handshake, AUTH, SELECT, CLIENT SETNAME, etc.). Issuing a PING
	// before measuring avoids counting that noise.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}

	// Reset after warmup so budget counts start clean.
	counter.Reset()

	st := store.NewStore(rdb, "polbudget", time.Hour, sliding)
	return st, counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// TestPolicySaveRedisBudget verifies that saving a policy is a single SET.
func TestPolicySaveRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, false)
	defer cleanup()
	ctx := context.Background()

	counter.Reset()

	if err := st.Save(ctx, "budget-save", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Store.Save used %d Redis commands; budget is 1 (SET)", cmds)
	}
	t.Logf("Store.Save: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestPolicyGetRedisBudget verifies that a fixed-TTL read is a single GET.
func TestPolicyGetRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, false)
	defer cleanup()
	ctx := context.Background()

	if err := st.Save(ctx, "budget-get", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if _, err := st.Get(ctx, "budget-get"); err != nil {
		t.Fatalf("get: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Store.Get used %d Redis commands; budget is 1 (GET)", cmds)
	}
	t.Logf("Store.Get (fixed): %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestPolicyGetSlidingRedisBudget verifies that a sliding-expiration read
// uses at most 2 Redis commands (GET + EXPIRE).
func TestPolicyGetSlidingRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, true)
	defer cleanup()
	ctx := context.Background()

	if err := st.Save(ctx, "budget-sliding", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if _, err := st.Get(ctx, "budget-sliding"); err != nil {
		t.Fatalf("get: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("Store.Get used %d Redis commands; budget is ≤ 2 (GET+EXPIRE)", cmds)
	}
	t.Logf("Store.Get (sliding): %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestPolicyGetWithTTLRedisBudget verifies that the TTL readback is one
// pipelined round-trip (GET + TTL).
func TestPolicyGetWithTTLRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, false)
	defer cleanup()
	ctx := context.Background()

	if err := st.Save(ctx, "budget-ttl", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if _, _, err := st.GetWithTTL(ctx, "budget-ttl"); err != nil {
		t.Fatalf("get with ttl: %v", err)
	}

	cmds := counter.Commands()
	pipelines := counter.Pipelines()
	if cmds > 2 {
		t.Errorf("Store.GetWithTTL used %d Redis commands; budget is 2 (GET+TTL)", cmds)
	}
	if pipelines != 1 {
		t.Errorf("Store.GetWithTTL used %d pipeline round-trips; budget is 1", pipelines)
	}
	t.Logf("Store.GetWithTTL: %d commands, %d pipelines", cmds, pipelines)
}

// TestPolicySwapRedisBudget verifies that a compare-and-swap is a single Lua
// script call.
func TestPolicySwapRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, false)
	defer cleanup()
	ctx := context.Background()

	if err := st.Save(ctx, "budget-swap", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if err := st.CompareAndSwap(ctx, "budget-swap", basePolicy, upgradedPolicy); err != nil {
		t.Fatalf("swap: %v", err)
	}

	// go-redis issues EVALSHA first and falls back to EVAL on script-cache
	// miss, so the first call counts ≤ 2 commands. Subsequent calls are 1.
	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("Store.CompareAndSwap used %d Redis commands; budget is ≤ 2 (EVALSHA+EVAL)", cmds)
	}
	t.Logf("Store.CompareAndSwap: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestPolicyDeleteRedisBudget verifies that revocation is a single DEL.
func TestPolicyDeleteRedisBudget(t *testing.T) {
	st, counter, cleanup := newCountedStore(t, false)
	defer cleanup()
	ctx := context.Background()

	if err := st.Save(ctx, "budget-del", basePolicy); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if err := st.Delete(ctx, "budget-del"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Store.Delete used %d Redis commands; budget is 1 (DEL)", cmds)
	}
	t.Logf("Store.Delete: %d commands, %d pipelines", cmds, counter.Pipelines())
}
