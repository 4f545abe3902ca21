package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goPolicy/policy"
	"github.com/MrEthical07/goPolicy/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type subjectState struct {
	id      string
	current string
	alt     string
	mu      sync.Mutex
}

func main() {
	var (
		subjects    = flag.Int("subjects", 100000, "number of subjects to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (check + swap)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "pol", "policy key prefix")
	)
	flag.Parse()

	if *subjects <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "subjects, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	policies := store.NewStore(client, *prefix, 24*time.Hour, false)

	states := make([]subjectState, *subjects)
	fmt.Printf("seeding %d policies...\n", *subjects)
	startSeed := time.Now()
	for i := 0; i < *subjects; i++ {
		current, alt, err := buildPolicyPair(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "serialize failed: %v\n", err)
			os.Exit(1)
		}
		id := fmt.Sprintf("sub-%d", i)
		states[i] = subjectState{id: id, current: current, alt: alt}
		if err := policies.Save(ctx, id, current); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	checkStats := runCheckPhase(ctx, policies, states, *ops, *concurrency)
	swapStats := runSwapPhase(ctx, policies, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("check", checkStats)
	printStats("swap", swapStats)
}

func runCheckPhase(ctx context.Context, policies *store.Store, states []subjectState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				s, err := policies.Get(ctx, states[idx].id)
				if err == nil {
					var p *policy.Policy
					p, err = policy.Deserialize(s)
					if err == nil && p.IsGranted(2) != policy.Granted {
						err = fmt.Errorf("unexpected verdict for %s", states[idx].id)
					}
				}
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSwapPhase(ctx context.Context, policies *store.Store, states []subjectState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				err := policies.CompareAndSwap(ctx, state.id, state.current, state.alt)
				d := time.Since(t0)
				if err == nil {
					state.current, state.alt = state.alt, state.current
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// buildPolicyPair returns two serialized policies for a subject: the seeded
// one and an upgraded variant the swap phase toggles to. Permission 2 is
// granted in both so the check phase always expects Granted.
func buildPolicyPair(i int) (string, string, error) {
	f1 := policy.Factor(1)
	f2 := policy.Factor(uint32(i%29) + 2)
	f3 := policy.Factor(97)

	base := policy.NewPolicy(
		[]policy.Factor{f1, f2},
		policy.PermissionMap{
			1: {f1},
			2: {f1, f2},
			3: {f3},
		},
	)
	current, err := policy.Serialize(base)
	if err != nil {
		return "", "", err
	}

	upgraded := policy.NewPolicy(
		[]policy.Factor{f1, f2, f3},
		policy.PermissionMap{
			1: {f1},
			2: {f1, f2},
			3: {f3},
		},
	)
	alt, err := policy.Serialize(upgraded)
	if err != nil {
		return "", "", err
	}

	return current, alt, nil
}
