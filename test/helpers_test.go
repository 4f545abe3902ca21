//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/MrEthical07/goPolicy/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Raw policy strings used as stored values across the integration suite.
// The store treats them as opaque bytes; only the engine parses them.
const (
	basePolicy     = "!1#1+1&2+1,2"
	upgradedPolicy = "!1,2#1+1&2+1,2"
)

func newIntegrationStore(t *testing.T) (*store.Store, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.NewStore(rdb, "pol", time.Hour, false)

	return st, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}
