// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package telemetry_test

import (
	"testing"
	"time"

	"github.com/kedster/3ptracer/internal/telemetry"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := telemetry.NewTTLCache[[]string]("test", 10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache returned a hit")
	}

	c.Set("key", []string{"a", "b"})
	got, ok := c.Get("key")
	if !ok || len(got) != 2 {
		t.Errorf("Get = %v, %v", got, ok)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := telemetry.NewTTLCache[string]("test", 10, 10*time.Millisecond)
	c.Set("key", "value")

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("expired entry returned a hit")
	}
}

func TestTTLCacheEviction(t *testing.T) {
	c := telemetry.NewTTLCache[int]("test", 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	present := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := c.Get(key); ok {
			present++
		}
	}
	if present != 2 {
		t.Errorf("entries after overflow = %d, want max size 2", present)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry must survive eviction")
	}
}

func TestTTLCacheStats(t *testing.T) {
	c := telemetry.NewTTLCache[int]("probe", 10, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	if stats.Name != "probe" || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate != "50.0%" {
		t.Errorf("hit rate = %q, want 50.0%%", stats.HitRate)
	}
}
