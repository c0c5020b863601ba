// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package telemetry_test

import (
	"testing"
	"time"

	"github.com/kedster/3ptracer/internal/telemetry"
)

func TestHealthStateTransitions(t *testing.T) {
	r := telemetry.NewRegistry()

	if got := r.GetStats("ct:crt.sh").State; got != telemetry.Healthy {
		t.Errorf("fresh source state = %s, want healthy", got)
	}

	r.RecordFailure("ct:crt.sh", "HTTP 503")
	r.RecordFailure("ct:crt.sh", "HTTP 503")
	if got := r.GetStats("ct:crt.sh").State; got != telemetry.Healthy {
		t.Errorf("two failures state = %s, want still healthy", got)
	}

	r.RecordFailure("ct:crt.sh", "HTTP 503")
	if got := r.GetStats("ct:crt.sh").State; got != telemetry.Degraded {
		t.Errorf("three failures state = %s, want degraded", got)
	}
	if !r.InCooldown("ct:crt.sh") {
		t.Error("degraded source should be cooling down")
	}

	r.RecordFailure("ct:crt.sh", "HTTP 503")
	r.RecordFailure("ct:crt.sh", "HTTP 503")
	if got := r.GetStats("ct:crt.sh").State; got != telemetry.Unhealthy {
		t.Errorf("five failures state = %s, want unhealthy", got)
	}
}

func TestSuccessResetsCooldown(t *testing.T) {
	r := telemetry.NewRegistry()
	for i := 0; i < 4; i++ {
		r.RecordFailure("whois", "timeout")
	}
	if !r.InCooldown("whois") {
		t.Fatal("expected cooldown after repeated failures")
	}

	r.RecordSuccess("whois", 120*time.Millisecond)
	if r.InCooldown("whois") {
		t.Error("success must clear the cooldown")
	}
	stats := r.GetStats("whois")
	if stats.State != telemetry.Healthy {
		t.Errorf("state after success = %s, want healthy", stats.State)
	}
	if stats.ConsecFailures != 0 {
		t.Errorf("consecutive failures = %d, want reset to 0", stats.ConsecFailures)
	}
	if stats.LastSuccessTime == nil {
		t.Error("last success time not recorded")
	}
}

func TestUnknownSourceNotInCooldown(t *testing.T) {
	r := telemetry.NewRegistry()
	if r.InCooldown("never-seen") {
		t.Error("unqueried source must not report cooldown")
	}
}

func TestLatencyStats(t *testing.T) {
	r := telemetry.NewRegistry()
	for i := 1; i <= 10; i++ {
		r.RecordSuccess("dns", time.Duration(i*10)*time.Millisecond)
	}

	stats := r.GetStats("dns")
	if stats.AvgLatencyMs < 54 || stats.AvgLatencyMs > 56 {
		t.Errorf("avg latency = %.1f, want ~55", stats.AvgLatencyMs)
	}
	if stats.P95LatencyMs != 100 {
		t.Errorf("p95 latency = %.1f, want 100", stats.P95LatencyMs)
	}
}

func TestAllStatsSorted(t *testing.T) {
	r := telemetry.NewRegistry()
	r.RecordSuccess("whois", time.Millisecond)
	r.RecordSuccess("asn:cymru", time.Millisecond)
	r.RecordSuccess("ct:crt.sh", time.Millisecond)

	all := r.AllStats()
	if len(all) != 3 {
		t.Fatalf("stats count = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name > all[i].Name {
			t.Errorf("stats not sorted: %s before %s", all[i-1].Name, all[i].Name)
		}
	}
}
