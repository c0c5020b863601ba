// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package telemetry tracks the health of the external data sources the
// analysis pipeline leans on (DoH resolvers, CT logs, Team Cymru, WHOIS)
// and provides the TTL cache those lookups share. A source that keeps
// failing earns an exponential cooldown so one dead provider cannot stall
// every analysis.
package telemetry

import (
	"math"
	"sort"
	"sync"
	"time"
)

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"

	degradedThreshold  = 3
	unhealthyThreshold = 5
	cooldownBase       = 5 * time.Second
	cooldownMax        = 5 * time.Minute
	latencyWindowSize  = 100
)

type SourceStats struct {
	Name            string      `json:"name"`
	State           HealthState `json:"state"`
	TotalRequests   int64       `json:"total_requests"`
	SuccessCount    int64       `json:"success_count"`
	FailureCount    int64       `json:"failure_count"`
	ConsecFailures  int         `json:"consecutive_failures"`
	LastError       string      `json:"last_error,omitempty"`
	LastSuccessTime *time.Time  `json:"last_success_time,omitempty"`
	AvgLatencyMs    float64     `json:"avg_latency_ms"`
	P95LatencyMs    float64     `json:"p95_latency_ms"`
	InCooldown      bool        `json:"in_cooldown"`
	CooldownUntil   *time.Time  `json:"cooldown_until,omitempty"`
}

type source struct {
	mu             sync.RWMutex
	name           string
	totalRequests  int64
	successCount   int64
	failureCount   int64
	consecFailures int
	lastError      string
	lastSuccess    time.Time
	latencies      []float64
	latencyIdx     int
	latencyFull    bool
	cooldownUntil  time.Time
}

type Registry struct {
	mu      sync.RWMutex
	sources map[string]*source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*source)}
}

func (r *Registry) getOrCreate(name string) *source {
	r.mu.RLock()
	s, ok := r.sources[name]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sources[name]; ok {
		return s
	}
	s = &source{name: name, latencies: make([]float64, latencyWindowSize)}
	r.sources[name] = s
	return s
}

func (r *Registry) RecordSuccess(name string, latency time.Duration) {
	s := r.getOrCreate(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.successCount++
	s.consecFailures = 0
	s.lastSuccess = time.Now()
	s.cooldownUntil = time.Time{}

	s.latencies[s.latencyIdx] = float64(latency.Microseconds()) / 1000.0
	s.latencyIdx++
	if s.latencyIdx >= latencyWindowSize {
		s.latencyIdx = 0
		s.latencyFull = true
	}
}

func (r *Registry) RecordFailure(name, errMsg string) {
	s := r.getOrCreate(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.failureCount++
	s.consecFailures++
	s.lastError = errMsg

	if s.consecFailures >= degradedThreshold {
		backoff := time.Duration(math.Min(
			float64(cooldownBase)*math.Pow(2, float64(s.consecFailures-degradedThreshold)),
			float64(cooldownMax),
		))
		s.cooldownUntil = time.Now().Add(backoff)
	}
}

func (r *Registry) InCooldown(name string) bool {
	r.mu.RLock()
	s, ok := r.sources[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cooldownUntil.IsZero() && time.Now().Before(s.cooldownUntil)
}

func (r *Registry) GetStats(name string) SourceStats {
	s := r.getOrCreate(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats()
}

func (r *Registry) AllStats() []SourceStats {
	r.mu.RLock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	stats := make([]SourceStats, 0, len(names))
	for _, name := range names {
		stats = append(stats, r.GetStats(name))
	}
	return stats
}

func (s *source) stats() SourceStats {
	out := SourceStats{
		Name:           s.name,
		TotalRequests:  s.totalRequests,
		SuccessCount:   s.successCount,
		FailureCount:   s.failureCount,
		ConsecFailures: s.consecFailures,
		LastError:      s.lastError,
	}

	if !s.lastSuccess.IsZero() {
		t := s.lastSuccess
		out.LastSuccessTime = &t
	}

	switch {
	case s.consecFailures >= unhealthyThreshold:
		out.State = Unhealthy
	case s.consecFailures >= degradedThreshold:
		out.State = Degraded
	default:
		out.State = Healthy
	}

	now := time.Now()
	if !s.cooldownUntil.IsZero() && now.Before(s.cooldownUntil) {
		out.InCooldown = true
		t := s.cooldownUntil
		out.CooldownUntil = &t
	}

	window := s.latencies[:s.latencyIdx]
	if s.latencyFull {
		window = s.latencies
	}
	if len(window) > 0 {
		sorted := append([]float64(nil), window...)
		sort.Float64s(sorted)
		var sum float64
		for _, v := range sorted {
			sum += v
		}
		out.AvgLatencyMs = sum / float64(len(sorted))
		idx := int(math.Ceil(float64(len(sorted))*0.95)) - 1
		if idx < 0 {
			idx = 0
		}
		out.P95LatencyMs = sorted[idx]
	}

	return out
}
