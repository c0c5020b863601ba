// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/kedster/3ptracer/internal/engine"
)

type SubdomainStatus string

const (
	StatusDiscovered SubdomainStatus = "discovered"
	StatusProcessing SubdomainStatus = "processing"
	StatusAnalyzed   SubdomainStatus = "analyzed"
	StatusError      SubdomainStatus = "error"
)

// CNAMELink is one hop of an alias chain.
type CNAMELink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ProcessingError struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Subdomain is the accumulated state of one discovered host. The registry
// only merges what collaborators hand it; it never infers status or
// re-resolves anything itself.
type Subdomain struct {
	Name                  string                       `json:"subdomain"`
	Status                SubdomainStatus              `json:"status"`
	DiscoverySources      []string                     `json:"discovery_sources"`
	DiscoveryTime         time.Time                    `json:"discovery_time"`
	LastUpdated           time.Time                    `json:"last_updated"`
	Records               map[string][]engine.DNSRecord `json:"records"`
	IPAddresses           []string                     `json:"ip_addresses"`
	CNAMEChain            []CNAMELink                  `json:"cname_chain,omitempty"`
	PrimaryService        string                       `json:"primary_service,omitempty"`
	DetectedServices      []engine.DetectedService     `json:"detected_services"`
	Vendor                engine.VendorInfo            `json:"vendor"`
	Takeover              *engine.Finding              `json:"takeover,omitempty"`
	Vulnerabilities       []engine.Finding             `json:"vulnerabilities"`
	ProcessingAttempts    int                          `json:"processing_attempts"`
	LastProcessingAttempt time.Time                    `json:"last_processing_attempt,omitzero"`
	ProcessingErrors      []ProcessingError            `json:"processing_errors,omitempty"`
}

// SubdomainPatch carries the data of one merge call. Zero-valued fields
// mean "nothing new for this field".
type SubdomainPatch struct {
	Status           SubdomainStatus
	IPAddresses      []string
	Records          []engine.DNSRecord
	CNAMEChain       []CNAMELink
	PrimaryService   string
	DetectedServices []engine.DetectedService
	Vendor           *engine.VendorInfo
	Takeover         *engine.Finding
	Vulnerabilities  []engine.Finding
	ProcessingError  string
}

type SubdomainStats struct {
	Total    int                     `json:"total"`
	ByStatus map[SubdomainStatus]int `json:"by_status"`
	BySource map[string]int          `json:"by_source"`
}

type SubdomainRegistry struct {
	mu         sync.Mutex
	subdomains map[string]*Subdomain
	order      []string
	emitter    *emitter
	now        func() time.Time
}

func NewSubdomainRegistry() *SubdomainRegistry {
	return &SubdomainRegistry{
		subdomains: make(map[string]*Subdomain),
		emitter:    newEmitter(),
		now:        time.Now,
	}
}

func (r *SubdomainRegistry) On(event string, h Handler) {
	r.emitter.on(event, h)
}

// AddSubdomain upserts one subdomain's state. Collections union or append,
// single-valued fields follow their declared policy (longer CNAME chain
// wins, a known vendor is never replaced by "Unknown", status is whatever
// the caller last reported).
func (r *SubdomainRegistry) AddSubdomain(name, source string, patch *SubdomainPatch) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if key == "" {
		return
	}
	if patch == nil {
		patch = &SubdomainPatch{}
	}

	r.mu.Lock()

	sd, ok := r.subdomains[key]
	var event string
	if !ok {
		now := r.now()
		sd = &Subdomain{
			Name:          key,
			Status:        StatusDiscovered,
			DiscoveryTime: now,
			LastUpdated:   now,
			Records:       make(map[string][]engine.DNSRecord),
			Vendor:        engine.UnknownVendor(),
		}
		r.subdomains[key] = sd
		r.order = append(r.order, key)
		event = EventSubdomainAdded
	} else {
		event = EventSubdomainUpdated
	}

	if source != "" {
		sd.DiscoverySources, _ = unionStrings(sd.DiscoverySources, []string{source})
	}
	sd.IPAddresses, _ = unionStrings(sd.IPAddresses, patch.IPAddresses)

	for _, rec := range patch.Records {
		t := strings.ToUpper(rec.Type)
		sd.Records[t] = append(sd.Records[t], rec)
	}

	// A longer chain is a more complete resolution; equal or shorter
	// incoming chains are stale and discarded.
	if len(patch.CNAMEChain) > len(sd.CNAMEChain) {
		sd.CNAMEChain = append([]CNAMELink(nil), patch.CNAMEChain...)
	}

	if patch.PrimaryService != "" {
		sd.PrimaryService = patch.PrimaryService
	}
	sd.DetectedServices = append(sd.DetectedServices, patch.DetectedServices...)
	sd.Vulnerabilities = append(sd.Vulnerabilities, patch.Vulnerabilities...)

	// Unknown information never overwrites known information.
	if patch.Vendor != nil && patch.Vendor.Vendor != "Unknown" {
		sd.Vendor = *patch.Vendor
	}
	if patch.Takeover != nil {
		sd.Takeover = patch.Takeover
	}

	if patch.Status != "" {
		sd.Status = patch.Status
		if patch.Status == StatusProcessing {
			sd.ProcessingAttempts++
			sd.LastProcessingAttempt = r.now()
		}
	}
	if patch.ProcessingError != "" {
		sd.ProcessingErrors = append(sd.ProcessingErrors, ProcessingError{
			Time:    r.now(),
			Message: patch.ProcessingError,
		})
	}

	sd.LastUpdated = r.now()
	snapshot := r.copyLocked(sd)
	r.mu.Unlock()

	r.emitter.emit(event, snapshot)
}

func (r *SubdomainRegistry) copyLocked(sd *Subdomain) Subdomain {
	out := *sd
	out.Records = make(map[string][]engine.DNSRecord, len(sd.Records))
	for t, recs := range sd.Records {
		out.Records[t] = append([]engine.DNSRecord(nil), recs...)
	}
	return out
}

func (r *SubdomainRegistry) GetSubdomain(name string) (Subdomain, bool) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	r.mu.Lock()
	defer r.mu.Unlock()
	sd, ok := r.subdomains[key]
	if !ok {
		return Subdomain{}, false
	}
	return r.copyLocked(sd), true
}

func (r *SubdomainRegistry) GetAllSubdomains() []Subdomain {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Subdomain, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.copyLocked(r.subdomains[key]))
	}
	return out
}

func (r *SubdomainRegistry) GetSubdomainsByStatus(status SubdomainStatus) []Subdomain {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Subdomain
	for _, key := range r.order {
		if r.subdomains[key].Status == status {
			out = append(out, r.copyLocked(r.subdomains[key]))
		}
	}
	return out
}

func (r *SubdomainRegistry) GetSubdomainsBySource(source string) []Subdomain {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Subdomain
	for _, key := range r.order {
		if containsString(r.subdomains[key].DiscoverySources, source) {
			out = append(out, r.copyLocked(r.subdomains[key]))
		}
	}
	return out
}

func (r *SubdomainRegistry) GetStats() SubdomainStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := SubdomainStats{
		Total:    len(r.subdomains),
		ByStatus: make(map[SubdomainStatus]int),
		BySource: make(map[string]int),
	}
	for _, sd := range r.subdomains {
		stats.ByStatus[sd.Status]++
		for _, src := range sd.DiscoverySources {
			stats.BySource[src]++
		}
	}
	return stats
}
