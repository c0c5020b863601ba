// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package pipeline drives a full footprint analysis: discover subdomains,
// resolve their record sets concurrently, run each set through the
// detection engine, and fold the results into the registries as they
// arrive. Completion order is arbitrary; the registries' merge semantics
// make the end state order-independent.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/dnsclient"
	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
	"github.com/kedster/3ptracer/internal/telemetry"
)

const (
	sourceApexDNS = "dns"
	sourceCTLog   = "certificate_transparency"
)

type Analyzer struct {
	DNS       *dnsclient.Client
	SlowHTTP  *dnsclient.SafeHTTPClient
	Telemetry *telemetry.Registry

	cat    *catalog.Catalog
	engine *engine.Engine

	ctCache *telemetry.TTLCache[[]ctSubdomain]

	maxConcurrent int
	semaphore     chan struct{}
	maxEnrich     int

	whoisEnabled bool
	ctEnabled    bool
}

type Option func(*Analyzer)

func WithMaxConcurrent(n int) Option {
	return func(a *Analyzer) {
		a.maxConcurrent = n
		a.semaphore = make(chan struct{}, n)
	}
}

func WithMaxEnrich(n int) Option {
	return func(a *Analyzer) { a.maxEnrich = n }
}

func WithWHOIS(enabled bool) Option {
	return func(a *Analyzer) { a.whoisEnabled = enabled }
}

func WithCTDiscovery(enabled bool) Option {
	return func(a *Analyzer) { a.ctEnabled = enabled }
}

func WithResolvers(resolvers []dnsclient.ResolverConfig) Option {
	return func(a *Analyzer) {
		a.DNS = dnsclient.New(dnsclient.WithResolvers(resolvers))
	}
}

func New(opts ...Option) *Analyzer {
	cat := catalog.New()
	a := &Analyzer{
		DNS:           dnsclient.New(),
		SlowHTTP:      dnsclient.NewSafeHTTPClientWithTimeout(75 * time.Second),
		Telemetry:     telemetry.NewRegistry(),
		cat:           cat,
		engine:        engine.New(cat),
		ctCache:       telemetry.NewTTLCache[[]ctSubdomain]("ct", 200, time.Hour),
		maxConcurrent: 6,
		semaphore:     make(chan struct{}, 6),
		maxEnrich:     30,
		whoisEnabled:  true,
		ctEnabled:     true,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Analyzer) Catalog() *catalog.Catalog { return a.cat }
func (a *Analyzer) Engine() *engine.Engine    { return a.engine }

// Run analyzes one domain end to end. The only hard failure is invalid
// input; every external lookup degrades to an absent section.
func (a *Analyzer) Run(ctx context.Context, domain string) (*Footprint, error) {
	select {
	case a.semaphore <- struct{}{}:
		defer func() { <-a.semaphore }()
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("analysis capacity exhausted, try again shortly")
	}

	if !dnsclient.ValidateDomain(domain) {
		return nil, fmt.Errorf("invalid domain: %q", domain)
	}
	ascii, err := dnsclient.DomainToASCII(domain)
	if err != nil {
		return nil, fmt.Errorf("domain %q is not convertible to ASCII: %w", domain, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	start := time.Now()
	services := registry.NewServiceRegistry(a.cat)
	subdomains := registry.NewSubdomainRegistry()

	fp := &Footprint{
		ID:          uuid.New().String(),
		Domain:      domain,
		ASCIIDomain: ascii,
		AnalyzedAt:  start,
	}

	// Apex first: policy records and the email posture heuristics only
	// make sense at the analyzing domain.
	apexRecords := a.collectApexRecords(ctx, ascii)
	a.foldSubdomain(services, subdomains, ascii, ascii, sourceApexDNS, apexRecords)
	fp.PolicyRecords = a.engine.ProcessDNSRecords(apexRecords, ascii)
	fp.Findings = a.engine.SecurityFindings(apexRecords, ascii)

	discovered, certs := a.discoverSubdomains(ctx, ascii)

	var wg sync.WaitGroup
	workers := make(chan struct{}, a.maxConcurrent)
	for i, name := range discovered {
		if i >= a.maxEnrich {
			subdomains.AddSubdomain(name, sourceCTLog, nil)
			continue
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			workers <- struct{}{}
			defer func() { <-workers }()

			subdomains.AddSubdomain(name, sourceCTLog, &registry.SubdomainPatch{Status: registry.StatusProcessing})
			recs := a.collectSubdomainRecords(ctx, name)
			a.foldSubdomain(services, subdomains, ascii, name, sourceCTLog, recs)
		}(name)
	}
	wg.Wait()

	// Name and certificate heuristics run over the settled subdomain set.
	var infos []engine.SubdomainInfo
	for _, sd := range subdomains.GetAllSubdomains() {
		if sd.Name == ascii {
			continue
		}
		infos = append(infos, engine.SubdomainInfo{Name: sd.Name, Resolves: len(sd.IPAddresses) > 0})
	}
	fp.Findings = append(fp.Findings, a.engine.SubdomainNameFindings(infos, ascii)...)
	fp.Findings = append(fp.Findings, a.engine.WildcardCertFindings(certs, ascii)...)

	if a.whoisEnabled {
		fp.Registrar = a.lookupRegistrar(ctx, ascii)
	}

	fp.Services = services.GetAllServices()
	fp.Subdomains = subdomains.GetAllSubdomains()
	fp.ServiceStats = services.GetStats()
	fp.SubdomainStats = subdomains.GetStats()
	fp.Duration = time.Since(start).Seconds()

	slog.Info("Analysis completed",
		"domain", ascii,
		"services", fp.ServiceStats.Total,
		"subdomains", fp.SubdomainStats.Total,
		"findings", len(fp.Findings),
		"duration_s", fmt.Sprintf("%.2f", fp.Duration),
	)
	return fp, nil
}

// foldSubdomain pushes one resolved record set through the engine and
// merges everything it produced into both registries.
func (a *Analyzer) foldSubdomain(services *registry.ServiceRegistry, subdomains *registry.SubdomainRegistry, apex, name, source string, records []engine.DNSRecord) {
	detected := a.engine.DetectServices(records, apex)
	for _, svc := range detected {
		services.AddService(svc, name)
	}

	patch := &registry.SubdomainPatch{
		Status:           registry.StatusAnalyzed,
		Records:          records,
		DetectedServices: detected,
	}
	for _, rec := range records {
		if rec.Type == "A" || rec.Type == "AAAA" {
			patch.IPAddresses = append(patch.IPAddresses, rec.Data)
		}
	}
	patch.CNAMEChain = cnameChain(name, records)

	takeovers := a.engine.SecurityFindings(records, apex)
	for i := range takeovers {
		if takeovers[i].Type == "subdomain_takeover" {
			patch.Takeover = &takeovers[i]
			patch.Vulnerabilities = append(patch.Vulnerabilities, takeovers[i])
		}
	}

	if len(patch.IPAddresses) > 0 {
		vendor := a.classifyByASN(services, name, patch.IPAddresses[0])
		if vendor != nil {
			patch.Vendor = vendor
		}
	}

	subdomains.AddSubdomain(name, source, patch)
}

func cnameChain(name string, records []engine.DNSRecord) []registry.CNAMELink {
	var chain []registry.CNAMELink
	from := name
	for _, rec := range records {
		if rec.Type != "CNAME" {
			continue
		}
		chain = append(chain, registry.CNAMELink{From: from, To: rec.Data})
		from = rec.Data
	}
	return chain
}
