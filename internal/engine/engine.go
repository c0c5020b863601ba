// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/kedster/3ptracer/internal/catalog"
)

// DetectedService is one third-party relationship surfaced from a single
// detection call, scoped to one subdomain's record set. Identity across
// calls is the display name; cross-subdomain canonicalization happens in
// the service registry, not here.
type DetectedService struct {
	Name                 string           `json:"name"`
	Category             catalog.Category `json:"category"`
	Description          string           `json:"description"`
	Records              []DNSRecord      `json:"records"`
	RecordTypes          []string         `json:"record_types"`
	IsThirdParty         bool             `json:"is_third_party,omitempty"`
	IsEmailService       bool             `json:"is_email_service,omitempty"`
	Confidence           string           `json:"confidence,omitempty"`
	SecurityImplication  string           `json:"security_implication,omitempty"`
	ReportingEmail       string           `json:"reporting_email,omitempty"`
	CertificateAuthority string           `json:"certificate_authority,omitempty"`
}

type Engine struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// detectionSet accumulates services keyed by display name, preserving
// insertion order for display stability.
type detectionSet struct {
	order    []string
	services map[string]*DetectedService
}

func newDetectionSet() *detectionSet {
	return &detectionSet{services: make(map[string]*DetectedService)}
}

func (s *detectionSet) add(svc DetectedService, rec DNSRecord) *DetectedService {
	existing, ok := s.services[svc.Name]
	if !ok {
		svc.Records = []DNSRecord{rec}
		svc.RecordTypes = []string{rec.Type}
		s.services[svc.Name] = &svc
		s.order = append(s.order, svc.Name)
		return s.services[svc.Name]
	}
	existing.Records = append(existing.Records, rec)
	hasType := false
	for _, t := range existing.RecordTypes {
		if t == rec.Type {
			hasType = true
			break
		}
	}
	if !hasType {
		existing.RecordTypes = append(existing.RecordTypes, rec.Type)
	}
	return existing
}

func (s *detectionSet) values() []DetectedService {
	out := make([]DetectedService, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.services[name])
	}
	return out
}

// DetectServices classifies a record set against the catalog. The
// analyzing domain is required for the CAA/SRV/DMARC/DKIM channels, which
// encode relationships to other domains; without it those channels are
// skipped rather than misreported.
func (e *Engine) DetectServices(records []DNSRecord, analyzingDomain string) []DetectedService {
	set := newDetectionSet()

	for _, rec := range records {
		switch strings.ToUpper(rec.Type) {
		case "MX":
			e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.MXPatterns })
		case "SPF":
			e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.SPFPatterns })
		case "CNAME":
			e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.CNAMEPatterns })
		case "NS":
			e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.NSPatterns })
		case "TXT":
			// SPF and DMARC bodies are policy records, not generic services.
			if IsSPF(rec.Data) {
				e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.SPFPatterns })
				continue
			}
			if IsDMARC(rec.Data) {
				if analyzingDomain != "" {
					e.detectDMARCServices(set, rec, analyzingDomain)
				}
				continue
			}
			e.matchChannel(set, rec, func(p catalog.ServicePattern) []string { return p.TXTPatterns })
		case "CAA":
			if analyzingDomain != "" {
				e.detectCAAServices(set, rec)
			}
		case "SRV":
			if analyzingDomain != "" {
				e.detectSRVService(set, rec)
			}
		case "DMARC":
			if analyzingDomain != "" {
				e.detectDMARCServices(set, rec, analyzingDomain)
			}
		case "DKIM":
			if analyzingDomain != "" {
				e.detectDKIMService(set, rec)
			}
		}
	}

	return set.values()
}

func (e *Engine) matchChannel(set *detectionSet, rec DNSRecord, channel func(catalog.ServicePattern) []string) {
	lower := strings.ToLower(rec.Data)
	for _, entry := range e.cat.Services() {
		for _, pattern := range channel(entry) {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				set.add(DetectedService{
					Name:        entry.Name,
					Category:    entry.Category,
					Description: entry.Description,
				}, rec)
				break
			}
		}
	}
}

func (e *Engine) detectCAAServices(set *detectionSet, rec DNSRecord) {
	caa, ok := ParseCAA(rec.Data)
	if !ok {
		return
	}
	switch caa.Tag {
	case "issue", "issuewild":
		name, known := e.cat.KnownCA(caa.Value)
		svc := DetectedService{
			Category:             catalog.CategorySecurity,
			CertificateAuthority: caa.Value,
		}
		if known {
			svc.Name = fmt.Sprintf("%s (Trusted Certificate Authority)", name)
			svc.Description = fmt.Sprintf("Authorized to issue certificates for this domain (%s)", caa.Value)
		} else {
			svc.Name = fmt.Sprintf("Certificate Authority (%s)", caa.Value)
			svc.Description = "Authorized to issue certificates for this domain"
		}
		if caa.Tag == "issuewild" {
			svc.SecurityImplication = "Authorized for wildcard certificate issuance"
		}
		rec.Parsed = caa
		set.add(svc, rec)
	case "iodef":
		rec.Parsed = caa
		set.add(DetectedService{
			Name:        "CAA Violation Reporting",
			Category:    catalog.CategorySecurity,
			Description: fmt.Sprintf("Certificate issuance violations reported to %s", caa.Value),
		}, rec)
	}
	// Unknown tags are ignored.
}

func (e *Engine) detectSRVService(set *detectionSet, rec DNSRecord) {
	srv, ok := rec.Parsed.(SRVRecord)
	if !ok {
		return
	}
	desc := srv.Description
	if desc == "" {
		desc = fmt.Sprintf("Advertises %s on %s:%d", srv.Service, srv.Target, srv.Port)
	}
	set.add(DetectedService{
		Name:        fmt.Sprintf("%s Service (%s)", srv.ServiceType.Name, srv.Service),
		Category:    catalog.CategoryOther,
		Description: desc,
	}, rec)
}

func (e *Engine) detectDMARCServices(set *detectionSet, rec DNSRecord, analyzingDomain string) {
	dmarc := ParseDMARC(rec.Data)
	rec.Parsed = dmarc

	for _, addr := range append(append([]string{}, dmarc.RUA...), dmarc.RUF...) {
		domain := mailDomain(addr)
		if domain == "" || sameOrganization(domain, analyzingDomain) {
			continue
		}
		svc := DetectedService{
			Category:       catalog.CategorySecurity,
			IsThirdParty:   true,
			ReportingEmail: addr,
		}
		if name, known := e.cat.DMARCReporter(domain); known {
			svc.Name = fmt.Sprintf("%s (3rd Party DMARC)", name)
			svc.Description = fmt.Sprintf("Receives DMARC aggregate reports for this domain (%s)", policyDescription(dmarc.Policy))
		} else {
			svc.Name = fmt.Sprintf("Third-Party DMARC Service (%s)", domain)
			svc.Description = "Receives DMARC reports for this domain"
		}
		set.add(svc, rec)
	}
	// DMARC itself is surfaced as a policy record, never as a service.
}

func (e *Engine) detectDKIMService(set *detectionSet, rec DNSRecord) {
	dkim, ok := rec.Parsed.(DKIMRecord)
	if !ok {
		dkim = DKIMRecord{Selector: rec.Selector}
	}
	if dkim.PossibleService != nil {
		// Collaborators use two vocabularies for a confirmed match.
		verb := "Possible"
		switch dkim.PossibleService.Confidence {
		case "confirmed", "high":
			verb = "Confirmed"
		}
		set.add(DetectedService{
			Name:           fmt.Sprintf("%s (Email Service)", dkim.PossibleService.Name),
			Category:       catalog.CategoryEmail,
			Description:    fmt.Sprintf("%s email sender signing with DKIM selector %s", verb, dkim.Selector),
			IsThirdParty:   true,
			IsEmailService: true,
			Confidence:     dkim.PossibleService.Confidence,
		}, rec)
		return
	}
	// An unrecognized selector may still be third-party, but absence of
	// evidence is never reported as a positive third-party finding.
	set.add(DetectedService{
		Name:           fmt.Sprintf("Unknown Email Service (%s)", dkim.Selector),
		Category:       catalog.CategoryEmail,
		Description:    fmt.Sprintf("DKIM key published under selector %s; sender not identified", dkim.Selector),
		IsThirdParty:   false,
		IsEmailService: true,
		Confidence:     "unknown",
	}, rec)
}

// sameOrganization compares registrable domains so reports.example.com and
// example.com count as the same owner. Falls back to literal comparison
// for names the public suffix list cannot split.
func sameOrganization(a, b string) bool {
	a = strings.ToLower(strings.TrimSuffix(a, "."))
	b = strings.ToLower(strings.TrimSuffix(b, "."))
	if a == b {
		return true
	}
	ra, errA := publicsuffix.EffectiveTLDPlusOne(a)
	rb, errB := publicsuffix.EffectiveTLDPlusOne(b)
	if errA != nil || errB != nil {
		return false
	}
	return ra == rb
}
