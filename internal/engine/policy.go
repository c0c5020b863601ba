// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine

import (
	"fmt"
	"strings"
)

// PolicyRecord is the descriptive view of one DNS policy or verification
// record. It is disjoint from the service view: both are computed from the
// same raw inputs for a complete analysis.
type PolicyRecord struct {
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Data        string       `json:"data"`
	Record      DNSRecord    `json:"record"`
	Category    string       `json:"category"`
	Parsed      ParsedRecord `json:"parsed,omitempty"`
}

// ProcessDNSRecords extracts the DNS policy records (SPF, DMARC, DKIM,
// CAA, SRV, verification TXT) from a record set. Service detection runs
// separately over the same inputs; their outputs do not overlap.
func (e *Engine) ProcessDNSRecords(records []DNSRecord, analyzingDomain string) []PolicyRecord {
	var out []PolicyRecord

	for _, rec := range records {
		switch strings.ToUpper(rec.Type) {
		case "TXT", "SPF":
			if pr, ok := classifyTXTPolicy(rec); ok {
				out = append(out, pr)
			}
		case "DMARC":
			out = append(out, dmarcPolicyRecord(rec))
		case "DKIM":
			out = append(out, dkimPolicyRecord(rec))
		case "CAA":
			caa, ok := ParseCAA(rec.Data)
			if !ok {
				continue
			}
			out = append(out, PolicyRecord{
				Type:        "CAA",
				Name:        "Certificate Authority Authorization",
				Description: fmt.Sprintf("Restricts certificate issuance (%s %s)", caa.Tag, caa.Value),
				Data:        rec.Data,
				Record:      rec,
				Category:    "certificate",
				Parsed:      caa,
			})
		case "SRV":
			pr := PolicyRecord{
				Type:        "SRV",
				Name:        "Service Locator",
				Description: "Advertises a network service endpoint",
				Data:        rec.Data,
				Record:      rec,
				Category:    "service",
			}
			if srv, ok := rec.Parsed.(SRVRecord); ok {
				pr.Description = fmt.Sprintf("Advertises %s on %s:%d", srv.Service, srv.Target, srv.Port)
				pr.Parsed = srv
			}
			out = append(out, pr)
		}
	}

	return out
}

func classifyTXTPolicy(rec DNSRecord) (PolicyRecord, bool) {
	lower := strings.ToLower(rec.Data)

	switch {
	case IsSPF(rec.Data):
		spf := ParseSPF(rec.Data)
		desc := "Lists hosts authorized to send mail for this domain"
		if spf.All != "" {
			desc = fmt.Sprintf("%s (%s)", desc, spf.All)
		}
		return PolicyRecord{
			Type:        "SPF",
			Name:        "Sender Policy Framework",
			Description: desc,
			Data:        rec.Data,
			Record:      rec,
			Category:    "email_security",
			Parsed:      spf,
		}, true

	case IsDMARC(rec.Data):
		return dmarcPolicyRecord(rec), true

	case strings.Contains(lower, "v=dkim1") ||
		strings.Contains(lower, "_domainkey") ||
		strings.Contains(strings.ToLower(rec.Name), "_domainkey"):
		return dkimPolicyRecord(rec), true

	case strings.Contains(lower, "-site-verification") || strings.Contains(lower, "-domain-verification"):
		return PolicyRecord{
			Type:        "VERIFICATION",
			Name:        "Domain Ownership Verification",
			Description: "Proves domain control to a third-party service",
			Data:        rec.Data,
			Record:      rec,
			Category:    "verification",
		}, true

	case strings.Contains(lower, "verification") || strings.Contains(lower, "verify"):
		return PolicyRecord{
			Type:        "VERIFICATION",
			Name:        "Verification Token",
			Description: "Generic verification token",
			Data:        rec.Data,
			Record:      rec,
			Category:    "verification",
		}, true

	case strings.HasPrefix(lower, "v="):
		return PolicyRecord{
			Type:        "POLICY",
			Name:        "Policy Record",
			Description: "Versioned policy record",
			Data:        rec.Data,
			Record:      rec,
			Category:    "policy",
		}, true
	}

	return PolicyRecord{}, false
}

func dmarcPolicyRecord(rec DNSRecord) PolicyRecord {
	dmarc := ParseDMARC(rec.Data)
	desc := "Governs handling of unauthenticated mail"
	if dmarc.Policy != "" {
		desc = policyDescription(dmarc.Policy)
	}
	if len(dmarc.RUA) > 0 {
		desc = fmt.Sprintf("%s; aggregate reports to %s", desc, strings.Join(dmarc.RUA, ", "))
	}
	return PolicyRecord{
		Type:        "DMARC",
		Name:        "Domain-based Message Authentication",
		Description: desc,
		Data:        rec.Data,
		Record:      rec,
		Category:    "email_security",
		Parsed:      dmarc,
	}
}

func dkimPolicyRecord(rec DNSRecord) PolicyRecord {
	selector := rec.Selector
	if dkim, ok := rec.Parsed.(DKIMRecord); ok && dkim.Selector != "" {
		selector = dkim.Selector
	}
	desc := "DKIM public key record"
	if selector != "" {
		desc = fmt.Sprintf("DKIM public key published under selector %s (%s)", selector, DKIMKeyType(rec.Data))
	}
	pr := PolicyRecord{
		Type:        "DKIM",
		Name:        "DomainKeys Identified Mail",
		Description: desc,
		Data:        rec.Data,
		Record:      rec,
		Category:    "email_security",
	}
	if dkim, ok := rec.Parsed.(DKIMRecord); ok {
		pr.Parsed = dkim
	}
	return pr
}
