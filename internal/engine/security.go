// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Risk string

const (
	RiskHigh   Risk = "high"
	RiskMedium Risk = "medium"
	RiskLow    Risk = "low"
	RiskInfo   Risk = "info"
)

// Finding is one security observation derived from the record set. Findings
// are generated fresh per analysis call; de-duplication belongs to the
// caller.
type Finding struct {
	Type           string `json:"type"`
	Risk           Risk   `json:"risk"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
	Subdomain      string `json:"subdomain,omitempty"`
	Target         string `json:"target,omitempty"`
	Service        string `json:"service,omitempty"`
	Record         string `json:"record,omitempty"`
	Count          int    `json:"count,omitempty"`
}

// SubdomainInfo is the slice of subdomain state the name heuristics need.
type SubdomainInfo struct {
	Name     string
	Resolves bool
}

// Certificate is parsed certificate-transparency metadata, consumed only
// by the wildcard grouping heuristic.
type Certificate struct {
	Domain        string    `json:"domain"`
	Issuer        string    `json:"issuer"`
	Source        string    `json:"source"`
	NotBefore     time.Time `json:"not_before"`
	NotAfter      time.Time `json:"not_after"`
	CertificateID string    `json:"certificate_id"`
}

var (
	serviceTokens     = []string{"ftp", "ssh", "smtp", "pop", "imap", "telnet", "rdp", "vnc", "mysql", "postgres", "mongo", "redis", "ldap"}
	interestingTokens = []string{"admin", "staging", "dev", "test", "db", "api", "internal", "intranet", "portal", "backup", "git", "jenkins", "grafana", "vpn", "beta"}

	weakSPFRe = regexp.MustCompile(`(?i)[+?]all\b`)
)

// SecurityFindings runs the record-level heuristics: email authentication
// posture and dangling-CNAME takeover candidates. Each heuristic is
// independent; one failing to match never suppresses another.
func (e *Engine) SecurityFindings(records []DNSRecord, analyzingDomain string) []Finding {
	var findings []Finding
	findings = append(findings, e.emailPostureFindings(records)...)
	findings = append(findings, e.takeoverFindings(records)...)
	return findings
}

func (e *Engine) emailPostureFindings(records []DNSRecord) []Finding {
	var findings []Finding
	var spfRecords, dmarcRecords []DNSRecord

	for _, rec := range records {
		switch strings.ToUpper(rec.Type) {
		case "SPF":
			spfRecords = append(spfRecords, rec)
		case "DMARC":
			dmarcRecords = append(dmarcRecords, rec)
		case "TXT":
			if IsSPF(rec.Data) {
				spfRecords = append(spfRecords, rec)
			} else if IsDMARC(rec.Data) {
				dmarcRecords = append(dmarcRecords, rec)
			}
		}
	}

	if len(spfRecords) == 0 {
		findings = append(findings, Finding{
			Type:           "missing_spf",
			Risk:           RiskHigh,
			Description:    "No SPF record found; any host can send mail claiming this domain",
			Recommendation: "Publish a TXT record starting with v=spf1 listing authorized senders",
		})
	} else {
		for _, rec := range spfRecords {
			if weakSPFRe.MatchString(rec.Data) {
				findings = append(findings, Finding{
					Type:           "weak_spf",
					Risk:           RiskMedium,
					Description:    "SPF record permits unauthorized senders (+all or ?all)",
					Recommendation: "End the SPF record with ~all or -all",
					Record:         rec.Data,
				})
			}
		}
	}

	if len(dmarcRecords) == 0 {
		findings = append(findings, Finding{
			Type:           "missing_dmarc",
			Risk:           RiskMedium,
			Description:    "No DMARC record found; spoofed mail is not policed",
			Recommendation: "Publish a _dmarc TXT record, starting with p=none to monitor",
		})
	} else {
		for _, rec := range dmarcRecords {
			if strings.Contains(strings.ToLower(rec.Data), "p=none") {
				findings = append(findings, Finding{
					Type:           "weak_dmarc",
					Risk:           RiskMedium,
					Description:    "DMARC policy is p=none; failures are only monitored",
					Recommendation: "Move to p=quarantine or p=reject once reports look clean",
					Record:         rec.Data,
				})
			}
		}
	}

	return findings
}

func (e *Engine) takeoverFindings(records []DNSRecord) []Finding {
	var findings []Finding
	for _, rec := range records {
		if !strings.EqualFold(rec.Type, "CNAME") {
			continue
		}
		target := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(rec.Data), "."))
		for _, t := range e.cat.TakeoverTargets() {
			if strings.Contains(target, t.Suffix) {
				findings = append(findings, Finding{
					Type:           "subdomain_takeover",
					Risk:           RiskMedium,
					Description:    fmt.Sprintf("CNAME points at %s (%s); if the resource is deprovisioned it can be claimed", t.Suffix, t.Service),
					Recommendation: "Verify the target resource still exists or remove the CNAME",
					Subdomain:      rec.Name,
					Target:         target,
					Service:        t.Service,
				})
				break
			}
		}
	}
	return findings
}

// SubdomainNameFindings flags service and interesting tokens in subdomain
// labels. Only names that currently resolve are considered; historical
// names from CT logs prove nothing about today's attack surface. Token
// matching is boundary-aware and anchored to the label portion only.
func (e *Engine) SubdomainNameFindings(subdomains []SubdomainInfo, analyzingDomain string) []Finding {
	var findings []Finding
	suffix := "." + strings.ToLower(strings.TrimSuffix(analyzingDomain, "."))

	for _, sd := range subdomains {
		if !sd.Resolves {
			continue
		}
		labels := strings.ToLower(strings.TrimSuffix(sd.Name, "."))
		labels = strings.TrimSuffix(labels, suffix)
		if labels == "" || labels == strings.TrimPrefix(suffix, ".") {
			continue
		}

		for _, token := range serviceTokens {
			if tokenInLabels(labels, token) {
				findings = append(findings, Finding{
					Type:        "exposed_service_name",
					Risk:        RiskInfo,
					Description: fmt.Sprintf("Subdomain name advertises a %s service", token),
					Subdomain:   sd.Name,
					Service:     token,
				})
			}
		}
		for _, token := range interestingTokens {
			if tokenInLabels(labels, token) {
				findings = append(findings, Finding{
					Type:        "interesting_subdomain",
					Risk:        RiskInfo,
					Description: fmt.Sprintf("Subdomain name suggests a %s environment", token),
					Subdomain:   sd.Name,
				})
			}
		}
	}
	return findings
}

func tokenInLabels(labels, token string) bool {
	re := regexp.MustCompile(`(^|[.\-])` + regexp.QuoteMeta(token) + `([.\-]|$)`)
	return re.MatchString(labels)
}

// WildcardCertFindings groups wildcard certificates instead of reporting
// each one: many certificates sharing the same risk shape would otherwise
// inflate the finding count.
func (e *Engine) WildcardCertFindings(certs []Certificate, analyzingDomain string) []Finding {
	apex := strings.ToLower(strings.TrimSuffix(analyzingDomain, "."))
	topWildcard := "*." + apex

	var topLevel, deeper []string
	for _, cert := range certs {
		name := strings.ToLower(strings.TrimSuffix(cert.Domain, "."))
		if !strings.HasPrefix(name, "*.") {
			continue
		}
		if name == topWildcard {
			topLevel = append(topLevel, cert.CertificateID)
		} else {
			deeper = append(deeper, cert.CertificateID)
		}
	}

	var findings []Finding
	if len(topLevel) > 0 {
		findings = append(findings, Finding{
			Type:           "wildcard_certificate",
			Risk:           RiskHigh,
			Description:    fmt.Sprintf("%d certificate(s) valid for %s; one key compromise covers every subdomain", len(topLevel), topWildcard),
			Recommendation: "Prefer per-host certificates or scope wildcards to narrow zones",
			Count:          len(topLevel),
		})
	}
	if len(deeper) > 0 {
		findings = append(findings, Finding{
			Type:        "scoped_wildcard_certificate",
			Risk:        RiskMedium,
			Description: fmt.Sprintf("%d wildcard certificate(s) scoped below the apex", len(deeper)),
			Count:       len(deeper),
		})
	}
	return findings
}
