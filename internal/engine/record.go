// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package engine classifies raw per-subdomain DNS record sets against the
// pattern catalog and derives the three views a complete analysis needs:
// detected third-party services, DNS policy records, and security findings.
// The engine performs no I/O and keeps no mutable state between calls.
package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kedster/3ptracer/internal/catalog"
)

// DNSRecord is one resolved record as handed over by the resolution
// pipeline. Data is the raw textual body and is always matched
// case-insensitively.
type DNSRecord struct {
	Type     string       `json:"type"`
	Data     string       `json:"data"`
	Name     string       `json:"name"`
	TTL      uint32       `json:"ttl,omitempty"`
	Priority int          `json:"priority,omitempty"`
	Selector string       `json:"selector,omitempty"`
	Parsed   ParsedRecord `json:"parsed,omitempty"`
}

// ParsedRecord is the tagged variant carried by records whose bodies the
// pipeline (or the engine itself) has already decomposed. Each variant
// carries only the fields its parser guarantees.
type ParsedRecord interface {
	recordKind() string
}

type SPFRecord struct {
	Raw        string   `json:"raw"`
	All        string   `json:"all,omitempty"`
	Includes   []string `json:"includes,omitempty"`
	HasPTR     bool     `json:"has_ptr,omitempty"`
	HasMX      bool     `json:"has_mx,omitempty"`
	HasA       bool     `json:"has_a,omitempty"`
}

type DMARCRecord struct {
	Raw    string   `json:"raw"`
	Policy string   `json:"policy,omitempty"`
	Pct    int      `json:"pct"`
	RUA    []string `json:"rua,omitempty"`
	RUF    []string `json:"ruf,omitempty"`
}

// DKIMService is the pipeline's best guess at which sender a DKIM selector
// belongs to. Absence of a guess is deliberately not evidence of anything.
type DKIMService struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
}

type DKIMRecord struct {
	Selector        string       `json:"selector"`
	KeyType         string       `json:"key_type,omitempty"`
	PossibleService *DKIMService `json:"possible_service,omitempty"`
}

type CAARecord struct {
	Flags int    `json:"flags"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type SRVServiceType struct {
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
}

type SRVRecord struct {
	Service     string         `json:"service"`
	Target      string         `json:"target"`
	Port        int            `json:"port"`
	Priority    int            `json:"priority"`
	Weight      int            `json:"weight"`
	ServiceType SRVServiceType `json:"service_type"`
	Description string         `json:"description,omitempty"`
}

type GenericRecord struct{}

func (SPFRecord) recordKind() string     { return "spf" }
func (DMARCRecord) recordKind() string   { return "dmarc" }
func (DKIMRecord) recordKind() string    { return "dkim" }
func (CAARecord) recordKind() string     { return "caa" }
func (SRVRecord) recordKind() string     { return "srv" }
func (GenericRecord) recordKind() string { return "generic" }

var (
	spfAllRe        = regexp.MustCompile(`(?i)([+\-~?]?)all\b`)
	spfIncludeRe    = regexp.MustCompile(`(?i)include:([^\s]+)`)
	dmarcPolicyRe   = regexp.MustCompile(`(?i)\bp=(\w+)`)
	dmarcPctRe      = regexp.MustCompile(`(?i)\bpct=(\d+)`)
	dmarcRUARe      = regexp.MustCompile(`(?i)\brua=([^;\s]+)`)
	dmarcRUFRe      = regexp.MustCompile(`(?i)\bruf=([^;\s]+)`)
	mailtoExtractRe = regexp.MustCompile(`(?i)mailto:([^,;\s]+)`)
	dkimKeyTypeRe   = regexp.MustCompile(`(?i)\bk=(\w+)`)
)

// IsSPF reports whether a TXT body identifies as an SPF policy record.
func IsSPF(data string) bool {
	return strings.Contains(strings.ToLower(data), "v=spf1")
}

// IsDMARC reports whether a TXT body identifies as a DMARC policy record.
func IsDMARC(data string) bool {
	return strings.Contains(strings.ToLower(data), "v=dmarc1")
}

// ParseSPF decomposes an SPF record body.
func ParseSPF(data string) SPFRecord {
	lower := strings.ToLower(data)
	r := SPFRecord{Raw: data}
	if m := spfAllRe.FindStringSubmatch(lower); m != nil {
		q := m[1]
		if q == "" {
			q = "+"
		}
		r.All = q + "all"
	}
	for _, m := range spfIncludeRe.FindAllStringSubmatch(lower, -1) {
		r.Includes = append(r.Includes, m[1])
	}
	r.HasPTR = strings.Contains(lower, "ptr")
	r.HasMX = regexp.MustCompile(`(?i)\bmx\b`).MatchString(lower)
	r.HasA = regexp.MustCompile(`(?i)\ba\b`).MatchString(lower)
	return r
}

// ParseDMARC extracts the policy and reporting tags from a DMARC record.
func ParseDMARC(data string) DMARCRecord {
	lower := strings.ToLower(data)
	r := DMARCRecord{Raw: data, Pct: 100}
	if m := dmarcPolicyRe.FindStringSubmatch(lower); m != nil {
		r.Policy = m[1]
	}
	if m := dmarcPctRe.FindStringSubmatch(lower); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil {
			r.Pct = pct
		}
	}
	r.RUA = extractMailtos(dmarcRUARe, data)
	r.RUF = extractMailtos(dmarcRUFRe, data)
	return r
}

func extractMailtos(tagRe *regexp.Regexp, data string) []string {
	m := tagRe.FindStringSubmatch(data)
	if m == nil {
		return nil
	}
	var addrs []string
	for _, mm := range mailtoExtractRe.FindAllStringSubmatch(m[1], -1) {
		addrs = append(addrs, mm[1])
	}
	return addrs
}

// ParseCAA splits a CAA body of the form `flags tag "value"`. A body with
// fewer than three whitespace-separated tokens is not a parse error; the
// record is simply skipped by the caller.
func ParseCAA(data string) (CAARecord, bool) {
	parts := strings.Fields(strings.TrimSpace(data))
	if len(parts) < 3 {
		return CAARecord{}, false
	}
	flags, err := strconv.Atoi(parts[0])
	if err != nil {
		flags = 0
	}
	value := strings.Trim(strings.Join(parts[2:], " "), `"`)
	return CAARecord{
		Flags: flags,
		Tag:   strings.ToLower(parts[1]),
		Value: value,
	}, true
}

// DKIMKeyType pulls the k= tag out of a DKIM TXT body, defaulting to rsa.
func DKIMKeyType(data string) string {
	if m := dkimKeyTypeRe.FindStringSubmatch(data); m != nil {
		return strings.ToLower(m[1])
	}
	return "rsa"
}

func policyDescription(policy string) string {
	switch policy {
	case "none":
		return "Monitor only (none)"
	case "quarantine":
		return "Quarantine suspicious emails"
	case "reject":
		return "Reject unauthorized emails"
	default:
		return policy
	}
}

// mailDomain returns the domain part of a mail address, lower-cased.
func mailDomain(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(addr[at+1:], "."))
}
