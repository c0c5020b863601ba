// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package catalog holds the static pattern data the detection engine matches
// DNS records against: third-party service patterns per record channel,
// known certificate authorities, known DMARC reporting services, ASN vendor
// classifications, and subdomain-takeover CNAME fingerprints.
//
// A Catalog is built once at startup and never mutated afterwards, so a
// single instance is safe to share across concurrent analyses.
package catalog

import (
	"regexp"
	"strings"
)

type Category string

const (
	CategoryEmail          Category = "email"
	CategoryCloud          Category = "cloud"
	CategoryAnalytics      Category = "analytics"
	CategorySecurity       Category = "security"
	CategoryMarketing      Category = "marketing"
	CategorySocial         Category = "social"
	CategoryPayments       Category = "payments"
	CategoryMonitoring     Category = "monitoring"
	CategoryProductivity   Category = "productivity"
	CategoryContent        Category = "content"
	CategoryCommunication  Category = "communication"
	CategoryWeb3           Category = "web3"
	CategoryDNS            Category = "dns"
	CategoryAWS            Category = "aws"
	CategoryInfrastructure Category = "infrastructure"
	CategoryOther          Category = "other"
)

// ServicePattern describes how one third-party service shows up in DNS.
// A record matches a channel when any of that channel's substrings occurs
// in the lower-cased record data.
type ServicePattern struct {
	Name          string
	Category      Category
	MXPatterns    []string
	SPFPatterns   []string
	CNAMEPatterns []string
	NSPatterns    []string
	TXTPatterns   []string
	Description   string
}

// ASNVendor maps an AS name fragment to a vendor classification.
type ASNVendor struct {
	Pattern  *regexp.Regexp
	Vendor   string
	Category Category
}

// TakeoverTarget is a CNAME suffix whose target service can be claimed by
// a third party once deprovisioned.
type TakeoverTarget struct {
	Suffix  string
	Service string
}

type Catalog struct {
	services        []ServicePattern
	knownCAs        map[string]string
	dmarcReporters  map[string]string
	asnVendors      []ASNVendor
	takeoverTargets []TakeoverTarget
	consolidated    map[string]bool
}

func New() *Catalog {
	return &Catalog{
		services:        servicePatterns,
		knownCAs:        knownCAs,
		dmarcReporters:  dmarcReporters,
		asnVendors:      asnVendors,
		takeoverTargets: takeoverTargets,
		consolidated:    consolidatedVendors,
	}
}

func (c *Catalog) Services() []ServicePattern {
	return c.services
}

// KnownCA resolves a CAA issuer domain to a display name, matching the
// table exactly or as a right-hand suffix (e.g. "pki.goog" matches
// "certs.pki.goog").
func (c *Catalog) KnownCA(domain string) (string, bool) {
	return lookupByDomain(c.knownCAs, domain)
}

// DMARCReporter resolves a DMARC report recipient domain to the reporting
// service that operates it, exact or suffix match.
func (c *Catalog) DMARCReporter(domain string) (string, bool) {
	return lookupByDomain(c.dmarcReporters, domain)
}

func (c *Catalog) ASNVendors() []ASNVendor {
	return c.asnVendors
}

func (c *Catalog) TakeoverTargets() []TakeoverTarget {
	return c.takeoverTargets
}

// ConsolidatedVendor reports whether a service name belongs to the vendor
// allow-list whose registry identity ignores category. This is what lets
// the same provider seen via ASN (infrastructure) and via CNAME (cloud)
// collapse into one canonical entry.
func (c *Catalog) ConsolidatedVendor(name string) bool {
	return c.consolidated[name]
}

func lookupByDomain(table map[string]string, domain string) (string, bool) {
	d := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	if d == "" {
		return "", false
	}
	if name, ok := table[d]; ok {
		return name, true
	}
	for suffix, name := range table {
		if strings.HasSuffix(d, "."+suffix) {
			return name, true
		}
	}
	return "", false
}
