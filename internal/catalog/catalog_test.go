// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package catalog_test

import (
	"testing"

	"github.com/kedster/3ptracer/internal/catalog"
)

func TestServicePatternsWellFormed(t *testing.T) {
	cat := catalog.New()
	seen := make(map[string]bool)

	for _, p := range cat.Services() {
		if p.Name == "" {
			t.Error("pattern with empty name")
		}
		if p.Category == "" {
			t.Errorf("%s: empty category", p.Name)
		}
		key := p.Name + "/" + string(p.Category)
		if seen[key] {
			t.Errorf("duplicate pattern: %s", key)
		}
		seen[key] = true

		channels := len(p.MXPatterns) + len(p.SPFPatterns) + len(p.CNAMEPatterns) +
			len(p.NSPatterns) + len(p.TXTPatterns)
		if channels == 0 {
			t.Errorf("%s: no detection channel", p.Name)
		}
	}
}

func TestKnownCALookup(t *testing.T) {
	cat := catalog.New()

	tests := []struct {
		domain string
		want   string
		ok     bool
	}{
		{"letsencrypt.org", "Let's Encrypt", true},
		{"LETSENCRYPT.ORG", "Let's Encrypt", true},
		{"letsencrypt.org.", "Let's Encrypt", true},
		{"certs.pki.goog", "Google Trust Services", true},
		{"notletsencrypt.org", "", false},
		{"tiny-ca.example.net", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := cat.KnownCA(tt.domain)
		if ok != tt.ok || got != tt.want {
			t.Errorf("KnownCA(%q) = %q, %v; want %q, %v", tt.domain, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDMARCReporterLookup(t *testing.T) {
	cat := catalog.New()

	if name, ok := cat.DMARCReporter("dmarcian.com"); !ok || name != "Dmarcian" {
		t.Errorf("dmarcian.com = %q, %v", name, ok)
	}
	if name, ok := cat.DMARCReporter("eu.dmarcian.com"); !ok || name != "Dmarcian" {
		t.Errorf("suffix match eu.dmarcian.com = %q, %v", name, ok)
	}
	if _, ok := cat.DMARCReporter("example.com"); ok {
		t.Error("example.com should not be a known reporter")
	}
}

func TestConsolidatedVendors(t *testing.T) {
	cat := catalog.New()

	for _, name := range []string{"Amazon AWS", "Cloudflare", "Google Cloud"} {
		if !cat.ConsolidatedVendor(name) {
			t.Errorf("%s should be consolidated", name)
		}
	}
	for _, name := range []string{"SendGrid", "Stripe", ""} {
		if cat.ConsolidatedVendor(name) {
			t.Errorf("%s should not be consolidated", name)
		}
	}
}

func TestASNVendorsMatch(t *testing.T) {
	cat := catalog.New()

	match := func(haystack string) (string, bool) {
		for _, v := range cat.ASNVendors() {
			if v.Pattern.MatchString(haystack) {
				return v.Vendor, true
			}
		}
		return "", false
	}

	if vendor, ok := match("AS16509 AMAZON-02, US"); !ok || vendor != "Amazon AWS" {
		t.Errorf("amazon ASN = %q, %v", vendor, ok)
	}
	if vendor, ok := match("AS8075 MICROSOFT-CORP-MSN-AS-BLOCK"); !ok || vendor != "Microsoft Azure" {
		t.Errorf("microsoft ASN = %q, %v", vendor, ok)
	}
	if _, ok := match("AS64496 EXAMPLE-NET"); ok {
		t.Error("unrelated AS name must not classify")
	}
}

func TestTakeoverTargetsWellFormed(t *testing.T) {
	cat := catalog.New()
	targets := cat.TakeoverTargets()
	if len(targets) == 0 {
		t.Fatal("takeover target table is empty")
	}
	for _, target := range targets {
		if target.Suffix == "" || target.Service == "" {
			t.Errorf("malformed target %+v", target)
		}
	}
}
