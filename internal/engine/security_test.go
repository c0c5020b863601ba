// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine_test

import (
	"testing"

	"github.com/kedster/3ptracer/internal/engine"
)

func findFinding(findings []engine.Finding, typ string) *engine.Finding {
	for i := range findings {
		if findings[i].Type == typ {
			return &findings[i]
		}
	}
	return nil
}

func countFindings(findings []engine.Finding, typ string) int {
	n := 0
	for _, f := range findings {
		if f.Type == typ {
			n++
		}
	}
	return n
}

func TestMissingSPFAndDMARC(t *testing.T) {
	findings := newEngine().SecurityFindings([]engine.DNSRecord{
		{Type: "A", Name: "example.com", Data: "192.0.2.1"},
	}, "example.com")

	spf := findFinding(findings, "missing_spf")
	if spf == nil {
		t.Fatal("expected missing_spf")
	}
	if spf.Risk != engine.RiskHigh {
		t.Errorf("missing_spf risk = %s, want high", spf.Risk)
	}

	dmarc := findFinding(findings, "missing_dmarc")
	if dmarc == nil {
		t.Fatal("expected missing_dmarc")
	}
	if dmarc.Risk != engine.RiskMedium {
		t.Errorf("missing_dmarc risk = %s, want medium", dmarc.Risk)
	}
}

func TestWeakSPF(t *testing.T) {
	tests := []struct {
		data string
		weak bool
	}{
		{"v=spf1 include:_spf.google.com +all", true},
		{"v=spf1 ?all", true},
		{"v=spf1 include:_spf.google.com ~all", false},
		{"v=spf1 -all", false},
	}

	for _, tt := range tests {
		findings := newEngine().SecurityFindings([]engine.DNSRecord{
			{Type: "TXT", Name: "example.com", Data: tt.data},
		}, "example.com")

		got := findFinding(findings, "weak_spf") != nil
		if got != tt.weak {
			t.Errorf("%q: weak_spf = %v, want %v", tt.data, got, tt.weak)
		}
		if findFinding(findings, "missing_spf") != nil {
			t.Errorf("%q: present SPF flagged missing", tt.data)
		}
	}
}

func TestWeakDMARC(t *testing.T) {
	findings := newEngine().SecurityFindings([]engine.DNSRecord{
		{Type: "TXT", Name: "example.com", Data: "v=spf1 -all"},
		{Type: "DMARC", Name: "_dmarc.example.com", Data: "v=DMARC1; p=none; rua=mailto:x@example.com"},
	}, "example.com")

	weak := findFinding(findings, "weak_dmarc")
	if weak == nil {
		t.Fatal("expected weak_dmarc for p=none")
	}
	if weak.Risk != engine.RiskMedium {
		t.Errorf("weak_dmarc risk = %s", weak.Risk)
	}

	findings = newEngine().SecurityFindings([]engine.DNSRecord{
		{Type: "TXT", Name: "example.com", Data: "v=spf1 -all"},
		{Type: "DMARC", Name: "_dmarc.example.com", Data: "v=DMARC1; p=reject"},
	}, "example.com")
	if findFinding(findings, "weak_dmarc") != nil {
		t.Error("p=reject must not be flagged weak")
	}
}

func TestTakeoverCandidate(t *testing.T) {
	findings := newEngine().SecurityFindings([]engine.DNSRecord{
		{Type: "CNAME", Name: "app.example.com", Data: "old-app.herokuapp.com."},
	}, "example.com")

	takeover := findFinding(findings, "subdomain_takeover")
	if takeover == nil {
		t.Fatal("expected subdomain_takeover for herokuapp.com target")
	}
	if takeover.Risk != engine.RiskMedium {
		t.Errorf("risk = %s, want medium", takeover.Risk)
	}
	if takeover.Service != "Heroku" {
		t.Errorf("service = %q, want Heroku", takeover.Service)
	}
	if takeover.Subdomain != "app.example.com" {
		t.Errorf("subdomain = %q", takeover.Subdomain)
	}
}

func TestSubdomainNameFindings(t *testing.T) {
	e := newEngine()
	findings := e.SubdomainNameFindings([]engine.SubdomainInfo{
		{Name: "ftp.example.com", Resolves: true},
		{Name: "staging.example.com", Resolves: true},
		{Name: "admin.example.com", Resolves: false},
		{Name: "www.example.com", Resolves: true},
	}, "example.com")

	if findFinding(findings, "exposed_service_name") == nil {
		t.Error("expected exposed_service_name for ftp")
	}
	interesting := findFinding(findings, "interesting_subdomain")
	if interesting == nil || interesting.Subdomain != "staging.example.com" {
		t.Errorf("expected interesting_subdomain for staging, got %+v", interesting)
	}
	for _, f := range findings {
		if f.Subdomain == "admin.example.com" {
			t.Error("non-resolving subdomain must be skipped")
		}
		if f.Risk != engine.RiskInfo {
			t.Errorf("name findings must be info risk, got %s", f.Risk)
		}
	}
}

func TestSubdomainNameTokenAnchoring(t *testing.T) {
	e := newEngine()
	findings := e.SubdomainNameFindings([]engine.SubdomainInfo{
		// "db" appears as a full label component only in the first name.
		{Name: "db.example.com", Resolves: true},
		{Name: "feedback.example.com", Resolves: true},
		{Name: "api-db.example.com", Resolves: true},
	}, "example.com")

	hits := 0
	for _, f := range findings {
		if f.Subdomain == "feedback.example.com" {
			t.Errorf("substring match leaked: %+v", f)
		}
		hits++
	}
	if hits < 2 {
		t.Errorf("expected db and api-db to match, got %d findings", hits)
	}
}

func TestWildcardCertGrouping(t *testing.T) {
	e := newEngine()
	certs := []engine.Certificate{
		{Domain: "*.example.com", CertificateID: "crt.sh:1"},
		{Domain: "*.example.com", CertificateID: "crt.sh:2"},
		{Domain: "*.internal.example.com", CertificateID: "crt.sh:3"},
		{Domain: "www.example.com", CertificateID: "crt.sh:4"},
	}

	findings := e.WildcardCertFindings(certs, "example.com")

	if n := countFindings(findings, "wildcard_certificate"); n != 1 {
		t.Errorf("wildcard_certificate findings = %d, want 1 grouped", n)
	}
	top := findFinding(findings, "wildcard_certificate")
	if top.Risk != engine.RiskHigh || top.Count != 2 {
		t.Errorf("top-level wildcard = risk %s count %d, want high/2", top.Risk, top.Count)
	}

	scoped := findFinding(findings, "scoped_wildcard_certificate")
	if scoped == nil || scoped.Risk != engine.RiskMedium || scoped.Count != 1 {
		t.Errorf("scoped wildcard = %+v, want medium/1", scoped)
	}
}
