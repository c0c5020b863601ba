// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine_test

import (
	"strings"
	"testing"

	"github.com/kedster/3ptracer/internal/engine"
)

func findPolicy(records []engine.PolicyRecord, typ string) *engine.PolicyRecord {
	for i := range records {
		if records[i].Type == typ {
			return &records[i]
		}
	}
	return nil
}

func TestProcessDNSRecordsClassification(t *testing.T) {
	records := []engine.DNSRecord{
		{Type: "TXT", Name: "example.com", Data: "v=spf1 include:_spf.google.com -all"},
		{Type: "DMARC", Name: "_dmarc.example.com", Data: "v=DMARC1; p=reject; rua=mailto:agg@example.com"},
		{Type: "TXT", Name: "example.com", Data: "google-site-verification=abc123"},
		{Type: "CAA", Name: "example.com", Data: `0 issue "letsencrypt.org"`},
		{Type: "TXT", Name: "example.com", Data: "plain text, not a policy"},
	}

	out := newEngine().ProcessDNSRecords(records, "example.com")

	spf := findPolicy(out, "SPF")
	if spf == nil {
		t.Fatal("expected SPF policy record")
	}
	if spf.Category != "email_security" {
		t.Errorf("SPF category = %q", spf.Category)
	}
	if !strings.Contains(spf.Description, "-all") {
		t.Errorf("SPF description should surface the all qualifier, got %q", spf.Description)
	}

	dmarc := findPolicy(out, "DMARC")
	if dmarc == nil {
		t.Fatal("expected DMARC policy record")
	}
	if !strings.Contains(dmarc.Description, "Reject unauthorized emails") {
		t.Errorf("DMARC description = %q", dmarc.Description)
	}
	if !strings.Contains(dmarc.Description, "agg@example.com") {
		t.Errorf("DMARC description should list rua targets, got %q", dmarc.Description)
	}

	if findPolicy(out, "VERIFICATION") == nil {
		t.Error("expected VERIFICATION record for site-verification token")
	}
	if findPolicy(out, "CAA") == nil {
		t.Error("expected CAA policy record")
	}

	if len(out) != 4 {
		t.Errorf("got %d policy records, want 4 (plain TXT excluded)", len(out))
	}
}

func TestProcessDNSRecordsDKIM(t *testing.T) {
	out := newEngine().ProcessDNSRecords([]engine.DNSRecord{
		{
			Type:     "DKIM",
			Name:     "google._domainkey.example.com",
			Data:     "v=DKIM1; k=rsa; p=MIGf...",
			Selector: "google",
			Parsed:   engine.DKIMRecord{Selector: "google", KeyType: "rsa"},
		},
	}, "example.com")

	dkim := findPolicy(out, "DKIM")
	if dkim == nil {
		t.Fatal("expected DKIM policy record")
	}
	if !strings.Contains(dkim.Description, "google") || !strings.Contains(dkim.Description, "rsa") {
		t.Errorf("DKIM description = %q", dkim.Description)
	}
}

func TestProcessDNSRecordsDKIMViaTXT(t *testing.T) {
	out := newEngine().ProcessDNSRecords([]engine.DNSRecord{
		{Type: "TXT", Name: "selector1._domainkey.example.com", Data: "v=DKIM1; k=rsa; p=MIGf..."},
		{Type: "TXT", Name: "s2._domainkey.example.com", Data: "k=rsa; p=MIGf..."},
	}, "example.com")

	if len(out) != 2 {
		t.Fatalf("got %d policy records, want 2", len(out))
	}
	for _, pr := range out {
		if pr.Type != "DKIM" {
			t.Errorf("%s: type = %q, want DKIM, not a generic policy record", pr.Record.Name, pr.Type)
		}
		if pr.Category != "email_security" {
			t.Errorf("%s: category = %q", pr.Record.Name, pr.Category)
		}
	}
}

func TestProcessDNSRecordsMalformedCAASkipped(t *testing.T) {
	out := newEngine().ProcessDNSRecords([]engine.DNSRecord{
		{Type: "CAA", Name: "example.com", Data: "0 issue"},
	}, "example.com")

	if len(out) != 0 {
		t.Errorf("malformed CAA should produce nothing, got %+v", out)
	}
}

func TestProcessDNSRecordsVersionedPolicyFallback(t *testing.T) {
	out := newEngine().ProcessDNSRecords([]engine.DNSRecord{
		{Type: "TXT", Name: "example.com", Data: "v=STSv1; id=20260101000000"},
	}, "example.com")

	if findPolicy(out, "POLICY") == nil {
		t.Errorf("expected generic POLICY record for v= prefixed TXT, got %+v", out)
	}
}
