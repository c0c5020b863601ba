// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry_test

import (
	"testing"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
)

func TestAddSubdomainNormalizesKey(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	r.AddSubdomain("WWW.Example.COM.", "dns", nil)
	r.AddSubdomain("www.example.com", "certificate_transparency", nil)

	all := r.GetAllSubdomains()
	if len(all) != 1 {
		t.Fatalf("expected one entry after case/dot normalization, got %d", len(all))
	}
	if len(all[0].DiscoverySources) != 2 {
		t.Errorf("sources = %v, want both unioned", all[0].DiscoverySources)
	}
}

func TestAddSubdomainUnionsSetsIdempotently(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	patch := &registry.SubdomainPatch{IPAddresses: []string{"192.0.2.1", "192.0.2.2"}}

	r.AddSubdomain("a.example.com", "dns", patch)
	r.AddSubdomain("a.example.com", "dns", patch)
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{IPAddresses: []string{"192.0.2.2", "192.0.2.3"}})

	sd, _ := r.GetSubdomain("a.example.com")
	if len(sd.IPAddresses) != 3 {
		t.Errorf("ips = %v, want 3 distinct", sd.IPAddresses)
	}
	if len(sd.DiscoverySources) != 1 {
		t.Errorf("sources = %v, want 1", sd.DiscoverySources)
	}
}

func TestCNAMEChainLongerWins(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	short := []registry.CNAMELink{{From: "a.example.com", To: "b.example.net"}}
	long := []registry.CNAMELink{
		{From: "a.example.com", To: "b.example.net"},
		{From: "b.example.net", To: "c.example.org"},
	}

	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{CNAMEChain: long})
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{CNAMEChain: short})

	sd, _ := r.GetSubdomain("a.example.com")
	if len(sd.CNAMEChain) != 2 {
		t.Errorf("chain = %v, shorter incoming chain must not replace longer", sd.CNAMEChain)
	}
}

func TestVendorUnknownNeverOverwrites(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	known := engine.VendorInfo{Vendor: "Amazon AWS", Category: catalog.CategoryCloud, ASN: "AS16509"}
	unknown := engine.UnknownVendor()

	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{Vendor: &known})
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{Vendor: &unknown})

	sd, _ := r.GetSubdomain("a.example.com")
	if sd.Vendor.Vendor != "Amazon AWS" {
		t.Errorf("vendor = %q, Unknown must not overwrite a known vendor", sd.Vendor.Vendor)
	}

	// But a known vendor does replace the Unknown default.
	r2 := registry.NewSubdomainRegistry()
	r2.AddSubdomain("b.example.com", "dns", nil)
	r2.AddSubdomain("b.example.com", "dns", &registry.SubdomainPatch{Vendor: &known})
	sd2, _ := r2.GetSubdomain("b.example.com")
	if sd2.Vendor.Vendor != "Amazon AWS" {
		t.Errorf("vendor = %q, want Amazon AWS", sd2.Vendor.Vendor)
	}
}

func TestStatusLifecycle(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	r.AddSubdomain("a.example.com", "dns", nil)

	sd, _ := r.GetSubdomain("a.example.com")
	if sd.Status != registry.StatusDiscovered {
		t.Errorf("initial status = %s, want discovered", sd.Status)
	}

	r.AddSubdomain("a.example.com", "", &registry.SubdomainPatch{Status: registry.StatusProcessing})
	r.AddSubdomain("a.example.com", "", &registry.SubdomainPatch{Status: registry.StatusProcessing})
	r.AddSubdomain("a.example.com", "", &registry.SubdomainPatch{Status: registry.StatusAnalyzed})

	sd, _ = r.GetSubdomain("a.example.com")
	if sd.Status != registry.StatusAnalyzed {
		t.Errorf("status = %s, want analyzed", sd.Status)
	}
	if sd.ProcessingAttempts != 2 {
		t.Errorf("attempts = %d, want 2 (one per processing transition)", sd.ProcessingAttempts)
	}
}

func TestProcessingErrorsAccumulate(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{
		Status:          registry.StatusError,
		ProcessingError: "resolution timeout",
	})
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{
		Status:          registry.StatusError,
		ProcessingError: "resolution refused",
	})

	sd, _ := r.GetSubdomain("a.example.com")
	if len(sd.ProcessingErrors) != 2 {
		t.Errorf("errors = %d, want 2", len(sd.ProcessingErrors))
	}
	if sd.Status != registry.StatusError {
		t.Errorf("status = %s", sd.Status)
	}
}

func TestRecordsGroupedByType(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{
		Records: []engine.DNSRecord{
			{Type: "a", Data: "192.0.2.1"},
			{Type: "A", Data: "192.0.2.2"},
			{Type: "TXT", Data: "hello"},
		},
	})

	sd, _ := r.GetSubdomain("a.example.com")
	if len(sd.Records["A"]) != 2 {
		t.Errorf("A records = %d, want 2 (type upper-cased)", len(sd.Records["A"]))
	}
	if len(sd.Records["TXT"]) != 1 {
		t.Errorf("TXT records = %d, want 1", len(sd.Records["TXT"]))
	}
}

func TestSubdomainQueriesAndStats(t *testing.T) {
	r := registry.NewSubdomainRegistry()
	r.AddSubdomain("a.example.com", "dns", &registry.SubdomainPatch{Status: registry.StatusAnalyzed})
	r.AddSubdomain("b.example.com", "certificate_transparency", nil)
	r.AddSubdomain("c.example.com", "certificate_transparency", nil)

	if got := len(r.GetSubdomainsByStatus(registry.StatusDiscovered)); got != 2 {
		t.Errorf("discovered = %d, want 2", got)
	}
	if got := len(r.GetSubdomainsBySource("certificate_transparency")); got != 2 {
		t.Errorf("ct-sourced = %d, want 2", got)
	}

	stats := r.GetStats()
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByStatus[registry.StatusAnalyzed] != 1 {
		t.Errorf("analyzed = %d, want 1", stats.ByStatus[registry.StatusAnalyzed])
	}
	if stats.BySource["dns"] != 1 {
		t.Errorf("dns-sourced = %d, want 1", stats.BySource["dns"])
	}
}
