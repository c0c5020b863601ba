// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry_test

import (
	"testing"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
)

func newServiceRegistry() *registry.ServiceRegistry {
	return registry.NewServiceRegistry(catalog.New())
}

func TestAddServiceCreatesEntry(t *testing.T) {
	r := newServiceRegistry()
	r.AddService(engine.DetectedService{
		Name:        "SendGrid",
		Category:    catalog.CategoryEmail,
		Description: "Transactional email delivery",
		Records:     []engine.DNSRecord{{Type: "SPF", Data: "include:sendgrid.net"}},
		RecordTypes: []string{"SPF"},
	}, "example.com")

	svc, ok := r.GetService("sendgrid-email")
	if !ok {
		t.Fatalf("expected id sendgrid-email, have %+v", r.GetAllServices())
	}
	if svc.UsageCount != 1 || svc.SubdomainCount != 1 {
		t.Errorf("usage = %d, subdomains = %d, want 1/1", svc.UsageCount, svc.SubdomainCount)
	}
}

func TestAddServiceMergeCounts(t *testing.T) {
	r := newServiceRegistry()
	svc := engine.DetectedService{Name: "SendGrid", Category: catalog.CategoryEmail}

	r.AddService(svc, "example.com")
	r.AddService(svc, "example.com")
	r.AddService(svc, "mail.example.com")

	got, _ := r.GetService("sendgrid-email")
	if got.UsageCount != 3 {
		t.Errorf("usage = %d, want 3 (every merge counts)", got.UsageCount)
	}
	if got.SubdomainCount != 2 {
		t.Errorf("subdomains = %d, want 2 (distinct sources only)", got.SubdomainCount)
	}
	if len(r.GetAllServices()) != 1 {
		t.Errorf("registry should hold exactly one entry")
	}
}

func TestVendorConsolidation(t *testing.T) {
	r := newServiceRegistry()

	// First sighting arrives via ASN classification as bare infrastructure.
	r.AddService(engine.DetectedService{
		Name:     "Amazon AWS",
		Category: catalog.CategoryInfrastructure,
	}, "a.example.com")

	// Second sighting arrives via CNAME pattern as cloud.
	r.AddService(engine.DetectedService{
		Name:        "Amazon AWS",
		Category:    catalog.CategoryCloud,
		Description: "Amazon Web Services cloud platform",
	}, "b.example.com")

	svc, ok := r.GetService("amazon-aws")
	if !ok {
		t.Fatalf("consolidated vendor id must ignore category, have %+v", r.GetAllServices())
	}
	if svc.Category != catalog.CategoryCloud {
		t.Errorf("category = %s, want cloud after upgrade", svc.Category)
	}
	if svc.UsageCount != 2 || svc.SubdomainCount != 2 {
		t.Errorf("usage/subdomains = %d/%d, want 2/2", svc.UsageCount, svc.SubdomainCount)
	}
	if len(r.GetAllServices()) != 1 {
		t.Error("both sightings must collapse into one entry")
	}
}

func TestVendorConsolidationOrderIndependent(t *testing.T) {
	build := func(order []engine.DetectedService) registry.Service {
		r := newServiceRegistry()
		for _, svc := range order {
			r.AddService(svc, "host.example.com")
		}
		got, ok := r.GetService("amazon-aws")
		if !ok {
			t.Fatal("missing amazon-aws")
		}
		return got
	}

	infra := engine.DetectedService{Name: "Amazon AWS", Category: catalog.CategoryInfrastructure}
	cloud := engine.DetectedService{Name: "Amazon AWS", Category: catalog.CategoryCloud}

	a := build([]engine.DetectedService{infra, cloud})
	b := build([]engine.DetectedService{cloud, infra})

	if a.Category != b.Category || a.Category != catalog.CategoryCloud {
		t.Errorf("categories differ by order: %s vs %s", a.Category, b.Category)
	}
	if a.UsageCount != b.UsageCount {
		t.Errorf("usage differs by order: %d vs %d", a.UsageCount, b.UsageCount)
	}
}

func TestNonConsolidatedIdentityIncludesCategory(t *testing.T) {
	r := newServiceRegistry()
	r.AddService(engine.DetectedService{Name: "Zendesk", Category: catalog.CategoryCommunication}, "x.example.com")

	if _, ok := r.GetService("zendesk-communication"); !ok {
		t.Errorf("expected category-qualified id, have %+v", r.GetAllServices())
	}
}

func TestAWSGrouping(t *testing.T) {
	r := newServiceRegistry()
	r.AddService(engine.DetectedService{Name: "Amazon SES", Category: catalog.CategoryEmail}, "example.com")
	r.AddService(engine.DetectedService{Name: "Amazon Route 53", Category: catalog.CategoryDNS}, "example.com")
	r.AddService(engine.DetectedService{Name: "SendGrid", Category: catalog.CategoryEmail}, "example.com")

	aws := r.GetServicesByCategory(catalog.CategoryAWS)
	if len(aws) != 2 {
		t.Fatalf("aws bucket = %d services, want 2", len(aws))
	}
	for _, svc := range aws {
		if !svc.IsAWSService {
			t.Errorf("%s in aws bucket but not flagged", svc.Name)
		}
		if svc.AWSGroup == nil || svc.AWSGroup.Count != 2 {
			t.Errorf("%s group = %+v, want shared group of 2", svc.Name, svc.AWSGroup)
		}
	}

	// Nominal category indexing is preserved alongside the aws bucket.
	email := r.GetServicesByCategory(catalog.CategoryEmail)
	if len(email) != 2 {
		t.Errorf("email bucket = %d services, want SES and SendGrid", len(email))
	}
}

func TestAWSGroupSnapshotsDetached(t *testing.T) {
	r := newServiceRegistry()

	var payloads []registry.Service
	r.On(registry.EventServiceAdded, func(v any) {
		payloads = append(payloads, v.(registry.Service))
	})

	r.AddService(engine.DetectedService{Name: "Amazon SES", Category: catalog.CategoryEmail}, "example.com")

	first := r.GetAllServices()[0]
	if first.AWSGroup == nil || first.AWSGroup.Count != 1 {
		t.Fatalf("group = %+v, want count 1", first.AWSGroup)
	}

	// A later AWS merge rebuilds the live group; earlier snapshots and
	// event payloads must not change underneath their holders.
	r.AddService(engine.DetectedService{Name: "Amazon Route 53", Category: catalog.CategoryDNS}, "example.com")

	if first.AWSGroup.Count != 1 || len(first.AWSGroup.Services) != 1 {
		t.Errorf("snapshot group mutated after merge: %+v", first.AWSGroup)
	}
	if len(payloads) != 1 {
		t.Fatalf("payloads = %d, want 1 added event", len(payloads))
	}
	if g := payloads[0].AWSGroup; g == nil || g.Count != 1 || len(g.Services) != 1 {
		t.Errorf("event payload group mutated after merge: %+v", payloads[0].AWSGroup)
	}
}

func TestServiceEvents(t *testing.T) {
	r := newServiceRegistry()
	var added, updated int
	r.On(registry.EventServiceAdded, func(any) { added++ })
	r.On(registry.EventServiceUpdated, func(any) { updated++ })

	svc := engine.DetectedService{Name: "Stripe", Category: catalog.CategoryPayments}
	r.AddService(svc, "example.com")
	r.AddService(svc, "shop.example.com")

	if added != 1 || updated != 1 {
		t.Errorf("events added/updated = %d/%d, want 1/1", added, updated)
	}
}

func TestServiceStats(t *testing.T) {
	r := newServiceRegistry()
	r.AddService(engine.DetectedService{Name: "Stripe", Category: catalog.CategoryPayments}, "example.com")
	r.AddService(engine.DetectedService{Name: "Amazon SES", Category: catalog.CategoryEmail}, "example.com")

	stats := r.GetStats()
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ByCategory[catalog.CategoryPayments] != 1 {
		t.Errorf("payments = %d, want 1", stats.ByCategory[catalog.CategoryPayments])
	}
	if stats.ByCategory[catalog.CategoryAWS] != 1 {
		t.Errorf("aws = %d, want 1 (SES double-indexed)", stats.ByCategory[catalog.CategoryAWS])
	}
}
