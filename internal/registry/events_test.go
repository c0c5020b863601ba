// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry_test

import (
	"testing"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
)

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	r := registry.NewSubdomainRegistry()

	var afterPanic int
	r.On(registry.EventSubdomainAdded, func(any) { panic("boom") })
	r.On(registry.EventSubdomainAdded, func(any) { afterPanic++ })

	r.AddSubdomain("a.example.com", "dns", nil)

	if afterPanic != 1 {
		t.Errorf("subscriber after the panicking one ran %d times, want 1", afterPanic)
	}

	// The mutation itself must have landed despite the panic.
	if _, ok := r.GetSubdomain("a.example.com"); !ok {
		t.Error("mutation was lost to a subscriber panic")
	}
}

func TestEventPayloadIsSnapshot(t *testing.T) {
	r := registry.NewServiceRegistry(catalog.New())

	var got registry.Service
	r.On(registry.EventServiceAdded, func(payload any) {
		got = payload.(registry.Service)
	})

	r.AddService(engine.DetectedService{Name: "Stripe", Category: catalog.CategoryPayments}, "example.com")

	if got.ID != "stripe-payments" {
		t.Errorf("payload id = %q, want stripe-payments", got.ID)
	}
	if got.UsageCount != 1 {
		t.Errorf("payload usage = %d, want 1", got.UsageCount)
	}
}
