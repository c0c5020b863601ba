// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package pipeline

import (
	"time"

	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
)

// Footprint is the assembled result of one analysis run: the three engine
// views plus snapshots of both registries. It is a plain value, safe to
// serialize and persist as-is.
type Footprint struct {
	ID             string                  `json:"id"`
	Domain         string                  `json:"domain"`
	ASCIIDomain    string                  `json:"ascii_domain"`
	Services       []registry.Service      `json:"services"`
	PolicyRecords  []engine.PolicyRecord   `json:"policy_records"`
	Findings       []engine.Finding        `json:"findings"`
	Subdomains     []registry.Subdomain    `json:"subdomains"`
	ServiceStats   registry.ServiceStats   `json:"service_stats"`
	SubdomainStats registry.SubdomainStats `json:"subdomain_stats"`
	Registrar      *RegistrarInfo          `json:"registrar,omitempty"`
	Duration       float64                 `json:"duration_s"`
	AnalyzedAt     time.Time               `json:"analyzed_at"`
}

// RegistrarInfo is the WHOIS enrichment for the apex domain.
type RegistrarInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
	ExpiresDate  string `json:"expires_date,omitempty"`
	NameServers  int    `json:"name_servers,omitempty"`
	DNSSECSigned bool   `json:"dnssec_signed,omitempty"`
}
