// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

const whoisSource = "whois"

// lookupRegistrar enriches the footprint with registrar metadata for the
// apex. WHOIS servers rate-limit aggressively, so failures feed the source
// health registry and the lookup is skipped while cooling down.
func (a *Analyzer) lookupRegistrar(ctx context.Context, domain string) *RegistrarInfo {
	if a.Telemetry.InCooldown(whoisSource) {
		return nil
	}

	start := time.Now()
	client := whois.NewClient()
	client.SetTimeout(10 * time.Second)

	raw, err := client.Whois(domain)
	if err != nil {
		a.Telemetry.RecordFailure(whoisSource, err.Error())
		slog.Warn("WHOIS lookup failed", "domain", domain, "error", err)
		return nil
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		a.Telemetry.RecordFailure(whoisSource, err.Error())
		slog.Warn("WHOIS response not parseable", "domain", domain, "error", err)
		return nil
	}
	a.Telemetry.RecordSuccess(whoisSource, time.Since(start))

	info := &RegistrarInfo{}
	if parsed.Registrar != nil {
		info.Name = parsed.Registrar.Name
		info.Email = parsed.Registrar.Email
	}
	if parsed.Domain != nil {
		info.CreatedDate = parsed.Domain.CreatedDate
		info.ExpiresDate = parsed.Domain.ExpirationDate
		info.NameServers = len(parsed.Domain.NameServers)
		info.DNSSECSigned = parsed.Domain.DNSSec
	}
	if info.Name == "" && info.CreatedDate == "" {
		return nil
	}
	return info
}
