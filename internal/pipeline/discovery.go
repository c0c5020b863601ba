// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kedster/3ptracer/internal/engine"
)

const ctSource = "ct:crt.sh"

type ctEntry struct {
	NameValue  string `json:"name_value"`
	CommonName string `json:"common_name"`
	NotBefore  string `json:"not_before"`
	NotAfter   string `json:"not_after"`
	IssuerName string `json:"issuer_name"`
	ID         int64  `json:"id"`
}

type ctSubdomain struct {
	Name  string
	Certs []engine.Certificate
}

// discoverSubdomains queries certificate-transparency logs for names
// under the apex. Wildcard names are not treated as hosts; they feed the
// wildcard certificate heuristic instead.
func (a *Analyzer) discoverSubdomains(ctx context.Context, domain string) ([]string, []engine.Certificate) {
	if !a.ctEnabled {
		return nil, nil
	}

	if cached, ok := a.ctCache.Get(domain); ok {
		return splitDiscovery(cached)
	}

	if a.Telemetry.InCooldown(ctSource) {
		slog.Info("CT source in cooldown, skipping discovery", "domain", domain)
		return nil, nil
	}

	ctURL := fmt.Sprintf("https://crt.sh/?q=%%25.%s&output=json", domain)
	start := time.Now()
	resp, err := a.SlowHTTP.Get(ctx, ctURL)
	if err != nil {
		a.Telemetry.RecordFailure(ctSource, err.Error())
		slog.Warn("CT log query failed", "domain", domain, "error", err)
		return nil, nil
	}

	body, err := a.SlowHTTP.ReadBody(resp, 2<<20)
	if err != nil {
		a.Telemetry.RecordFailure(ctSource, err.Error())
		return nil, nil
	}
	if resp.StatusCode != 200 {
		a.Telemetry.RecordFailure(ctSource, fmt.Sprintf("HTTP %d", resp.StatusCode))
		return nil, nil
	}
	a.Telemetry.RecordSuccess(ctSource, time.Since(start))

	var entries []ctEntry
	if json.Unmarshal(body, &entries) != nil {
		slog.Warn("CT response not parseable", "domain", domain)
		return nil, nil
	}

	deduped := dedupeCTEntries(entries, domain)
	a.ctCache.Set(domain, deduped)
	return splitDiscovery(deduped)
}

func dedupeCTEntries(entries []ctEntry, domain string) []ctSubdomain {
	suffix := "." + strings.ToLower(domain)
	byName := make(map[string]*ctSubdomain)
	var order []string

	for _, entry := range entries {
		names := strings.Split(entry.NameValue, "\n")
		names = append(names, entry.CommonName)
		for _, raw := range names {
			name := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(raw), "."))
			if name == "" {
				continue
			}
			if name != strings.ToLower(domain) && !strings.HasSuffix(name, suffix) {
				continue
			}
			sd, ok := byName[name]
			if !ok {
				sd = &ctSubdomain{Name: name}
				byName[name] = sd
				order = append(order, name)
			}
			sd.Certs = append(sd.Certs, engine.Certificate{
				Domain:        name,
				Issuer:        entry.IssuerName,
				Source:        "crt.sh",
				NotBefore:     parseCTTime(entry.NotBefore),
				NotAfter:      parseCTTime(entry.NotAfter),
				CertificateID: fmt.Sprintf("crt.sh:%d", entry.ID),
			})
		}
	}

	sort.Strings(order)
	out := make([]ctSubdomain, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func splitDiscovery(subdomains []ctSubdomain) ([]string, []engine.Certificate) {
	var names []string
	var certs []engine.Certificate
	for _, sd := range subdomains {
		if strings.HasPrefix(sd.Name, "*.") {
			certs = append(certs, sd.Certs...)
			continue
		}
		names = append(names, sd.Name)
	}
	return names, certs
}

func parseCTTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
