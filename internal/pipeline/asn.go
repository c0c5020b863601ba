// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package pipeline

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/registry"
)

const asnSource = "asn:cymru"

// classifyByASN resolves the origin AS for an IP through Team Cymru's DNS
// interface and classifies it into a vendor. Cloud-classified vendors are
// additionally registered as detected services so infrastructure seen only
// through hosting still shows up in the service inventory.
func (a *Analyzer) classifyByASN(services *registry.ServiceRegistry, subdomain, ip string) *engine.VendorInfo {
	if a.Telemetry.InCooldown(asnSource) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	info, err := a.lookupASN(ctx, ip)
	if err != nil {
		a.Telemetry.RecordFailure(asnSource, err.Error())
		return nil
	}
	a.Telemetry.RecordSuccess(asnSource, time.Since(start))

	vendor := a.engine.ClassifyVendor(*info)

	if vendor.Vendor != "Unknown" && vendor.Category == catalog.CategoryCloud {
		services.AddService(engine.DetectedService{
			Name:         vendor.Vendor,
			Category:     vendor.Category,
			Description:  fmt.Sprintf("Hosting provider (AS%s)", strings.TrimPrefix(vendor.ASN, "AS")),
			Records:      []engine.DNSRecord{{Type: "A", Name: subdomain, Data: ip}},
			RecordTypes:  []string{"A"},
			IsThirdParty: true,
			Confidence:   "confirmed",
		}, subdomain)
	}

	return &vendor
}

// lookupASN asks origin.asn.cymru.com for the IP's origin AS and
// AS<n>.asn.cymru.com for the AS description. Both answers are
// pipe-delimited TXT records.
func (a *Analyzer) lookupASN(ctx context.Context, ip string) (*engine.ASNInfo, error) {
	reversed, err := reverseIPv4(ip)
	if err != nil {
		return nil, err
	}

	origin := a.DNS.QueryDNS(ctx, "TXT", reversed+".origin.asn.cymru.com")
	if len(origin) == 0 {
		return nil, fmt.Errorf("no origin ASN answer for %s", ip)
	}

	// "15169 | 8.8.8.0/24 | US | arin | 2023-12-28"
	fields := splitCymru(origin[0])
	if len(fields) < 3 {
		return nil, fmt.Errorf("malformed origin answer: %q", origin[0])
	}
	asNumber := strings.Fields(fields[0])[0]
	info := &engine.ASNInfo{
		ASN:      "AS" + asNumber,
		Location: fields[2],
	}

	// "15169 | US | arin | 2000-03-30 | GOOGLE, US"
	if desc := a.DNS.QueryDNS(ctx, "TXT", "AS"+asNumber+".asn.cymru.com"); len(desc) > 0 {
		if descFields := splitCymru(desc[0]); len(descFields) >= 5 {
			info.ISP = descFields[4]
		}
	}
	return info, nil
}

func splitCymru(answer string) []string {
	parts := strings.Split(strings.Trim(answer, `"`), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// reverseIPv4 reverses the octets for the origin zone lookup:
// "1.2.3.4" -> "4.3.2.1". Only IPv4 is classified; IPv6 hosts keep the
// Unknown vendor.
func reverseIPv4(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return "", fmt.Errorf("not an IPv4 address: %q", ip)
	}
	octets := strings.Split(parsed.To4().String(), ".")
	return octets[3] + "." + octets[2] + "." + octets[1] + "." + octets[0], nil
}
