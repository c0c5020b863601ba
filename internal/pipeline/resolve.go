// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
)

// dkimSelectors maps commonly published DKIM selector names to the email
// sender that conventionally uses them. Selectors unique to one provider
// are confirmed; shared or generic selectors are only possible.
var dkimSelectors = map[string]engine.DKIMService{
	"selector1":  {Name: "Microsoft 365", Confidence: "confirmed"},
	"selector2":  {Name: "Microsoft 365", Confidence: "confirmed"},
	"google":     {Name: "Google Workspace", Confidence: "confirmed"},
	"amazonses":  {Name: "Amazon SES", Confidence: "confirmed"},
	"pm":         {Name: "Postmark", Confidence: "confirmed"},
	"zendesk1":   {Name: "Zendesk", Confidence: "confirmed"},
	"zendesk2":   {Name: "Zendesk", Confidence: "confirmed"},
	"hs1":        {Name: "HubSpot", Confidence: "confirmed"},
	"hs2":        {Name: "HubSpot", Confidence: "confirmed"},
	"mandrill":   {Name: "Mailchimp Transactional", Confidence: "confirmed"},
	"sendgrid":   {Name: "SendGrid", Confidence: "confirmed"},
	"s1":         {Name: "SendGrid", Confidence: "possible"},
	"s2":         {Name: "SendGrid", Confidence: "possible"},
	"k1":         {Name: "Mailchimp", Confidence: "possible"},
	"k2":         {Name: "Mailchimp", Confidence: "possible"},
	"k3":         {Name: "Mailchimp", Confidence: "possible"},
	"mail":       {Name: "Generic Email Service", Confidence: "possible"},
	"default":    {Name: "Generic Email Service", Confidence: "possible"},
	"dkim":       {Name: "Generic Email Service", Confidence: "possible"},
	"mailjet":    {Name: "Mailjet", Confidence: "confirmed"},
	"mailgun":    {Name: "Mailgun", Confidence: "confirmed"},
	"smtp":       {Name: "Generic Email Service", Confidence: "possible"},
	"mxvault":    {Name: "MxVault", Confidence: "confirmed"},
	"protonmail": {Name: "Proton Mail", Confidence: "confirmed"},
	"zoho":       {Name: "Zoho Mail", Confidence: "confirmed"},
	"fm1":        {Name: "Fastmail", Confidence: "confirmed"},
	"fm2":        {Name: "Fastmail", Confidence: "confirmed"},
	"fm3":        {Name: "Fastmail", Confidence: "confirmed"},
	"sig1":       {Name: "iCloud Mail", Confidence: "possible"},
	"litesrv":    {Name: "MailerLite", Confidence: "confirmed"},
	"sparkpost":  {Name: "SparkPost", Confidence: "confirmed"},
	"scph":       {Name: "SparkPost", Confidence: "possible"},
	"krs":        {Name: "Klaviyo", Confidence: "possible"},
	"dk":         {Name: "Generic Email Service", Confidence: "possible"},
	"everlytic":  {Name: "Everlytic", Confidence: "confirmed"},
}

// srvPrefixes are the service/protocol labels probed at the apex. Only
// well-known prefixes are tried; enumerating arbitrary SRV names is noisy
// and slow.
var srvPrefixes = []struct {
	Prefix      string
	ServiceType engine.SRVServiceType
	Description string
}{
	{"_sip._tcp", engine.SRVServiceType{Name: "SIP", Category: catalog.CategoryCommunication}, "Session Initiation Protocol (VoIP)"},
	{"_sip._udp", engine.SRVServiceType{Name: "SIP", Category: catalog.CategoryCommunication}, "Session Initiation Protocol (VoIP)"},
	{"_sips._tcp", engine.SRVServiceType{Name: "SIP", Category: catalog.CategoryCommunication}, "Secure SIP (VoIP)"},
	{"_xmpp-client._tcp", engine.SRVServiceType{Name: "XMPP", Category: catalog.CategoryCommunication}, "XMPP client connections"},
	{"_xmpp-server._tcp", engine.SRVServiceType{Name: "XMPP", Category: catalog.CategoryCommunication}, "XMPP server federation"},
	{"_caldav._tcp", engine.SRVServiceType{Name: "CalDAV", Category: catalog.CategoryProductivity}, "Calendar synchronization"},
	{"_caldavs._tcp", engine.SRVServiceType{Name: "CalDAV", Category: catalog.CategoryProductivity}, "Secure calendar synchronization"},
	{"_carddav._tcp", engine.SRVServiceType{Name: "CardDAV", Category: catalog.CategoryProductivity}, "Contact synchronization"},
	{"_carddavs._tcp", engine.SRVServiceType{Name: "CardDAV", Category: catalog.CategoryProductivity}, "Secure contact synchronization"},
	{"_autodiscover._tcp", engine.SRVServiceType{Name: "Autodiscover", Category: catalog.CategoryEmail}, "Exchange autodiscover"},
	{"_imaps._tcp", engine.SRVServiceType{Name: "IMAPS", Category: catalog.CategoryEmail}, "Secure IMAP"},
	{"_submission._tcp", engine.SRVServiceType{Name: "Submission", Category: catalog.CategoryEmail}, "Mail submission"},
	{"_minecraft._tcp", engine.SRVServiceType{Name: "Minecraft", Category: catalog.CategoryOther}, "Minecraft server"},
	{"_ldap._tcp", engine.SRVServiceType{Name: "LDAP", Category: catalog.CategoryInfrastructure}, "LDAP directory"},
	{"_kerberos._tcp", engine.SRVServiceType{Name: "Kerberos", Category: catalog.CategorySecurity}, "Kerberos authentication"},
	{"_matrix._tcp", engine.SRVServiceType{Name: "Matrix", Category: catalog.CategoryCommunication}, "Matrix federation"},
}

// collectApexRecords gathers every channel the engine consumes for the
// analyzing domain: the plain record types plus the synthesized DMARC,
// DKIM and SRV probes. Channels are queried concurrently; a failed
// channel contributes nothing.
func (a *Analyzer) collectApexRecords(ctx context.Context, domain string) []engine.DNSRecord {
	var mu sync.Mutex
	var out []engine.DNSRecord
	add := func(recs ...engine.DNSRecord) {
		mu.Lock()
		out = append(out, recs...)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	for _, rt := range []string{"A", "AAAA", "MX", "TXT", "NS", "CAA"} {
		rt := rt
		run(func() { add(a.queryTyped(ctx, rt, domain)...) })
	}
	run(func() { add(a.queryDMARC(ctx, domain)...) })
	run(func() { add(a.probeDKIM(ctx, domain)...) })
	run(func() { add(a.probeSRV(ctx, domain)...) })
	wg.Wait()

	return out
}

// collectSubdomainRecords gathers the cheaper per-host channels: address
// records, the CNAME chain, and TXT.
func (a *Analyzer) collectSubdomainRecords(ctx context.Context, name string) []engine.DNSRecord {
	var out []engine.DNSRecord
	for _, rt := range []string{"A", "AAAA", "TXT"} {
		out = append(out, a.queryTyped(ctx, rt, name)...)
	}
	for _, target := range a.DNS.FollowCNAMEChain(ctx, name) {
		out = append(out, engine.DNSRecord{Type: "CNAME", Name: name, Data: target})
	}
	return out
}

func (a *Analyzer) queryTyped(ctx context.Context, recordType, name string) []engine.DNSRecord {
	result := a.DNS.QueryDNSWithTTL(ctx, recordType, name)
	var ttl uint32
	if result.TTL != nil {
		ttl = *result.TTL
	}

	var out []engine.DNSRecord
	for _, data := range result.Records {
		rec := engine.DNSRecord{Type: recordType, Name: name, Data: data, TTL: ttl}
		switch recordType {
		case "MX":
			if fields := strings.Fields(data); len(fields) == 2 {
				if pref, err := strconv.Atoi(fields[0]); err == nil {
					rec.Priority = pref
					rec.Data = strings.TrimSuffix(fields[1], ".")
				}
			}
		case "NS", "CNAME":
			rec.Data = strings.TrimSuffix(data, ".")
		case "TXT":
			switch {
			case engine.IsSPF(data):
				rec.Parsed = engine.ParseSPF(data)
			case engine.IsDMARC(data):
				rec.Parsed = engine.ParseDMARC(data)
			}
		case "CAA":
			if caa, ok := engine.ParseCAA(data); ok {
				rec.Parsed = caa
			}
		}
		out = append(out, rec)
	}
	return out
}

func (a *Analyzer) queryDMARC(ctx context.Context, domain string) []engine.DNSRecord {
	var out []engine.DNSRecord
	for _, data := range a.DNS.QueryDNS(ctx, "TXT", "_dmarc."+domain) {
		if !engine.IsDMARC(data) {
			continue
		}
		out = append(out, engine.DNSRecord{
			Type:   "DMARC",
			Name:   "_dmarc." + domain,
			Data:   data,
			Parsed: engine.ParseDMARC(data),
		})
	}
	return out
}

// probeDKIM queries the known selector names under _domainkey. Selectors
// are probed concurrently since each is an independent TXT lookup against
// a name that usually does not exist.
func (a *Analyzer) probeDKIM(ctx context.Context, domain string) []engine.DNSRecord {
	var mu sync.Mutex
	var out []engine.DNSRecord
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	for selector, svc := range dkimSelectors {
		wg.Add(1)
		go func(selector string, svc engine.DKIMService) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			name := selector + "._domainkey." + domain
			for _, data := range a.DNS.QueryDNS(ctx, "TXT", name) {
				if !strings.Contains(strings.ToLower(data), "v=dkim1") && !strings.Contains(data, "k=") && !strings.Contains(data, "p=") {
					continue
				}
				rec := engine.DNSRecord{
					Type:     "DKIM",
					Name:     name,
					Data:     data,
					Selector: selector,
					Parsed: engine.DKIMRecord{
						Selector:        selector,
						KeyType:         engine.DKIMKeyType(data),
						PossibleService: &engine.DKIMService{Name: svc.Name, Confidence: svc.Confidence},
					},
				}
				mu.Lock()
				out = append(out, rec)
				mu.Unlock()
			}
		}(selector, svc)
	}
	wg.Wait()
	return out
}

func (a *Analyzer) probeSRV(ctx context.Context, domain string) []engine.DNSRecord {
	var mu sync.Mutex
	var out []engine.DNSRecord
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	for _, probe := range srvPrefixes {
		probe := probe
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			name := probe.Prefix + "." + domain
			for _, data := range a.DNS.QueryDNS(ctx, "SRV", name) {
				fields := strings.Fields(data)
				if len(fields) != 4 {
					continue
				}
				target := strings.TrimSuffix(fields[3], ".")
				// A root target means the service is explicitly absent.
				if target == "" || target == "." {
					continue
				}
				priority, _ := strconv.Atoi(fields[0])
				weight, _ := strconv.Atoi(fields[1])
				port, _ := strconv.Atoi(fields[2])

				rec := engine.DNSRecord{
					Type: "SRV",
					Name: name,
					Data: data,
					Parsed: engine.SRVRecord{
						Service:     probe.Prefix,
						Target:      target,
						Port:        port,
						Priority:    priority,
						Weight:      weight,
						ServiceType: probe.ServiceType,
						Description: probe.Description,
					},
				}
				mu.Lock()
				out = append(out, rec)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return out
}
