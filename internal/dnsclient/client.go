// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package dnsclient resolves DNS records for the analysis pipeline. Wire
// queries go over UDP to the configured public resolvers first, with a
// DNS-over-HTTPS JSON fallback, and responses are cached in-memory with a
// short TTL so re-analysis of a hot domain does not hammer resolvers.
package dnsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

type ResolverConfig struct {
	Name string
	IP   string
	DoH  string
}

var DefaultResolvers = []ResolverConfig{
	{Name: "Cloudflare", IP: "1.1.1.1", DoH: "https://cloudflare-dns.com/dns-query"},
	{Name: "Google", IP: "8.8.8.8", DoH: "https://dns.google/resolve"},
	{Name: "Quad9", IP: "9.9.9.9"},
}

var UserAgent = "3ptracer-DNSFootprint/1.0 (+https://github.com/kedster/3ptracer)"

const (
	dohGoogleURL   = "https://dns.google/resolve"
	defaultTimeout = 2 * time.Second
	maxCNAMEDepth  = 10
)

type RecordWithTTL struct {
	Records []string
	TTL     *uint32
}

type Client struct {
	resolvers  []ResolverConfig
	httpClient *http.Client
	timeout    time.Duration

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	cacheMax int
}

type cacheEntry struct {
	data      []string
	timestamp time.Time
}

type Option func(*Client)

func WithResolvers(r []ResolverConfig) Option {
	return func(c *Client) { c.resolvers = r }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

func WithCacheTTL(t time.Duration) Option {
	return func(c *Client) { c.cacheTTL = t }
}

func New(opts ...Option) *Client {
	c := &Client{
		resolvers: DefaultResolvers,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		timeout:  defaultTimeout,
		cache:    make(map[string]cacheEntry),
		cacheTTL: 60 * time.Second,
		cacheMax: 2000,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) cacheGet(key string) ([]string, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || time.Since(entry.timestamp) > c.cacheTTL {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) cacheSet(key string, data []string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{data: data, timestamp: time.Now()}
	if len(c.cache) > c.cacheMax {
		cutoff := time.Now().Add(-c.cacheTTL)
		for k, v := range c.cache {
			if v.timestamp.Before(cutoff) {
				delete(c.cache, k)
			}
		}
	}
}

// QueryDNS returns the textual record bodies for one (type, name) pair.
// Resolution failures degrade to an empty result; the analysis engine is
// specified to cope with absent channels.
func (c *Client) QueryDNS(ctx context.Context, recordType, domain string) []string {
	result := c.QueryDNSWithTTL(ctx, recordType, domain)
	return result.Records
}

func (c *Client) QueryDNSWithTTL(ctx context.Context, recordType, domain string) RecordWithTTL {
	if domain == "" || recordType == "" {
		return RecordWithTTL{}
	}

	cacheKey := fmt.Sprintf("%s:%s", strings.ToUpper(recordType), strings.ToLower(domain))
	if cached, ok := c.cacheGet(cacheKey); ok {
		return RecordWithTTL{Records: cached}
	}

	for _, resolver := range c.resolvers {
		result := c.udpQuery(ctx, domain, recordType, resolver.IP)
		if len(result.Records) > 0 {
			c.cacheSet(cacheKey, result.Records)
			return result
		}
	}

	result := c.dohQuery(ctx, domain, recordType)
	if len(result.Records) > 0 {
		c.cacheSet(cacheKey, result.Records)
	}
	return result
}

// FollowCNAMEChain resolves the alias chain starting at name, bounded to
// avoid loops. Returns the chain hops in order.
func (c *Client) FollowCNAMEChain(ctx context.Context, name string) []string {
	var chain []string
	current := name
	for i := 0; i < maxCNAMEDepth; i++ {
		targets := c.QueryDNS(ctx, "CNAME", current)
		if len(targets) == 0 {
			break
		}
		target := strings.TrimSuffix(targets[0], ".")
		if target == "" || target == current {
			break
		}
		chain = append(chain, target)
		current = target
	}
	return chain
}

func (c *Client) udpQuery(ctx context.Context, domain, recordType, resolverIP string) RecordWithTTL {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return RecordWithTTL{}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: c.timeout}
	r, _, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(resolverIP, "53"))
	if err != nil || r == nil || r.Rcode != dns.RcodeSuccess {
		return RecordWithTTL{}
	}

	var records []string
	var ttl *uint32
	for _, rr := range r.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		s := rrToString(rr)
		if s == "" {
			continue
		}
		records = append(records, s)
		if ttl == nil {
			t := rr.Header().Ttl
			ttl = &t
		}
	}
	return RecordWithTTL{Records: records, TTL: ttl}
}

type dohAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

func (c *Client) dohQuery(ctx context.Context, domain, recordType string) RecordWithTTL {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return RecordWithTTL{}
	}

	reqURL := fmt.Sprintf("%s?name=%s&type=%s",
		dohGoogleURL, url.QueryEscape(domain), url.QueryEscape(recordType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return RecordWithTTL{}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RecordWithTTL{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return RecordWithTTL{}
	}

	var parsed dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return RecordWithTTL{}
	}

	var records []string
	var ttl *uint32
	for _, ans := range parsed.Answer {
		if ans.Type != int(qtype) {
			continue
		}
		data := strings.Trim(ans.Data, `"`)
		if data == "" {
			continue
		}
		records = append(records, data)
		if ttl == nil {
			t := ans.TTL
			ttl = &t
		}
	}
	return RecordWithTTL{Records: records, TTL: ttl}
}

func dnsTypeFromString(recordType string) (uint16, error) {
	switch strings.ToUpper(recordType) {
	case "A":
		return dns.TypeA, nil
	case "AAAA":
		return dns.TypeAAAA, nil
	case "MX":
		return dns.TypeMX, nil
	case "TXT":
		return dns.TypeTXT, nil
	case "NS":
		return dns.TypeNS, nil
	case "CNAME":
		return dns.TypeCNAME, nil
	case "CAA":
		return dns.TypeCAA, nil
	case "SOA":
		return dns.TypeSOA, nil
	case "SRV":
		return dns.TypeSRV, nil
	case "PTR":
		return dns.TypePTR, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
}

func rrToString(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, v.Mx)
	case *dns.TXT:
		return strings.Join(v.Txt, "")
	case *dns.NS:
		return v.Ns
	case *dns.CNAME:
		return v.Target
	case *dns.CAA:
		return fmt.Sprintf("%d %s \"%s\"", v.Flag, v.Tag, v.Value)
	case *dns.SOA:
		return fmt.Sprintf("%s %s %d", v.Ns, v.Mbox, v.Serial)
	case *dns.SRV:
		return fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, v.Target)
	case *dns.PTR:
		return v.Ptr
	default:
		hdr := rr.Header()
		return strings.TrimPrefix(rr.String(), hdr.String())
	}
}
