// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/kedster/3ptracer/internal/catalog"
	"github.com/kedster/3ptracer/internal/engine"
)

// Service is the canonical, cross-subdomain view of one detected service.
// Records are append-only and may repeat across merges; provenance is
// never dropped to save space.
type Service struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Category         catalog.Category `json:"category"`
	Description      string           `json:"description"`
	SourceSubdomains []string         `json:"source_subdomains"`
	DiscoveryTime    time.Time        `json:"discovery_time"`
	LastUpdated      time.Time        `json:"last_updated"`
	Records          []engine.DNSRecord `json:"records"`
	RecordTypes      []string         `json:"record_types"`
	IsThirdParty     bool             `json:"is_third_party,omitempty"`
	IsAWSService     bool             `json:"is_aws_service"`
	AWSGroup         *AWSGroup        `json:"aws_group,omitempty"`
	UsageCount       int              `json:"usage_count"`
	SubdomainCount   int              `json:"subdomain_count"`
}

// AWSGroup is a view over every service currently indexed under the aws
// bucket. It is derived state, rebuilt on merge, never a second source of
// truth.
type AWSGroup struct {
	Name     string   `json:"name"`
	Services []string `json:"services"`
	Count    int      `json:"count"`
}

type ServiceStats struct {
	Total      int                      `json:"total"`
	ByCategory map[catalog.Category]int `json:"by_category"`
}

type ServiceRegistry struct {
	mu         sync.Mutex
	cat        *catalog.Catalog
	services   map[string]*Service
	order      []string
	byCategory map[catalog.Category]map[string]bool
	awsGroup   *AWSGroup
	emitter    *emitter
	now        func() time.Time
}

func NewServiceRegistry(cat *catalog.Catalog) *ServiceRegistry {
	return &ServiceRegistry{
		cat:        cat,
		services:   make(map[string]*Service),
		byCategory: make(map[catalog.Category]map[string]bool),
		emitter:    newEmitter(),
		now:        time.Now,
	}
}

func (r *ServiceRegistry) On(event string, h Handler) {
	r.emitter.on(event, h)
}

// serviceID derives the registry identity. Vendors on the consolidation
// allow-list key on name alone so the same provider detected under
// different categories (ASN vs CNAME) lands on one entry.
func (r *ServiceRegistry) serviceID(name string, category catalog.Category) string {
	if r.cat.ConsolidatedVendor(name) {
		return slugify(name)
	}
	return slugify(name, string(category))
}

func isAWSService(name string, category catalog.Category) bool {
	return category == catalog.CategoryAWS ||
		strings.Contains(name, "AWS") ||
		strings.HasPrefix(name, "Amazon")
}

// AddService folds one detection event into the canonical set. The merge
// is idempotent on identity and commutative across arrival order; see the
// per-field policies inline.
func (r *ServiceRegistry) AddService(svc engine.DetectedService, sourceSubdomain string) {
	r.mu.Lock()

	id := r.serviceID(svc.Name, svc.Category)
	aws := isAWSService(svc.Name, svc.Category)
	existing, ok := r.services[id]

	var event string
	if !ok {
		now := r.now()
		entry := &Service{
			ID:            id,
			Name:          svc.Name,
			Category:      svc.Category,
			Description:   svc.Description,
			DiscoveryTime: now,
			LastUpdated:   now,
			Records:       append([]engine.DNSRecord(nil), svc.Records...),
			RecordTypes:   append([]string(nil), svc.RecordTypes...),
			IsThirdParty:  svc.IsThirdParty,
			IsAWSService:  aws,
			UsageCount:    1,
		}
		if sourceSubdomain != "" {
			entry.SourceSubdomains = []string{sourceSubdomain}
			entry.SubdomainCount = 1
		}
		r.services[id] = entry
		r.order = append(r.order, id)
		r.index(entry)
		existing = entry
		event = EventServiceAdded
	} else {
		// Specific beats generic: a cloud detection upgrades a vendor first
		// seen only through its ASN.
		if svc.Category == catalog.CategoryCloud && existing.Category == catalog.CategoryInfrastructure {
			r.unindex(existing)
			existing.Category = catalog.CategoryCloud
			if svc.Description != "" {
				existing.Description = svc.Description
			}
			r.index(existing)
		}
		if existing.Description == "" && svc.Description != "" {
			existing.Description = svc.Description
		}
		existing.Records = append(existing.Records, svc.Records...)
		existing.RecordTypes, _ = unionStrings(existing.RecordTypes, svc.RecordTypes)
		if sourceSubdomain != "" && !containsString(existing.SourceSubdomains, sourceSubdomain) {
			existing.SourceSubdomains = append(existing.SourceSubdomains, sourceSubdomain)
			existing.SubdomainCount++
		}
		if svc.IsThirdParty {
			existing.IsThirdParty = true
		}
		if aws && !existing.IsAWSService {
			existing.IsAWSService = true
			r.index(existing)
		}
		existing.UsageCount++
		existing.LastUpdated = r.now()
		event = EventServiceUpdated
	}

	if existing.IsAWSService {
		r.refreshAWSGroup()
	}

	snapshot := snapshotService(existing)
	r.mu.Unlock()

	r.emitter.emit(event, snapshot)
}

// snapshotService detaches a service value from registry-owned state. The
// AWS group is rebuilt in place on later merges, so outgoing copies get
// their own group value and slice.
func snapshotService(s *Service) Service {
	out := *s
	if s.AWSGroup != nil {
		group := *s.AWSGroup
		group.Services = append([]string(nil), s.AWSGroup.Services...)
		out.AWSGroup = &group
	}
	return out
}

func (r *ServiceRegistry) index(s *Service) {
	addIndex := func(cat catalog.Category) {
		if r.byCategory[cat] == nil {
			r.byCategory[cat] = make(map[string]bool)
		}
		r.byCategory[cat][s.ID] = true
	}
	addIndex(s.Category)
	// AWS services are indexed under the aws bucket in addition to, not
	// instead of, their nominal category.
	if s.IsAWSService {
		addIndex(catalog.CategoryAWS)
	}
}

func (r *ServiceRegistry) unindex(s *Service) {
	if set := r.byCategory[s.Category]; set != nil {
		delete(set, s.ID)
	}
}

// refreshAWSGroup rebuilds the shared roll-up view and attaches it to
// every AWS-flagged service. Populated lazily on the first AWS merge.
func (r *ServiceRegistry) refreshAWSGroup() {
	if r.awsGroup == nil {
		r.awsGroup = &AWSGroup{Name: "Amazon Web Services"}
	}
	r.awsGroup.Services = r.awsGroup.Services[:0]
	for _, id := range r.order {
		if r.byCategory[catalog.CategoryAWS][id] {
			r.awsGroup.Services = append(r.awsGroup.Services, r.services[id].Name)
		}
	}
	r.awsGroup.Count = len(r.awsGroup.Services)
	for _, id := range r.order {
		if s := r.services[id]; s.IsAWSService {
			s.AWSGroup = r.awsGroup
		}
	}
}

func (r *ServiceRegistry) GetAllServices() []Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Service, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, snapshotService(r.services[id]))
	}
	return out
}

func (r *ServiceRegistry) GetService(id string) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return Service{}, false
	}
	return snapshotService(s), true
}

func (r *ServiceRegistry) GetServicesByCategory(cat catalog.Category) []Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Service
	for _, id := range r.order {
		if r.byCategory[cat][id] {
			out = append(out, snapshotService(r.services[id]))
		}
	}
	return out
}

func (r *ServiceRegistry) GetStats() ServiceStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := ServiceStats{
		Total:      len(r.services),
		ByCategory: make(map[catalog.Category]int),
	}
	for cat, set := range r.byCategory {
		if len(set) > 0 {
			stats.ByCategory[cat] = len(set)
		}
	}
	return stats
}
