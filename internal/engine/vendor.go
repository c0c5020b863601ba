// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package engine

import (
	"github.com/kedster/3ptracer/internal/catalog"
)

// ASNInfo is the metadata the ASN lookup collaborator hands over per
// resolved IP.
type ASNInfo struct {
	ASN      string `json:"asn"`
	Location string `json:"location"`
	City     string `json:"city"`
	ISP      string `json:"isp"`
}

// VendorInfo is the classification of an ASN into an infrastructure
// vendor. The sentinel vendor "Unknown" means no information at all and
// must never overwrite a known vendor downstream.
type VendorInfo struct {
	Vendor   string           `json:"vendor"`
	Category catalog.Category `json:"category"`
	ASN      string           `json:"asn,omitempty"`
	Location string           `json:"location,omitempty"`
	City     string           `json:"city,omitempty"`
	ISP      string           `json:"isp,omitempty"`
}

// UnknownVendor is the no-information sentinel.
func UnknownVendor() VendorInfo {
	return VendorInfo{Vendor: "Unknown", Category: catalog.CategoryInfrastructure}
}

// ClassifyVendor matches an AS name against the catalog's vendor patterns.
// Unmatched ASNs still carry useful provenance, so the raw ASN string
// becomes the vendor under the generic infrastructure category.
func (e *Engine) ClassifyVendor(info ASNInfo) VendorInfo {
	haystack := info.ASN
	if info.ISP != "" {
		haystack += " " + info.ISP
	}
	for _, v := range e.cat.ASNVendors() {
		if v.Pattern.MatchString(haystack) {
			return VendorInfo{
				Vendor:   v.Vendor,
				Category: v.Category,
				ASN:      info.ASN,
				Location: info.Location,
				City:     info.City,
				ISP:      info.ISP,
			}
		}
	}
	if info.ASN == "" {
		return UnknownVendor()
	}
	return VendorInfo{
		Vendor:   info.ASN,
		Category: catalog.CategoryInfrastructure,
		ASN:      info.ASN,
		Location: info.Location,
		City:     info.City,
		ISP:      info.ISP,
	}
}
