// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	labelRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	tldRegex   = regexp.MustCompile(`^[a-zA-Z]{2,}$`)
)

// DomainToASCII converts a user-supplied domain to its IDNA ASCII form.
func DomainToASCII(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimRight(domain, ".")

	p := idna.New(idna.MapForLookup(), idna.Transitional(false))
	return p.ToASCII(domain)
}

// ValidateDomain rejects obviously malformed or hostile domain input
// before it reaches any resolver.
func ValidateDomain(domain string) bool {
	domain = strings.TrimRight(strings.TrimSpace(domain), ".")
	if domain == "" || len(domain) > 253 {
		return false
	}

	ascii, err := DomainToASCII(domain)
	if err != nil {
		return false
	}
	if strings.Contains(ascii, "..") || strings.HasPrefix(ascii, ".") || strings.HasPrefix(ascii, "-") {
		return false
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 || !labelRegex.MatchString(label) ||
			strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return tldRegex.MatchString(labels[len(labels)-1])
}
