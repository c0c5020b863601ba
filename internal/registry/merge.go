// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry

import (
	"regexp"
	"strings"
)

// Merge policies, declared as standalone functions so commutativity can be
// tested per field instead of being buried in upsert conditionals.

// unionStrings appends the members of add not already present in dst.
// Returns the (possibly shared) slice and whether anything was added.
func unionStrings(dst, add []string) ([]string, bool) {
	changed := false
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range add {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
		changed = true
	}
	return dst, changed
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify flattens a display name (plus optional qualifier) into a stable
// registry id.
func slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	slug := slugStripRe.ReplaceAllString(joined, "-")
	return strings.Trim(slug, "-")
}
