// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package config loads server configuration from the environment, with an
// optional YAML file overlay for deployments that prefer files over env
// vars. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	AppVersion  string `yaml:"-"`

	MaxConcurrentAnalyses int  `yaml:"max_concurrent_analyses"`
	MaxEnrichedSubdomains int  `yaml:"max_enriched_subdomains"`
	WHOISEnabled          bool `yaml:"whois_enabled"`
	CTDiscoveryEnabled    bool `yaml:"ct_discovery_enabled"`

	Resolvers []ResolverEntry `yaml:"resolvers"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type ResolverEntry struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
	DoH  string `yaml:"doh"`
}

const appVersion = "1.4.2"

// Load builds the effective configuration: defaults, then the YAML file
// named by CONFIG_FILE (if any), then environment variables. A database
// URL is optional; without one the server runs with persistence disabled.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  "5000",
		AppVersion:            appVersion,
		MaxConcurrentAnalyses: 6,
		MaxEnrichedSubdomains: 30,
		WHOISEnabled:          true,
		CTDiscoveryEnabled:    true,
		RateLimitPerMinute:    10,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MAX_CONCURRENT_ANALYSES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MAX_CONCURRENT_ANALYSES must be a positive integer, got %q", v)
		}
		cfg.MaxConcurrentAnalyses = n
	}
	if v := os.Getenv("MAX_ENRICHED_SUBDOMAINS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("MAX_ENRICHED_SUBDOMAINS must be a non-negative integer, got %q", v)
		}
		cfg.MaxEnrichedSubdomains = n
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a positive integer, got %q", v)
		}
		cfg.RateLimitPerMinute = n
	}
	if v := os.Getenv("WHOIS_ENABLED"); v != "" {
		cfg.WHOISEnabled = parseBool(v, cfg.WHOISEnabled)
	}
	if v := os.Getenv("CT_DISCOVERY_ENABLED"); v != "" {
		cfg.CTDiscoveryEnabled = parseBool(v, cfg.CTDiscoveryEnabled)
	}
	if v := os.Getenv("DNS_RESOLVERS"); v != "" {
		cfg.Resolvers = nil
		for _, ip := range strings.Split(v, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				cfg.Resolvers = append(cfg.Resolvers, ResolverEntry{Name: ip, IP: ip})
			}
		}
	}

	return cfg, nil
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
