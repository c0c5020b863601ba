// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/kedster/3ptracer/internal/config"
	"github.com/kedster/3ptracer/internal/db"
	"github.com/kedster/3ptracer/internal/dnsclient"
	"github.com/kedster/3ptracer/internal/handlers"
	"github.com/kedster/3ptracer/internal/middleware"
	"github.com/kedster/3ptracer/internal/pipeline"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var database *db.Database
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
	} else {
		slog.Warn("DATABASE_URL not set, history and stats persistence disabled")
	}

	opts := []pipeline.Option{
		pipeline.WithMaxConcurrent(cfg.MaxConcurrentAnalyses),
		pipeline.WithMaxEnrich(cfg.MaxEnrichedSubdomains),
		pipeline.WithWHOIS(cfg.WHOISEnabled),
		pipeline.WithCTDiscovery(cfg.CTDiscoveryEnabled),
	}
	if len(cfg.Resolvers) > 0 {
		resolvers := make([]dnsclient.ResolverConfig, 0, len(cfg.Resolvers))
		for _, r := range cfg.Resolvers {
			resolvers = append(resolvers, dnsclient.ResolverConfig{Name: r.Name, IP: r.IP, DoH: r.DoH})
		}
		opts = append(opts, pipeline.WithResolvers(resolvers))
	}
	analyzer := pipeline.New(opts...)
	slog.Info("Footprint analyzer initialized",
		"max_concurrent", cfg.MaxConcurrentAnalyses,
		"max_enriched_subdomains", cfg.MaxEnrichedSubdomains,
		"whois", cfg.WHOISEnabled,
		"ct_discovery", cfg.CTDiscoveryEnabled,
	)

	rateLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimitPerMinute)
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_requests", cfg.RateLimitPerMinute, "window_seconds", middleware.RateLimitWindow)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestContext())
	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.SecurityHeaders())

	h := handlers.New(analyzer, database, rateLimiter, cfg.AppVersion)

	router.GET("/healthz", h.Health)
	router.POST("/api/analyze", h.Analyze)
	router.GET("/api/footprint/:id", h.GetFootprint)
	router.GET("/api/history", h.History)
	router.GET("/api/stats", h.Stats)

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	slog.Info("Starting footprint analyzer server", "address", addr, "version", cfg.AppVersion)

	if err := router.Run(addr); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
