// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package handlers exposes the analysis pipeline over a JSON API.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kedster/3ptracer/internal/db"
	"github.com/kedster/3ptracer/internal/dnsclient"
	"github.com/kedster/3ptracer/internal/middleware"
	"github.com/kedster/3ptracer/internal/pipeline"
	"github.com/kedster/3ptracer/internal/telemetry"
)

type Handler struct {
	Analyzer   *pipeline.Analyzer
	DB         *db.Database
	Limiter    middleware.RateLimiter
	AppVersion string
}

func New(analyzer *pipeline.Analyzer, database *db.Database, limiter middleware.RateLimiter, appVersion string) *Handler {
	return &Handler{
		Analyzer:   analyzer,
		DB:         database,
		Limiter:    limiter,
		AppVersion: appVersion,
	}
}

type analyzeRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// Analyze runs a full footprint analysis for the submitted domain and
// returns the complete result document. Persistence failures are logged
// but never fail the request; the analysis already succeeded.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a domain field"})
		return
	}

	domain := strings.TrimSpace(req.Domain)
	if !dnsclient.ValidateDomain(domain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid domain: %q", domain)})
		return
	}

	if h.Limiter != nil {
		result := h.Limiter.CheckAndRecord(c.ClientIP(), domain)
		if !result.Allowed {
			traceID, _ := c.Get("trace_id")
			slog.Info("Rate limit triggered",
				"trace_id", traceID,
				"ip", c.ClientIP(),
				"domain", domain,
				"reason", result.Reason,
				"wait_seconds", result.WaitSeconds,
			)
			c.Header("Retry-After", strconv.Itoa(result.WaitSeconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        "rate limit exceeded",
				"reason":       result.Reason,
				"wait_seconds": result.WaitSeconds,
			})
			return
		}
	}

	fp, err := h.Analyzer.Run(c.Request.Context(), domain)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if h.DB != nil {
		if err := h.DB.SaveFootprint(c.Request.Context(), fp); err != nil {
			slog.Error("Failed to persist analysis", "domain", fp.ASCIIDomain, "error", err)
		}
	}

	c.JSON(http.StatusOK, fp)
}

// GetFootprint returns a previously stored analysis by id.
func (h *Handler) GetFootprint(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "persistence is not configured"})
		return
	}

	fp, err := h.DB.GetFootprint(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to load analysis", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}
	c.JSON(http.StatusOK, fp)
}

// History lists recent analyses, optionally filtered by ?domain=.
func (h *Handler) History(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "persistence is not configured"})
		return
	}

	limit := 25
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	domain := strings.TrimSpace(c.Query("domain"))
	if domain != "" {
		ascii, err := dnsclient.DomainToASCII(domain)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid domain: %q", domain)})
			return
		}
		domain = ascii
	}

	entries, err := h.DB.History(c.Request.Context(), domain, limit)
	if err != nil {
		slog.Error("Failed to query history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": entries, "count": len(entries)})
}

// Stats returns aggregate analysis counters plus the health of the
// external sources the pipeline depends on.
func (h *Handler) Stats(c *gin.Context) {
	out := gin.H{
		"version": h.AppVersion,
		"sources": sourceStats(h.Analyzer.Telemetry),
	}

	if h.DB != nil {
		stats, err := h.DB.Stats(c.Request.Context())
		if err != nil {
			slog.Error("Failed to query stats", "error", err)
		} else {
			out["analyses"] = stats
		}
	}

	c.JSON(http.StatusOK, out)
}

func sourceStats(reg *telemetry.Registry) []telemetry.SourceStats {
	if reg == nil {
		return nil
	}
	return reg.AllStats()
}
