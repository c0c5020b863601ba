// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness plus database reachability when persistence is
// configured. The endpoint stays 200 with a degraded marker if only the
// database is down; analysis still works without it.
func (h *Handler) Health(c *gin.Context) {
	out := gin.H{
		"status":  "ok",
		"version": h.AppVersion,
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.HealthCheck(ctx); err != nil {
			out["status"] = "degraded"
			out["database"] = "unreachable"
		} else {
			out["database"] = "ok"
		}
	}

	c.JSON(http.StatusOK, out)
}
