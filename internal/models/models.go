// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package models holds the persistence row shapes. Footprint payloads are
// stored as JSONB documents with a few promoted columns for history
// queries; the full result round-trips through FullResults untouched.
package models

import (
	"encoding/json"
	"time"
)

type FootprintAnalysis struct {
	ID               int             `json:"id" db:"id"`
	AnalysisID       string          `json:"analysis_id" db:"analysis_id"`
	Domain           string          `json:"domain" db:"domain"`
	ASCIIDomain      string          `json:"ascii_domain" db:"ascii_domain"`
	ServiceCount     int             `json:"service_count" db:"service_count"`
	SubdomainCount   int             `json:"subdomain_count" db:"subdomain_count"`
	FindingCount     int             `json:"finding_count" db:"finding_count"`
	HighestRisk      *string         `json:"highest_risk" db:"highest_risk"`
	RegistrarName    *string         `json:"registrar_name" db:"registrar_name"`
	FullResults      json.RawMessage `json:"full_results" db:"full_results"`
	AnalysisSuccess  bool            `json:"analysis_success" db:"analysis_success"`
	ErrorMessage     *string         `json:"error_message" db:"error_message"`
	AnalysisDuration *float64        `json:"analysis_duration" db:"analysis_duration"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

const SchemaVersion = 1

// HistoryEntry is the promoted-column view returned by history queries;
// the JSONB payload stays in the database.
type HistoryEntry struct {
	AnalysisID     string    `json:"analysis_id"`
	Domain         string    `json:"domain"`
	ServiceCount   int       `json:"service_count"`
	SubdomainCount int       `json:"subdomain_count"`
	FindingCount   int       `json:"finding_count"`
	HighestRisk    *string   `json:"highest_risk,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AnalysisStats struct {
	TotalAnalyses      int     `json:"total_analyses"`
	SuccessfulAnalyses int     `json:"successful_analyses"`
	FailedAnalyses     int     `json:"failed_analyses"`
	UniqueDomains      int     `json:"unique_domains"`
	AvgAnalysisTime    float64 `json:"avg_analysis_time"`
}
