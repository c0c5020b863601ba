// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kedster/3ptracer/internal/engine"
	"github.com/kedster/3ptracer/internal/models"
	"github.com/kedster/3ptracer/internal/pipeline"
)

var ErrNotFound = errors.New("analysis not found")

// SaveFootprint persists a completed analysis: the full document as JSONB
// plus the promoted columns the history endpoints query on.
func (d *Database) SaveFootprint(ctx context.Context, fp *pipeline.Footprint) error {
	payload, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("marshaling footprint: %w", err)
	}

	var registrar pgtype.Text
	if fp.Registrar != nil && fp.Registrar.Name != "" {
		registrar = pgtype.Text{String: fp.Registrar.Name, Valid: true}
	}
	var highestRisk pgtype.Text
	if risk := highestFindingRisk(fp.Findings); risk != "" {
		highestRisk = pgtype.Text{String: risk, Valid: true}
	}

	_, err = d.Pool.Exec(ctx, `
		INSERT INTO footprint_analyses (
			analysis_id, domain, ascii_domain,
			service_count, subdomain_count, finding_count,
			highest_risk, registrar_name, full_results,
			analysis_success, analysis_duration
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
		ON CONFLICT (analysis_id) DO NOTHING`,
		fp.ID, fp.Domain, fp.ASCIIDomain,
		fp.ServiceStats.Total, fp.SubdomainStats.Total, len(fp.Findings),
		highestRisk, registrar, payload, fp.Duration,
	)
	if err != nil {
		return fmt.Errorf("inserting footprint for %s: %w", fp.ASCIIDomain, err)
	}
	return nil
}

// GetFootprint loads the full stored document by analysis id.
func (d *Database) GetFootprint(ctx context.Context, analysisID string) (*pipeline.Footprint, error) {
	var payload []byte
	err := d.Pool.QueryRow(ctx,
		`SELECT full_results FROM footprint_analyses WHERE analysis_id = $1`,
		analysisID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading footprint %s: %w", analysisID, err)
	}

	var fp pipeline.Footprint
	if err := json.Unmarshal(payload, &fp); err != nil {
		return nil, fmt.Errorf("unmarshaling footprint %s: %w", analysisID, err)
	}
	return &fp, nil
}

// History returns the most recent analyses, optionally filtered to one
// domain, newest first.
func (d *Database) History(ctx context.Context, domain string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	query := `
		SELECT analysis_id, domain, service_count, subdomain_count,
		       finding_count, highest_risk, created_at
		FROM footprint_analyses
		WHERE analysis_success`
	args := []any{}
	if domain != "" {
		query += ` AND ascii_domain = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, domain, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var risk pgtype.Text
		if err := rows.Scan(&e.AnalysisID, &e.Domain, &e.ServiceCount,
			&e.SubdomainCount, &e.FindingCount, &risk, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if risk.Valid {
			e.HighestRisk = &risk.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats aggregates across all stored analyses.
func (d *Database) Stats(ctx context.Context) (*models.AnalysisStats, error) {
	var s models.AnalysisStats
	var avg pgtype.Float8
	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE analysis_success),
		       COUNT(*) FILTER (WHERE NOT analysis_success),
		       COUNT(DISTINCT ascii_domain),
		       AVG(analysis_duration) FILTER (WHERE analysis_success)
		FROM footprint_analyses`,
	).Scan(&s.TotalAnalyses, &s.SuccessfulAnalyses, &s.FailedAnalyses, &s.UniqueDomains, &avg)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	if avg.Valid {
		s.AvgAnalysisTime = avg.Float64
	}
	return &s, nil
}

func highestFindingRisk(findings []engine.Finding) string {
	rank := map[engine.Risk]int{
		engine.RiskInfo:   1,
		engine.RiskLow:    2,
		engine.RiskMedium: 3,
		engine.RiskHigh:   4,
	}
	best := ""
	bestRank := 0
	for _, f := range findings {
		if r := rank[f.Risk]; r > bestRank {
			bestRank = r
			best = string(f.Risk)
		}
	}
	return best
}
