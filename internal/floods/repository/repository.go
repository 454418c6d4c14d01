// Package repository persists flood self-reports.
package repository

import (
	"context"
	"time"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/db"
)

// FloodReport is an append-only citizen observation of standing water.
type FloodReport struct {
	ID           int64
	ReporterID   int64
	Latitude     float64
	Longitude    float64
	WaterLevelCm int
	Description  string
	ReportedAt   time.Time
}

// InsertParams carries a new report's fields.
type InsertParams struct {
	ReporterID   int64
	Latitude     float64
	Longitude    float64
	WaterLevelCm int
	Description  string
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Insert appends a flood report and returns its assigned ID.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO flood_reports (reporter_id, latitude, longitude, water_level_cm, description, reported_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, p.ReporterID, p.Latitude, p.Longitude, p.WaterLevelCm, p.Description).Scan(&id)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "insert flood report", err)
	}
	return id, nil
}

// ListNear returns reports within radiusMeters of a point, newest first.
func (r *Repository) ListNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]FloodReport, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, reporter_id, latitude, longitude, water_level_cm, description, reported_at
		FROM flood_reports
		WHERE ST_DWithin(
			ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
			ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
			$3
		)
		ORDER BY reported_at DESC
		LIMIT $4
	`, lat, lng, radiusMeters, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "query flood reports", err)
	}
	defer rows.Close()

	reports := make([]FloodReport, 0)
	for rows.Next() {
		var fr FloodReport
		if err := rows.Scan(&fr.ID, &fr.ReporterID, &fr.Latitude, &fr.Longitude, &fr.WaterLevelCm, &fr.Description, &fr.ReportedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan flood report", err)
		}
		reports = append(reports, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate flood reports", err)
	}
	return reports, nil
}
