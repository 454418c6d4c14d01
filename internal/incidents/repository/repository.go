// Package repository persists security incidents. Rows are immutable once
// written; there is no update or delete surface.
package repository

import (
	"context"
	"time"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/db"
)

// InsertParams carries a new incident's fields. PropertyID zero means the
// incident is area-wide and located only by its own coordinates.
type InsertParams struct {
	PropertyID   int64
	Latitude     *float64
	Longitude    *float64
	Severity     string
	IncidentType string
	IncidentDate time.Time
	Notes        string
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Insert appends an incident and returns its assigned ID.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (int64, error) {
	var propertyID interface{}
	if p.PropertyID > 0 {
		propertyID = p.PropertyID
	}

	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO security_incidents
			(property_id, latitude, longitude, severity, incident_type, incident_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id
	`, propertyID, p.Latitude, p.Longitude, p.Severity, p.IncidentType, p.IncidentDate, p.Notes).Scan(&id)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "insert incident", err)
	}
	return id, nil
}
