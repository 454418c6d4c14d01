package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/db"
)

type Property struct {
	ID             int64
	Name           string
	AddressDetails *string
	Ward           *string
	District       *string
	City           *string
	Latitude       *float64
	Longitude      *float64
	ElevationM     *float64
}

// HasCoordinates reports whether the property can be geospatially scored.
func (p *Property) HasCoordinates() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

type Incident struct {
	Severity       string
	Type           string
	OccurredAt     time.Time
	DistanceMeters float64
}

type ScoreRecord struct {
	PropertyID    int64
	SafetyScore   float64
	CrimeScore    float64
	UserScore     float64
	EnvScore      float64
	AdminOverride *float64
	ConfigVersion string
}

// StoredScore is a previously persisted score row.
type StoredScore struct {
	PropertyID    int64
	SafetyScore   float64
	CrimeScore    float64
	UserScore     float64
	EnvScore      float64
	AdminOverride *float64
	AISummary     *string
	ConfigVersion string
	ComputedAt    time.Time
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) GetProperty(ctx context.Context, propertyID int64) (*Property, error) {
	var p Property
	err := r.q.QueryRow(ctx, `
		SELECT id, name, address_details, ward, district, city, latitude, longitude, elevation_m
		FROM properties
		WHERE id = $1
	`, propertyID).Scan(&p.ID, &p.Name, &p.AddressDetails, &p.Ward, &p.District, &p.City, &p.Latitude, &p.Longitude, &p.ElevationM)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("property not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load property", err)
	}
	return &p, nil
}

// GetScore returns the stored score row for the property, or nil when the
// property has never been scored.
func (r *Repository) GetScore(ctx context.Context, propertyID int64) (*StoredScore, error) {
	var s StoredScore
	err := r.q.QueryRow(ctx, `
		SELECT property_id, safety_score, crime_score, user_score, env_score, admin_override, ai_summary, config_version, computed_at
		FROM property_safety_scores
		WHERE property_id = $1
	`, propertyID).Scan(&s.PropertyID, &s.SafetyScore, &s.CrimeScore, &s.UserScore, &s.EnvScore, &s.AdminOverride, &s.AISummary, &s.ConfigVersion, &s.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load safety score", err)
	}
	return &s, nil
}

// ListPropertyIDsAfter returns the next keyset page of property ids, ordered
// ascending. An empty slice means the sweep is done.
func (r *Repository) ListPropertyIDsAfter(ctx context.Context, lastID int64, limit int) ([]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id FROM properties
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, lastID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list property page", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan property id", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate property page", rows.Err())
	}
	return ids, nil
}

// IncidentsNear returns incidents attributed to the property or located within
// radiusMeters of its coordinates. Attributed incidents count as distance zero.
func (r *Repository) IncidentsNear(ctx context.Context, propertyID int64, lat, lng, radiusMeters float64) ([]Incident, error) {
	rows, err := r.q.Query(ctx, `
		SELECT
			severity,
			incident_type,
			incident_date,
			CASE
				WHEN property_id = $1 THEN 0
				ELSE ST_Distance(
					ST_SetSRID(ST_MakePoint($3, $2), 4326)::geography,
					ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography
				)
			END AS distance_m
		FROM security_incidents
		WHERE property_id = $1
			OR (
				latitude IS NOT NULL AND longitude IS NOT NULL
				AND ST_DWithin(
					ST_SetSRID(ST_MakePoint($3, $2), 4326)::geography,
					ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
					$4
				)
			)
	`, propertyID, lat, lng, radiusMeters)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "query incidents", err)
	}
	defer rows.Close()

	items := make([]Incident, 0)
	for rows.Next() {
		var it Incident
		if err := rows.Scan(&it.Severity, &it.Type, &it.OccurredAt, &it.DistanceMeters); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan incident", err)
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate incidents", rows.Err())
	}
	return items, nil
}

// AverageSafetyRating returns the mean 1-5 review rating, or nil when the
// property has no reviews yet.
func (r *Repository) AverageSafetyRating(ctx context.Context, propertyID int64) (*float64, error) {
	var avg *float64
	err := r.q.QueryRow(ctx, `
		SELECT AVG(safety_rating)::float8
		FROM property_reviews
		WHERE property_id = $1
	`, propertyID).Scan(&avg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "average safety rating", err)
	}
	return avg, nil
}

// SafetyPointBonus sums the severity scores of safety-positive points of
// interest (police posts, guard boxes, street lighting) near the location.
func (r *Repository) SafetyPointBonus(ctx context.Context, lat, lng, radiusMeters float64) (float64, error) {
	var bonus float64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(severity_score), 0)::float8
		FROM safety_points
		WHERE ST_DWithin(
			ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
			ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
			$3
		)
	`, lat, lng, radiusMeters).Scan(&bonus)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "safety point bonus", err)
	}
	return bonus, nil
}

// FloodReportsNear returns the reported water levels (cm) of flood reports
// within radiusMeters filed since the given cutoff.
func (r *Repository) FloodReportsNear(ctx context.Context, lat, lng, radiusMeters float64, since time.Time) ([]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT water_level_cm
		FROM flood_reports
		WHERE reported_at >= $4
			AND ST_DWithin(
				ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
				$3
			)
	`, lat, lng, radiusMeters, since)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "query flood reports", err)
	}
	defer rows.Close()

	levels := make([]int, 0)
	for rows.Next() {
		var cm int
		if err := rows.Scan(&cm); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan flood report", err)
		}
		levels = append(levels, cm)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate flood reports", rows.Err())
	}
	return levels, nil
}

// AdminOverride returns the manual override score for the property, or nil
// when no override is set.
func (r *Repository) AdminOverride(ctx context.Context, propertyID int64) (*float64, error) {
	var score float64
	err := r.q.QueryRow(ctx, `
		SELECT override_score
		FROM admin_score_overrides
		WHERE property_id = $1
	`, propertyID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load admin override", err)
	}
	return &score, nil
}

// UpdateElevation caches a resolved terrain elevation on the property row so
// later recomputes skip the external lookup.
func (r *Repository) UpdateElevation(ctx context.Context, propertyID int64, meters float64) error {
	_, err := r.q.Exec(ctx, `
		UPDATE properties SET elevation_m = $2, updated_at = NOW()
		WHERE id = $1
	`, propertyID, meters)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "cache elevation", err)
	}
	return nil
}

func (r *Repository) UpsertScore(ctx context.Context, rec ScoreRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO property_safety_scores
			(property_id, safety_score, crime_score, user_score, env_score, admin_override, config_version, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (property_id) DO UPDATE SET
			safety_score = EXCLUDED.safety_score,
			crime_score = EXCLUDED.crime_score,
			user_score = EXCLUDED.user_score,
			env_score = EXCLUDED.env_score,
			admin_override = EXCLUDED.admin_override,
			config_version = EXCLUDED.config_version,
			computed_at = NOW()
	`, rec.PropertyID, rec.SafetyScore, rec.CrimeScore, rec.UserScore, rec.EnvScore, rec.AdminOverride, rec.ConfigVersion)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "upsert safety score", err)
	}
	return nil
}
