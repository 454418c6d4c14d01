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
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UpsertParams carries the fields the system of record owns. Elevation is
// deliberately absent: it is cached by the scoring engine, never synced.
type UpsertParams struct {
	ID             int64
	Name           string
	AddressDetails *string
	Ward           *string
	District       *string
	City           *string
	Latitude       *float64
	Longitude      *float64
}

// SearchResult is a property hit with an optional distance for radius search.
type SearchResult struct {
	ID        int64
	Name      string
	Address   string
	DistanceM *float64
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// GetByID returns the property or nil when it is not cached locally.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Property, error) {
	var p Property
	err := r.q.QueryRow(ctx, `
		SELECT id, name, address_details, ward, district, city, latitude, longitude, elevation_m, created_at, updated_at
		FROM properties
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.AddressDetails, &p.Ward, &p.District, &p.City,
		&p.Latitude, &p.Longitude, &p.ElevationM, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load property", err)
	}
	return &p, nil
}

// Upsert writes the synced property state. Concurrent syncs of the same id
// are safe: the conflict clause makes the last writer win field-by-field.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO properties (id, name, address_details, ward, district, city, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address_details = EXCLUDED.address_details,
			ward = EXCLUDED.ward,
			district = EXCLUDED.district,
			city = EXCLUDED.city,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = NOW()
	`, p.ID, p.Name, p.AddressDetails, p.Ward, p.District, p.City, p.Latitude, p.Longitude)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "upsert property", err)
	}
	return nil
}

// SearchByName matches the name or any address part, case-insensitive.
func (r *Repository) SearchByName(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, CONCAT_WS(', ', address_details, ward, district, city) AS address
		FROM properties
		WHERE name ILIKE '%' || $1 || '%'
			OR CONCAT_WS(', ', address_details, ward, district, city) ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "search properties by name", err)
	}
	defer rows.Close()
	return scanSearchResults(rows, false)
}

// SearchByRadius returns properties within radiusMeters ordered by distance.
func (r *Repository) SearchByRadius(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]SearchResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, CONCAT_WS(', ', address_details, ward, district, city) AS address,
			ST_Distance(
				ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography
			) AS distance_m
		FROM properties
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
			AND ST_DWithin(
				ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
				$3
			)
		ORDER BY distance_m ASC
		LIMIT $4
	`, lat, lng, radiusMeters, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "search properties by radius", err)
	}
	defer rows.Close()
	return scanSearchResults(rows, true)
}

// IDsNear returns the ids of properties with coordinates within radiusMeters
// of a point. Used to fan out recomputes to affected neighbors.
func (r *Repository) IDsNear(ctx context.Context, lat, lng, radiusMeters float64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id
		FROM properties
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
			AND ST_DWithin(
				ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
				$3
			)
	`, lat, lng, radiusMeters)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "properties near point", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan property id", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate property ids", rows.Err())
	}
	return ids, nil
}

func scanSearchResults(rows pgx.Rows, withDistance bool) ([]SearchResult, error) {
	items := make([]SearchResult, 0)
	for rows.Next() {
		var item SearchResult
		var err error
		if withDistance {
			err = rows.Scan(&item.ID, &item.Name, &item.Address, &item.DistanceM)
		} else {
			err = rows.Scan(&item.ID, &item.Name, &item.Address)
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan search result", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate search results", rows.Err())
	}
	return items, nil
}
