package repository

import (
	"context"
	"time"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/db"
)

type Review struct {
	PropertyID        int64
	UserID            int64
	ReviewerName      string
	SafetyRating      int
	CleanlinessRating int
	AmenitiesRating   int
	HostRating        int
	Comment           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type UpsertParams struct {
	PropertyID        int64
	UserID            int64
	ReviewerName      string
	SafetyRating      int
	CleanlinessRating int
	AmenitiesRating   int
	HostRating        int
	Comment           string
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Upsert inserts or replaces the user's review of the property. The unique
// constraint on (property_id, user_id) keeps one review per pair.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO property_reviews
			(property_id, user_id, reviewer_name, safety_rating, cleanliness_rating, amenities_rating, host_rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (property_id, user_id) DO UPDATE SET
			reviewer_name = EXCLUDED.reviewer_name,
			safety_rating = EXCLUDED.safety_rating,
			cleanliness_rating = EXCLUDED.cleanliness_rating,
			amenities_rating = EXCLUDED.amenities_rating,
			host_rating = EXCLUDED.host_rating,
			comment = EXCLUDED.comment,
			updated_at = NOW()
	`, p.PropertyID, p.UserID, p.ReviewerName, p.SafetyRating, p.CleanlinessRating, p.AmenitiesRating, p.HostRating, p.Comment)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "upsert review", err)
	}
	return nil
}

// ListByProperty returns one page of the property's reviews, newest first.
func (r *Repository) ListByProperty(ctx context.Context, propertyID int64, limit, offset int) ([]Review, error) {
	rows, err := r.q.Query(ctx, `
		SELECT property_id, user_id, reviewer_name, safety_rating, cleanliness_rating, amenities_rating, host_rating, comment, created_at, updated_at
		FROM property_reviews
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, propertyID, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list reviews", err)
	}
	defer rows.Close()

	items := make([]Review, 0, limit)
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.PropertyID, &rv.UserID, &rv.ReviewerName, &rv.SafetyRating,
			&rv.CleanlinessRating, &rv.AmenitiesRating, &rv.HostRating, &rv.Comment,
			&rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan review", err)
		}
		items = append(items, rv)
	}
	if rows.Err() != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "iterate reviews", rows.Err())
	}
	return items, nil
}

// CountByProperty returns the property's total review count.
func (r *Repository) CountByProperty(ctx context.Context, propertyID int64) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM property_reviews WHERE property_id = $1
	`, propertyID).Scan(&total)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "count reviews", err)
	}
	return total, nil
}

// Delete removes the user's own review. Returns false when no row existed.
func (r *Repository) Delete(ctx context.Context, propertyID, userID int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM property_reviews WHERE property_id = $1 AND user_id = $2
	`, propertyID, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "delete review", err)
	}
	return tag.RowsAffected() > 0, nil
}
