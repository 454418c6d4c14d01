package repository

import (
	"context"
	"time"
)

// ScoreRepository is the data access surface the scoring engine needs.
type ScoreRepository interface {
	GetProperty(ctx context.Context, propertyID int64) (*Property, error)
	GetScore(ctx context.Context, propertyID int64) (*StoredScore, error)
	ListPropertyIDsAfter(ctx context.Context, lastID int64, limit int) ([]int64, error)
	IncidentsNear(ctx context.Context, propertyID int64, lat, lng, radiusMeters float64) ([]Incident, error)
	AverageSafetyRating(ctx context.Context, propertyID int64) (*float64, error)
	SafetyPointBonus(ctx context.Context, lat, lng, radiusMeters float64) (float64, error)
	FloodReportsNear(ctx context.Context, lat, lng, radiusMeters float64, since time.Time) ([]int, error)
	AdminOverride(ctx context.Context, propertyID int64) (*float64, error)
	UpdateElevation(ctx context.Context, propertyID int64, meters float64) error
	UpsertScore(ctx context.Context, rec ScoreRecord) error
}
