// Package service implements property sync and the safety-score read-through.
package service

import (
	"context"

	"homesafe_backend/internal/properties/client"
	"homesafe_backend/internal/properties/repository"
	"homesafe_backend/internal/properties/transport"
	"homesafe_backend/internal/scoring"
	screpo "homesafe_backend/internal/scoring/repository"
	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/logger"
)

// PropertyStore is the persistence surface the service needs.
type PropertyStore interface {
	GetByID(ctx context.Context, id int64) (*repository.Property, error)
	Upsert(ctx context.Context, p repository.UpsertParams) error
	SearchByName(ctx context.Context, query string, limit int) ([]repository.SearchResult, error)
	SearchByRadius(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]repository.SearchResult, error)
	IDsNear(ctx context.Context, lat, lng, radiusMeters float64) ([]int64, error)
}

// CoreClient fetches property state from the system of record.
type CoreClient interface {
	FetchRoom(ctx context.Context, id int64) (*client.Room, error)
}

// ScoreReader loads a previously stored safety score.
type ScoreReader interface {
	GetScore(ctx context.Context, propertyID int64) (*screpo.StoredScore, error)
}

// Recomputer refreshes a property's score synchronously.
type Recomputer interface {
	RecomputeOne(ctx context.Context, propertyID int64) (scoring.Result, error)
}

// RecomputeTrigger schedules an asynchronous recompute. Implementations must
// not block the caller.
type RecomputeTrigger interface {
	RecomputeAsync(propertyID int64)
}

type Service struct {
	repo    PropertyStore
	core    CoreClient
	scores  ScoreReader
	scorer  Recomputer
	trigger RecomputeTrigger
	log     *logger.Logger
}

func New(repo PropertyStore, core CoreClient, scores ScoreReader, scorer Recomputer, trigger RecomputeTrigger, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		core:    core,
		scores:  scores,
		scorer:  scorer,
		trigger: trigger,
		log:     log,
	}
}

// EnsureExists returns the locally cached property, syncing it just-in-time
// from the system of record on a local miss. A remote miss surfaces as a
// typed not-found error that blocks dependent writes.
func (s *Service) EnsureExists(ctx context.Context, id int64) (*repository.Property, error) {
	prop, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prop != nil {
		return prop, nil
	}

	room, err := s.core.FetchRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, roomToUpsert(room)); err != nil {
		return nil, err
	}
	s.log.WithProperty(id).Info("property synced just-in-time")

	prop, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, apperr.Internal("property vanished after sync")
	}
	return prop, nil
}

// SyncFromPush applies a push from the system of record and schedules a
// recompute since coordinates may have changed.
func (s *Service) SyncFromPush(ctx context.Context, req transport.SyncPropertyRequest) error {
	name := req.Title
	if name == "" {
		name = propertyFallbackName
	}
	err := s.repo.Upsert(ctx, repository.UpsertParams{
		ID:             req.ID,
		Name:           name,
		AddressDetails: req.AddressDetails,
		Ward:           req.Ward,
		District:       req.District,
		City:           req.City,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	})
	if err != nil {
		return err
	}

	if s.trigger != nil {
		s.trigger.RecomputeAsync(req.ID)
	}
	return nil
}

// GetSafety returns the stored score for the property, computing it when the
// property has never been scored. The property itself is JIT-synced first.
func (s *Service) GetSafety(ctx context.Context, id int64) (transport.SafetyScoreResponse, error) {
	if _, err := s.EnsureExists(ctx, id); err != nil {
		return transport.SafetyScoreResponse{}, err
	}

	stored, err := s.scores.GetScore(ctx, id)
	if err != nil {
		return transport.SafetyScoreResponse{}, err
	}
	if stored != nil {
		return transport.SafetyScoreResponse{
			PropertyID:    stored.PropertyID,
			SafetyScore:   stored.SafetyScore,
			CrimeScore:    stored.CrimeScore,
			UserScore:     stored.UserScore,
			EnvScore:      stored.EnvScore,
			AISummary:     stored.AISummary,
			ConfigVersion: stored.ConfigVersion,
			ComputedAt:    &stored.ComputedAt,
		}, nil
	}

	res, err := s.scorer.RecomputeOne(ctx, id)
	if err != nil {
		return transport.SafetyScoreResponse{}, err
	}
	return transport.SafetyScoreResponse{
		PropertyID:    res.PropertyID,
		SafetyScore:   res.SafetyScore,
		CrimeScore:    res.CrimeScore,
		UserScore:     res.UserScore,
		EnvScore:      res.EnvScore,
		ConfigVersion: res.ConfigVersion,
	}, nil
}

// Search resolves an admin dropdown query: radius search when coordinates
// are supplied, name search otherwise.
func (s *Service) Search(ctx context.Context, q transport.SearchQuery) ([]transport.PropertySummary, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		hits []repository.SearchResult
		err  error
	)
	switch {
	case q.Lat != nil && q.Lng != nil:
		radius := q.RadiusM
		if radius <= 0 {
			radius = 2000
		}
		hits, err = s.repo.SearchByRadius(ctx, *q.Lat, *q.Lng, radius, limit)
	case q.Q != "":
		hits, err = s.repo.SearchByName(ctx, q.Q, limit)
	default:
		return nil, apperr.Validation("q or lat/lng is required")
	}
	if err != nil {
		return nil, err
	}

	items := make([]transport.PropertySummary, 0, len(hits))
	for _, h := range hits {
		items = append(items, transport.PropertySummary{
			ID:        h.ID,
			Name:      h.Name,
			Address:   h.Address,
			DistanceM: h.DistanceM,
		})
	}
	return items, nil
}

// NeighborIDs returns properties within radiusMeters of a point. Other
// modules use it to fan out recomputes after geospatial writes.
func (s *Service) NeighborIDs(ctx context.Context, lat, lng, radiusMeters float64) ([]int64, error) {
	return s.repo.IDsNear(ctx, lat, lng, radiusMeters)
}

const propertyFallbackName = "Unnamed property"

func roomToUpsert(room *client.Room) repository.UpsertParams {
	name := room.Title
	if name == "" {
		name = propertyFallbackName
	}
	return repository.UpsertParams{
		ID:             room.ID,
		Name:           name,
		AddressDetails: room.AddressDetails,
		Ward:           room.Ward,
		District:       room.District,
		City:           room.City,
		Latitude:       room.Latitude,
		Longitude:      room.Longitude,
	}
}
