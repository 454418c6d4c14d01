// Package service implements flood report intake and history lookup.
// New reports trigger a score recompute for every property close enough to
// be affected.
package service

import (
	"context"
	"strings"

	"homesafe_backend/internal/floods/repository"
	"homesafe_backend/internal/floods/transport"
	"homesafe_backend/platform/logger"
)

const (
	// affectedRadiusMeters matches the flood-penalty search radius used by
	// the scoring engine, so exactly the properties whose score can change
	// are recomputed.
	affectedRadiusMeters = 200.0
	historyRadiusMeters  = 100.0
	historyLimit         = 20
)

// ReportStore is the persistence surface the service needs.
type ReportStore interface {
	Insert(ctx context.Context, p repository.InsertParams) (int64, error)
	ListNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]repository.FloodReport, error)
}

// PropertyLocator finds the properties near a point.
type PropertyLocator interface {
	NeighborIDs(ctx context.Context, lat, lng, radiusMeters float64) ([]int64, error)
}

// RecomputeTrigger schedules an asynchronous score recompute.
type RecomputeTrigger interface {
	RecomputeAsync(propertyID int64)
}

type Service struct {
	repo       ReportStore
	properties PropertyLocator
	trigger    RecomputeTrigger
	log        *logger.Logger
}

func New(repo ReportStore, properties PropertyLocator, trigger RecomputeTrigger, log *logger.Logger) *Service {
	return &Service{repo: repo, properties: properties, trigger: trigger, log: log}
}

// Report stores a flood observation and triggers recomputes for the
// properties within the affected radius. Failure to enumerate neighbors
// does not fail the intake; the report is already durable and the next
// sweep picks it up.
func (s *Service) Report(ctx context.Context, reporterID int64, req transport.CreateFloodReportRequest) (int64, error) {
	id, err := s.repo.Insert(ctx, repository.InsertParams{
		ReporterID:   reporterID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		WaterLevelCm: req.WaterLevelCm,
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		return 0, err
	}

	ids, err := s.properties.NeighborIDs(ctx, req.Latitude, req.Longitude, affectedRadiusMeters)
	if err != nil {
		s.log.Warn("flood report neighbor lookup failed", "report_id", id, "error", err)
		return id, nil
	}
	if s.trigger != nil {
		for _, propertyID := range ids {
			s.trigger.RecomputeAsync(propertyID)
		}
	}
	return id, nil
}

// History returns the most recent reports around a point.
func (s *Service) History(ctx context.Context, q transport.HistoryQuery) ([]transport.FloodReportItem, error) {
	reports, err := s.repo.ListNear(ctx, q.Latitude, q.Longitude, historyRadiusMeters, historyLimit)
	if err != nil {
		return nil, err
	}

	items := make([]transport.FloodReportItem, 0, len(reports))
	for _, fr := range reports {
		items = append(items, transport.FloodReportItem{
			ID:           fr.ID,
			Latitude:     fr.Latitude,
			Longitude:    fr.Longitude,
			WaterLevelCm: fr.WaterLevelCm,
			Description:  fr.Description,
			ReportedAt:   fr.ReportedAt,
		})
	}
	return items, nil
}
