// Package service implements admin incident intake. Incidents referencing a
// property are guarded by JIT sync so the foreign key cannot dangle;
// area-wide incidents fan a recompute out to every property in range.
package service

import (
	"context"
	"strings"
	"time"

	"homesafe_backend/internal/incidents/repository"
	"homesafe_backend/internal/incidents/transport"
	prepo "homesafe_backend/internal/properties/repository"
	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/logger"
)

// areaRadiusMeters bounds the recompute fan-out for an incident with no
// attributed property. Wider than the crime search radius so bordering
// properties are refreshed too.
const areaRadiusMeters = 10000.0

// IncidentStore is the persistence surface the service needs.
type IncidentStore interface {
	Insert(ctx context.Context, p repository.InsertParams) (int64, error)
}

// PropertyGuard JIT-syncs the target property before a dependent write.
type PropertyGuard interface {
	EnsureExists(ctx context.Context, id int64) (*prepo.Property, error)
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
	repo    IncidentStore
	guard   PropertyGuard
	locator PropertyLocator
	trigger RecomputeTrigger
	log     *logger.Logger
}

func New(repo IncidentStore, guard PropertyGuard, locator PropertyLocator, trigger RecomputeTrigger, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, locator: locator, trigger: trigger, log: log}
}

// Create records an incident. Attributed incidents recompute their property;
// area-wide incidents recompute every property within the area radius.
func (s *Service) Create(ctx context.Context, req transport.CreateIncidentRequest) (transport.IncidentResponse, error) {
	if req.PropertyID == 0 && (req.Latitude == nil || req.Longitude == nil) {
		return transport.IncidentResponse{}, apperr.Validation("incident requires a property_id or coordinates")
	}

	occurredAt, err := parseIncidentDate(req.IncidentDate)
	if err != nil {
		return transport.IncidentResponse{}, apperr.Validation("incident_date must be YYYY-MM-DD or RFC 3339")
	}

	if req.PropertyID > 0 {
		if _, err := s.guard.EnsureExists(ctx, req.PropertyID); err != nil {
			return transport.IncidentResponse{}, err
		}
	}

	id, err := s.repo.Insert(ctx, repository.InsertParams{
		PropertyID:   req.PropertyID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Severity:     req.Severity,
		IncidentType: strings.ToLower(strings.TrimSpace(req.IncidentType)),
		IncidentDate: occurredAt,
		Notes:        strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return transport.IncidentResponse{}, err
	}

	s.fanOutRecompute(ctx, id, req)

	return transport.IncidentResponse{
		ID:           id,
		PropertyID:   req.PropertyID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Severity:     req.Severity,
		IncidentType: strings.ToLower(strings.TrimSpace(req.IncidentType)),
		IncidentDate: occurredAt,
	}, nil
}

// fanOutRecompute never fails intake; the incident is durable and the next
// sweep rescoring picks it up regardless.
func (s *Service) fanOutRecompute(ctx context.Context, incidentID int64, req transport.CreateIncidentRequest) {
	if s.trigger == nil {
		return
	}

	if req.PropertyID > 0 {
		s.trigger.RecomputeAsync(req.PropertyID)
		return
	}

	ids, err := s.locator.NeighborIDs(ctx, *req.Latitude, *req.Longitude, areaRadiusMeters)
	if err != nil {
		s.log.Warn("incident neighbor lookup failed", "incident_id", incidentID, "error", err)
		return
	}
	for _, propertyID := range ids {
		s.trigger.RecomputeAsync(propertyID)
	}
}

func parseIncidentDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
