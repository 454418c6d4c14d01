package scoring

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"homesafe_backend/internal/scoring/decay"
	"homesafe_backend/internal/scoring/repository"
	"homesafe_backend/platform/logger"
)

// TransitLocator finds the nearest railway feature within a radius. ok is
// false when nothing is in range.
type TransitLocator interface {
	NearestRailway(ctx context.Context, lat, lng, radiusMeters float64) (stationLat, stationLng float64, ok bool, err error)
}

// ElevationResolver looks up terrain elevation in meters for a coordinate.
// A nil result with nil error means the provider had no data for the point.
type ElevationResolver interface {
	Elevation(ctx context.Context, lat, lng float64) (*float64, error)
}

// Result holds one full score computation for a property.
type Result struct {
	PropertyID    int64
	SafetyScore   float64
	CrimeScore    float64
	UserScore     float64
	EnvScore      float64
	AdminOverride *float64
	ConfigVersion string
}

type Service struct {
	repo      repository.ScoreRepository
	transit   TransitLocator    // optional
	elevation ElevationResolver // optional
	cfg       Config
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(repo repository.ScoreRepository, transit TransitLocator, elevation ElevationResolver, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		transit:   transit,
		elevation: elevation,
		cfg:       DefaultConfig(),
		logger:    log,
		now:       time.Now,
	}
}

// Compute calculates all score components for the property and aggregates
// them. Component failures degrade to neutral defaults; Compute itself only
// fails when the override lookup does.
func (s *Service) Compute(ctx context.Context, prop *repository.Property) (Result, error) {
	var (
		userScore, crimeScore, envScore float64
		override                        *float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		userScore = s.CalculateUserScore(gctx, prop.ID)
		return nil
	})
	g.Go(func() error {
		crimeScore = s.CalculateCrimeScore(gctx, prop)
		return nil
	})
	g.Go(func() error {
		envScore = s.CalculateEnvironmentScore(gctx, prop)
		return nil
	})
	g.Go(func() error {
		var err error
		override, err = s.repo.AdminOverride(gctx, prop.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	userScore = roundScore(userScore)
	crimeScore = roundScore(crimeScore)
	envScore = roundScore(envScore)

	return Result{
		PropertyID:    prop.ID,
		SafetyScore:   s.Aggregate(userScore, crimeScore, envScore, override),
		CrimeScore:    crimeScore,
		UserScore:     userScore,
		EnvScore:      envScore,
		AdminOverride: override,
		ConfigVersion: s.cfg.Version,
	}, nil
}

// CalculateUserScore maps the mean 1-5 review rating onto the 0-10 scale.
func (s *Service) CalculateUserScore(ctx context.Context, propertyID int64) float64 {
	avg, err := s.repo.AverageSafetyRating(ctx, propertyID)
	if err != nil {
		s.logger.DatabaseError("average_safety_rating", err)
		return s.cfg.FallbackUserScore
	}
	if avg == nil {
		return s.cfg.DefaultUserScore
	}
	return s.sanitize(decay.Clamp(*avg*2, 0, 10), s.cfg.FallbackUserScore)
}

// CalculateCrimeScore derives a score from nearby incident history. Each
// incident contributes a penalty weighted by severity and category, halved
// every half-life and attenuated exponentially with distance.
func (s *Service) CalculateCrimeScore(ctx context.Context, prop *repository.Property) float64 {
	if !prop.HasCoordinates() {
		return s.cfg.DefaultCrimeScore
	}

	incidents, err := s.repo.IncidentsNear(ctx, prop.ID, *prop.Latitude, *prop.Longitude, s.cfg.Crime.RadiusMeters)
	if err != nil {
		s.logger.DatabaseError("incidents_near", err)
		return s.cfg.DefaultCrimeScore
	}
	if len(incidents) == 0 {
		return s.cfg.DefaultCrimeScore
	}

	now := s.now().UTC()
	total := 0.0
	for _, inc := range incidents {
		ageDays := now.Sub(inc.OccurredAt).Hours() / 24
		if ageDays < 0 || ageDays > s.cfg.Crime.MaxAgeDays {
			continue
		}
		severity, ok := s.cfg.Crime.SeverityWeights[inc.Severity]
		if !ok {
			severity = s.cfg.Crime.DefaultSeverity
		}
		typeWeight, ok := s.cfg.Crime.TypeWeights[inc.Type]
		if !ok {
			typeWeight = s.cfg.Crime.DefaultTypeWeight
		}
		total += severity * typeWeight *
			decay.TimeDecay(ageDays, s.cfg.Crime.HalfLifeDays) *
			decay.DistanceDecay(inc.DistanceMeters, s.cfg.Crime.DecayK)
	}
	if total > s.cfg.Crime.MaxPenalty {
		total = s.cfg.Crime.MaxPenalty
	}

	score := 10 - (total/s.cfg.Crime.MaxPenalty)*10
	return s.sanitize(decay.Clamp(score, 0, 10), s.cfg.DefaultCrimeScore)
}

// CalculateEnvironmentScore blends the liveability score (amenity bonus minus
// transit noise) with the flood sub-score.
func (s *Service) CalculateEnvironmentScore(ctx context.Context, prop *repository.Property) float64 {
	if !prop.HasCoordinates() {
		return s.cfg.DefaultEnvScore
	}
	lat, lng := *prop.Latitude, *prop.Longitude

	live := s.cfg.Env.BaseScore
	bonus, err := s.repo.SafetyPointBonus(ctx, lat, lng, s.cfg.Env.POIRadiusMeters)
	if err != nil {
		s.logger.DatabaseError("safety_point_bonus", err)
	} else {
		live += bonus * s.cfg.Env.BonusScale
	}
	live -= s.noisePenalty(ctx, lat, lng)
	live = decay.Clamp(live, 0, 10)

	flood := s.calculateFloodScore(ctx, prop)

	env := live*s.cfg.Env.LiveabilityWeight + flood*s.cfg.Env.FloodWeight
	if flood < s.cfg.Env.HighRiskThreshold {
		env -= s.cfg.Env.HighRiskExtraPenalty
	}
	return s.sanitize(decay.Clamp(env, 0, 10), s.cfg.DefaultEnvScore)
}

// noisePenalty attenuates the transit-noise penalty with distance to the
// nearest railway. A provider failure means no penalty, not a failed score.
func (s *Service) noisePenalty(ctx context.Context, lat, lng float64) float64 {
	if s.transit == nil {
		return 0
	}
	stLat, stLng, ok, err := s.transit.NearestRailway(ctx, lat, lng, s.cfg.Noise.RadiusMeters)
	if err != nil {
		s.logger.Warn("railway lookup failed", "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	dist := decay.HaversineMeters(lat, lng, stLat, stLng)
	return s.cfg.Noise.MaxPenalty * decay.DistanceDecay(dist, s.cfg.Noise.DecayK)
}

// calculateFloodScore penalizes low terrain and recent crowd-sourced flood
// reports. Elevation resolved through the external provider is cached on the
// property row so later recomputes skip the lookup.
func (s *Service) calculateFloodScore(ctx context.Context, prop *repository.Property) float64 {
	if !prop.HasCoordinates() {
		return s.cfg.DefaultFloodScore
	}
	lat, lng := *prop.Latitude, *prop.Longitude
	score := 10.0

	elev := prop.ElevationM
	if elev == nil && s.elevation != nil {
		resolved, err := s.elevation.Elevation(ctx, lat, lng)
		if err != nil {
			s.logger.Warn("elevation lookup failed", "property_id", prop.ID, "error", err)
		} else if resolved != nil {
			elev = resolved
			if err := s.repo.UpdateElevation(ctx, prop.ID, *resolved); err != nil {
				s.logger.DatabaseError("cache_elevation", err)
			}
		}
	}
	if elev != nil {
		switch {
		case *elev < s.cfg.Flood.VeryLowElevationM:
			score -= s.cfg.Flood.VeryLowElevPenalty
		case *elev < s.cfg.Flood.LowElevationM:
			score -= s.cfg.Flood.LowElevPenalty
		}
	}

	since := s.now().UTC().AddDate(0, 0, -s.cfg.Flood.ReportWindowDays)
	levels, err := s.repo.FloodReportsNear(ctx, lat, lng, s.cfg.Flood.ReportRadiusMeters, since)
	if err != nil {
		s.logger.DatabaseError("flood_reports_near", err)
	} else {
		penalty := 0.0
		for _, cm := range levels {
			switch {
			case cm > s.cfg.Flood.DeepLevelCm:
				penalty += s.cfg.Flood.DeepPenalty
			case cm >= s.cfg.Flood.ModerateLevelCm:
				penalty += s.cfg.Flood.ModeratePenalty
			default:
				penalty += s.cfg.Flood.ShallowPenalty
			}
		}
		if penalty > s.cfg.Flood.MaxReportPenalty {
			penalty = s.cfg.Flood.MaxReportPenalty
		}
		score -= penalty
	}

	return s.sanitize(decay.Clamp(score, 0, 10), s.cfg.DefaultFloodScore)
}

// Aggregate combines the component scores into the overall safety score,
// switching weight regimes when an admin override is present.
func (s *Service) Aggregate(userScore, crimeScore, envScore float64, override *float64) float64 {
	var overall float64
	if override != nil {
		overall = crimeScore*s.cfg.OverrideCrimeWeight +
			userScore*s.cfg.OverrideUserWeight +
			envScore*s.cfg.OverrideEnvWeight +
			*override*s.cfg.OverrideOverrideWeight
	} else {
		overall = userScore*s.cfg.UserWeight +
			crimeScore*s.cfg.CrimeWeight +
			envScore*s.cfg.EnvWeight
	}
	return roundScore(s.sanitize(decay.Clamp(overall, 0, 10), s.cfg.DefaultEnvScore))
}

// ConfigVersion exposes the active scoring model version.
func (s *Service) ConfigVersion() string {
	return s.cfg.Version
}

// sanitize guards against NaN or infinity leaking into stored scores.
func (s *Service) sanitize(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// roundScore rounds to one decimal, the precision scores are stored and
// served with.
func roundScore(v float64) float64 {
	return math.Round(v*10) / 10
}
