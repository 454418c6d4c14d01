package scoring

// configVersion tracks the scoring model for debugging and analysis.
// Bump this when changing weights or decay constants significantly.
const configVersion = "2026-v3"

// Config is the single authoritative set of weights and decay constants for
// the safety score. Earlier revisions of the formula lived side by side in
// the legacy system; they are collapsed into this one versioned struct.
type Config struct {
	Version string

	// Default aggregation weights (no admin override present).
	UserWeight  float64
	CrimeWeight float64
	EnvWeight   float64

	// Aggregation weights when an admin override score exists. The override
	// gets material influence and the remaining weights are redistributed.
	OverrideCrimeWeight    float64
	OverrideUserWeight     float64
	OverrideEnvWeight      float64
	OverrideOverrideWeight float64

	Crime CrimeConfig
	Env   EnvConfig
	Noise NoiseConfig
	Flood FloodConfig

	// Neutral defaults used when a data domain is empty or unavailable.
	DefaultUserScore      float64 // no reviews yet
	FallbackUserScore     float64 // review query failed
	DefaultCrimeScore     float64 // no incidents, no coordinates, or query failed
	DefaultEnvScore       float64 // no coordinates or computation failed
	DefaultFloodScore     float64 // no coordinates
}

// CrimeConfig holds the incident-penalty constants.
type CrimeConfig struct {
	RadiusMeters    float64
	DecayK          float64
	HalfLifeDays    float64
	MaxPenalty      float64
	MaxAgeDays      float64
	SeverityWeights map[string]float64
	// TypeWeights scales the penalty by incident category; unknown types
	// fall back to DefaultTypeWeight.
	TypeWeights       map[string]float64
	DefaultTypeWeight float64
	DefaultSeverity   float64
}

// EnvConfig holds the point-of-interest bonus constants.
type EnvConfig struct {
	POIRadiusMeters float64
	BaseScore       float64
	BonusScale      float64
	// LiveabilityWeight and FloodWeight combine the amenity/noise result
	// with the flood sub-score.
	LiveabilityWeight    float64
	FloodWeight          float64
	HighRiskThreshold    float64
	HighRiskExtraPenalty float64
}

// NoiseConfig holds the transit-noise penalty constants.
type NoiseConfig struct {
	RadiusMeters float64
	MaxPenalty   float64
	DecayK       float64
}

// FloodConfig holds the flood-risk constants.
type FloodConfig struct {
	ReportRadiusMeters  float64
	ReportWindowDays    int
	DeepLevelCm         int
	ModerateLevelCm     int
	DeepPenalty         float64
	ModeratePenalty     float64
	ShallowPenalty      float64
	MaxReportPenalty    float64
	VeryLowElevationM   float64
	LowElevationM       float64
	VeryLowElevPenalty  float64
	LowElevPenalty      float64
}

// DefaultConfig returns the production scoring configuration.
func DefaultConfig() Config {
	return Config{
		Version: configVersion,

		UserWeight:  0.4,
		CrimeWeight: 0.4,
		EnvWeight:   0.2,

		OverrideCrimeWeight:    0.30,
		OverrideUserWeight:     0.20,
		OverrideEnvWeight:      0.20,
		OverrideOverrideWeight: 0.30,

		Crime: CrimeConfig{
			RadiusMeters: 5000,
			DecayK:       0.001,
			HalfLifeDays: 180,
			MaxPenalty:   40,
			MaxAgeDays:   730,
			SeverityWeights: map[string]float64{
				"low":    2,
				"medium": 5,
				"high":   10,
			},
			TypeWeights: map[string]float64{
				"robbery":    1.5,
				"harassment": 1.5,
				"theft":      1.0,
				"noise":      0.5,
				"other":      0.8,
			},
			DefaultTypeWeight: 1.0,
			DefaultSeverity:   2,
		},

		Env: EnvConfig{
			POIRadiusMeters:      1000,
			BaseScore:            5.0,
			BonusScale:           0.5,
			LiveabilityWeight:    0.6,
			FloodWeight:          0.4,
			HighRiskThreshold:    4.0,
			HighRiskExtraPenalty: 1.0,
		},

		Noise: NoiseConfig{
			RadiusMeters: 300,
			MaxPenalty:   3.0,
			DecayK:       0.008,
		},

		Flood: FloodConfig{
			ReportRadiusMeters: 200,
			ReportWindowDays:   730,
			DeepLevelCm:        50,
			ModerateLevelCm:    30,
			DeepPenalty:        2.0,
			ModeratePenalty:    1.0,
			ShallowPenalty:     0.5,
			MaxReportPenalty:   5.0,
			VeryLowElevationM:  2.0,
			LowElevationM:      5.0,
			VeryLowElevPenalty: 3.0,
			LowElevPenalty:     1.0,
		},

		DefaultUserScore:  8.0,
		FallbackUserScore: 5.0,
		DefaultCrimeScore: 10.0,
		DefaultEnvScore:   5.0,
		DefaultFloodScore: 10.0,
	}
}
