// Package transport defines the request/response DTOs for the properties API.
package transport

import "time"

// SyncPropertyRequest is the push payload from the system of record.
// Field names follow the upstream API contract.
type SyncPropertyRequest struct {
	ID             int64    `json:"id" validate:"required,gt=0"`
	Title          string   `json:"title"`
	AddressDetails *string  `json:"addressDetails"`
	Ward           *string  `json:"ward"`
	District       *string  `json:"district"`
	City           *string  `json:"city"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// SafetyScoreResponse is the read-through score payload.
type SafetyScoreResponse struct {
	PropertyID    int64      `json:"property_id"`
	SafetyScore   float64    `json:"safety_score"`
	CrimeScore    float64    `json:"crime_score"`
	UserScore     float64    `json:"user_score"`
	EnvScore      float64    `json:"env_score"`
	AISummary     *string    `json:"ai_summary,omitempty"`
	ConfigVersion string     `json:"config_version"`
	ComputedAt    *time.Time `json:"computed_at,omitempty"`
}

// SearchQuery supports name search or radius search, not both at once.
type SearchQuery struct {
	Q       string   `form:"q"`
	Lat     *float64 `form:"lat"`
	Lng     *float64 `form:"lng"`
	RadiusM float64  `form:"radius_m,default=2000"`
	Limit   int      `form:"limit,default=20"`
}

// PropertySummary is a search hit for admin dropdowns.
type PropertySummary struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	DistanceM *float64 `json:"distance_m,omitempty"`
}
