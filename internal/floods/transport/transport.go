// Package transport defines the request/response DTOs for the flood report API.
package transport

import "time"

// CreateFloodReportRequest records an observed flood at a point.
// WaterLevelCm is the standing water depth in centimeters.
type CreateFloodReportRequest struct {
	Latitude     float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	WaterLevelCm int     `json:"water_level_cm" validate:"required,gt=0,lte=1000"`
	Description  string  `json:"description" validate:"max=1000"`
}

// HistoryQuery returns recent reports around a point.
type HistoryQuery struct {
	Latitude  float64 `form:"lat" validate:"required,gte=-90,lte=90"`
	Longitude float64 `form:"lng" validate:"required,gte=-180,lte=180"`
}

// FloodReportItem is one report in a history listing.
type FloodReportItem struct {
	ID           int64     `json:"id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	WaterLevelCm int       `json:"water_level_cm"`
	Description  string    `json:"description,omitempty"`
	ReportedAt   time.Time `json:"reported_at"`
}
