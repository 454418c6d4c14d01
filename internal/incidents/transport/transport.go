// Package transport defines the request DTOs for the admin incident API.
package transport

import "time"

// CreateIncidentRequest records a security incident. It must be attributed
// to a property OR carry its own coordinates for area-wide events; neither
// is a validation error caught at the service layer.
type CreateIncidentRequest struct {
	PropertyID   int64    `json:"property_id" validate:"omitempty,gt=0"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Severity     string   `json:"severity" validate:"required,oneof=low medium high"`
	IncidentType string   `json:"incident_type" validate:"required,max=100"`
	IncidentDate string   `json:"incident_date" validate:"required"`
	Notes        string   `json:"notes" validate:"max=2000"`
}

// IncidentResponse echoes the stored incident.
type IncidentResponse struct {
	ID           int64     `json:"id"`
	PropertyID   int64     `json:"property_id,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Severity     string    `json:"severity"`
	IncidentType string    `json:"incident_type"`
	IncidentDate time.Time `json:"incident_date"`
}
