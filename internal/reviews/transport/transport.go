// Package transport defines the request/response DTOs for the reviews API.
package transport

import "time"

// SubmitReviewRequest creates or replaces the caller's review of a property.
// Ratings outside 1-5 are clamped, not rejected.
type SubmitReviewRequest struct {
	PropertyID        int64  `json:"property_id" validate:"required,gt=0"`
	SafetyRating      int    `json:"safety_rating" validate:"required"`
	CleanlinessRating int    `json:"cleanliness_rating" validate:"required"`
	AmenitiesRating   int    `json:"amenities_rating" validate:"required"`
	HostRating        int    `json:"host_rating" validate:"required"`
	ReviewerName      string `json:"reviewer_name"`
	Comment           string `json:"comment" validate:"max=2000"`
}

// ListQuery pages through a property's reviews, newest first.
type ListQuery struct {
	PropertyID int64 `form:"property_id" validate:"required,gt=0"`
	Page       int   `form:"page,default=1"`
	Limit      int   `form:"limit,default=10"`
}

// ReviewItem is one review in a listing. ReviewerName is anonymized unless
// the row belongs to the viewer.
type ReviewItem struct {
	PropertyID        int64     `json:"property_id"`
	ReviewerName      string    `json:"reviewer_name"`
	SafetyRating      int       `json:"safety_rating"`
	CleanlinessRating int       `json:"cleanliness_rating"`
	AmenitiesRating   int       `json:"amenities_rating"`
	HostRating        int       `json:"host_rating"`
	Comment           string    `json:"comment"`
	CreatedAt         time.Time `json:"created_at"`
	Own               bool      `json:"own"`
}

// ListResponse is a page of reviews with the total row count.
type ListResponse struct {
	Items []ReviewItem `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
