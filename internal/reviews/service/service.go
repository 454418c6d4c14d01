// Package service implements review submission, listing and deletion with
// score recompute triggers.
package service

import (
	"context"
	"strings"

	prepo "homesafe_backend/internal/properties/repository"
	"homesafe_backend/internal/reviews/repository"
	"homesafe_backend/internal/reviews/transport"
	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/logger"
)

// ReviewStore is the persistence surface the service needs.
type ReviewStore interface {
	Upsert(ctx context.Context, p repository.UpsertParams) error
	ListByProperty(ctx context.Context, propertyID int64, limit, offset int) ([]repository.Review, error)
	CountByProperty(ctx context.Context, propertyID int64) (int, error)
	Delete(ctx context.Context, propertyID, userID int64) (bool, error)
}

// PropertyGuard JIT-syncs the target property before a dependent write.
type PropertyGuard interface {
	EnsureExists(ctx context.Context, id int64) (*prepo.Property, error)
}

// RecomputeTrigger schedules an asynchronous score recompute.
type RecomputeTrigger interface {
	RecomputeAsync(propertyID int64)
}

type Service struct {
	repo    ReviewStore
	guard   PropertyGuard
	trigger RecomputeTrigger
	log     *logger.Logger
}

func New(repo ReviewStore, guard PropertyGuard, trigger RecomputeTrigger, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, trigger: trigger, log: log}
}

// Submit creates or replaces the caller's review. The property is JIT-synced
// first so the foreign key cannot dangle; a property unknown to the system of
// record blocks the write with a typed not-found error.
func (s *Service) Submit(ctx context.Context, userID int64, req transport.SubmitReviewRequest) error {
	if _, err := s.guard.EnsureExists(ctx, req.PropertyID); err != nil {
		return err
	}

	err := s.repo.Upsert(ctx, repository.UpsertParams{
		PropertyID:        req.PropertyID,
		UserID:            userID,
		ReviewerName:      strings.TrimSpace(req.ReviewerName),
		SafetyRating:      clampRating(req.SafetyRating),
		CleanlinessRating: clampRating(req.CleanlinessRating),
		AmenitiesRating:   clampRating(req.AmenitiesRating),
		HostRating:        clampRating(req.HostRating),
		Comment:           strings.TrimSpace(req.Comment),
	})
	if err != nil {
		return err
	}

	if s.trigger != nil {
		s.trigger.RecomputeAsync(req.PropertyID)
	}
	return nil
}

// List returns a page of the property's reviews with reviewer names
// anonymized, except for rows belonging to the viewer (0 = anonymous viewer).
func (s *Service) List(ctx context.Context, viewerID int64, q transport.ListQuery) (transport.ListResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	offset := (page - 1) * limit

	rows, err := s.repo.ListByProperty(ctx, q.PropertyID, limit, offset)
	if err != nil {
		return transport.ListResponse{}, err
	}
	total, err := s.repo.CountByProperty(ctx, q.PropertyID)
	if err != nil {
		return transport.ListResponse{}, err
	}

	items := make([]transport.ReviewItem, 0, len(rows))
	for _, rv := range rows {
		own := viewerID != 0 && rv.UserID == viewerID
		name := rv.ReviewerName
		if !own {
			name = anonymizeName(name)
		}
		items = append(items, transport.ReviewItem{
			PropertyID:        rv.PropertyID,
			ReviewerName:      name,
			SafetyRating:      rv.SafetyRating,
			CleanlinessRating: rv.CleanlinessRating,
			AmenitiesRating:   rv.AmenitiesRating,
			HostRating:        rv.HostRating,
			Comment:           rv.Comment,
			CreatedAt:         rv.CreatedAt,
			Own:               own,
		})
	}

	return transport.ListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Delete removes exactly the caller's own review and triggers a recompute.
func (s *Service) Delete(ctx context.Context, userID, propertyID int64) error {
	deleted, err := s.repo.Delete(ctx, propertyID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("review not found")
	}

	if s.trigger != nil {
		s.trigger.RecomputeAsync(propertyID)
	}
	return nil
}

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// anonymizeName keeps the first rune of each word. Empty names become a
// generic label.
func anonymizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Anonymous"
	}
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		words[i] = string(runes[0]) + strings.Repeat("*", max(len(runes)-1, 2))
	}
	return strings.Join(words, " ")
}
