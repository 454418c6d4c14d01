// Package reviews bundles the review context: handlers, service and
// persistence for per-property guest reviews.
package reviews

import (
	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/internal/reviews/handler"
	"homesafe_backend/internal/reviews/repository"
	"homesafe_backend/internal/reviews/service"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/httpkit"
	"homesafe_backend/platform/logger"
	"homesafe_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(q db.Querier, guard service.PropertyGuard, trigger service.RecomputeTrigger, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(q)
	svc := service.New(repo, guard, trigger, log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "reviews" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Listing is public but honors a bearer token when present so callers
	// can see their own review unmasked.
	ctx.V1.GET("/reviews", httpkit.AuthOptional(ctx.Config), m.handler.List)

	ctx.Protected.POST("/reviews", m.handler.Submit)
	ctx.Protected.DELETE("/reviews/:propertyId", m.handler.Delete)
}
