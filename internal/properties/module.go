// Package properties provides the property bounded context: the local cache
// of the system of record, just-in-time sync, and the safety-score
// read-through endpoint.
package properties

import (
	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/internal/properties/client"
	"homesafe_backend/internal/properties/handler"
	"homesafe_backend/internal/properties/repository"
	"homesafe_backend/internal/properties/service"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/logger"
	"homesafe_backend/platform/validator"
)

// Module is the properties bounded context module.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// NewModule creates and initializes the properties module. The score reader,
// recomputer and trigger come from the scoring wiring in the composition root.
func NewModule(
	q db.Querier,
	cfg config.CoreSyncConfig,
	scores service.ScoreReader,
	scorer service.Recomputer,
	trigger service.RecomputeTrigger,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(q)
	coreClient := client.New(cfg, log)
	svc := service.New(repo, coreClient, scores, scorer, trigger, log)

	return &Module{
		svc:     svc,
		handler: handler.New(svc, val),
	}
}

func (m *Module) Name() string { return "properties" }

// RegisterRoutes mounts the property routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/properties/:id/safety", m.handler.GetSafety)
	ctx.Internal.POST("/sync/property", m.handler.Sync)
	ctx.Admin.GET("/properties-search", m.handler.Search)
}

// Service exposes the property service to sibling modules (JIT sync guard,
// neighbor lookups).
func (m *Module) Service() *service.Service {
	return m.svc
}
