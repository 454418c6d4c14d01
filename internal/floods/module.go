// Package floods bundles the flood-report context: intake, nearby history
// and the recompute fan-out for affected properties.
package floods

import (
	"homesafe_backend/internal/floods/handler"
	"homesafe_backend/internal/floods/repository"
	"homesafe_backend/internal/floods/service"
	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/logger"
	"homesafe_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(q db.Querier, properties service.PropertyLocator, trigger service.RecomputeTrigger, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(q)
	svc := service.New(repo, properties, trigger, log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "floods" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/flood-reports", m.handler.History)
	ctx.Protected.POST("/flood-reports", m.handler.Report)
}
