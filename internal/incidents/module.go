// Package incidents bundles the security-incident context. Intake is
// admin-only; scoring reads the rows directly.
package incidents

import (
	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/internal/incidents/handler"
	"homesafe_backend/internal/incidents/repository"
	"homesafe_backend/internal/incidents/service"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/logger"
	"homesafe_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(q db.Querier, guard service.PropertyGuard, locator service.PropertyLocator, trigger service.RecomputeTrigger, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(q)
	svc := service.New(repo, guard, locator, trigger, log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "incidents" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/incidents", m.handler.Create)
}
