// Package properties manages the tenant's listings.
package properties

import (
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/internal/properties/handler"
	"inmo_crm_backend/internal/properties/repository"
	"inmo_crm_backend/internal/properties/service"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator, agents service.AgentChecker, cfg config.ListingConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), agents, cfg.GetPublicListingBaseURL(), log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "properties"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/properties"))
}

var _ apphttp.Module = (*Module)(nil)
