// Package agents manages the tenant's sales agents and their weekly
// availability.
package agents

import (
	"inmo_crm_backend/internal/agents/handler"
	"inmo_crm_backend/internal/agents/repository"
	"inmo_crm_backend/internal/agents/service"
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is the configuration the agents module reads.
type ModuleConfig interface {
	config.CalendarConfig
	config.PhoneConfig
}

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), cfg.GetSlotMinutes(), cfg.GetPhoneDefaultRegion(), log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "agents"
}

// Service exposes agent lookups and day slots to other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/agents"))
}

var _ apphttp.Module = (*Module)(nil)
