// Package leads is the lead tracking module: CRUD, stage transitions and the
// sales funnel board.
package leads

import (
	"inmo_crm_backend/internal/events"
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/internal/leads/handler"
	"inmo_crm_backend/internal/leads/management"
	"inmo_crm_backend/internal/leads/ports"
	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type Module struct {
	handler    *handler.Handler
	management *management.Service
}

// NewModule wires the leads module. agents resolves funnel members and
// validates assignments.
func NewModule(pool *pgxpool.Pool, agents ports.AgentDirectory, eventBus events.Bus, val *validator.Validator, cfg config.PhoneConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := management.New(repo, agents, eventBus, log, cfg.GetPhoneDefaultRegion())

	return &Module{
		handler:    handler.New(svc, val),
		management: svc,
	}
}

func (m *Module) Name() string {
	return "leads"
}

// ManagementService exposes the service to other modules.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// Collectors returns the module metrics for the /metrics registry.
func (m *Module) Collectors() []prometheus.Collector {
	return m.management.Collectors()
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
