// Package subscription administers the module catalog, plans and verticals.
package subscription

import (
	"fmt"

	"inmo_crm_backend/internal/events"
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/internal/subscription/cache"
	"inmo_crm_backend/internal/subscription/domain"
	"inmo_crm_backend/internal/subscription/handler"
	"inmo_crm_backend/internal/subscription/repository"
	"inmo_crm_backend/internal/subscription/service"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule reads modules through Redis when redisClient is non-nil.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, redisClient *redis.Client, cfg config.CacheConfig, bus events.Bus, log *logger.Logger) (*Module, error) {
	catalog, err := domain.DefaultLimitsCatalog()
	if err != nil {
		return nil, fmt.Errorf("load limits catalog: %w", err)
	}

	var moduleCache service.ModuleCache
	if redisClient != nil && cfg.GetCatalogCacheTTL() > 0 {
		moduleCache = cache.NewModuleCache(redisClient, cfg.GetCatalogCacheTTL())
	}

	svc := service.New(repository.New(pool), moduleCache, catalog, bus, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

func (m *Module) Name() string {
	return "subscription"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
