// Package http assembles the gin engine from the domain modules.
package http

import (
	"context"

	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/tenant"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/httpkit"
	"inmo_crm_backend/platform/logger"
)

// RouterConfig combines the config views the router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is filled in by cmd/api and handed to router.New.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Tenants  *tenant.Resolver
	Metrics  *httpkit.Metrics
	Modules  []Module
}
