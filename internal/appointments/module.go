// Package appointments provides the appointments domain module.
package appointments

import (
	"time"

	"inmo_crm_backend/internal/appointments/handler"
	"inmo_crm_backend/internal/appointments/ports"
	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/appointments/service"
	"inmo_crm_backend/internal/email"
	"inmo_crm_backend/internal/events"
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/internal/scheduler"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is the configuration the appointments module reads.
type ModuleConfig interface {
	config.CalendarConfig
	GetFollowUpReminderHour() int
}

// Dependencies are the collaborators owned by other modules.
type Dependencies struct {
	Leads     ports.LeadReader
	Agents    ports.AgentChecker
	Slots     ports.SlotProvider
	Sender    email.Sender
	Reminders scheduler.ReminderScheduler
	Bus       events.Bus
}

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg ModuleConfig, deps Dependencies, log *logger.Logger) *Module {
	location, err := time.LoadLocation(cfg.GetCalendarTimezone())
	if err != nil {
		location = time.UTC
	}

	svc := service.New(service.Deps{
		Repo:      repository.New(pool),
		Leads:     deps.Leads,
		Agents:    deps.Agents,
		Slots:     deps.Slots,
		Sender:    deps.Sender,
		Reminders: deps.Reminders,
		Bus:       deps.Bus,
		Log:       log,
	}, service.Options{
		Location:       location,
		FollowUpHour:   cfg.GetFollowUpReminderHour(),
		DefaultMinutes: cfg.GetSlotMinutes(),
	})

	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "appointments"
}

// Service exposes bookings to the agents module and notifications to the scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/appointments"))
}

var _ apphttp.Module = (*Module)(nil)
