package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"inmo_crm_backend/internal/agents/domain"
	"inmo_crm_backend/internal/agents/repository"
	"inmo_crm_backend/internal/agents/transport"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/phone"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgAgentNotFound = "agente no encontrado"
	msgDatabase      = "no se pudo completar la operación"
	msgInvalidDate   = "fecha no válida, usa YYYY-MM-DD"

	CodeAgentNotFound = "AGENT_NOT_FOUND"
)

// Repository is the agent persistence the service depends on.
type Repository interface {
	Create(ctx context.Context, a repository.Agent) (repository.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (repository.Agent, error)
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]repository.Agent, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Agent, error)
	Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params repository.UpdateParams) (repository.Agent, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, availability domain.Availability) error
	GetAvailability(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (domain.Availability, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// BookingReader lists the non-cancelled appointments of an agent on a date.
type BookingReader interface {
	ListAgentBookings(ctx context.Context, tenantID, agentID uuid.UUID, date string) ([]domain.Booking, error)
}

type Service struct {
	repo        Repository
	bookings    BookingReader
	slotMinutes int
	phoneRegion string
	log         *logger.Logger
}

func New(repo Repository, slotMinutes int, phoneRegion string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	if slotMinutes <= 0 {
		slotMinutes = 60
	}
	return &Service{repo: repo, slotMinutes: slotMinutes, phoneRegion: phoneRegion, log: log}
}

// SetBookingReader wires appointment lookups after both modules exist.
func (s *Service) SetBookingReader(bookings BookingReader) {
	s.bookings = bookings
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateAgentRequest) (transport.AgentResponse, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	agent := repository.Agent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      sanitize.Text(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     nonEmpty(phone.NormalizeE164(req.Phone, s.phoneRegion)),
		AvatarURL: nonEmpty(req.AvatarURL),
		Bio:       nonEmpty(sanitize.Text(req.Bio)),
		Metadata:  req.Metadata,
		Active:    active,
	}

	created, err := s.repo.Create(ctx, agent)
	if err != nil {
		return transport.AgentResponse{}, dbError("agents.Create", err)
	}
	return toResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.AgentResponse, error) {
	agent, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.AgentResponse{}, mapRepoError("agents.GetByID", err)
	}
	return toResponse(agent), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListAgentsRequest) (transport.AgentListResponse, error) {
	agents, err := s.repo.List(ctx, repository.ListParams{TenantID: tenantID, Active: req.Active, Search: strings.TrimSpace(req.Search)})
	if err != nil {
		return transport.AgentListResponse{}, dbError("agents.List", err)
	}

	items := make([]transport.AgentResponse, 0, len(agents))
	for _, a := range agents {
		items = append(items, toResponse(a))
	}
	return transport.AgentListResponse{Items: items}, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateAgentRequest) (transport.AgentResponse, error) {
	params := repository.UpdateParams{
		Name:      sanitize.TextPtr(req.Name),
		Email:     lowerPtr(req.Email),
		Phone:     phone.NormalizePtr(req.Phone, s.phoneRegion),
		AvatarURL: req.AvatarURL,
		Bio:       sanitize.TextPtr(req.Bio),
		Metadata:  req.Metadata,
		Active:    req.Active,
	}

	agent, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.AgentResponse{}, mapRepoError("agents.Update", err)
	}
	return toResponse(agent), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, tenantID); err != nil {
		return mapRepoError("agents.Delete", err)
	}
	return nil
}

func (s *Service) GetAvailability(ctx context.Context, tenantID, id uuid.UUID) (transport.AvailabilityResponse, error) {
	av, err := s.repo.GetAvailability(ctx, id, tenantID)
	if err != nil {
		return transport.AvailabilityResponse{}, mapRepoError("agents.GetAvailability", err)
	}
	return transport.AvailabilityResponse{AgentID: id, Availability: av}, nil
}

func (s *Service) UpdateAvailability(ctx context.Context, tenantID, id uuid.UUID, availability domain.Availability) (transport.AvailabilityResponse, error) {
	if err := availability.Validate(); err != nil {
		return transport.AvailabilityResponse{}, apperr.Validation(err.Error())
	}

	normalized := availability.Normalize()
	if err := s.repo.UpdateAvailability(ctx, id, tenantID, normalized); err != nil {
		return transport.AvailabilityResponse{}, mapRepoError("agents.UpdateAvailability", err)
	}
	return transport.AvailabilityResponse{AgentID: id, Availability: normalized}, nil
}

// GetAgentDaySlots builds the agent's slots for date with booked slots marked.
// A failed availability read yields an empty, degraded day.
func (s *Service) GetAgentDaySlots(ctx context.Context, tenantID, agentID uuid.UUID, date string) (transport.DaySlotsResponse, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return transport.DaySlotsResponse{}, apperr.Validation(msgInvalidDate)
	}

	resp := transport.DaySlotsResponse{AgentID: agentID, Date: date, SlotMinutes: s.slotMinutes, Slots: []domain.Slot{}}

	av, err := s.repo.GetAvailability(ctx, agentID, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.DaySlotsResponse{}, apperr.NotFound(msgAgentNotFound).WithCode(CodeAgentNotFound)
	}
	if err != nil {
		s.log.WithContext(ctx).Degraded("agents.GetAgentDaySlots.availability", err)
		resp.Degraded = true
		return resp, nil
	}

	var bookings []domain.Booking
	if s.bookings != nil {
		bookings, err = s.bookings.ListAgentBookings(ctx, tenantID, agentID, date)
		if err != nil {
			return transport.DaySlotsResponse{}, dbError("agents.GetAgentDaySlots.bookings", err)
		}
	}

	resp.Slots = domain.GenerateDaySlots(av, day, s.slotMinutes, bookings)
	return resp, nil
}

// Lookup returns raw agent rows for other modules.
func (s *Service) Lookup(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]repository.Agent, error) {
	return s.repo.GetByIDs(ctx, tenantID, ids)
}

// Exists reports whether agentID is an active agent of the tenant.
func (s *Service) Exists(ctx context.Context, tenantID, agentID uuid.UUID) (bool, error) {
	agent, err := s.repo.GetByID(ctx, agentID, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return agent.Active, nil
}

func toResponse(a repository.Agent) transport.AgentResponse {
	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return transport.AgentResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		AvatarURL: a.AvatarURL,
		Bio:       a.Bio,
		Metadata:  metadata,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgAgentNotFound).WithCode(CodeAgentNotFound)
	}
	return dbError(op, err)
}

func dbError(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, msgDatabase, err).WithOp(op)
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}
