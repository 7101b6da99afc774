package adapters

import (
	"context"

	agenttransport "inmo_crm_backend/internal/agents/transport"
	"inmo_crm_backend/internal/appointments/ports"
	leadtransport "inmo_crm_backend/internal/leads/transport"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// LeadFetcher is the lead management read the appointments module needs.
type LeadFetcher interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (leadtransport.LeadResponse, error)
}

// AppointmentLeadReader exposes lead contact data to appointments.
type AppointmentLeadReader struct {
	leads LeadFetcher
}

func NewAppointmentLeadReader(leads LeadFetcher) *AppointmentLeadReader {
	return &AppointmentLeadReader{leads: leads}
}

func (r *AppointmentLeadReader) GetLeadContact(ctx context.Context, tenantID, leadID uuid.UUID) (ports.LeadContact, error) {
	lead, err := r.leads.GetByID(ctx, tenantID, leadID)
	if apperr.Is(err, apperr.KindNotFound) {
		return ports.LeadContact{}, ports.ErrLeadNotFound
	}
	if err != nil {
		return ports.LeadContact{}, err
	}
	return ports.LeadContact{ID: lead.ID, Name: lead.Name, Email: lead.Email, AgentID: lead.AgentID}, nil
}

// DaySlotter is the agents service slot grid.
type DaySlotter interface {
	GetAgentDaySlots(ctx context.Context, tenantID, agentID uuid.UUID, date string) (agenttransport.DaySlotsResponse, error)
}

// AppointmentSlotProvider feeds the appointments calendar from agent availability.
type AppointmentSlotProvider struct {
	agents DaySlotter
}

func NewAppointmentSlotProvider(agents DaySlotter) *AppointmentSlotProvider {
	return &AppointmentSlotProvider{agents: agents}
}

func (p *AppointmentSlotProvider) GetAgentDaySchedule(ctx context.Context, tenantID, agentID uuid.UUID, date string) (ports.DaySchedule, error) {
	day, err := p.agents.GetAgentDaySlots(ctx, tenantID, agentID, date)
	if err != nil {
		return ports.DaySchedule{}, err
	}
	return ports.DaySchedule{SlotMinutes: day.SlotMinutes, Slots: day.Slots, Degraded: day.Degraded}, nil
}
