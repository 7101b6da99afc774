// Package ports declares what the appointments module needs from leads and agents.
package ports

import (
	"context"
	"errors"

	agentdomain "inmo_crm_backend/internal/agents/domain"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

// LeadContact is the part of a lead an appointment needs.
type LeadContact struct {
	ID      uuid.UUID
	Name    string
	Email   *string
	AgentID *uuid.UUID
}

// LeadReader returns ErrLeadNotFound when the lead is missing or belongs to another tenant.
type LeadReader interface {
	GetLeadContact(ctx context.Context, tenantID, leadID uuid.UUID) (LeadContact, error)
}

type AgentChecker interface {
	Exists(ctx context.Context, tenantID, agentID uuid.UUID) (bool, error)
}

// DaySchedule is an agent's slot grid on one date.
type DaySchedule struct {
	SlotMinutes int
	Slots       []agentdomain.Slot
	Degraded    bool
}

type SlotProvider interface {
	GetAgentDaySchedule(ctx context.Context, tenantID, agentID uuid.UUID, date string) (DaySchedule, error)
}
