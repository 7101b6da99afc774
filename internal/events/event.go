// Package events defines the domain events exchanged between modules.
// The bus itself lives in platform/events.
package events

import (
	"inmo_crm_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads
// =============================================================================

type LeadCreated struct {
	BaseEvent
	LeadID  uuid.UUID  `json:"leadId"`
	AgentID *uuid.UUID `json:"agentId,omitempty"`
	Source  string     `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published after a stage write succeeded.
type LeadStageChanged struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	ActorID       uuid.UUID `json:"actorId"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

type LeadAssigned struct {
	BaseEvent
	LeadID  uuid.UUID  `json:"leadId"`
	AgentID *uuid.UUID `json:"agentId,omitempty"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// =============================================================================
// Appointments
// =============================================================================

type AppointmentScheduled struct {
	BaseEvent
	AppointmentID uuid.UUID  `json:"appointmentId"`
	LeadID        uuid.UUID  `json:"leadId"`
	AgentID       *uuid.UUID `json:"agentId,omitempty"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
}

func (e AppointmentScheduled) EventName() string { return "appointments.appointment.scheduled" }

type AppointmentStatusChanged struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	LeadID        uuid.UUID `json:"leadId"`
	Status        string    `json:"status"`
}

func (e AppointmentStatusChanged) EventName() string {
	return "appointments.appointment.status_changed"
}

// =============================================================================
// Subscription
// =============================================================================

// PlanModulesChanged is published when a plan's assignment set changes.
type PlanModulesChanged struct {
	BaseEvent
	PlanID     uuid.UUID `json:"planId"`
	Assigned   []string  `json:"assigned,omitempty"`
	Unassigned []string  `json:"unassigned,omitempty"`
}

func (e PlanModulesChanged) EventName() string { return "subscription.plan.modules_changed" }
