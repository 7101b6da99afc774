// Package notification reacts to domain events with outbound messages.
// Domain modules publish events and never talk to the mailer directly.
package notification

import (
	"context"
	"errors"
	"io"

	"inmo_crm_backend/internal/email"
	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrContactNotFound is returned by ContactReader when the row is gone.
var ErrContactNotFound = errors.New("contact not found")

// Contact is the minimum a message needs about a person.
type Contact struct {
	Name  string
	Email string
	Phone string
	Stage string
}

type ContactReader interface {
	LeadContact(ctx context.Context, tenantID, leadID uuid.UUID) (Contact, error)
	AgentContact(ctx context.Context, tenantID, agentID uuid.UUID) (Contact, error)
}

type Module struct {
	sender   email.Sender
	contacts ContactReader
	log      *logger.Logger
}

func New(sender email.Sender, contacts ContactReader, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	return &Module{sender: sender, contacts: contacts, log: log}
}

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.PlanModulesChanged{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.PlanModulesChanged:
		m.log.WithContext(ctx).Info("plan modules changed",
			"plan_id", e.PlanID.String(),
			"assigned", e.Assigned,
			"unassigned", e.Unassigned,
		)
		return nil
	default:
		return nil
	}
}

// handleLeadAssigned mails the new agent. Unassignment and agents without
// an address are skipped.
func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	if e.AgentID == nil {
		return nil
	}
	log := m.log.WithContext(ctx).WithTenant(e.TenantID.String())

	agent, err := m.contacts.AgentContact(ctx, e.TenantID, *e.AgentID)
	if errors.Is(err, ErrContactNotFound) {
		log.Warn("assigned agent not found", "agent_id", e.AgentID.String())
		return nil
	}
	if err != nil {
		return err
	}
	if agent.Email == "" {
		return nil
	}

	lead, err := m.contacts.LeadContact(ctx, e.TenantID, e.LeadID)
	if errors.Is(err, ErrContactNotFound) {
		log.Warn("assigned lead not found", "lead_id", e.LeadID.String())
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.sender.SendLeadAssigned(ctx, agent.Email, email.LeadAssignmentDetails{
		RecipientName: agent.Name,
		LeadName:      lead.Name,
		LeadEmail:     lead.Email,
		LeadPhone:     lead.Phone,
		Stage:         lead.Stage,
	}); err != nil {
		log.Error("failed to send lead assignment email", "lead_id", e.LeadID.String(), "error", err)
		return err
	}
	return nil
}

var _ events.Handler = (*Module)(nil)
