package adapters

import (
	"context"

	"inmo_crm_backend/internal/notification"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// NotificationContacts resolves lead and agent contact data for outgoing messages.
type NotificationContacts struct {
	leads  LeadFetcher
	agents AgentLookup
}

func NewNotificationContacts(leads LeadFetcher, agents AgentLookup) *NotificationContacts {
	return &NotificationContacts{leads: leads, agents: agents}
}

func (c *NotificationContacts) LeadContact(ctx context.Context, tenantID, leadID uuid.UUID) (notification.Contact, error) {
	lead, err := c.leads.GetByID(ctx, tenantID, leadID)
	if apperr.Is(err, apperr.KindNotFound) {
		return notification.Contact{}, notification.ErrContactNotFound
	}
	if err != nil {
		return notification.Contact{}, err
	}
	return notification.Contact{
		Name:  lead.Name,
		Email: deref(lead.Email),
		Phone: deref(lead.Phone),
		Stage: lead.Stage,
	}, nil
}

func (c *NotificationContacts) AgentContact(ctx context.Context, tenantID, agentID uuid.UUID) (notification.Contact, error) {
	rows, err := c.agents.Lookup(ctx, tenantID, []uuid.UUID{agentID})
	if err != nil {
		return notification.Contact{}, err
	}
	for _, row := range rows {
		if row.ID == agentID {
			return notification.Contact{Name: row.Name, Email: row.Email, Phone: deref(row.Phone)}, nil
		}
	}
	return notification.Contact{}, notification.ErrContactNotFound
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
