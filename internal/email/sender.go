// Package email delivers transactional messages about appointments.
package email

import (
	"context"

	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/logger"
)

// AppointmentDetails is what every appointment message renders.
type AppointmentDetails struct {
	RecipientName string
	LeadName      string
	AgentName     string
	Date          string
	Time          string
	Location      string
	Notes         string
}

// LeadAssignmentDetails is rendered for the agent who received a lead.
type LeadAssignmentDetails struct {
	RecipientName string
	LeadName      string
	LeadEmail     string
	LeadPhone     string
	Stage         string
}

type Sender interface {
	SendAppointmentConfirmation(ctx context.Context, toEmail string, details AppointmentDetails) error
	SendAppointmentReminder(ctx context.Context, toEmail string, details AppointmentDetails) error
	SendFollowUpReminder(ctx context.Context, toEmail string, details AppointmentDetails) error
	SendLeadAssigned(ctx context.Context, toEmail string, details LeadAssignmentDetails) error
}

// NoopSender drops every message; it is used when SMTP is not configured.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) NoopSender {
	return NoopSender{log: log}
}

func (n NoopSender) skip(kind, toEmail string) error {
	if n.log != nil {
		n.log.Debug("email delivery disabled", "kind", kind, "to", toEmail)
	}
	return nil
}

func (n NoopSender) SendAppointmentConfirmation(_ context.Context, toEmail string, _ AppointmentDetails) error {
	return n.skip("appointment_confirmation", toEmail)
}

func (n NoopSender) SendAppointmentReminder(_ context.Context, toEmail string, _ AppointmentDetails) error {
	return n.skip("appointment_reminder", toEmail)
}

func (n NoopSender) SendFollowUpReminder(_ context.Context, toEmail string, _ AppointmentDetails) error {
	return n.skip("follow_up_reminder", toEmail)
}

func (n NoopSender) SendLeadAssigned(_ context.Context, toEmail string, _ LeadAssignmentDetails) error {
	return n.skip("lead_assigned", toEmail)
}

// NewSender returns the SMTP sender when email is enabled, otherwise a NoopSender.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return NewNoopSender(log)
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
