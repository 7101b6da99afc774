package service

import (
	"context"
	"errors"
	"time"

	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/appointments/transport"
	"inmo_crm_backend/internal/email"

	"github.com/google/uuid"
)

// SendAppointmentReminder emails the lead ahead of a pending appointment.
// Missing, cancelled or completed appointments are skipped without error
// so the task is not retried.
func (s *Service) SendAppointmentReminder(ctx context.Context, tenantID, appointmentID uuid.UUID) error {
	nc, ok, err := s.notificationContext(ctx, tenantID, appointmentID)
	if err != nil || !ok {
		return err
	}
	// A reschedule leaves the earlier task queued; it fires too early and is dropped.
	if start, err := s.startsAt(nc.Appointment.Date, nc.Appointment.Time); err == nil && start.Sub(s.now()) > reminderLeadTime+time.Hour {
		return nil
	}
	if nc.Lead.Email == nil || *nc.Lead.Email == "" {
		s.log.WithContext(ctx).Info("reminder skipped, lead has no email", "appointmentId", appointmentID)
		return nil
	}

	details := detailsFor(nc, nc.Lead.Name)
	return s.sender.SendAppointmentReminder(ctx, *nc.Lead.Email, details)
}

// SendFollowUpReminder emails the assigned agent on the follow-up date.
func (s *Service) SendFollowUpReminder(ctx context.Context, tenantID, appointmentID uuid.UUID) error {
	nc, ok, err := s.notificationContext(ctx, tenantID, appointmentID)
	if err != nil || !ok {
		return err
	}
	if nc.Agent == nil || nc.Agent.Email == nil || *nc.Agent.Email == "" {
		s.log.WithContext(ctx).Info("follow-up skipped, no agent email", "appointmentId", appointmentID)
		return nil
	}

	details := detailsFor(nc, nc.Agent.Name)
	if nc.Appointment.FollowUpNotes != nil {
		details.Notes = *nc.Appointment.FollowUpNotes
	}
	return s.sender.SendFollowUpReminder(ctx, *nc.Agent.Email, details)
}

func (s *Service) notificationContext(ctx context.Context, tenantID, appointmentID uuid.UUID) (repository.NotificationContext, bool, error) {
	nc, err := s.repo.GetNotificationContext(ctx, appointmentID, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.NotificationContext{}, false, nil
	}
	if err != nil {
		return repository.NotificationContext{}, false, err
	}
	switch nc.Appointment.Status {
	case transport.StatusCancelled, transport.StatusCompleted:
		return repository.NotificationContext{}, false, nil
	}
	return nc, true, nil
}

func detailsFor(nc repository.NotificationContext, recipient string) email.AppointmentDetails {
	details := email.AppointmentDetails{
		RecipientName: recipient,
		LeadName:      nc.Lead.Name,
		Date:          nc.Appointment.Date,
		Time:          nc.Appointment.Time,
		Location:      derefString(nc.Appointment.Location),
		Notes:         derefString(nc.Appointment.Notes),
	}
	if nc.Agent != nil {
		details.AgentName = nc.Agent.Name
	}
	return details
}
