package service

import (
	"context"
	"time"

	agentdomain "inmo_crm_backend/internal/agents/domain"
	"inmo_crm_backend/internal/appointments/ports"
	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/appointments/transport"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Calendar loads the agent's slot grid and the day's appointments in parallel.
func (s *Service) Calendar(ctx context.Context, tenantID, agentID uuid.UUID, date string) (transport.CalendarResponse, error) {
	if _, err := time.Parse(agentdomain.DateLayout, date); err != nil {
		return transport.CalendarResponse{}, apperr.Validation(msgInvalidDate)
	}

	var (
		schedule ports.DaySchedule
		appts    []repository.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.slots == nil {
			return nil
		}
		var err error
		schedule, err = s.slots.GetAgentDaySchedule(gctx, tenantID, agentID, date)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.repo.ListForAgentDate(gctx, tenantID, agentID, date)
		if err != nil {
			return dbError("appointments.Calendar", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return transport.CalendarResponse{}, err
	}

	resp := transport.CalendarResponse{
		AgentID:      agentID,
		Date:         date,
		SlotMinutes:  schedule.SlotMinutes,
		Slots:        schedule.Slots,
		Appointments: make([]transport.AppointmentResponse, 0, len(appts)),
		Degraded:     schedule.Degraded,
	}
	if resp.Slots == nil {
		resp.Slots = []agentdomain.Slot{}
	}
	for _, a := range appts {
		resp.Appointments = append(resp.Appointments, toResponse(a))
	}
	return resp, nil
}
