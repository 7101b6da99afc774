package service

import (
	"context"
	"testing"
	"time"

	agentdomain "inmo_crm_backend/internal/agents/domain"
	"inmo_crm_backend/internal/appointments/ports"
	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/appointments/transport"
	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	sender    *fakeSender
	reminders *fakeReminders
	bus       *captureBus
	tenantID  uuid.UUID
	leadID    uuid.UUID
	agentID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newFakeRepo(),
		sender:    &fakeSender{},
		reminders: &fakeReminders{},
		bus:       &captureBus{},
		tenantID:  uuid.New(),
		leadID:    uuid.New(),
		agentID:   uuid.New(),
	}
	leadEmail := "ana@example.com"
	agentID := f.agentID
	f.svc = New(Deps{
		Repo: f.repo,
		Leads: fakeLeads{leads: map[uuid.UUID]ports.LeadContact{
			f.leadID: {ID: f.leadID, Name: "Ana López", Email: &leadEmail, AgentID: &agentID},
		}},
		Agents:    fakeAgents{active: map[uuid.UUID]bool{f.agentID: true}},
		Sender:    f.sender,
		Reminders: f.reminders,
		Bus:       f.bus,
	}, Options{Location: time.UTC, FollowUpHour: 9, DefaultMinutes: 60})
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) seed(clock string, minutes int, status string) repository.Appointment {
	agentID := f.agentID
	a := repository.Appointment{
		ID: uuid.New(), TenantID: f.tenantID, LeadID: f.leadID, AgentID: &agentID,
		Date: "2026-03-05", Time: clock, DurationMinutes: minutes, Status: status,
	}
	f.repo.items[a.ID] = a
	return a
}

func TestCreateDefaultsAgentAndSchedulesTasks(t *testing.T) {
	f := newFixture(t)
	followUp := "2026-03-10"

	resp, err := f.svc.Create(context.Background(), f.tenantID, transport.CreateAppointmentRequest{
		LeadID:           f.leadID,
		Date:             "2026-03-05",
		Time:             "09:00",
		Location:         "Av. Reforma 222",
		FollowUpDate:     &followUp,
		SendConfirmation: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AgentID)
	assert.Equal(t, f.agentID, *resp.AgentID)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, transport.StatusScheduled, resp.Status)
	assert.Empty(t, resp.PropertyIDs)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "confirmation", f.sender.sent[0].kind)
	assert.Equal(t, "ana@example.com", f.sender.sent[0].to)
	assert.Equal(t, "Av. Reforma 222", f.sender.sent[0].details.Location)

	require.Len(t, f.reminders.tasks, 2)
	assert.Equal(t, "reminder", f.reminders.tasks[0].kind)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), f.reminders.tasks[0].runAt)
	assert.Equal(t, "follow_up", f.reminders.tasks[1].kind)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), f.reminders.tasks[1].runAt)
	assert.Equal(t, resp.ID.String(), f.reminders.tasks[1].payload.AppointmentID)

	require.Len(t, f.bus.events, 1)
	scheduled, ok := f.bus.events[0].(events.AppointmentScheduled)
	require.True(t, ok)
	assert.Equal(t, resp.ID, scheduled.AppointmentID)
}

func TestCreateSkipsPastReminder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.tenantID, transport.CreateAppointmentRequest{
		LeadID: f.leadID, Date: "2026-03-02", Time: "08:00",
	})
	require.NoError(t, err)
	assert.Empty(t, f.reminders.tasks)
	assert.Empty(t, f.sender.sent)
}

func TestCreateRejectsOverlappingSlot(t *testing.T) {
	cases := []struct {
		name   string
		clock  string
		status string
		want   bool
	}{
		{name: "overlap", clock: "10:30", status: transport.StatusScheduled, want: true},
		{name: "adjacent", clock: "11:00", status: transport.StatusScheduled, want: false},
		{name: "cancelled ignored", clock: "10:30", status: transport.StatusCancelled, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed("10:00", 60, tc.status)

			_, err := f.svc.Create(context.Background(), f.tenantID, transport.CreateAppointmentRequest{
				LeadID: f.leadID, Date: "2026-03-05", Time: tc.clock,
			})
			if !tc.want {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindConflict))
			assert.Equal(t, CodeSlotConflict, apperr.GetCode(err))
		})
	}
}

func TestCreateValidatesLeadAndAgent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.tenantID, transport.CreateAppointmentRequest{
		LeadID: uuid.New(), Date: "2026-03-05", Time: "09:00",
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	stranger := uuid.New()
	_, err = f.svc.Create(context.Background(), f.tenantID, transport.CreateAppointmentRequest{
		LeadID: f.leadID, AgentID: &stranger, Date: "2026-03-05", Time: "09:00",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateReschedulesAndRechecksConflicts(t *testing.T) {
	f := newFixture(t)
	own := f.seed("09:00", 60, transport.StatusConfirmed)
	f.seed("12:00", 60, transport.StatusScheduled)

	moved := "09:30"
	resp, err := f.svc.Update(context.Background(), f.tenantID, own.ID, transport.UpdateAppointmentRequest{Time: &moved})
	require.NoError(t, err)
	assert.Equal(t, "09:30", resp.Time)
	assert.Equal(t, transport.StatusRescheduled, resp.Status)

	require.Len(t, f.bus.events, 1)
	changed, ok := f.bus.events[0].(events.AppointmentStatusChanged)
	require.True(t, ok)
	assert.Equal(t, transport.StatusRescheduled, changed.Status)

	clash := "11:30"
	_, err = f.svc.Update(context.Background(), f.tenantID, own.ID, transport.UpdateAppointmentRequest{Time: &clash})
	assert.Equal(t, CodeSlotConflict, apperr.GetCode(err))
}

func TestUpdateStatusOtherTenantIsNotFound(t *testing.T) {
	f := newFixture(t)
	appt := f.seed("09:00", 60, transport.StatusScheduled)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), appt.ID, transport.StatusConfirmed)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	resp, err := f.svc.UpdateStatus(context.Background(), f.tenantID, appt.ID, transport.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, transport.StatusConfirmed, resp.Status)
}

func TestCalendarCombinesSlotsAndAppointments(t *testing.T) {
	f := newFixture(t)
	appt := f.seed("10:00", 60, transport.StatusScheduled)
	f.svc.slots = fakeSlots{schedule: ports.DaySchedule{SlotMinutes: 60, Slots: []agentdomain.Slot{
		{Start: "09:00", End: "10:00", Available: true},
		{Start: "10:00", End: "11:00", Available: false, AppointmentID: &appt.ID},
	}}}

	resp, err := f.svc.Calendar(context.Background(), f.tenantID, f.agentID, "2026-03-05")
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 2)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, appt.ID, resp.Appointments[0].ID)
	assert.False(t, resp.Degraded)
}

func TestCalendarPropagatesDegradedAndErrors(t *testing.T) {
	f := newFixture(t)
	f.svc.slots = fakeSlots{schedule: ports.DaySchedule{SlotMinutes: 60, Degraded: true}}

	resp, err := f.svc.Calendar(context.Background(), f.tenantID, f.agentID, "2026-03-05")
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.NotNil(t, resp.Slots)

	f.repo.listErr = errDatabaseDown
	_, err = f.svc.Calendar(context.Background(), f.tenantID, f.agentID, "2026-03-05")
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	_, err = f.svc.Calendar(context.Background(), f.tenantID, f.agentID, "05/03/2026")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSendAppointmentReminder(t *testing.T) {
	f := newFixture(t)
	agentEmail := "carlos@example.com"
	leadEmail := "ana@example.com"
	f.repo.leads[f.leadID] = repository.Contact{Name: "Ana López", Email: &leadEmail}
	f.repo.agents[f.agentID] = repository.Contact{Name: "Carlos Ruiz", Email: &agentEmail}

	f.svc.now = func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) }
	pending := f.seed("09:00", 60, transport.StatusScheduled)
	cancelled := f.seed("15:00", 60, transport.StatusCancelled)

	require.NoError(t, f.svc.SendAppointmentReminder(context.Background(), f.tenantID, pending.ID))
	require.NoError(t, f.svc.SendAppointmentReminder(context.Background(), f.tenantID, cancelled.ID))
	require.NoError(t, f.svc.SendAppointmentReminder(context.Background(), f.tenantID, uuid.New()))

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "reminder", f.sender.sent[0].kind)
	assert.Equal(t, leadEmail, f.sender.sent[0].to)
	assert.Equal(t, "Carlos Ruiz", f.sender.sent[0].details.AgentName)
}

func TestSendAppointmentReminderDropsStaleTask(t *testing.T) {
	f := newFixture(t)
	leadEmail := "ana@example.com"
	f.repo.leads[f.leadID] = repository.Contact{Name: "Ana López", Email: &leadEmail}
	appt := f.seed("09:00", 60, transport.StatusRescheduled)

	require.NoError(t, f.svc.SendAppointmentReminder(context.Background(), f.tenantID, appt.ID))
	assert.Empty(t, f.sender.sent)
}

func TestSendFollowUpReminderGoesToAgent(t *testing.T) {
	f := newFixture(t)
	agentEmail := "carlos@example.com"
	f.repo.agents[f.agentID] = repository.Contact{Name: "Carlos Ruiz", Email: &agentEmail}
	appt := f.seed("09:00", 60, transport.StatusCompleted)
	appt.Status = transport.StatusConfirmed
	notes := "Llevar avalúo"
	appt.FollowUpNotes = &notes
	f.repo.items[appt.ID] = appt

	require.NoError(t, f.svc.SendFollowUpReminder(context.Background(), f.tenantID, appt.ID))

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "follow_up", f.sender.sent[0].kind)
	assert.Equal(t, agentEmail, f.sender.sent[0].to)
	assert.Equal(t, "Carlos Ruiz", f.sender.sent[0].details.RecipientName)
	assert.Equal(t, notes, f.sender.sent[0].details.Notes)
}

func TestListAgentBookingsSkipsCancelled(t *testing.T) {
	f := newFixture(t)
	kept := f.seed("09:00", 45, transport.StatusScheduled)
	f.seed("11:00", 60, transport.StatusCancelled)

	bookings, err := f.svc.ListAgentBookings(context.Background(), f.tenantID, f.agentID, "2026-03-05")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, kept.ID, bookings[0].AppointmentID)
	assert.Equal(t, 45, bookings[0].DurationMinutes)
}
