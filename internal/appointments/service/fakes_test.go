package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"inmo_crm_backend/internal/appointments/ports"
	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/email"
	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/scheduler"

	"github.com/google/uuid"
)

var errDatabaseDown = errors.New("connection refused")

type fakeRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]repository.Appointment
	leads   map[uuid.UUID]repository.Contact
	agents  map[uuid.UUID]repository.Contact
	listErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:  map[uuid.UUID]repository.Appointment{},
		leads:  map[uuid.UUID]repository.Contact{},
		agents: map[uuid.UUID]repository.Contact{},
	}
}

func (r *fakeRepo) Create(_ context.Context, a repository.Appointment) (repository.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.items[a.ID] = a
	return a, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id, tenantID uuid.UUID) (repository.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.TenantID != tenantID {
		return repository.Appointment{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Appointment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.Appointment{}
	for _, a := range r.items {
		if a.TenantID == params.TenantID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListForAgentDate(_ context.Context, tenantID, agentID uuid.UUID, date string) ([]repository.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []repository.Appointment{}
	for _, a := range r.items {
		if a.TenantID == tenantID && a.AgentID != nil && *a.AgentID == agentID && a.Date == date && a.Status != "cancelled" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, id, tenantID uuid.UUID, p repository.UpdateParams) (repository.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.TenantID != tenantID {
		return repository.Appointment{}, repository.ErrNotFound
	}
	if p.AgentIDSet {
		a.AgentID = p.AgentID
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.DurationMinutes != nil {
		a.DurationMinutes = *p.DurationMinutes
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	if p.FollowUpDateSet {
		a.FollowUpDate = p.FollowUpDate
	}
	if p.FollowUpNotes != nil {
		a.FollowUpNotes = p.FollowUpNotes
	}
	r.items[id] = a
	return a, nil
}

func (r *fakeRepo) Delete(_ context.Context, id, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) GetNotificationContext(ctx context.Context, id, tenantID uuid.UUID) (repository.NotificationContext, error) {
	a, err := r.GetByID(ctx, id, tenantID)
	if err != nil {
		return repository.NotificationContext{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	nc := repository.NotificationContext{Appointment: a, Lead: r.leads[a.LeadID]}
	if a.AgentID != nil {
		if agent, ok := r.agents[*a.AgentID]; ok {
			nc.Agent = &agent
		}
	}
	return nc, nil
}

type fakeLeads struct {
	leads map[uuid.UUID]ports.LeadContact
}

func (f fakeLeads) GetLeadContact(_ context.Context, _, leadID uuid.UUID) (ports.LeadContact, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return ports.LeadContact{}, ports.ErrLeadNotFound
	}
	return lead, nil
}

type fakeAgents struct {
	active map[uuid.UUID]bool
}

func (f fakeAgents) Exists(_ context.Context, _, agentID uuid.UUID) (bool, error) {
	return f.active[agentID], nil
}

type fakeSlots struct {
	schedule ports.DaySchedule
	err      error
}

func (f fakeSlots) GetAgentDaySchedule(context.Context, uuid.UUID, uuid.UUID, string) (ports.DaySchedule, error) {
	return f.schedule, f.err
}

type sentMail struct {
	kind    string
	to      string
	details email.AppointmentDetails
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeSender) record(kind, to string, d email.AppointmentDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to, details: d})
	return nil
}

func (f *fakeSender) SendAppointmentConfirmation(_ context.Context, to string, d email.AppointmentDetails) error {
	return f.record("confirmation", to, d)
}

func (f *fakeSender) SendAppointmentReminder(_ context.Context, to string, d email.AppointmentDetails) error {
	return f.record("reminder", to, d)
}

func (f *fakeSender) SendFollowUpReminder(_ context.Context, to string, d email.AppointmentDetails) error {
	return f.record("follow_up", to, d)
}

func (f *fakeSender) SendLeadAssigned(_ context.Context, to string, d email.LeadAssignmentDetails) error {
	return f.record("lead_assigned", to, email.AppointmentDetails{RecipientName: d.RecipientName, LeadName: d.LeadName})
}

type scheduledTask struct {
	kind    string
	payload scheduler.AppointmentTaskPayload
	runAt   time.Time
}

type fakeReminders struct {
	tasks []scheduledTask
}

func (f *fakeReminders) ScheduleAppointmentReminder(_ context.Context, p scheduler.AppointmentTaskPayload, runAt time.Time) error {
	f.tasks = append(f.tasks, scheduledTask{kind: "reminder", payload: p, runAt: runAt})
	return nil
}

func (f *fakeReminders) ScheduleFollowUp(_ context.Context, p scheduler.AppointmentTaskPayload, runAt time.Time) error {
	f.tasks = append(f.tasks, scheduledTask{kind: "follow_up", payload: p, runAt: runAt})
	return nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}
