package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	agentdomain "inmo_crm_backend/internal/agents/domain"
	"inmo_crm_backend/internal/appointments/ports"
	"inmo_crm_backend/internal/appointments/repository"
	"inmo_crm_backend/internal/appointments/transport"
	"inmo_crm_backend/internal/email"
	"inmo_crm_backend/internal/events"
	"inmo_crm_backend/internal/scheduler"
	"inmo_crm_backend/platform/apperr"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgAppointmentNotFound = "cita no encontrada"
	msgLeadNotFound        = "lead no encontrado"
	msgAgentNotFound       = "agente no encontrado"
	msgSlotTaken           = "el agente ya tiene una cita en ese horario"
	msgDatabase            = "no se pudo completar la operación"
	msgInvalidDate         = "fecha u hora no válida"

	CodeAppointmentNotFound = "APPOINTMENT_NOT_FOUND"
	CodeSlotConflict        = "SLOT_CONFLICT"

	defaultDurationMinutes = 60
	defaultPageSize        = 20
	reminderLeadTime       = 24 * time.Hour
)

// Repository is the appointment persistence the service depends on.
type Repository interface {
	Create(ctx context.Context, a repository.Appointment) (repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (repository.Appointment, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Appointment, int, error)
	ListForAgentDate(ctx context.Context, tenantID, agentID uuid.UUID, date string) ([]repository.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params repository.UpdateParams) (repository.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	GetNotificationContext(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (repository.NotificationContext, error)
}

// Options are the calendar settings the service schedules against.
type Options struct {
	Location       *time.Location
	FollowUpHour   int
	DefaultMinutes int
}

type Service struct {
	repo      Repository
	leads     ports.LeadReader
	agents    ports.AgentChecker
	slots     ports.SlotProvider
	sender    email.Sender
	reminders scheduler.ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
	opts      Options
	now       func() time.Time
}

type Deps struct {
	Repo      Repository
	Leads     ports.LeadReader
	Agents    ports.AgentChecker
	Slots     ports.SlotProvider
	Sender    email.Sender
	Reminders scheduler.ReminderScheduler
	Bus       events.Bus
	Log       *logger.Logger
}

func New(deps Deps, opts Options) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewWithWriter("production", io.Discard)
	}
	sender := deps.Sender
	if sender == nil {
		sender = email.NewNoopSender(log)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = defaultDurationMinutes
	}
	if opts.FollowUpHour < 0 || opts.FollowUpHour > 23 {
		opts.FollowUpHour = 9
	}
	return &Service{
		repo:      deps.Repo,
		leads:     deps.Leads,
		agents:    deps.Agents,
		slots:     deps.Slots,
		sender:    sender,
		reminders: deps.Reminders,
		bus:       deps.Bus,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateAppointmentRequest) (transport.AppointmentResponse, error) {
	lead, err := s.leads.GetLeadContact(ctx, tenantID, req.LeadID)
	if err != nil {
		return transport.AppointmentResponse{}, s.leadError(err)
	}

	agentID := req.AgentID
	if agentID == nil {
		agentID = lead.AgentID
	} else if err := s.ensureAgent(ctx, tenantID, *agentID); err != nil {
		return transport.AppointmentResponse{}, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.opts.DefaultMinutes
	}

	if agentID != nil {
		if err := s.checkConflict(ctx, tenantID, *agentID, req.Date, req.Time, duration, uuid.Nil); err != nil {
			return transport.AppointmentResponse{}, err
		}
	}

	appt := repository.Appointment{
		ID:              uuid.New(),
		TenantID:        tenantID,
		LeadID:          lead.ID,
		AgentID:         agentID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: duration,
		Location:        nonEmpty(sanitize.Text(req.Location)),
		PropertyIDs:     req.PropertyIDs,
		Status:          transport.StatusScheduled,
		Notes:           nonEmpty(sanitize.Text(req.Notes)),
		FollowUpDate:    req.FollowUpDate,
		FollowUpNotes:   nonEmpty(sanitize.Text(req.FollowUpNotes)),
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return transport.AppointmentResponse{}, dbError("appointments.Create", err)
	}

	if req.SendConfirmation {
		s.sendConfirmation(ctx, created, lead)
	}
	s.scheduleReminder(ctx, created)
	s.scheduleFollowUp(ctx, created)

	if s.bus != nil {
		s.bus.Publish(ctx, events.AppointmentScheduled{
			BaseEvent:     events.NewBaseEvent(tenantID),
			AppointmentID: created.ID,
			LeadID:        created.LeadID,
			AgentID:       created.AgentID,
			Date:          created.Date,
			Time:          created.Time,
		})
	}

	return toResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.AppointmentResponse{}, mapRepoError("appointments.GetByID", err)
	}
	return toResponse(appt), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListAppointmentsRequest) (transport.AppointmentListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		TenantID: tenantID,
		Status:   optional(req.Status),
		FromDate: optional(req.FromDate),
		ToDate:   optional(req.ToDate),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if id, err := uuid.Parse(req.AgentID); err == nil {
		params.AgentID = &id
	}
	if id, err := uuid.Parse(req.LeadID); err == nil {
		params.LeadID = &id
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.AppointmentListResponse{}, dbError("appointments.List", err)
	}

	resp := transport.AppointmentListResponse{
		Items:      make([]transport.AppointmentResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// Update reschedules or edits an appointment. A date or time change
// moves the status to rescheduled and re-checks the agent's calendar.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateAppointmentRequest) (transport.AppointmentResponse, error) {
	current, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.AppointmentResponse{}, mapRepoError("appointments.Update", err)
	}

	if req.AgentID != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AgentID); err != nil {
			return transport.AppointmentResponse{}, err
		}
	}

	date := valueOr(req.Date, current.Date)
	clock := valueOr(req.Time, current.Time)
	duration := current.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	agentID := current.AgentID
	if req.AgentID != nil {
		agentID = req.AgentID
	}

	moved := date != current.Date || clock != current.Time
	if agentID != nil && (moved || duration != current.DurationMinutes || !sameAgent(agentID, current.AgentID)) {
		if err := s.checkConflict(ctx, tenantID, *agentID, date, clock, duration, id); err != nil {
			return transport.AppointmentResponse{}, err
		}
	}

	params := repository.UpdateParams{
		AgentID:         req.AgentID,
		AgentIDSet:      req.AgentID != nil,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Location:        sanitize.TextPtr(req.Location),
		PropertyIDs:     req.PropertyIDs,
		Notes:           sanitize.TextPtr(req.Notes),
		FollowUpDate:    req.FollowUpDate,
		FollowUpDateSet: req.FollowUpDate != nil,
		FollowUpNotes:   sanitize.TextPtr(req.FollowUpNotes),
	}
	if moved && current.Status != transport.StatusCancelled {
		status := transport.StatusRescheduled
		params.Status = &status
	}

	updated, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.AppointmentResponse{}, mapRepoError("appointments.Update", err)
	}

	if moved {
		s.scheduleReminder(ctx, updated)
	}
	if req.FollowUpDate != nil {
		s.scheduleFollowUp(ctx, updated)
	}
	if params.Status != nil {
		s.publishStatus(ctx, tenantID, updated)
	}
	return toResponse(updated), nil
}

func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (transport.AppointmentResponse, error) {
	updated, err := s.repo.Update(ctx, id, tenantID, repository.UpdateParams{Status: &status})
	if err != nil {
		return transport.AppointmentResponse{}, mapRepoError("appointments.UpdateStatus", err)
	}
	s.publishStatus(ctx, tenantID, updated)
	return toResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, tenantID); err != nil {
		return mapRepoError("appointments.Delete", err)
	}
	return nil
}

// ListAgentBookings feeds the agent slot grid.
func (s *Service) ListAgentBookings(ctx context.Context, tenantID, agentID uuid.UUID, date string) ([]agentdomain.Booking, error) {
	appts, err := s.repo.ListForAgentDate(ctx, tenantID, agentID, date)
	if err != nil {
		return nil, err
	}
	bookings := make([]agentdomain.Booking, 0, len(appts))
	for _, a := range appts {
		bookings = append(bookings, agentdomain.Booking{AppointmentID: a.ID, Time: a.Time, DurationMinutes: a.DurationMinutes})
	}
	return bookings, nil
}

func (s *Service) checkConflict(ctx context.Context, tenantID, agentID uuid.UUID, date, clock string, duration int, exclude uuid.UUID) error {
	existing, err := s.repo.ListForAgentDate(ctx, tenantID, agentID, date)
	if err != nil {
		return dbError("appointments.checkConflict", err)
	}
	for _, other := range existing {
		if other.ID == exclude {
			continue
		}
		if agentdomain.Overlaps(clock, duration, other.Time, other.DurationMinutes) {
			return apperr.Conflict(msgSlotTaken).WithCode(CodeSlotConflict).WithDetails(map[string]any{
				"appointmentId": other.ID,
				"time":          other.Time,
			})
		}
	}
	return nil
}

func (s *Service) ensureAgent(ctx context.Context, tenantID, agentID uuid.UUID) error {
	if s.agents == nil {
		return nil
	}
	ok, err := s.agents.Exists(ctx, tenantID, agentID)
	if err != nil {
		return dbError("appointments.ensureAgent", err)
	}
	if !ok {
		return apperr.Validation(msgAgentNotFound)
	}
	return nil
}

func (s *Service) leadError(err error) error {
	if errors.Is(err, ports.ErrLeadNotFound) {
		return apperr.NotFound(msgLeadNotFound).WithCode("LEAD_NOT_FOUND")
	}
	return dbError("appointments.lead", err)
}

func (s *Service) publishStatus(ctx context.Context, tenantID uuid.UUID, appt repository.Appointment) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.AppointmentStatusChanged{
		BaseEvent:     events.NewBaseEvent(tenantID),
		AppointmentID: appt.ID,
		LeadID:        appt.LeadID,
		Status:        appt.Status,
	})
}

// startsAt resolves the appointment's wall clock in the calendar timezone.
func (s *Service) startsAt(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(agentdomain.DateLayout+" "+agentdomain.ClockLayout, date+" "+clock, s.opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", msgInvalidDate, err)
	}
	return t, nil
}

func (s *Service) scheduleReminder(ctx context.Context, appt repository.Appointment) {
	if s.reminders == nil {
		return
	}
	start, err := s.startsAt(appt.Date, appt.Time)
	if err != nil {
		s.log.WithContext(ctx).Warn("appointment reminder not scheduled", "appointmentId", appt.ID, "error", err)
		return
	}
	runAt := start.Add(-reminderLeadTime)
	if !runAt.After(s.now()) {
		return
	}
	payload := scheduler.AppointmentTaskPayload{AppointmentID: appt.ID.String(), TenantID: appt.TenantID.String()}
	if err := s.reminders.ScheduleAppointmentReminder(ctx, payload, runAt); err != nil {
		s.log.WithContext(ctx).Error("failed to schedule appointment reminder", "appointmentId", appt.ID, "error", err)
	}
}

func (s *Service) scheduleFollowUp(ctx context.Context, appt repository.Appointment) {
	if s.reminders == nil || appt.FollowUpDate == nil {
		return
	}
	day, err := time.ParseInLocation(agentdomain.DateLayout, *appt.FollowUpDate, s.opts.Location)
	if err != nil {
		s.log.WithContext(ctx).Warn("follow-up not scheduled", "appointmentId", appt.ID, "error", err)
		return
	}
	runAt := day.Add(time.Duration(s.opts.FollowUpHour) * time.Hour)
	if !runAt.After(s.now()) {
		runAt = s.now()
	}
	payload := scheduler.AppointmentTaskPayload{AppointmentID: appt.ID.String(), TenantID: appt.TenantID.String()}
	if err := s.reminders.ScheduleFollowUp(ctx, payload, runAt); err != nil {
		s.log.WithContext(ctx).Error("failed to schedule follow-up", "appointmentId", appt.ID, "error", err)
	}
}

func (s *Service) sendConfirmation(ctx context.Context, appt repository.Appointment, lead ports.LeadContact) {
	if lead.Email == nil || strings.TrimSpace(*lead.Email) == "" {
		return
	}
	details := email.AppointmentDetails{
		RecipientName: lead.Name,
		LeadName:      lead.Name,
		Date:          appt.Date,
		Time:          appt.Time,
		Location:      derefString(appt.Location),
		Notes:         derefString(appt.Notes),
	}
	if err := s.sender.SendAppointmentConfirmation(ctx, *lead.Email, details); err != nil {
		s.log.WithContext(ctx).Error("failed to send appointment confirmation", "appointmentId", appt.ID, "error", err)
	}
}

func toResponse(a repository.Appointment) transport.AppointmentResponse {
	propertyIDs := a.PropertyIDs
	if propertyIDs == nil {
		propertyIDs = []uuid.UUID{}
	}
	return transport.AppointmentResponse{
		ID:              a.ID,
		LeadID:          a.LeadID,
		AgentID:         a.AgentID,
		Date:            a.Date,
		Time:            a.Time,
		DurationMinutes: a.DurationMinutes,
		Location:        a.Location,
		PropertyIDs:     propertyIDs,
		Status:          a.Status,
		Notes:           a.Notes,
		FollowUpDate:    a.FollowUpDate,
		FollowUpNotes:   a.FollowUpNotes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgAppointmentNotFound).WithCode(CodeAppointmentNotFound)
	}
	return dbError(op, err)
}

func dbError(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, msgDatabase, err).WithOp(op)
}

func sameAgent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s string) *string {
	return optional(s)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
