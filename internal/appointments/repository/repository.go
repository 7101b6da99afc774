package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("appointment not found")

// Appointment is the appointments row. Date is YYYY-MM-DD and Time HH:MM.
type Appointment struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	LeadID          uuid.UUID
	AgentID         *uuid.UUID
	Date            string
	Time            string
	DurationMinutes int
	Location        *string
	PropertyIDs     []uuid.UUID
	Status          string
	Notes           *string
	FollowUpDate    *string
	FollowUpNotes   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentColumns = `id, tenant_id, lead_id, agent_id, appointment_date::text, appointment_time,
	duration_minutes, location, property_ids, status, notes, follow_up_date::text, follow_up_notes,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.TenantID, &a.LeadID, &a.AgentID, &a.Date, &a.Time,
		&a.DurationMinutes, &a.Location, &a.PropertyIDs, &a.Status, &a.Notes, &a.FollowUpDate, &a.FollowUpNotes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if a.PropertyIDs == nil {
		a.PropertyIDs = []uuid.UUID{}
	}
	return a, err
}

func (r *Repository) Create(ctx context.Context, a Appointment) (Appointment, error) {
	query := `
		INSERT INTO appointments (
			id, tenant_id, lead_id, agent_id, appointment_date, appointment_time, duration_minutes,
			location, property_ids, status, notes, follow_up_date, follow_up_notes
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12::date, $13)
		RETURNING ` + appointmentColumns

	created, err := scanAppointment(r.pool.QueryRow(ctx, query,
		a.ID, a.TenantID, a.LeadID, a.AgentID, a.Date, a.Time, a.DurationMinutes,
		a.Location, propertyIDs(a.PropertyIDs), a.Status, a.Notes, a.FollowUpDate, a.FollowUpNotes,
	))
	if err != nil {
		return Appointment{}, fmt.Errorf("failed to create appointment: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND tenant_id = $2`
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

type ListParams struct {
	TenantID uuid.UUID
	AgentID  *uuid.UUID
	LeadID   *uuid.UUID
	Status   *string
	FromDate *string
	ToDate   *string
	Limit    int
	Offset   int
}

func buildListWhere(params ListParams) (string, []interface{}) {
	clauses := []string{"tenant_id = $1"}
	args := []interface{}{params.TenantID}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if params.AgentID != nil {
		add("agent_id = $%d", *params.AgentID)
	}
	if params.LeadID != nil {
		add("lead_id = $%d", *params.LeadID)
	}
	if params.Status != nil {
		add("status = $%d", *params.Status)
	}
	if params.FromDate != nil {
		add("appointment_date >= $%d::date", *params.FromDate)
	}
	if params.ToDate != nil {
		add("appointment_date <= $%d::date", *params.ToDate)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Appointment, int, error) {
	where, args := buildListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s
		ORDER BY appointment_date ASC, appointment_time ASC LIMIT $%d OFFSET $%d`,
		appointmentColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}

	items, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListForAgentDate returns the agent's non-cancelled appointments on date.
func (r *Repository) ListForAgentDate(ctx context.Context, tenantID, agentID uuid.UUID, date string) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE tenant_id = $1 AND agent_id = $2 AND appointment_date = $3::date AND status <> 'cancelled'
		ORDER BY appointment_time ASC`
	rows, err := r.pool.Query(ctx, query, tenantID, agentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent appointments: %w", err)
	}
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()
	items := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return items, nil
}

type UpdateParams struct {
	AgentID         *uuid.UUID
	AgentIDSet      bool
	Date            *string
	Time            *string
	DurationMinutes *int
	Location        *string
	PropertyIDs     []uuid.UUID
	Status          *string
	Notes           *string
	FollowUpDate    *string
	FollowUpDateSet bool
	FollowUpNotes   *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params UpdateParams) (Appointment, error) {
	setClauses := []string{}
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf(clause, len(args)))
	}

	if params.AgentIDSet {
		add("agent_id = $%d", params.AgentID)
	}
	if params.Date != nil {
		add("appointment_date = $%d::date", *params.Date)
	}
	if params.Time != nil {
		add("appointment_time = $%d", *params.Time)
	}
	if params.DurationMinutes != nil {
		add("duration_minutes = $%d", *params.DurationMinutes)
	}
	if params.Location != nil {
		add("location = $%d", *params.Location)
	}
	if params.PropertyIDs != nil {
		add("property_ids = $%d", params.PropertyIDs)
	}
	if params.Status != nil {
		add("status = $%d", *params.Status)
	}
	if params.Notes != nil {
		add("notes = $%d", *params.Notes)
	}
	if params.FollowUpDateSet {
		add("follow_up_date = $%d::date", params.FollowUpDate)
	}
	if params.FollowUpNotes != nil {
		add("follow_up_notes = $%d", *params.FollowUpNotes)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, tenantID)
	}

	args = append(args, id, tenantID)
	query := fmt.Sprintf(`UPDATE appointments SET %s, updated_at = now() WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), appointmentColumns)

	a, err := scanAppointment(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("failed to update appointment: %w", err)
	}
	return a, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Contact is the lead or agent a notification is addressed to.
type Contact struct {
	Name  string
	Email *string
}

// NotificationContext carries an appointment with its lead and agent.
type NotificationContext struct {
	Appointment Appointment
	Lead        Contact
	Agent       *Contact
}

func (r *Repository) GetNotificationContext(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (NotificationContext, error) {
	appt, err := r.GetByID(ctx, id, tenantID)
	if err != nil {
		return NotificationContext{}, err
	}

	out := NotificationContext{Appointment: appt}
	err = r.pool.QueryRow(ctx, `SELECT name, email FROM leads WHERE id = $1 AND tenant_id = $2`, appt.LeadID, tenantID).
		Scan(&out.Lead.Name, &out.Lead.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return NotificationContext{}, fmt.Errorf("failed to load appointment lead: %w", err)
	}

	if appt.AgentID != nil {
		var agent Contact
		var email string
		err = r.pool.QueryRow(ctx, `SELECT name, email FROM agents WHERE id = $1 AND tenant_id = $2`, *appt.AgentID, tenantID).
			Scan(&agent.Name, &email)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return NotificationContext{}, fmt.Errorf("failed to load appointment agent: %w", err)
		}
		if err == nil {
			agent.Email = &email
			out.Agent = &agent
		}
	}
	return out, nil
}

func propertyIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
