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

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	Email          *string
	Phone          *string
	Status         string
	Stage          string
	AgentID        *uuid.UUID
	BudgetMin      *float64
	BudgetMax      *float64
	PropertyType   *string
	PreferredZones []string
	InterestLevel  *string
	Source         *string
	Notes          *string
	Metadata       map[string]any
	ContactCount   int
	LastContactAt  *time.Time
	NextContactAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const leadColumns = `id, tenant_id, name, email, phone, status, stage, agent_id, budget_min, budget_max,
	property_type, preferred_zones, interest_level, source, notes, metadata,
	contact_count, last_contact_at, next_contact_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Status, &lead.Stage, &lead.AgentID,
		&lead.BudgetMin, &lead.BudgetMax, &lead.PropertyType, &lead.PreferredZones, &lead.InterestLevel,
		&lead.Source, &lead.Notes, &lead.Metadata, &lead.ContactCount, &lead.LastContactAt, &lead.NextContactAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if lead.Metadata == nil {
		lead.Metadata = map[string]any{}
	}
	if lead.PreferredZones == nil {
		lead.PreferredZones = []string{}
	}
	return lead, err
}

func (r *Repository) Create(ctx context.Context, lead Lead) (Lead, error) {
	if lead.Metadata == nil {
		lead.Metadata = map[string]any{}
	}
	if lead.PreferredZones == nil {
		lead.PreferredZones = []string{}
	}

	query := `
		INSERT INTO leads (
			id, tenant_id, name, email, phone, status, stage, agent_id, budget_min, budget_max,
			property_type, preferred_zones, interest_level, source, notes, metadata, next_contact_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + leadColumns

	created, err := scanLead(r.pool.QueryRow(ctx, query,
		lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone, lead.Status, lead.Stage, lead.AgentID,
		lead.BudgetMin, lead.BudgetMax, lead.PropertyType, lead.PreferredZones, lead.InterestLevel,
		lead.Source, lead.Notes, lead.Metadata, lead.NextContactAt,
	))
	if err != nil {
		return Lead{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND tenant_id = $2`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListAllByTenant returns every lead of the tenant, newest first.
func (r *Repository) ListAllByTenant(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

type ListParams struct {
	TenantID     uuid.UUID
	StageValues  []string
	Status       *string
	AgentID      *uuid.UUID
	Unassigned   bool
	PropertyType *string
	Search       string
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where, args := buildListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	argIdx := len(args) + 1
	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		leadColumns, where, mapSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildListWhere(params ListParams) (string, []interface{}) {
	// tenant_id is always the first filter
	clauses := []string{"tenant_id = $1"}
	args := []interface{}{params.TenantID}
	next := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if len(params.StageValues) > 0 {
		clauses = append(clauses, fmt.Sprintf("lower(stage) = ANY($%d)", next(params.StageValues)))
	}
	if params.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", next(*params.Status)))
	}
	if params.Unassigned {
		clauses = append(clauses, "agent_id IS NULL")
	} else if params.AgentID != nil {
		clauses = append(clauses, fmt.Sprintf("agent_id = $%d", next(*params.AgentID)))
	}
	if params.PropertyType != nil {
		clauses = append(clauses, fmt.Sprintf("property_type = $%d", next(*params.PropertyType)))
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		idx := next("%" + s + "%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", idx, idx, idx))
	}

	return strings.Join(clauses, " AND "), args
}

func mapSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "name"
	case "updatedAt":
		return "updated_at"
	case "budget":
		return "COALESCE(budget_max, budget_min)"
	case "nextContactAt":
		return "next_contact_at"
	default:
		return "created_at"
	}
}

type UpdateLeadParams struct {
	Name           *string
	Email          *string
	Phone          *string
	Status         *string
	AgentID        *uuid.UUID
	AgentIDSet     bool
	BudgetMin      *float64
	BudgetMinSet   bool
	BudgetMax      *float64
	BudgetMaxSet   bool
	PropertyType   *string
	PreferredZones []string
	InterestLevel  *string
	Source         *string
	Notes          *string
	Metadata       map[string]any
	NextContactAt  *time.Time
}

// Update applies the set fields. Closing a lead moves its stage to closed in
// the same statement.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params UpdateLeadParams) (Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Name != nil, "name", params.Name},
		{params.Email != nil, "email", params.Email},
		{params.Phone != nil, "phone", params.Phone},
		{params.Status != nil, "status", params.Status},
		{params.AgentIDSet, "agent_id", params.AgentID},
		{params.BudgetMinSet, "budget_min", params.BudgetMin},
		{params.BudgetMaxSet, "budget_max", params.BudgetMax},
		{params.PropertyType != nil, "property_type", params.PropertyType},
		{params.PreferredZones != nil, "preferred_zones", params.PreferredZones},
		{params.InterestLevel != nil, "interest_level", params.InterestLevel},
		{params.Source != nil, "source", params.Source},
		{params.Notes != nil, "notes", params.Notes},
		{params.Metadata != nil, "metadata", params.Metadata},
		{params.NextContactAt != nil, "next_contact_at", params.NextContactAt},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, tenantID)
	}

	if params.Status != nil && *params.Status == "closed" {
		setClauses = append(setClauses, "stage = 'closed'")
	}
	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id, tenantID)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordContact bumps the contact counter and stamps last_contact_at.
func (r *Repository) RecordContact(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, at time.Time, nextContactAt *time.Time) (Lead, error) {
	query := `
		UPDATE leads SET
			contact_count = contact_count + 1,
			last_contact_at = $3,
			next_contact_at = COALESCE($4, next_contact_at),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, tenantID, at, nextContactAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("failed to record contact: %w", err)
	}
	return lead, nil
}
