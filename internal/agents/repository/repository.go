package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inmo_crm_backend/internal/agents/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("agent not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Agent struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Email        string
	Phone        *string
	AvatarURL    *string
	Bio          *string
	Metadata     map[string]any
	Active       bool
	Availability domain.Availability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const agentColumns = `id, tenant_id, name, email, phone, avatar_url, bio, metadata, active, availability, created_at, updated_at`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	var metadata, availability []byte
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.Name, &a.Email, &a.Phone, &a.AvatarURL, &a.Bio,
		&metadata, &a.Active, &availability, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return Agent{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return Agent{}, fmt.Errorf("failed to decode agent metadata: %w", err)
		}
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &a.Availability); err != nil {
			return Agent{}, fmt.Errorf("failed to decode agent availability: %w", err)
		}
	}
	return a, nil
}

func (r *Repository) Create(ctx context.Context, a Agent) (Agent, error) {
	metadata, err := marshalJSON(a.Metadata, "{}")
	if err != nil {
		return Agent{}, err
	}
	availability, err := json.Marshal(a.Availability.Normalize())
	if err != nil {
		return Agent{}, fmt.Errorf("failed to encode availability: %w", err)
	}

	query := `
		INSERT INTO agents (id, tenant_id, name, email, phone, avatar_url, bio, metadata, active, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + agentColumns

	created, err := scanAgent(r.pool.QueryRow(ctx, query,
		a.ID, a.TenantID, a.Name, a.Email, a.Phone, a.AvatarURL, a.Bio, metadata, a.Active, availability,
	))
	if err != nil {
		return Agent{}, fmt.Errorf("failed to create agent: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1 AND tenant_id = $2`
	a, err := scanAgent(r.pool.QueryRow(ctx, query, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	if err != nil {
		return Agent{}, fmt.Errorf("failed to get agent: %w", err)
	}
	return a, nil
}

// GetByIDs returns the tenant's agents among ids in one query.
func (r *Repository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Agent, error) {
	if len(ids) == 0 {
		return []Agent{}, nil
	}
	query := `SELECT ` + agentColumns + ` FROM agents WHERE tenant_id = $1 AND id = ANY($2)`
	rows, err := r.pool.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	return collectAgents(rows)
}

type ListParams struct {
	TenantID uuid.UUID
	Active   *bool
	Search   string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE tenant_id = $1`
	args := []interface{}{params.TenantID}
	if params.Active != nil {
		args = append(args, *params.Active)
		query += fmt.Sprintf(" AND active = $%d", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return collectAgents(rows)
}

func collectAgents(rows pgx.Rows) ([]Agent, error) {
	defer rows.Close()
	items := make([]Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}
	return items, nil
}

type UpdateParams struct {
	Name      *string
	Email     *string
	Phone     *string
	AvatarURL *string
	Bio       *string
	Metadata  map[string]any
	Active    *bool
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, params UpdateParams) (Agent, error) {
	setClauses := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.AvatarURL != nil {
		add("avatar_url", *params.AvatarURL)
	}
	if params.Bio != nil {
		add("bio", *params.Bio)
	}
	if params.Metadata != nil {
		metadata, err := marshalJSON(params.Metadata, "{}")
		if err != nil {
			return Agent{}, err
		}
		add("metadata", metadata)
	}
	if params.Active != nil {
		add("active", *params.Active)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, tenantID)
	}

	args = append(args, id, tenantID)
	query := fmt.Sprintf(`UPDATE agents SET %s, updated_at = now() WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), agentColumns)

	a, err := scanAgent(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	if err != nil {
		return Agent{}, fmt.Errorf("failed to update agent: %w", err)
	}
	return a, nil
}

func (r *Repository) UpdateAvailability(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, availability domain.Availability) error {
	data, err := json.Marshal(availability.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode availability: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET availability = $3, updated_at = now() WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, data)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetAvailability(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (domain.Availability, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT availability FROM agents WHERE id = $1 AND tenant_id = $2`, id, tenantID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Availability{}, ErrNotFound
	}
	if err != nil {
		return domain.Availability{}, fmt.Errorf("failed to get availability: %w", err)
	}

	var av domain.Availability
	if len(data) > 0 {
		if err := json.Unmarshal(data, &av); err != nil {
			return domain.Availability{}, fmt.Errorf("failed to decode availability: %w", err)
		}
	}
	return av.Normalize(), nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalJSON(value map[string]any, empty string) ([]byte, error) {
	if value == nil {
		return []byte(empty), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}
