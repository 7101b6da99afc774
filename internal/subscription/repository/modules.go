package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const moduleColumns = `m.id, m.code, m.name, m.description, m.is_core, m.is_active, m.sort_order, m.metadata,
	COALESCE((SELECT array_agg(d.code ORDER BY d.code)
		FROM module_dependencies md JOIN modules d ON d.id = md.depends_on_id
		WHERE md.module_id = m.id), '{}'::text[]),
	m.created_at, m.updated_at`

func scanModule(row pgx.Row) (Module, error) {
	var m Module
	var metadata []byte
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Description, &m.IsCore, &m.IsActive, &m.SortOrder, &metadata,
		&m.DependsOn, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Module{}, err
	}
	decoded, err := decodeJSON(metadata)
	if err != nil {
		return Module{}, err
	}
	m.Metadata = decoded
	return m, nil
}

func (r *Repository) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+moduleColumns+` FROM modules m ORDER BY m.sort_order, m.code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	modules := make([]Module, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modules: %w", err)
	}
	return modules, nil
}

func (r *Repository) GetModule(ctx context.Context, id uuid.UUID) (Module, error) {
	m, err := scanModule(r.pool.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules m WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Module{}, ErrNotFound
	}
	if err != nil {
		return Module{}, fmt.Errorf("failed to get module: %w", err)
	}
	return m, nil
}

func (r *Repository) CreateModule(ctx context.Context, m Module) (Module, error) {
	metadata, err := encodeJSON(m.Metadata)
	if err != nil {
		return Module{}, err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO modules (id, code, name, description, is_core, is_active, sort_order, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Code, m.Name, m.Description, m.IsCore, m.IsActive, m.SortOrder, metadata)
	if err != nil {
		return Module{}, translateWriteError("create module", err)
	}
	return r.GetModule(ctx, m.ID)
}

type ModuleUpdate struct {
	Code        *string
	Name        *string
	Description *string
	IsCore      *bool
	IsActive    *bool
	SortOrder   *int
	Metadata    map[string]any
}

func (r *Repository) UpdateModule(ctx context.Context, id uuid.UUID, u ModuleUpdate) (Module, error) {
	setClauses := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Code != nil {
		set("code", *u.Code)
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.IsCore != nil {
		set("is_core", *u.IsCore)
	}
	if u.IsActive != nil {
		set("is_active", *u.IsActive)
	}
	if u.SortOrder != nil {
		set("sort_order", *u.SortOrder)
	}
	if u.Metadata != nil {
		metadata, err := encodeJSON(u.Metadata)
		if err != nil {
			return Module{}, err
		}
		set("metadata", metadata)
	}
	if len(setClauses) == 0 {
		return r.GetModule(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE modules SET %s, updated_at = now() WHERE id = $%d`, strings.Join(setClauses, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return Module{}, translateWriteError("update module", err)
	}
	if tag.RowsAffected() == 0 {
		return Module{}, ErrNotFound
	}
	return r.GetModule(ctx, id)
}

func (r *Repository) DeleteModule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return translateWriteError("delete module", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceDependencies swaps the module's dependency set in one transaction.
func (r *Repository) ReplaceDependencies(ctx context.Context, moduleID uuid.UUID, codes []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM module_dependencies WHERE module_id = $1`, moduleID); err != nil {
		return fmt.Errorf("failed to clear module dependencies: %w", err)
	}
	if len(codes) > 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO module_dependencies (module_id, depends_on_id)
			SELECT $1, id FROM modules WHERE code = ANY($2)`, moduleID, codes)
		if err != nil {
			return fmt.Errorf("failed to insert module dependencies: %w", err)
		}
		if int(tag.RowsAffected()) != len(codes) {
			return ErrNotFound
		}
	}
	return tx.Commit(ctx)
}
