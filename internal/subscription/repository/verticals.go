package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const verticalColumns = `v.id, v.code, v.name, v.description, v.is_active,
	COALESCE((SELECT array_agg(vm.module_id) FROM vertical_modules vm WHERE vm.vertical_id = v.id), '{}'::uuid[]),
	v.created_at, v.updated_at`

func scanVertical(row pgx.Row) (Vertical, error) {
	var v Vertical
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Description, &v.IsActive, &v.ModuleIDs, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *Repository) ListVerticals(ctx context.Context) ([]Vertical, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+verticalColumns+` FROM verticals v ORDER BY v.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list verticals: %w", err)
	}
	defer rows.Close()

	out := make([]Vertical, 0)
	for rows.Next() {
		v, err := scanVertical(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vertical: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verticals: %w", err)
	}
	return out, nil
}

func (r *Repository) GetVertical(ctx context.Context, id uuid.UUID) (Vertical, error) {
	v, err := scanVertical(r.pool.QueryRow(ctx, `SELECT `+verticalColumns+` FROM verticals v WHERE v.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Vertical{}, ErrNotFound
	}
	if err != nil {
		return Vertical{}, fmt.Errorf("failed to get vertical: %w", err)
	}
	return v, nil
}

func (r *Repository) CreateVertical(ctx context.Context, v Vertical) (Vertical, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verticals (id, code, name, description, is_active) VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.Code, v.Name, v.Description, v.IsActive)
	if err != nil {
		return Vertical{}, translateWriteError("create vertical", err)
	}
	return r.GetVertical(ctx, v.ID)
}

type VerticalUpdate struct {
	Code        *string
	Name        *string
	Description *string
	IsActive    *bool
}

func (r *Repository) UpdateVertical(ctx context.Context, id uuid.UUID, u VerticalUpdate) (Vertical, error) {
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
	if u.IsActive != nil {
		set("is_active", *u.IsActive)
	}
	if len(setClauses) == 0 {
		return r.GetVertical(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE verticals SET %s, updated_at = now() WHERE id = $%d`, strings.Join(setClauses, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return Vertical{}, translateWriteError("update vertical", err)
	}
	if tag.RowsAffected() == 0 {
		return Vertical{}, ErrNotFound
	}
	return r.GetVertical(ctx, id)
}

func (r *Repository) DeleteVertical(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM verticals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vertical: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ReplaceVerticalModules(ctx context.Context, verticalID uuid.UUID, moduleIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM vertical_modules WHERE vertical_id = $1`, verticalID); err != nil {
		return fmt.Errorf("failed to clear vertical modules: %w", err)
	}
	for _, moduleID := range moduleIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO vertical_modules (vertical_id, module_id) VALUES ($1, $2)`, verticalID, moduleID); err != nil {
			return fmt.Errorf("failed to insert vertical module: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) ListCategories(ctx context.Context, verticalID uuid.UUID) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vertical_id, code, name, sort_order, created_at
		FROM vertical_categories WHERE vertical_id = $1 ORDER BY sort_order, name`, verticalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.VerticalID, &c.Code, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO vertical_categories (id, vertical_id, code, name, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, vertical_id, code, name, sort_order, created_at`,
		c.ID, c.VerticalID, c.Code, c.Name, c.SortOrder,
	).Scan(&c.ID, &c.VerticalID, &c.Code, &c.Name, &c.SortOrder, &c.CreatedAt)
	if err != nil {
		return Category{}, translateWriteError("create category", err)
	}
	return c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, verticalID, categoryID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vertical_categories WHERE id = $1 AND vertical_id = $2`, categoryID, verticalID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
