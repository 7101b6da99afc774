package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const planColumns = `id, code, name, description, price, currency, billing_period, is_active, sort_order, created_at, updated_at`

func scanPlan(row pgx.Row) (Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Currency, &p.BillingPeriod,
		&p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return plans, nil
}

func (r *Repository) GetPlan(ctx context.Context, id uuid.UUID) (Plan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

func (r *Repository) CreatePlan(ctx context.Context, p Plan) (Plan, error) {
	created, err := scanPlan(r.pool.QueryRow(ctx, `
		INSERT INTO plans (id, code, name, description, price, currency, billing_period, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+planColumns,
		p.ID, p.Code, p.Name, p.Description, p.Price, p.Currency, p.BillingPeriod, p.IsActive, p.SortOrder))
	if err != nil {
		return Plan{}, translateWriteError("create plan", err)
	}
	return created, nil
}

type PlanUpdate struct {
	Code          *string
	Name          *string
	Description   *string
	Price         *float64
	Currency      *string
	BillingPeriod *string
	IsActive      *bool
	SortOrder     *int
}

func (r *Repository) UpdatePlan(ctx context.Context, id uuid.UUID, u PlanUpdate) (Plan, error) {
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
	if u.Price != nil {
		set("price", *u.Price)
	}
	if u.Currency != nil {
		set("currency", *u.Currency)
	}
	if u.BillingPeriod != nil {
		set("billing_period", *u.BillingPeriod)
	}
	if u.IsActive != nil {
		set("is_active", *u.IsActive)
	}
	if u.SortOrder != nil {
		set("sort_order", *u.SortOrder)
	}
	if len(setClauses) == 0 {
		return r.GetPlan(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE plans SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), planColumns)
	p, err := scanPlan(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, translateWriteError("update plan", err)
	}
	return p, nil
}

func (r *Repository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListAssignments(ctx context.Context, planID uuid.UUID) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pm.plan_id, pm.module_id, m.code, pm.limits
		FROM plan_modules pm JOIN modules m ON m.id = pm.module_id
		WHERE pm.plan_id = $1
		ORDER BY m.sort_order, m.code`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan modules: %w", err)
	}
	defer rows.Close()

	out := make([]Assignment, 0)
	for rows.Next() {
		var a Assignment
		var limits []byte
		if err := rows.Scan(&a.PlanID, &a.ModuleID, &a.ModuleCode, &limits); err != nil {
			return nil, fmt.Errorf("failed to scan plan module: %w", err)
		}
		if a.Limits, err = decodeJSON(limits); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan modules: %w", err)
	}
	return out, nil
}

// AssignModules adds every module in one transaction; already assigned
// modules are left untouched.
func (r *Repository) AssignModules(ctx context.Context, planID uuid.UUID, moduleIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, moduleID := range moduleIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO plan_modules (plan_id, module_id, limits)
			VALUES ($1, $2, '{}'::jsonb)
			ON CONFLICT (plan_id, module_id) DO NOTHING`, planID, moduleID); err != nil {
			return fmt.Errorf("failed to assign module: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) UnassignModule(ctx context.Context, planID, moduleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plan_modules WHERE plan_id = $1 AND module_id = $2`, planID, moduleID)
	if err != nil {
		return fmt.Errorf("failed to unassign module: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateLimits(ctx context.Context, planID, moduleID uuid.UUID, limits map[string]any) error {
	data, err := encodeJSON(limits)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE plan_modules SET limits = $3 WHERE plan_id = $1 AND module_id = $2`, planID, moduleID, data)
	if err != nil {
		return fmt.Errorf("failed to update limits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
