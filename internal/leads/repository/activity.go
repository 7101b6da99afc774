package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ActorID   *uuid.UUID
	Action    string
	Meta      map[string]any
	CreatedAt time.Time
}

// AddActivity appends an audit row. A nil actor is stored as NULL.
func (r *Repository) AddActivity(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID, actorID uuid.UUID, action string, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	var actor *uuid.UUID
	if actorID != uuid.Nil {
		actor = &actorID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity (id, lead_id, tenant_id, actor_id, action, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), leadID, tenantID, actor, action, meta)
	if err != nil {
		return fmt.Errorf("failed to add lead activity: %w", err)
	}
	return nil
}

func (r *Repository) ListActivity(ctx context.Context, leadID uuid.UUID, tenantID uuid.UUID, limit int) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, actor_id, action, meta, created_at
		FROM lead_activity
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, leadID, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead activity: %w", err)
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActorID, &a.Action, &a.Meta, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead activity: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead activity: %w", err)
	}
	return items, nil
}
