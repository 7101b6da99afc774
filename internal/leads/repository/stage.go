package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StageCandidate is the slice of a lead the stage transition needs.
type StageCandidate struct {
	ID     uuid.UUID
	Name   string
	Stage  string
	Status string
}

const (
	candidatesByIDQuery = `SELECT id, name, stage, status FROM leads WHERE id = $1 AND tenant_id = $2 LIMIT 2`

	candidatesByAliasQuery = `
		SELECT l.id, l.name, l.stage, l.status
		FROM lead_aliases a
		JOIN leads l ON l.id = a.lead_id AND l.tenant_id = a.tenant_id
		WHERE a.tenant_id = $1 AND a.external_id = $2
		LIMIT 1`

	candidatesByMetadataQuery = `
		SELECT id, name, stage, status FROM leads
		WHERE tenant_id = $1 AND metadata @> jsonb_build_object($2::text, $3::text)
		ORDER BY created_at
		LIMIT 1`

	// Legacy ids imported as JSON numbers only match as text.
	candidatesByMetadataTextQuery = `
		SELECT id, name, stage, status FROM leads
		WHERE tenant_id = $1 AND metadata ->> $2::text = $3::text
		ORDER BY created_at
		LIMIT 1`

	recordAliasQuery = `
		INSERT INTO lead_aliases (tenant_id, external_id, lead_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, external_id) DO NOTHING`

	writeStageQuery = `
		UPDATE leads SET stage = $3,
			status = CASE WHEN $3::text = 'closed' THEN 'closed' ELSE 'open' END,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2`

	compareAndSetStageQuery = `
		UPDATE leads SET stage = $4,
			status = CASE WHEN $4::text = 'closed' THEN 'closed' ELSE 'open' END,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND stage = $3`
)

// FindStageCandidates returns up to two rows so callers can detect duplicates.
func (r *Repository) FindStageCandidates(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) ([]StageCandidate, error) {
	rows, err := r.pool.Query(ctx, candidatesByIDQuery, id, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// FindByAlias resolves an external id through lead_aliases. Returns nil when unknown.
func (r *Repository) FindByAlias(ctx context.Context, tenantID uuid.UUID, externalID string) (*StageCandidate, error) {
	var c StageCandidate
	err := r.pool.QueryRow(ctx, candidatesByAliasQuery, tenantID, externalID).Scan(&c.ID, &c.Name, &c.Stage, &c.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lead alias: %w", err)
	}
	return &c, nil
}

// FindByMetadataKey matches metadata[key] by jsonb containment, then as text
// so numeric legacy ids match too.
func (r *Repository) FindByMetadataKey(ctx context.Context, tenantID uuid.UUID, key, value string) ([]StageCandidate, error) {
	for _, query := range []string{candidatesByMetadataQuery, candidatesByMetadataTextQuery} {
		found, err := r.queryCandidates(ctx, query, tenantID, key, value)
		if err != nil {
			return nil, fmt.Errorf("failed to look up lead by %s: %w", key, err)
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return nil, nil
}

func (r *Repository) queryCandidates(ctx context.Context, query string, args ...any) ([]StageCandidate, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (r *Repository) RecordAlias(ctx context.Context, tenantID uuid.UUID, externalID string, leadID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, recordAliasQuery, tenantID, externalID, leadID); err != nil {
		return fmt.Errorf("failed to record lead alias: %w", err)
	}
	return nil
}

// WriteStage sets the stage regardless of the current value. Any stage other
// than closed reopens the lead.
func (r *Repository) WriteStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, stage string) error {
	result, err := r.pool.Exec(ctx, writeStageQuery, id, tenantID, stage)
	if err != nil {
		return fmt.Errorf("failed to write lead stage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompareAndSetStage writes next only while the stored stage still equals prev,
// reopening the lead. It reports false when another writer got there first.
func (r *Repository) CompareAndSetStage(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, prev, next string) (bool, error) {
	result, err := r.pool.Exec(ctx, compareAndSetStageQuery, id, tenantID, prev, next)
	if err != nil {
		return false, fmt.Errorf("failed to update lead stage: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func collectCandidates(rows pgx.Rows) ([]StageCandidate, error) {
	out := make([]StageCandidate, 0, 2)
	for rows.Next() {
		var c StageCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Stage, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return out, nil
}
