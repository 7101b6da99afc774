package adapters

import (
	"context"

	agentrepo "inmo_crm_backend/internal/agents/repository"
	"inmo_crm_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// AgentLookup is the part of the agents service the leads module reads.
type AgentLookup interface {
	Lookup(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]agentrepo.Agent, error)
	Exists(ctx context.Context, tenantID, agentID uuid.UUID) (bool, error)
}

// LeadsAgentDirectory satisfies the leads AgentDirectory with one batched query.
type LeadsAgentDirectory struct {
	agents AgentLookup
}

func NewLeadsAgentDirectory(agents AgentLookup) *LeadsAgentDirectory {
	return &LeadsAgentDirectory{agents: agents}
}

func (d *LeadsAgentDirectory) GetAgentsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ports.AgentRecord, error) {
	result := make(map[uuid.UUID]ports.AgentRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := d.agents.Lookup(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = ports.AgentRecord{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			AvatarURL: row.AvatarURL,
			Metadata:  row.Metadata,
			Active:    row.Active,
		}
	}
	return result, nil
}

func (d *LeadsAgentDirectory) Exists(ctx context.Context, tenantID, agentID uuid.UUID) (bool, error) {
	return d.agents.Exists(ctx, tenantID, agentID)
}
